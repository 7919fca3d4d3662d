package specification

import "gorm.io/gorm"

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// MinScore keeps records scored at least Score.
type MinScore struct {
	Score int
}

func (s MinScore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("overall_score >= ?", s.Score)
}

// UsedDefaults keeps records whose feedback was partly or fully defaulted.
type UsedDefaults struct{}

func (UsedDefaults) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("diagnostic IS NOT NULL")
}
