package store

import (
	"errors"
	"time"

	"interview-practice-be/pkg/interview"
	"interview-practice-be/pkg/speech"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one live interview kept in memory between requests.
type Session struct {
	ID        string
	CreatedAt time.Time

	Interview *interview.Session
	Speech    *speech.Adapter
}

// Close stops any speech work belonging to the session.
func (s *Session) Close() {
	if s.Speech != nil {
		s.Speech.Cancel()
	}
	if s.Interview != nil {
		s.Interview.Close()
	}
}
