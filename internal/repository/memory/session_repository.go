package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"interview-practice-be/pkg/store"
)

// SessionRepository keeps live sessions with a sliding TTL. Expired or
// deleted sessions are closed so their speech goroutines exit.
type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := cache.New(ttl, 10*time.Minute)
	c.OnEvicted(func(_ string, v interface{}) {
		if s, ok := v.(*store.Session); ok {
			go s.Close()
		}
	})
	return &SessionRepository{
		cache: c,
		ttl:   ttl,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

// Get returns the session and extends its lifetime.
func (r *SessionRepository) Get(sessionID string) (*store.Session, error) {
	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, store.ErrSessionNotFound
	}
	session := x.(*store.Session)
	r.cache.Set(sessionID, session, cache.DefaultExpiration)
	return session, nil
}

// Peek returns the session without extending its lifetime.
func (r *SessionRepository) Peek(sessionID string) (*store.Session, error) {
	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, store.ErrSessionNotFound
	}
	return x.(*store.Session), nil
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
