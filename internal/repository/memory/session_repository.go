package memory

import (
	"time"

	"pergunte-ao-passado/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository holds the volatile per-session conversation state,
// including highlight indices. It is a process-local cache; expired
// sessions are rebuilt from persisted history on the next turn.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Sessions idle for an hour expire; expired items are purged every
	// 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
