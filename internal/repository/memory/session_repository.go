package memory

import (
	"context"
	"time"

	"persuasive-dialogue-be/internal/repository/contract"
	"persuasive-dialogue-be/pkg/store"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

var _ contract.SearchSessionRepository = &SessionRepository{}

// NewSessionRepository keeps sessions for ttl after their last save and
// purges expired items every 10 minutes. A ttl of zero keeps them forever.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

// Save stores a private copy so callers cannot change a stored snapshot
func (r *SessionRepository) Save(_ context.Context, session *store.SearchSession) error {
	r.cache.Set(session.ID.String(), session.Clone(), cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(_ context.Context, id uuid.UUID) (*store.SearchSession, error) {
	if x, found := r.cache.Get(id.String()); found {
		return x.(*store.SearchSession).Clone(), nil
	}
	return nil, contract.ErrSessionNotFound
}

func (r *SessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.cache.Delete(id.String())
	return nil
}
