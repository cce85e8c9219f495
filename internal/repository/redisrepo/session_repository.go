package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"persuasive-dialogue-be/internal/repository/contract"
	"persuasive-dialogue-be/pkg/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dialogue:session:"

// SessionRepository keeps each session as one JSON value
type SessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ contract.SearchSessionRepository = &SessionRepository{}

// NewSessionRepository refreshes the ttl on every save; zero means no expiry.
func NewSessionRepository(rdb *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{rdb: rdb, ttl: ttl}
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

func (r *SessionRepository) Save(ctx context.Context, session *store.SearchSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.rdb.Set(ctx, key(session.ID), payload, r.ttl).Err()
}

func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*store.SearchSession, error) {
	payload, err := r.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, contract.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session store.SearchSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.rdb.Del(ctx, key(id)).Err()
}
