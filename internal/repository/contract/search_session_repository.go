package contract

import (
	"context"
	"errors"

	"persuasive-dialogue-be/pkg/store"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("search session not found")

// SearchSessionRepository stores whole session snapshots keyed by conversation id
type SearchSessionRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*store.SearchSession, error)
	Save(ctx context.Context, session *store.SearchSession) error
	Delete(ctx context.Context, id uuid.UUID) error
}
