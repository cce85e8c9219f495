package redisrepo

import (
	"context"
	"os"
	"testing"
	"time"

	"persuasive-dialogue-be/internal/repository/contract"
	"persuasive-dialogue-be/pkg/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set, skipping redis repository test")
	}

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	rdb := setupRedis(t)
	repo := NewSessionRepository(rdb, time.Minute)
	ctx := context.Background()

	s := store.NewSearchSession("phones in schools", store.StandpointSupporting, store.StrategyClarification)
	s.DialogueHistory = []string{"User: hi", "Assistant: which age group?"}
	s.ClarificationState = &store.ClarificationState{IsAwaitingClarification: true, PendingClarificationQuestions: []string{"which age group?"}}
	s.Stats.ConversationTurns = 1
	s.Stats.ClarificationQuestionCount = 1
	defer repo.Delete(ctx, s.ID)

	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, s.DialogueHistory, got.DialogueHistory)
	assert.Equal(t, s.ClarificationState, got.ClarificationState)
	assert.Equal(t, s.Stats, got.Stats)
	assert.True(t, s.CreatedAt.Equal(got.CreatedAt))

	ttl, err := rdb.TTL(ctx, key(s.ID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestSessionRepositoryMissing(t *testing.T) {
	rdb := setupRedis(t)
	repo := NewSessionRepository(rdb, time.Minute)

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, contract.ErrSessionNotFound)
}
