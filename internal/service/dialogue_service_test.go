package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"persuasive-dialogue-be/internal/dto"
	"persuasive-dialogue-be/internal/pkg/logger"
	"persuasive-dialogue-be/internal/repository/memory"
	"persuasive-dialogue-be/pkg/rag/evidence"
	"persuasive-dialogue-be/pkg/rag/policy"
	"persuasive-dialogue-be/pkg/rag/trigger"
	"persuasive-dialogue-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRetriever struct {
	evidence []store.Evidence
	err      error
}

func (r staticRetriever) Retrieve(context.Context, string, *store.SearchSession, int, int) ([]store.Evidence, error) {
	return r.evidence, r.err
}

type staticAudit struct {
	level         string
	limit, offset int
}

func (a *staticAudit) ReadEntries(level string, limit, offset int) ([]logger.LogEntry, error) {
	a.level, a.limit, a.offset = level, limit, offset
	return []logger.LogEntry{{Level: "INFO", Message: "turn.decided"}}, nil
}

func newTestDialogueService(r policy.Retriever, problems []string, audit AuditReader) IDialogueService {
	log := logger.NewNopLogger()
	classifier := trigger.NewClassifier(nil, trigger.DefaultConfig(), log, nil)
	engine := policy.NewPolicy(classifier, r, evidence.DefaultConfig(), log, nil)
	return NewDialogueService(memory.NewSessionRepository(time.Hour), engine, func() []string { return problems }, audit, log)
}

var phoneEvidence = []store.Evidence{{Content: "Bans raised scores", Score: 0.9}}

func fiberCode(t *testing.T, err error) int {
	t.Helper()
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe), "expected a fiber error, got %v", err)
	return fe.Code
}

func TestDialogueServiceTurnCycle(t *testing.T) {
	svc := newTestDialogueService(staticRetriever{evidence: phoneEvidence}, nil, nil)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{
		Topic:      "  phones in schools ",
		Standpoint: "supporting",
		Strategy:   "suggestion",
	})
	require.NoError(t, err)
	assert.Equal(t, "phones in schools", created.Topic)
	assert.Empty(t, created.DialogueHistory)

	decision, err := svc.Decide(ctx, created.Id, &dto.DecideRequest{Message: "Why should phones be banned?"})
	require.NoError(t, err)
	assert.True(t, decision.ActionTaken.Searched)
	assert.True(t, decision.ActionTaken.ProvidedSuggestion)
	assert.Equal(t, phoneEvidence, decision.Evidence)

	// Decide alone does not advance the stored snapshot
	unchanged, err := svc.GetSession(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, 0, unchanged.Stats.ConversationTurns)

	recorded, err := svc.RecordTurn(ctx, created.Id, &dto.RecordTurnRequest{
		UserMessage:   "Why should phones be banned?",
		AssistantText: "Consider the attention research.",
		ActionTaken:   decision.ActionTaken,
		Evidence:      decision.Evidence,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"User: Why should phones be banned?", "Assistant: Consider the attention research."}, recorded.DialogueHistory)
	assert.Equal(t, 1, recorded.Stats.SearchTriggerCount)
	assert.Equal(t, phoneEvidence, recorded.LastRetrievedEvidence)

	stored, err := svc.GetSession(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, recorded, stored)
}

func TestDialogueServiceDegradedDecision(t *testing.T) {
	svc := newTestDialogueService(staticRetriever{err: evidence.ErrRetrievalFailed}, nil, nil)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{Topic: "uniforms", Standpoint: "opposing", Strategy: "suggestion"})
	require.NoError(t, err)

	decision, err := svc.Decide(ctx, created.Id, &dto.DecideRequest{Message: "tell me about uniforms"})
	require.NoError(t, err)
	assert.True(t, decision.Degraded)
	assert.False(t, decision.ActionTaken.Searched)
	assert.Equal(t, []store.Evidence{}, decision.Evidence)
}

func TestDialogueServiceMissingSession(t *testing.T) {
	svc := newTestDialogueService(staticRetriever{}, nil, nil)
	ctx := context.Background()
	id := uuid.New()

	_, err := svc.GetSession(ctx, id)
	assert.Equal(t, fiber.StatusNotFound, fiberCode(t, err))

	_, err = svc.Decide(ctx, id, &dto.DecideRequest{Message: "hi"})
	assert.Equal(t, fiber.StatusNotFound, fiberCode(t, err))

	_, err = svc.RecordTurn(ctx, id, &dto.RecordTurnRequest{UserMessage: "hi", AssistantText: "hello"})
	assert.Equal(t, fiber.StatusNotFound, fiberCode(t, err))

	err = svc.DeleteSession(ctx, id)
	assert.Equal(t, fiber.StatusNotFound, fiberCode(t, err))
}

func TestDialogueServiceDeleteResetsConversation(t *testing.T) {
	svc := newTestDialogueService(staticRetriever{}, nil, nil)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{Topic: "uniforms", Standpoint: "opposing", Strategy: "clarification"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteSession(ctx, created.Id))

	_, err = svc.GetSession(ctx, created.Id)
	assert.Equal(t, fiber.StatusNotFound, fiberCode(t, err))
}

func TestDialogueServiceCancelledDecide(t *testing.T) {
	svc := newTestDialogueService(staticRetriever{}, nil, nil)

	created, err := svc.CreateSession(context.Background(), &dto.CreateSessionRequest{Topic: "uniforms", Standpoint: "opposing", Strategy: "clarification"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.Decide(ctx, created.Id, &dto.DecideRequest{Message: "hi"})
	assert.Equal(t, fiber.StatusRequestTimeout, fiberCode(t, err))
}

func TestDialogueServiceValidateConfig(t *testing.T) {
	ok := newTestDialogueService(staticRetriever{}, nil, nil).ValidateConfig(context.Background())
	assert.True(t, ok.Valid)
	assert.Equal(t, []string{}, ok.Problems)

	bad := newTestDialogueService(staticRetriever{}, []string{"Retrieval.TopK must be at least 1 (got 0)"}, nil).ValidateConfig(context.Background())
	assert.False(t, bad.Valid)
	assert.Len(t, bad.Problems, 1)
}

func TestDialogueServiceAuditEntries(t *testing.T) {
	audit := &staticAudit{}
	svc := newTestDialogueService(staticRetriever{}, nil, audit)

	entries, err := svc.AuditEntries(context.Background(), &dto.AuditQuery{Level: "WARN", Offset: 10})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "WARN", audit.level)
	assert.Equal(t, defaultAuditLimit, audit.limit)
	assert.Equal(t, 10, audit.offset)
}
