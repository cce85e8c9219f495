package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"persuasive-dialogue-be/internal/dto"
	"persuasive-dialogue-be/internal/mapper"
	"persuasive-dialogue-be/internal/pkg/logger"
	"persuasive-dialogue-be/internal/repository/contract"
	"persuasive-dialogue-be/pkg/rag/policy"
	"persuasive-dialogue-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	dialogueModule = "DialogueService"

	defaultAuditLimit = 50
	lockStripes       = 64
)

// DialogueEngine is the per-turn decision engine
type DialogueEngine interface {
	Decide(ctx context.Context, session *store.SearchSession, userMessage string) (*policy.Decision, error)
	RecordTurn(session *store.SearchSession, userMessage, assistantText string, action store.ActionTaken, evidence []store.Evidence) *store.SearchSession
}

// AuditReader pages through the audit log
type AuditReader interface {
	ReadEntries(level string, limit, offset int) ([]logger.LogEntry, error)
}

type IDialogueService interface {
	CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error)
	Decide(ctx context.Context, id uuid.UUID, req *dto.DecideRequest) (*dto.DecideResponse, error)
	RecordTurn(ctx context.Context, id uuid.UUID, req *dto.RecordTurnRequest) (*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	ValidateConfig(ctx context.Context) *dto.ConfigValidationResponse
	AuditEntries(ctx context.Context, query *dto.AuditQuery) ([]logger.LogEntry, error)
}

type dialogueService struct {
	repo      contract.SearchSessionRepository
	engine    DialogueEngine
	validate  func() []string
	audit     AuditReader
	logger    logger.ILogger
	mapper    *mapper.DialogueMapper
	turnLocks [lockStripes]sync.Mutex
}

func NewDialogueService(
	repo contract.SearchSessionRepository,
	engine DialogueEngine,
	validate func() []string,
	audit AuditReader,
	log logger.ILogger,
) IDialogueService {
	return &dialogueService{
		repo:     repo,
		engine:   engine,
		validate: validate,
		audit:    audit,
		logger:   log,
		mapper:   mapper.NewDialogueMapper(),
	}
}

func (s *dialogueService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	session := store.NewSearchSession(
		strings.TrimSpace(req.Topic),
		store.Standpoint(req.Standpoint),
		store.Strategy(req.Strategy),
	)

	if err := s.repo.Save(ctx, session); err != nil {
		s.logger.Error(dialogueModule, "Failed to save new session", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	s.logger.Info(dialogueModule, "Session created", map[string]interface{}{
		"conversation_id": session.ID.String(),
		"standpoint":      req.Standpoint,
		"strategy":        req.Strategy,
	})
	return s.mapper.SessionToResponse(session), nil
}

func (s *dialogueService) GetSession(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.mapper.SessionToResponse(session), nil
}

// Decide never saves; the snapshot only advances through RecordTurn
func (s *dialogueService) Decide(ctx context.Context, id uuid.UUID, req *dto.DecideRequest) (*dto.DecideResponse, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	decision, err := s.engine.Decide(ctx, session, req.Message)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fiber.NewError(fiber.StatusRequestTimeout, "turn cancelled")
		}
		return nil, err
	}

	return s.mapper.DecisionToResponse(decision), nil
}

func (s *dialogueService) RecordTurn(ctx context.Context, id uuid.UUID, req *dto.RecordTurnRequest) (*dto.SessionResponse, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	next := s.engine.RecordTurn(session, req.UserMessage, req.AssistantText, req.ActionTaken, req.Evidence)

	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error(dialogueModule, "Failed to save session", map[string]interface{}{
			"conversation_id": id.String(),
			"error":           err.Error(),
		})
		return nil, err
	}

	return s.mapper.SessionToResponse(next), nil
}

func (s *dialogueService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(dialogueModule, "Session reset", map[string]interface{}{"conversation_id": id.String()})
	return nil
}

func (s *dialogueService) ValidateConfig(_ context.Context) *dto.ConfigValidationResponse {
	problems := s.validate()
	if problems == nil {
		problems = []string{}
	}
	return &dto.ConfigValidationResponse{
		Valid:    len(problems) == 0,
		Problems: problems,
	}
}

func (s *dialogueService) AuditEntries(_ context.Context, query *dto.AuditQuery) ([]logger.LogEntry, error) {
	if s.audit == nil {
		return []logger.LogEntry{}, nil
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	return s.audit.ReadEntries(query.Level, limit, query.Offset)
}

func (s *dialogueService) load(ctx context.Context, id uuid.UUID) (*store.SearchSession, error) {
	session, err := s.repo.Get(ctx, id)
	if errors.Is(err, contract.ErrSessionNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Session not found")
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// lockFor serializes RecordTurn per conversation within this process
func (s *dialogueService) lockFor(id uuid.UUID) *sync.Mutex {
	return &s.turnLocks[int(id[0])%lockStripes]
}
