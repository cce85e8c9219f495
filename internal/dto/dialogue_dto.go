package dto

import (
	"time"

	"persuasive-dialogue-be/pkg/store"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Topic      string `json:"topic" validate:"required,min=3,max=500"`
	Standpoint string `json:"standpoint" validate:"required,oneof=supporting opposing"`
	Strategy   string `json:"strategy" validate:"required,oneof=suggestion clarification"`
}

type DecideRequest struct {
	Message string `json:"message" validate:"required,max=8000"`
}

type RecordTurnRequest struct {
	UserMessage   string            `json:"user_message" validate:"required,max=8000"`
	AssistantText string            `json:"assistant_text" validate:"required"`
	ActionTaken   store.ActionTaken `json:"action_taken"`
	Evidence      []store.Evidence  `json:"evidence,omitempty" validate:"omitempty,dive"`
}

type SessionResponse struct {
	Id                    uuid.UUID                 `json:"id"`
	Topic                 string                    `json:"topic"`
	Standpoint            string                    `json:"standpoint"`
	Strategy              string                    `json:"strategy"`
	DialogueHistory       []string                  `json:"dialogue_history"`
	LastRetrievedEvidence []store.Evidence          `json:"last_retrieved_evidence"`
	Stats                 store.SearchStats         `json:"stats"`
	ClarificationState    *store.ClarificationState `json:"clarification_state"`
	CreatedAt             time.Time                 `json:"created_at"`
}

type DecideResponse struct {
	SystemPrompt string            `json:"system_prompt"`
	Evidence     []store.Evidence  `json:"evidence"`
	ActionTaken  store.ActionTaken `json:"action_taken"`
	Degraded     bool              `json:"degraded"`
}

type ConfigValidationResponse struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems"`
}

type AuditQuery struct {
	Level  string `query:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	Limit  int    `query:"limit" validate:"min=0,max=500"`
	Offset int    `query:"offset" validate:"min=0"`
}
