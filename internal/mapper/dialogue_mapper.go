package mapper

import (
	"persuasive-dialogue-be/internal/dto"
	"persuasive-dialogue-be/pkg/rag/policy"
	"persuasive-dialogue-be/pkg/store"
)

type DialogueMapper struct{}

func NewDialogueMapper() *DialogueMapper {
	return &DialogueMapper{}
}

func (m *DialogueMapper) SessionToResponse(s *store.SearchSession) *dto.SessionResponse {
	if s == nil {
		return nil
	}

	evidence := s.LastRetrievedEvidence
	if evidence == nil {
		evidence = []store.Evidence{}
	}

	return &dto.SessionResponse{
		Id:                    s.ID,
		Topic:                 s.Topic,
		Standpoint:            string(s.Standpoint),
		Strategy:              string(s.Strategy),
		DialogueHistory:       s.DialogueHistory,
		LastRetrievedEvidence: evidence,
		Stats:                 s.Stats,
		ClarificationState:    s.ClarificationState,
		CreatedAt:             s.CreatedAt,
	}
}

func (m *DialogueMapper) DecisionToResponse(d *policy.Decision) *dto.DecideResponse {
	if d == nil {
		return nil
	}

	evidence := d.Evidence
	if evidence == nil {
		evidence = []store.Evidence{}
	}

	return &dto.DecideResponse{
		SystemPrompt: d.SystemPrompt,
		Evidence:     evidence,
		ActionTaken:  d.ActionTaken,
		Degraded:     d.Degraded,
	}
}
