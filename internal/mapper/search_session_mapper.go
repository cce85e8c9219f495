package mapper

import (
	"encoding/json"
	"fmt"

	"persuasive-dialogue-be/internal/model"
	"persuasive-dialogue-be/pkg/store"

	"gorm.io/datatypes"
)

type SearchSessionMapper struct{}

func NewSearchSessionMapper() *SearchSessionMapper {
	return &SearchSessionMapper{}
}

func (m *SearchSessionMapper) ToModel(s *store.SearchSession) (*model.SearchSession, error) {
	if s == nil {
		return nil, nil
	}

	var clarification datatypes.JSON
	if s.ClarificationState != nil {
		raw, err := json.Marshal(s.ClarificationState)
		if err != nil {
			return nil, fmt.Errorf("marshal clarification state: %w", err)
		}
		clarification = raw
	}

	return &model.SearchSession{
		Id:                    s.ID,
		Topic:                 s.Topic,
		Standpoint:            string(s.Standpoint),
		Strategy:              string(s.Strategy),
		DialogueHistory:       datatypes.JSONSlice[string](s.DialogueHistory),
		LastRetrievedEvidence: datatypes.JSONSlice[store.Evidence](s.LastRetrievedEvidence),
		Stats:                 datatypes.NewJSONType(s.Stats),
		ClarificationState:    clarification,
		CreatedAt:             s.CreatedAt,
	}, nil
}

func (m *SearchSessionMapper) ToStore(s *model.SearchSession) (*store.SearchSession, error) {
	if s == nil {
		return nil, nil
	}

	var clarification *store.ClarificationState
	if len(s.ClarificationState) > 0 && string(s.ClarificationState) != "null" {
		clarification = &store.ClarificationState{}
		if err := json.Unmarshal(s.ClarificationState, clarification); err != nil {
			return nil, fmt.Errorf("unmarshal clarification state: %w", err)
		}
	}

	history := []string(s.DialogueHistory)
	if history == nil {
		history = []string{}
	}

	var evidence []store.Evidence
	if len(s.LastRetrievedEvidence) > 0 {
		evidence = []store.Evidence(s.LastRetrievedEvidence)
	}

	return &store.SearchSession{
		ID:                    s.Id,
		Topic:                 s.Topic,
		Standpoint:            store.Standpoint(s.Standpoint),
		Strategy:              store.Strategy(s.Strategy),
		DialogueHistory:       history,
		LastRetrievedEvidence: evidence,
		Stats:                 s.Stats.Data(),
		ClarificationState:    clarification,
		CreatedAt:             s.CreatedAt,
	}, nil
}
