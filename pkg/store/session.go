package store

import (
	"time"

	"github.com/google/uuid"
)

// Standpoint is the fixed persuasive position assigned to a session
type Standpoint string

// Strategy is the conversational tactic assigned to a session
type Strategy string

const (
	StandpointSupporting Standpoint = "supporting"
	StandpointOpposing   Standpoint = "opposing"

	StrategySuggestion    Strategy = "suggestion"
	StrategyClarification Strategy = "clarification"
)

func (s Standpoint) Valid() bool {
	return s == StandpointSupporting || s == StandpointOpposing
}

func (s Strategy) Valid() bool {
	return s == StrategySuggestion || s == StrategyClarification
}

// SourceRef points back to the document an evidence snippet was cut from
type SourceRef struct {
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	PageNumbers  []int  `json:"page_numbers,omitempty"`
}

// Evidence is a scored excerpt returned by the evidence-search backend.
// A nil StandpointTag means the snippet is untagged (neutral).
type Evidence struct {
	Content       string      `json:"content"`
	Score         float64     `json:"score" validate:"min=0,max=1"`
	SourceRef     *SourceRef  `json:"source_ref,omitempty"`
	StandpointTag *Standpoint `json:"standpoint_tag,omitempty"`
}

// SearchStats counters only ever grow
type SearchStats struct {
	SearchTriggerCount         int        `json:"search_trigger_count"`
	ClarificationQuestionCount int        `json:"clarification_question_count"`
	SuggestionCount            int        `json:"suggestion_count"`
	ConversationTurns          int        `json:"conversation_turns"`
	LastSearchQuery            string     `json:"last_search_query,omitempty"`
	LastSearchTimestamp        *time.Time `json:"last_search_timestamp,omitempty"`
}

// ClarificationState tracks the clarification hand-off to search.
// IsReadyForSearch is one-way: once set it stays set for the session lifetime.
type ClarificationState struct {
	IsAwaitingClarification       bool     `json:"is_awaiting_clarification"`
	IsReadyForSearch              bool     `json:"is_ready_for_search"`
	PendingClarificationQuestions []string `json:"pending_clarification_questions,omitempty"`
}

// ActionTaken reports what the policy did for a turn
type ActionTaken struct {
	Searched           bool `json:"searched"`
	AskedClarification bool `json:"asked_clarification"`
	ProvidedSuggestion bool `json:"provided_suggestion"`
}

// SearchSession is the per-conversation search configuration and history.
// It is treated as an immutable value: every turn produces a new snapshot.
type SearchSession struct {
	ID         uuid.UUID  `json:"id"`
	Topic      string     `json:"topic"`
	Standpoint Standpoint `json:"standpoint"`
	Strategy   Strategy   `json:"strategy"`

	// Ordered "User: ..." / "Assistant: ..." entries
	DialogueHistory []string `json:"dialogue_history"`

	LastRetrievedEvidence []Evidence          `json:"last_retrieved_evidence,omitempty"`
	Stats                 SearchStats         `json:"stats"`
	ClarificationState    *ClarificationState `json:"clarification_state,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

const (
	UserPrefix      = "User: "
	AssistantPrefix = "Assistant: "
)

// NewSearchSession creates a fresh session. The clarification state is
// left empty until the first turn has been recorded.
func NewSearchSession(topic string, standpoint Standpoint, strategy Strategy) *SearchSession {
	return &SearchSession{
		ID:              uuid.New(),
		Topic:           topic,
		Standpoint:      standpoint,
		Strategy:        strategy,
		DialogueHistory: []string{},
		CreatedAt:       time.Now().UTC(),
	}
}

// HasRetrievedContext reports whether any evidence was ever retrieved
func (s *SearchSession) HasRetrievedContext() bool {
	return len(s.LastRetrievedEvidence) > 0
}

// RecentHistory returns the last n dialogue entries in order
func (s *SearchSession) RecentHistory(n int) []string {
	if n <= 0 || len(s.DialogueHistory) == 0 {
		return nil
	}
	if n > len(s.DialogueHistory) {
		n = len(s.DialogueHistory)
	}
	return s.DialogueHistory[len(s.DialogueHistory)-n:]
}

// Clone returns a deep copy so snapshots never share mutable backing arrays.
func (s *SearchSession) Clone() *SearchSession {
	if s == nil {
		return nil
	}
	c := *s

	c.DialogueHistory = append([]string(nil), s.DialogueHistory...)
	if c.DialogueHistory == nil {
		c.DialogueHistory = []string{}
	}

	// Evidence is never mutated after creation, so sharing elements is fine
	if s.LastRetrievedEvidence != nil {
		c.LastRetrievedEvidence = append([]Evidence(nil), s.LastRetrievedEvidence...)
	}

	if s.Stats.LastSearchTimestamp != nil {
		ts := *s.Stats.LastSearchTimestamp
		c.Stats.LastSearchTimestamp = &ts
	}

	if s.ClarificationState != nil {
		cs := *s.ClarificationState
		cs.PendingClarificationQuestions = append([]string(nil), s.ClarificationState.PendingClarificationQuestions...)
		c.ClarificationState = &cs
	}

	return &c
}
