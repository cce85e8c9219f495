package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSearchSession(t *testing.T) {
	s := NewSearchSession("phones in schools", StandpointSupporting, StrategyClarification)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "phones in schools", s.Topic)
	assert.NotNil(t, s.DialogueHistory)
	assert.Empty(t, s.DialogueHistory)
	assert.Nil(t, s.ClarificationState)
	assert.False(t, s.HasRetrievedContext())
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Now()
	s := NewSearchSession("topic", StandpointOpposing, StrategyClarification)
	s.DialogueHistory = append(s.DialogueHistory, "User: hi", "Assistant: hello")
	s.LastRetrievedEvidence = []Evidence{{Content: "a", Score: 0.9}}
	s.Stats.LastSearchTimestamp = &now
	s.ClarificationState = &ClarificationState{PendingClarificationQuestions: []string{"q"}}

	c := s.Clone()
	c.DialogueHistory[0] = "changed"
	c.LastRetrievedEvidence[0].Content = "changed"
	c.ClarificationState.IsReadyForSearch = true
	c.ClarificationState.PendingClarificationQuestions[0] = "changed"
	*c.Stats.LastSearchTimestamp = now.Add(time.Hour)

	assert.Equal(t, "User: hi", s.DialogueHistory[0])
	assert.Equal(t, "a", s.LastRetrievedEvidence[0].Content)
	assert.False(t, s.ClarificationState.IsReadyForSearch)
	assert.Equal(t, "q", s.ClarificationState.PendingClarificationQuestions[0])
	assert.True(t, s.Stats.LastSearchTimestamp.Equal(now))
}

func TestRecentHistory(t *testing.T) {
	s := NewSearchSession("topic", StandpointOpposing, StrategySuggestion)
	assert.Nil(t, s.RecentHistory(4))

	s.DialogueHistory = []string{"User: 1", "Assistant: 1", "User: 2", "Assistant: 2"}
	assert.Equal(t, []string{"User: 2", "Assistant: 2"}, s.RecentHistory(2))
	assert.Len(t, s.RecentHistory(10), 4)
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name        string
		session     *SearchSession
		wantRepairs []RepairKind
		check       func(t *testing.T, out *SearchSession)
	}{
		{
			name:    "fresh clarification session is valid",
			session: NewSearchSession("t", StandpointSupporting, StrategyClarification),
			check: func(t *testing.T, out *SearchSession) {
				assert.Nil(t, out.ClarificationState)
			},
		},
		{
			name: "clarification session with turns but no state",
			session: func() *SearchSession {
				s := NewSearchSession("t", StandpointSupporting, StrategyClarification)
				s.Stats.ConversationTurns = 2
				return s
			}(),
			wantRepairs: []RepairKind{RepairRestoredClarification},
			check: func(t *testing.T, out *SearchSession) {
				require.NotNil(t, out.ClarificationState)
				assert.True(t, out.ClarificationState.IsAwaitingClarification)
				assert.False(t, out.ClarificationState.IsReadyForSearch)
			},
		},
		{
			name: "suggestion session carrying clarification state",
			session: func() *SearchSession {
				s := NewSearchSession("t", StandpointSupporting, StrategySuggestion)
				s.ClarificationState = &ClarificationState{IsReadyForSearch: true}
				return s
			}(),
			wantRepairs: []RepairKind{RepairDroppedClarification},
			check: func(t *testing.T, out *SearchSession) {
				assert.Nil(t, out.ClarificationState)
			},
		},
		{
			name: "nil history",
			session: func() *SearchSession {
				s := NewSearchSession("t", StandpointSupporting, StrategySuggestion)
				s.DialogueHistory = nil
				return s
			}(),
			wantRepairs: []RepairKind{RepairRestoredDialogueHistory},
			check: func(t *testing.T, out *SearchSession) {
				assert.NotNil(t, out.DialogueHistory)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.session.Clone()
			out, repairs := Repair(tt.session)

			assert.Equal(t, tt.wantRepairs, repairs)
			tt.check(t, out)
			assert.Equal(t, before.ClarificationState, tt.session.ClarificationState, "input must not be modified")
		})
	}
}
