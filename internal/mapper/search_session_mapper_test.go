package mapper

import (
	"testing"
	"time"

	"persuasive-dialogue-be/pkg/store"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchSessionMapperRoundTrip(t *testing.T) {
	m := NewSearchSessionMapper()
	tag := store.StandpointSupporting
	searched := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

	s := store.NewSearchSession("phones in schools", store.StandpointSupporting, store.StrategyClarification)
	s.DialogueHistory = []string{"User: hi", "Assistant: which age group?"}
	s.LastRetrievedEvidence = []store.Evidence{{
		Content:       "Bans raised scores",
		Score:         0.9,
		SourceRef:     &store.SourceRef{DocumentID: "d1", DocumentName: "LSE", PageNumbers: []int{2}},
		StandpointTag: &tag,
	}}
	s.Stats = store.SearchStats{SearchTriggerCount: 1, ConversationTurns: 2, LastSearchQuery: "stats", LastSearchTimestamp: &searched}
	s.ClarificationState = &store.ClarificationState{IsReadyForSearch: true}

	row, err := m.ToModel(s)
	require.NoError(t, err)
	assert.Equal(t, "clarification", row.Strategy)

	back, err := m.ToStore(row)
	require.NoError(t, err)

	if diff := cmp.Diff(s, back); diff != "" {
		t.Errorf("round trip changed the session (-want +got):\n%s", diff)
	}
}

func TestSearchSessionMapperEmptyFields(t *testing.T) {
	m := NewSearchSessionMapper()
	s := store.NewSearchSession("t", store.StandpointOpposing, store.StrategySuggestion)

	row, err := m.ToModel(s)
	require.NoError(t, err)
	assert.Nil(t, row.ClarificationState)

	back, err := m.ToStore(row)
	require.NoError(t, err)
	assert.Nil(t, back.ClarificationState)
	assert.Nil(t, back.LastRetrievedEvidence)
	assert.Equal(t, []string{}, back.DialogueHistory)
}

func TestSearchSessionMapperNil(t *testing.T) {
	m := NewSearchSessionMapper()

	row, err := m.ToModel(nil)
	assert.NoError(t, err)
	assert.Nil(t, row)
}
