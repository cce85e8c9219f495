package evidence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"persuasive-dialogue-be/internal/pkg/logger"
	"persuasive-dialogue-be/pkg/events"
	"persuasive-dialogue-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	snippets []store.Evidence
	err      error
	requests []SearchRequest
}

func (f *fakeBackend) Search(_ context.Context, req SearchRequest) ([]store.Evidence, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.snippets, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturePublisher) Publish(_ context.Context, e events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func newSession(standpoint store.Standpoint) *store.SearchSession {
	return store.NewSearchSession("phones in schools", standpoint, store.StrategySuggestion)
}

func TestRetrieveFiltersAndEnhancesQuery(t *testing.T) {
	backend := &fakeBackend{snippets: []store.Evidence{
		{Content: "pro", Score: 0.95, StandpointTag: tag(store.StandpointSupporting)},
		{Content: "weak", Score: 0.4},
		{Content: "con", Score: 0.9, StandpointTag: tag(store.StandpointOpposing)},
		{Content: "neutral", Score: 0.85},
	}}
	pub := &capturePublisher{}
	r := NewRetriever(backend, DefaultConfig(), logger.NewNopLogger(), pub)

	got, err := r.Retrieve(context.Background(), "do bans work?", newSession(store.StandpointSupporting), 7, 2048)
	require.NoError(t, err)

	assert.Equal(t, []string{"pro", "neutral"}, contents(got))
	require.Len(t, backend.requests, 1)
	assert.Equal(t, SearchRequest{Query: "phones in schools: do bans work?", TopK: 7, SnippetSize: 2048}, backend.requests[0])
	assert.Empty(t, pub.events)
}

func TestRetrieveWithoutScoreFilter(t *testing.T) {
	backend := &fakeBackend{snippets: []store.Evidence{{Content: "weak", Score: 0.1}}}
	cfg := DefaultConfig()
	cfg.EnableScoreFilter = false
	pub := &capturePublisher{}
	r := NewRetriever(backend, cfg, logger.NewNopLogger(), pub)

	got, err := r.Retrieve(context.Background(), "q", newSession(store.StandpointOpposing), 5, 1024)
	require.NoError(t, err)
	assert.Equal(t, []string{"weak"}, contents(got))
	assert.Empty(t, pub.events, "confidence is only checked when the score filter runs")
}

func TestRetrieveLowConfidenceWarnsOnly(t *testing.T) {
	backend := &fakeBackend{snippets: []store.Evidence{{Content: "meh", Score: 0.72}}}
	pub := &capturePublisher{}
	r := NewRetriever(backend, DefaultConfig(), logger.NewNopLogger(), pub)

	got, err := r.Retrieve(context.Background(), "q", newSession(store.StandpointSupporting), 5, 1024)
	require.NoError(t, err)
	assert.Equal(t, []string{"meh"}, contents(got))

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeRetrievalLowConfidence, pub.events[0].EventType())
	assert.Equal(t, 0.72, pub.events[0].Payload()["best_score"])
}

func TestRetrieveBackendFailure(t *testing.T) {
	backend := &fakeBackend{err: fmt.Errorf("%w: status 503", ErrRetrievalFailed)}
	r := NewRetriever(backend, DefaultConfig(), logger.NewNopLogger(), nil)

	got, err := r.Retrieve(context.Background(), "q", newSession(store.StandpointSupporting), 5, 1024)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, ErrRetrievalFailed))
}

func TestRetrieveWithoutBackend(t *testing.T) {
	r := NewRetriever(nil, DefaultConfig(), logger.NewNopLogger(), nil)

	_, err := r.Retrieve(context.Background(), "q", newSession(store.StandpointSupporting), 5, 1024)
	assert.ErrorIs(t, err, ErrRetrievalFailed)
}

func TestEnhanceQuery(t *testing.T) {
	assert.Equal(t, "climate policy: what about costs", EnhanceQuery("climate policy", "what about costs"))
}
