package evidence

import (
	"context"
	"fmt"

	"persuasive-dialogue-be/internal/pkg/logger"
	"persuasive-dialogue-be/pkg/events"
	"persuasive-dialogue-be/pkg/store"
)

const logModule = "Retriever"

// Bounds of the retrieval configuration surface
const (
	MinTopK        = 1
	MaxTopK        = 50
	MinSnippetSize = 512
	MaxSnippetSize = 4096
)

// Config is the retrieval configuration surface
type Config struct {
	TopK               int     `json:"top_k" validate:"min=1,max=50"`
	SnippetSize        int     `json:"snippet_size" validate:"min=512,max=4096"`
	MinSimilarityScore float64 `json:"min_similarity_score" validate:"min=0,max=1"`
	WarnThreshold      float64 `json:"warn_threshold" validate:"min=0,max=1"`
	EnableScoreFilter  bool    `json:"enable_score_filter"`
}

func DefaultConfig() Config {
	return Config{
		TopK:               5,
		SnippetSize:        1024,
		MinSimilarityScore: 0.7,
		WarnThreshold:      0.8,
		EnableScoreFilter:  true,
	}
}

// Retriever fetches evidence for a session and narrows it to the session standpoint
type Retriever struct {
	backend   Backend
	config    Config
	logger    logger.ILogger
	publisher events.Publisher
}

func NewRetriever(backend Backend, config Config, log logger.ILogger, publisher events.Publisher) *Retriever {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Retriever{
		backend:   backend,
		config:    config,
		logger:    log,
		publisher: publisher,
	}
}

// Config returns the retriever's configuration
func (r *Retriever) Config() Config {
	return r.config
}

// EnhanceQuery prefixes the user query with the session topic
func EnhanceQuery(topic, query string) string {
	return fmt.Sprintf("%s: %s", topic, query)
}

// Retrieve runs one evidence search. Backend failures are returned wrapped in
// ErrRetrievalFailed; low-confidence results only produce a warning.
func (r *Retriever) Retrieve(ctx context.Context, query string, session *store.SearchSession, topK, snippetSize int) ([]store.Evidence, error) {
	if r.backend == nil {
		return nil, fmt.Errorf("%w: no evidence backend configured", ErrRetrievalFailed)
	}

	enhanced := EnhanceQuery(session.Topic, query)

	r.logger.Debug(logModule, "Searching evidence", map[string]interface{}{
		"query":        enhanced,
		"top_k":        topK,
		"snippet_size": snippetSize,
	})

	snippets, err := r.backend.Search(ctx, SearchRequest{
		Query:       enhanced,
		TopK:        topK,
		SnippetSize: snippetSize,
	})
	if err != nil {
		return nil, err
	}
	received := len(snippets)

	if r.config.EnableScoreFilter {
		snippets = FilterByScore(snippets, r.config.MinSimilarityScore)
		r.checkConfidence(ctx, session, snippets)
	}

	snippets = FilterByStandpoint(snippets, session.Standpoint)

	r.logger.Info(logModule, "Evidence retrieved", map[string]interface{}{
		"conversation_id": session.ID.String(),
		"received":        received,
		"kept":            len(snippets),
		"standpoint":      string(session.Standpoint),
	})

	return snippets, nil
}

func (r *Retriever) checkConfidence(ctx context.Context, session *store.SearchSession, snippets []store.Evidence) {
	best := BestScore(snippets)
	if best >= r.config.WarnThreshold {
		return
	}

	details := map[string]interface{}{
		"conversation_id": session.ID.String(),
		"best_score":      best,
		"warn_threshold":  r.config.WarnThreshold,
		"count":           len(snippets),
	}
	r.logger.Warn(logModule, "Low confidence evidence", details)

	if err := r.publisher.Publish(context.WithoutCancel(ctx), events.New(events.TypeRetrievalLowConfidence, details)); err != nil {
		r.logger.Warn(logModule, "Failed to publish low confidence event", map[string]interface{}{"error": err.Error()})
	}
}
