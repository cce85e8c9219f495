package evidence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"persuasive-dialogue-be/pkg/store"
)

// ErrRetrievalFailed marks every failure to obtain evidence from the backend
var ErrRetrievalFailed = errors.New("retrieval failed")

const DefaultTimeout = 10 * time.Second

// SearchRequest is the evidence backend request body
type SearchRequest struct {
	Query       string `json:"query"`
	TopK        int    `json:"topK"`
	SnippetSize int    `json:"snippetSize"`
}

type searchReference struct {
	DocumentID   string `json:"documentId"`
	DocumentName string `json:"documentName"`
	PageNumbers  []int  `json:"pageNumbers"`
}

type searchSnippet struct {
	Content    string           `json:"content"`
	Score      float64          `json:"score"`
	Reference  *searchReference `json:"reference,omitempty"`
	Standpoint string           `json:"standpoint,omitempty"`
}

type searchResponse struct {
	Snippets []searchSnippet `json:"snippets"`
}

// Backend is the evidence-search service as seen by the retriever
type Backend interface {
	Search(ctx context.Context, req SearchRequest) ([]store.Evidence, error)
}

// Client calls the evidence-search backend over HTTP
type Client struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

var _ Backend = &Client{}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
	}
}

// Search posts the request and maps snippets to evidence, keeping backend order.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]store.Evidence, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrRetrievalFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/search", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrRetrievalFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrRetrievalFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrRetrievalFailed, resp.StatusCode, truncate(string(body), 200))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", ErrRetrievalFailed, err)
	}

	out := make([]store.Evidence, 0, len(parsed.Snippets))
	for _, s := range parsed.Snippets {
		out = append(out, toEvidence(s))
	}
	return out, nil
}

func toEvidence(s searchSnippet) store.Evidence {
	ev := store.Evidence{
		Content: s.Content,
		Score:   s.Score,
	}
	if s.Reference != nil {
		ev.SourceRef = &store.SourceRef{
			DocumentID:   s.Reference.DocumentID,
			DocumentName: s.Reference.DocumentName,
			PageNumbers:  s.Reference.PageNumbers,
		}
	}
	// Unknown tags are treated as untagged
	if tag := store.Standpoint(strings.ToLower(strings.TrimSpace(s.Standpoint))); tag.Valid() {
		ev.StandpointTag = &tag
	}
	return ev
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
