package factory

import (
	"fmt"

	"persuasive-dialogue-be/pkg/llm"
	"persuasive-dialogue-be/pkg/llm/huggingface"
	"persuasive-dialogue-be/pkg/llm/ollama"
	"persuasive-dialogue-be/pkg/llm/openai"
)

type Config struct {
	Provider string // "ollama", "huggingface", "openai", "none"
	Model    string
	BaseURL  string
	APIKey   string
}

// NewLLMProvider returns nil, nil for the "none" provider so the classifier
// runs on keyword rules alone.
func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return openai.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
