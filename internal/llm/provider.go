// Package llm abstracts the language model calls the pipeline makes:
// signal extraction and adversarial fact-checking. Both go through the
// same Provider interface so tests can script responses.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Request is one JSON-mode chat completion
type Request struct {
	// System frames the model's role
	System string

	// Prompt is the user message
	Prompt string

	// Model overrides the configured default when set
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Response is the raw model output
type Response struct {
	Content    string
	Model      string
	TokensUsed int
}

// Provider is a language model backend. Implementations must honor the
// context deadline and return JSON object content for JSON-mode requests.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Config holds provider configuration
type Config struct {
	// Provider name: currently "openai" (or an OpenAI-compatible
	// endpoint via BaseURL)
	Provider string

	// Model name
	Model string

	// APIKey is required for hosted providers
	APIKey string

	// BaseURL points at a custom OpenAI-compatible endpoint
	BaseURL string

	// Timeout per request, seconds
	Timeout int

	// MaxTokens default for response generation
	MaxTokens int

	// RequestsPerSec and Burst bound the call rate so per-candidate
	// fan-out cannot hammer the API
	RequestsPerSec float64
	Burst          int
}

// NewProvider creates a provider from configuration. An empty provider
// name disables LLM stages and returns nil without error.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", cfg.Provider)
	}
}
