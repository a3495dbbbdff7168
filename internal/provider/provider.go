// Package provider abstracts the upstream LLM integrations behind a single
// Forward call. Adapters differ only in auth-header construction and
// response unwrapping; prompt selection, token accounting and error mapping
// live in the chat pipeline.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mejaggi/nexus-answers-56/internal/chat"
	"github.com/mejaggi/nexus-answers-56/internal/config"
)

// ErrMissingAPIKey is returned when an adapter requires a credential that
// was never configured. Detected at call time, before any network traffic.
var ErrMissingAPIKey = errors.New("upstream API key is not configured")

const defaultTimeout = 60 * time.Second

// Request is the normalized upstream request: the resolved system prompt
// plus the conversation so far.
type Request struct {
	SystemPrompt string
	Messages     []chat.Message
	Model        string
}

// Usage is provider-reported token accounting. When present and non-zero it
// takes precedence over the pipeline's estimate.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Result is a successful upstream completion.
type Result struct {
	Content string
	Usage   *Usage
	// Sources is non-nil only when the upstream supplied its own citations,
	// which suppresses the canned per-department list.
	Sources []chat.Source
}

// UpstreamError is a non-OK upstream response. The pipeline maps its status
// code onto the client-facing error taxonomy.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error [%d]: %s", e.StatusCode, e.Message)
}

// Provider forwards a normalized request to one upstream integration.
type Provider interface {
	Forward(ctx context.Context, req Request) (*Result, error)
}

// New builds the provider selected by configuration.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.UpstreamProvider {
	case "gateway":
		return NewGateway(cfg.UpstreamURL, cfg.UpstreamAPIKey, defaultTimeout), nil
	case "lambda":
		return NewLambda(cfg.UpstreamURL, cfg.UpstreamAPIKey, cfg.UpstreamRegion, false, defaultTimeout), nil
	case "lambda-proxy":
		return NewLambda(cfg.UpstreamURL, cfg.UpstreamAPIKey, cfg.UpstreamRegion, true, defaultTimeout), nil
	case "gemini":
		return NewGemini(cfg.GeminiAPIKey, cfg.UpstreamModel)
	default:
		return nil, fmt.Errorf("unknown upstream provider %q", cfg.UpstreamProvider)
	}
}
