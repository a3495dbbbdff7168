// Package core implements the chat pipeline shared by every upstream
// integration: prompt selection, token accounting, forwarding, error mapping
// and source attachment.
package core

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mejaggi/nexus-answers-56/internal/chat"
	"github.com/mejaggi/nexus-answers-56/internal/provider"
	"github.com/mejaggi/nexus-answers-56/internal/session"
)

// Fixed user-facing messages for mapped upstream failures.
const (
	MsgRateLimited      = "Rate limits exceeded, please try again later."
	MsgCreditsExhausted = "AI service credits are exhausted, please contact your administrator."
	MsgAccessDenied     = "Access to the AI service was denied."
	MsgMissingAPIKey    = "The upstream API key is not configured."
)

// ChatError is a failed chat turn mapped onto the wire error contract.
// Analytics is nil for rate-limit rejections and a zeroed error-flagged
// record otherwise.
type ChatError struct {
	StatusCode int
	Message    string
	Analytics  *chat.AnalyticsMetadata
}

func (e *ChatError) Error() string {
	return e.Message
}

// Service runs chat requests through the configured upstream provider.
type Service struct {
	provider provider.Provider
	model    string
}

func NewService(p provider.Provider, model string) *Service {
	return &Service{provider: p, model: model}
}

// HandleChat executes one chat turn. Every failure is terminal for the
// turn; nothing is retried.
func (s *Service) HandleChat(ctx context.Context, req chat.Request) (*chat.Response, *ChatError) {
	start := time.Now()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = session.NewConversationID()
	}

	systemPrompt := chat.SystemPrompt(req.Department)

	var concat strings.Builder
	for _, m := range req.Messages {
		concat.WriteString(m.Content)
	}
	concat.WriteString(systemPrompt)
	inputTokens := chat.EstimateTokens(concat.String())

	result, err := s.provider.Forward(ctx, provider.Request{
		SystemPrompt: systemPrompt,
		Messages:     req.Messages,
		Model:        s.model,
	})
	if err != nil {
		return nil, s.mapError(err, sessionID, req.Department)
	}

	outputTokens := chat.EstimateTokens(result.Content)
	totalTokens := inputTokens + outputTokens

	// Provider-reported usage wins over the crude estimate when present.
	if result.Usage != nil && result.Usage.TotalTokens > 0 {
		inputTokens = result.Usage.InputTokens
		outputTokens = result.Usage.OutputTokens
		totalTokens = result.Usage.TotalTokens
	}

	sources := result.Sources
	if sources == nil {
		sources = chat.CannedSources(req.Department)
	}

	return &chat.Response{
		Content: result.Content,
		Analytics: chat.AnalyticsMetadata{
			SessionID:       sessionID,
			ExecutionTimeMs: time.Since(start).Milliseconds(),
			InvocationCount: 1,
			InputTokens:     inputTokens,
			OutputTokens:    outputTokens,
			TotalTokens:     totalTokens,
			Model:           s.model,
			Department:      req.Department,
			Timestamp:       time.Now().Format(time.RFC3339),
			Locale:          req.Locale,
			RAGMode:         req.RAGMode,
		},
		Sources: sources,
	}, nil
}

func (s *Service) mapError(err error, sessionID, department string) *ChatError {
	errAnalytics := func() *chat.AnalyticsMetadata {
		a := chat.ZeroAnalytics(sessionID, department, true)
		return &a
	}

	if errors.Is(err, provider.ErrMissingAPIKey) {
		return &ChatError{
			StatusCode: http.StatusInternalServerError,
			Message:    MsgMissingAPIKey,
			Analytics:  errAnalytics(),
		}
	}

	var upstream *provider.UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.StatusCode {
		case http.StatusTooManyRequests:
			return &ChatError{
				StatusCode: http.StatusTooManyRequests,
				Message:    MsgRateLimited,
				Analytics:  nil,
			}
		case http.StatusPaymentRequired:
			return &ChatError{
				StatusCode: http.StatusPaymentRequired,
				Message:    MsgCreditsExhausted,
				Analytics:  errAnalytics(),
			}
		case http.StatusForbidden:
			return &ChatError{
				StatusCode: http.StatusForbidden,
				Message:    MsgAccessDenied,
				Analytics:  errAnalytics(),
			}
		default:
			return &ChatError{
				StatusCode: http.StatusInternalServerError,
				Message:    upstream.Message,
				Analytics:  errAnalytics(),
			}
		}
	}

	log.WithError(err).Error("Chat turn failed")
	return &ChatError{
		StatusCode: http.StatusInternalServerError,
		Message:    err.Error(),
		Analytics:  errAnalytics(),
	}
}
