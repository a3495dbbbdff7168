// Package client implements the front-end chat API consumer: it sends chat
// turns with auth attached, normalizes the response shapes the backends
// return, and posts analytics best-effort.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/mejaggi/nexus-answers-56/internal/auth"
	"github.com/mejaggi/nexus-answers-56/internal/chat"
	"github.com/mejaggi/nexus-answers-56/internal/envelope"
	"github.com/mejaggi/nexus-answers-56/internal/session"
)

// ErrKind classifies a failed chat call for the UI layer.
type ErrKind string

const (
	ErrKindRateLimit ErrKind = "rate_limit"
	ErrKindAuth      ErrKind = "auth"
	ErrKindAPI       ErrKind = "api"
	ErrKindParse     ErrKind = "parse"
)

// Error is a chat API failure surfaced to the caller. Nothing is retried;
// the user must resend.
type Error struct {
	Kind       ErrKind
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("chat request failed (%s): %s", e.Kind, e.Message)
}

// Client talks to the chat and analytics endpoints on behalf of the UI.
type Client struct {
	chatEndpoint      string
	analyticsEndpoint string
	apiKey            string

	auth          *auth.Client
	conversations *session.ConversationStore
	httpClient    *http.Client
}

func New(chatEndpoint, analyticsEndpoint, apiKey string, authClient *auth.Client, conversations *session.ConversationStore) *Client {
	return &Client{
		chatEndpoint:      chatEndpoint,
		analyticsEndpoint: analyticsEndpoint,
		apiKey:            apiKey,
		auth:              authClient,
		conversations:     conversations,
		httpClient:        &http.Client{},
	}
}

type chatWireRequest struct {
	chat.Request
	UserQuery string `json:"user_query,omitempty"`
}

// SendChatMessage refreshes the session if needed, derives the user query
// from the last message, and normalizes whatever shape the backend returns
// into the canonical response.
func (c *Client) SendChatMessage(ctx context.Context, req chat.Request) (*chat.Response, error) {
	sess, err := c.auth.RefreshSession(ctx)
	if err != nil {
		return nil, &Error{Kind: ErrKindAuth, Message: err.Error()}
	}
	if sess == nil {
		return nil, &Error{Kind: ErrKindAuth, Message: "authentication required"}
	}

	if req.SessionID == "" {
		req.SessionID = c.conversations.Resolve()
	}

	wire := chatWireRequest{Request: req}
	if len(req.Messages) > 0 {
		wire.UserQuery = req.Messages[len(req.Messages)-1].Content
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+sess.Token)
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: ErrKindAPI, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: ErrKindAPI, Message: err.Error()}
	}

	return c.normalize(resp.StatusCode, respBody, req)
}

func (c *Client) normalize(transportStatus int, payload []byte, req chat.Request) (*chat.Response, error) {
	res, err := envelope.Normalize(transportStatus, payload)
	if err != nil {
		return nil, &Error{Kind: ErrKindParse, Message: err.Error(), StatusCode: transportStatus}
	}

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		msg := res.ErrorMessage()
		if msg == "" {
			msg = "rate limit exceeded"
		}
		return nil, &Error{Kind: ErrKindRateLimit, Message: msg, StatusCode: res.StatusCode}
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		msg := res.ErrorMessage()
		if msg == "" {
			msg = "authentication required"
		}
		return nil, &Error{Kind: ErrKindAuth, Message: msg, StatusCode: res.StatusCode}
	case res.StatusCode < 200 || res.StatusCode >= 300:
		msg := res.ErrorMessage()
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return nil, &Error{Kind: ErrKindAPI, Message: msg, StatusCode: res.StatusCode}
	}

	if msg := res.Str("error"); msg != "" {
		return nil, &Error{Kind: ErrKindAPI, Message: msg, StatusCode: res.StatusCode}
	}

	content := firstNonEmpty(res.Str("content"), res.Str("response"), res.Str("message"))
	if content == "" {
		return nil, &Error{Kind: ErrKindAPI, Message: "response carried no content", StatusCode: res.StatusCode}
	}

	out := &chat.Response{Content: content}
	if !res.Decode("analytics", &out.Analytics) || out.Analytics.SessionID == "" {
		out.Analytics = chat.ZeroAnalytics(req.SessionID, req.Department, false)
	}
	res.Decode("sources", &out.Sources)
	return out, nil
}

// SaveAnalytics posts a record to the analytics endpoint. All failures are
// logged and swallowed; analytics persistence must never block or fail the
// chat flow.
func (c *Client) SaveAnalytics(ctx context.Context, rec chat.AnalyticsMetadata) {
	payload, err := json.Marshal(rec)
	if err != nil {
		log.WithError(err).Debug("Failed to marshal analytics record")
		return
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.analyticsEndpoint, bytes.NewReader(payload))
	if err != nil {
		log.WithError(err).Debug("Failed to create analytics request")
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if sess, _ := c.auth.RefreshSession(ctx); sess != nil {
		httpReq.Header.Set("Authorization", "Bearer "+sess.Token)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.WithError(err).Debug("Analytics save failed (ignored)")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.WithField("status", resp.StatusCode).Debug("Analytics save rejected (ignored)")
	}
}

// FetchAnalytics retrieves stored analytics records and feedback from the
// analytics endpoint for client-side aggregation.
func (c *Client) FetchAnalytics(ctx context.Context) ([]chat.AnalyticsMetadata, []chat.FeedbackRecord, error) {
	sess, err := c.auth.RefreshSession(ctx)
	if err != nil {
		return nil, nil, &Error{Kind: ErrKindAuth, Message: err.Error()}
	}
	if sess == nil {
		return nil, nil, &Error{Kind: ErrKindAuth, Message: "authentication required"}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.analyticsEndpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create analytics request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+sess.Token)
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, &Error{Kind: ErrKindAPI, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &Error{Kind: ErrKindAPI, Message: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, &Error{Kind: ErrKindAPI, Message: string(respBody), StatusCode: resp.StatusCode}
	}

	var decoded struct {
		Records  []chat.AnalyticsMetadata `json:"records"`
		Feedback []chat.FeedbackRecord    `json:"feedback"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, nil, &Error{Kind: ErrKindParse, Message: err.Error(), StatusCode: resp.StatusCode}
	}
	return decoded.Records, decoded.Feedback, nil
}

// NewConversation clears the cached conversation id so the next turn starts
// a fresh session.
func (c *Client) NewConversation() {
	c.conversations.Reset()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
