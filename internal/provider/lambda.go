package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mejaggi/nexus-answers-56/internal/chat"
	"github.com/mejaggi/nexus-answers-56/internal/envelope"
)

// Lambda forwards to an AWS API-Gateway/Lambda deployment authenticated
// with an x-api-key header. The same adapter serves both integration
// styles: a direct JSON response, or the proxy integration whose payload
// arrives wrapped in a {statusCode, body} envelope.
type Lambda struct {
	endpoint   string
	apiKey     string
	region     string
	proxy      bool
	httpClient *http.Client
}

func NewLambda(endpoint, apiKey, region string, proxy bool, timeout time.Duration) *Lambda {
	return &Lambda{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		region:   region,
		proxy:    proxy,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type lambdaRequest struct {
	SystemPrompt string         `json:"system_prompt"`
	Messages     []chat.Message `json:"messages"`
	Model        string         `json:"model,omitempty"`
}

func (l *Lambda) Forward(ctx context.Context, req Request) (*Result, error) {
	if l.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body, err := json.Marshal(lambdaRequest{
		SystemPrompt: req.SystemPrompt,
		Messages:     req.Messages,
		Model:        req.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lambda request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create lambda request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", l.apiKey)
	if l.region != "" {
		httpReq.Header.Set("x-region", l.region)
	}

	resp, err := l.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("lambda request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read lambda response: %w", err)
	}

	res, err := envelope.Normalize(resp.StatusCode, respBody)
	if err != nil {
		return nil, fmt.Errorf("failed to decode lambda response: %w", err)
	}

	// For the proxy integration the inner statusCode is authoritative.
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := res.ErrorMessage()
		if msg == "" {
			msg = string(respBody)
		}
		return nil, &UpstreamError{StatusCode: res.StatusCode, Message: msg}
	}
	// On a 2xx only an explicit error field signals failure; a bare message
	// field is an answer-text candidate, not an error.
	if msg := res.Str("error"); msg != "" {
		return nil, &UpstreamError{StatusCode: http.StatusInternalServerError, Message: msg}
	}

	content := firstNonEmpty(res.Str("content"), res.Str("response"), res.Str("message"))
	if content == "" {
		return nil, fmt.Errorf("lambda response carried no content: %s", string(respBody))
	}

	result := &Result{Content: content}

	var sources []chat.Source
	if res.Decode("sources", &sources) && len(sources) > 0 {
		result.Sources = sources
	}

	var usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	}
	if res.Decode("usage", &usage) && usage.TotalTokens > 0 {
		result.Usage = &Usage{
			InputTokens:  usage.InputTokens,
			OutputTokens: usage.OutputTokens,
			TotalTokens:  usage.TotalTokens,
		}
	}
	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
