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
)

// Gateway forwards to a managed AI gateway speaking the OpenAI chat
// completions dialect with bearer authentication.
type Gateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewGateway(baseURL, apiKey string, timeout time.Duration) *Gateway {
	return &Gateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type gatewayMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type gatewayRequest struct {
	Model    string           `json:"model"`
	Messages []gatewayMessage `json:"messages"`
}

type gatewayResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type gatewayErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

func (g *Gateway) Forward(ctx context.Context, req Request) (*Result, error) {
	if g.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	msgs := make([]gatewayMessage, 0, len(req.Messages)+1)
	msgs = append(msgs, gatewayMessage{Role: "system", Content: req.SystemPrompt})
	for _, m := range req.Messages {
		msgs = append(msgs, gatewayMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(gatewayRequest{Model: req.Model, Messages: msgs})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gateway request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(respBody)
		var errResp gatewayErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			if errResp.Error.Message != "" {
				msg = errResp.Error.Message
			} else if errResp.Message != "" {
				msg = errResp.Message
			}
		}
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	var decoded gatewayResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response %q: %w", string(respBody), err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("gateway response contained no choices")
	}

	result := &Result{Content: decoded.Choices[0].Message.Content}
	if decoded.Usage != nil {
		result.Usage = &Usage{
			InputTokens:  decoded.Usage.PromptTokens,
			OutputTokens: decoded.Usage.CompletionTokens,
			TotalTokens:  decoded.Usage.TotalTokens,
		}
	}
	return result, nil
}
