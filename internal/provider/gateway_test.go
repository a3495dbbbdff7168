package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mejaggi/nexus-answers-56/internal/chat"
)

func gatewayRequestFixture() Request {
	return Request{
		SystemPrompt: "You are a test assistant.",
		Messages:     []chat.Message{{Role: chat.RoleUser, Content: "hello"}},
		Model:        "test-model",
	}
}

func TestGatewayForward(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key1" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"hi"}}],"usage":{"prompt_tokens":12,"completion_tokens":5,"total_tokens":17}}`)
	}))
	defer server.Close()

	g := NewGateway(server.URL, "key1", time.Second)
	result, err := g.Forward(context.Background(), gatewayRequestFixture())
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if result.Content != "hi" {
		t.Errorf("expected content hi, got %q", result.Content)
	}
	if result.Usage == nil || result.Usage.TotalTokens != 17 {
		t.Errorf("expected provider usage 17, got %+v", result.Usage)
	}
}

func TestGatewayRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"slow down"}}`)
	}))
	defer server.Close()

	g := NewGateway(server.URL, "key1", time.Second)
	_, err := g.Forward(context.Background(), gatewayRequestFixture())

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.StatusCode != http.StatusTooManyRequests || upstream.Message != "slow down" {
		t.Errorf("unexpected upstream error: %+v", upstream)
	}
}

func TestGatewayMissingAPIKey(t *testing.T) {
	g := NewGateway("http://127.0.0.1:1", "", time.Second)
	_, err := g.Forward(context.Background(), gatewayRequestFixture())
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey before any network call, got %v", err)
	}
}

func TestGatewaySystemPromptFirst(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody = make([]byte, r.ContentLength)
		r.Body.Read(gotBody)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer server.Close()

	g := NewGateway(server.URL, "key1", time.Second)
	if _, err := g.Forward(context.Background(), gatewayRequestFixture()); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	want := `{"model":"test-model","messages":[{"role":"system","content":"You are a test assistant."},{"role":"user","content":"hello"}]}`
	if string(gotBody) != want {
		t.Errorf("unexpected request body:\n got %s\nwant %s", gotBody, want)
	}
}
