package core

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mejaggi/nexus-answers-56/internal/chat"
	"github.com/mejaggi/nexus-answers-56/internal/provider"
)

type fakeProvider struct {
	result  *provider.Result
	err     error
	lastReq provider.Request
}

func (f *fakeProvider) Forward(ctx context.Context, req provider.Request) (*provider.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func hrRequest() chat.Request {
	return chat.Request{
		Messages:   []chat.Message{{Role: chat.RoleUser, Content: "What is the leave policy?"}},
		Department: chat.DepartmentHR,
		Locale:     "en",
	}
}

func TestHandleChatHappyPath(t *testing.T) {
	fake := &fakeProvider{result: &provider.Result{Content: "25 days of paid leave."}}
	svc := NewService(fake, "test-model")

	resp, cerr := svc.HandleChat(context.Background(), hrRequest())
	require.Nil(t, cerr)

	assert.NotEmpty(t, resp.Content)
	assert.Equal(t, chat.DepartmentHR, resp.Analytics.Department)
	assert.Equal(t, "test-model", resp.Analytics.Model)
	assert.Equal(t, 1, resp.Analytics.InvocationCount)
	assert.NotEmpty(t, resp.Analytics.SessionID)

	// Canned HR sources when the upstream supplies none.
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "Employee Handbook", resp.Sources[0].Title)

	// The HR prompt was selected, not the generic one.
	assert.Equal(t, chat.SystemPrompt(chat.DepartmentHR), fake.lastReq.SystemPrompt)
}

func TestHandleChatTokenAccounting(t *testing.T) {
	fake := &fakeProvider{result: &provider.Result{Content: "ok"}}
	svc := NewService(fake, "m")

	req := hrRequest()
	resp, cerr := svc.HandleChat(context.Background(), req)
	require.Nil(t, cerr)

	wantInput := chat.EstimateTokens(req.Messages[0].Content + chat.SystemPrompt(chat.DepartmentHR))
	assert.Equal(t, wantInput, resp.Analytics.InputTokens)
	assert.Equal(t, chat.EstimateTokens("ok"), resp.Analytics.OutputTokens)
	assert.Equal(t, resp.Analytics.InputTokens+resp.Analytics.OutputTokens, resp.Analytics.TotalTokens)
}

func TestHandleChatPrefersProviderUsage(t *testing.T) {
	fake := &fakeProvider{result: &provider.Result{
		Content: "ok",
		Usage:   &provider.Usage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150},
	}}
	svc := NewService(fake, "m")

	resp, cerr := svc.HandleChat(context.Background(), hrRequest())
	require.Nil(t, cerr)
	assert.Equal(t, 100, resp.Analytics.InputTokens)
	assert.Equal(t, 50, resp.Analytics.OutputTokens)
	assert.Equal(t, 150, resp.Analytics.TotalTokens)
}

func TestHandleChatUpstreamSourcesWin(t *testing.T) {
	fake := &fakeProvider{result: &provider.Result{
		Content: "ok",
		Sources: []chat.Source{{Title: "Upstream Doc", Type: "document"}},
	}}
	svc := NewService(fake, "m")

	resp, cerr := svc.HandleChat(context.Background(), hrRequest())
	require.Nil(t, cerr)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "Upstream Doc", resp.Sources[0].Title)
}

func TestHandleChatUnknownDepartment(t *testing.T) {
	fake := &fakeProvider{result: &provider.Result{Content: "ok"}}
	svc := NewService(fake, "m")

	resp, cerr := svc.HandleChat(context.Background(), chat.Request{
		Messages:   []chat.Message{{Role: chat.RoleUser, Content: "hi"}},
		Department: "Legal",
	})
	require.Nil(t, cerr)
	assert.Empty(t, resp.Sources)
	assert.Equal(t, chat.SystemPrompt("unknown"), fake.lastReq.SystemPrompt)
}

func TestHandleChatRateLimit(t *testing.T) {
	fake := &fakeProvider{err: &provider.UpstreamError{StatusCode: http.StatusTooManyRequests, Message: "throttled"}}
	svc := NewService(fake, "m")

	_, cerr := svc.HandleChat(context.Background(), hrRequest())
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusTooManyRequests, cerr.StatusCode)
	assert.Equal(t, MsgRateLimited, cerr.Message)
	assert.Nil(t, cerr.Analytics, "rate limit errors carry no analytics")
}

func TestHandleChatErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		upstream   int
		wantStatus int
		wantMsg    string
	}{
		{"payment", http.StatusPaymentRequired, http.StatusPaymentRequired, MsgCreditsExhausted},
		{"forbidden", http.StatusForbidden, http.StatusForbidden, MsgAccessDenied},
		{"other", http.StatusBadGateway, http.StatusInternalServerError, "upstream exploded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeProvider{err: &provider.UpstreamError{StatusCode: tc.upstream, Message: "upstream exploded"}}
			svc := NewService(fake, "m")

			_, cerr := svc.HandleChat(context.Background(), hrRequest())
			require.NotNil(t, cerr)
			assert.Equal(t, tc.wantStatus, cerr.StatusCode)
			assert.Equal(t, tc.wantMsg, cerr.Message)
			require.NotNil(t, cerr.Analytics)
			assert.True(t, cerr.Analytics.Error)
			assert.Equal(t, chat.DepartmentHR, cerr.Analytics.Department)
		})
	}
}

func TestHandleChatMissingCredentials(t *testing.T) {
	fake := &fakeProvider{err: provider.ErrMissingAPIKey}
	svc := NewService(fake, "m")

	_, cerr := svc.HandleChat(context.Background(), hrRequest())
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusInternalServerError, cerr.StatusCode)
	assert.Equal(t, MsgMissingAPIKey, cerr.Message)
}

func TestHandleChatKeepsCallerSessionID(t *testing.T) {
	fake := &fakeProvider{result: &provider.Result{Content: "ok"}}
	svc := NewService(fake, "m")

	req := hrRequest()
	req.SessionID = "sess_123_abc"
	resp, cerr := svc.HandleChat(context.Background(), req)
	require.Nil(t, cerr)
	assert.Equal(t, "sess_123_abc", resp.Analytics.SessionID)
}
