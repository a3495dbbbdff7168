package chat

import "time"

// Role of a chat message author.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Feedback ratings. At most one rating per message; a later submission
// overwrites the earlier one.
const (
	RatingLike    = "like"
	RatingDislike = "dislike"
)

type Message struct {
	ID        string    `json:"id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Feedback  string    `json:"feedback,omitempty"`
	Sources   []Source  `json:"sources,omitempty"`
}

// AnalyticsMetadata is the per-turn usage record attached to every chat
// response. Immutable once produced.
type AnalyticsMetadata struct {
	SessionID       string `json:"session_id"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	InvocationCount int    `json:"invocation_count"`
	InputTokens     int    `json:"input_tokens"`
	OutputTokens    int    `json:"output_tokens"`
	TotalTokens     int    `json:"total_tokens"`
	Model           string `json:"model"`
	Department      string `json:"department"`
	Timestamp       string `json:"timestamp"`
	Locale          string `json:"locale,omitempty"`
	RAGMode         string `json:"rag_mode,omitempty"`
	Error           bool   `json:"error,omitempty"`
}

// Source is a cited reference shown next to an answer.
type Source struct {
	Title     string `json:"title"`
	Type      string `json:"type"` // policy | document | link
	Reference string `json:"reference,omitempty"`
}

type FeedbackRecord struct {
	MessageID string `json:"message_id"`
	Rating    string `json:"rating"`
}

// Request is the wire shape accepted by the chat endpoint.
type Request struct {
	Messages   []Message `json:"messages"`
	Department string    `json:"department"`
	SessionID  string    `json:"session_id,omitempty"`
	Locale     string    `json:"locale,omitempty"`
	RAGMode    string    `json:"rag_mode,omitempty"`
}

// Response is the canonical chat result returned to callers.
type Response struct {
	Content   string            `json:"content"`
	Analytics AnalyticsMetadata `json:"analytics"`
	Sources   []Source          `json:"sources"`
}

// ErrorResponse is the wire shape of a failed chat call. Analytics is nil
// for rate-limit rejections and a zeroed error-flagged record otherwise.
type ErrorResponse struct {
	Error     string             `json:"error"`
	Analytics *AnalyticsMetadata `json:"analytics"`
}

// ZeroAnalytics builds an empty analytics record stamped with the current
// session context, used when the upstream supplied none or the turn failed.
func ZeroAnalytics(sessionID, department string, isError bool) AnalyticsMetadata {
	return AnalyticsMetadata{
		SessionID:  sessionID,
		Department: department,
		Timestamp:  time.Now().Format(time.RFC3339),
		Error:      isError,
	}
}
