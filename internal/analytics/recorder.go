package analytics

import (
	"sync"

	"github.com/mejaggi/nexus-answers-56/internal/chat"
)

// Recorder accumulates per-turn analytics and feedback for the lifetime of
// a UI session. Records are append-only in insertion order; feedback is an
// upsert keyed by message id, so resubmitting a rating replaces the earlier
// one.
type Recorder struct {
	mu       sync.Mutex
	records  []chat.AnalyticsMetadata
	feedback []chat.FeedbackRecord
	byMsgID  map[string]int
}

func NewRecorder() *Recorder {
	return &Recorder{byMsgID: map[string]int{}}
}

func (r *Recorder) Record(meta chat.AnalyticsMetadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, meta)
}

// SetFeedback records a rating for a message, replacing any earlier rating
// for the same id.
func (r *Recorder) SetFeedback(messageID, rating string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.byMsgID[messageID]; ok {
		r.feedback[i].Rating = rating
		return
	}
	r.byMsgID[messageID] = len(r.feedback)
	r.feedback = append(r.feedback, chat.FeedbackRecord{MessageID: messageID, Rating: rating})
}

// Records returns a copy of the accumulated analytics records.
func (r *Recorder) Records() []chat.AnalyticsMetadata {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]chat.AnalyticsMetadata, len(r.records))
	copy(out, r.records)
	return out
}

// Feedback returns a copy of the accumulated feedback records.
func (r *Recorder) Feedback() []chat.FeedbackRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]chat.FeedbackRecord, len(r.feedback))
	copy(out, r.feedback)
	return out
}

// Summarize aggregates the current state.
func (r *Recorder) Summarize() Summary {
	return Aggregate(r.Records(), r.Feedback())
}
