// Package analytics reduces per-turn usage records and feedback ratings
// into the dashboard summary. Aggregation is a pure function of its inputs
// and can be re-derived at any time.
package analytics

import (
	"fmt"
	"time"

	"github.com/mejaggi/nexus-answers-56/internal/chat"
)

// DailyBucket counts one calendar day of traffic.
type DailyBucket struct {
	Messages int `json:"messages"`
	Tokens   int `json:"tokens"`
}

// Summary is the aggregated dashboard view.
type Summary struct {
	TotalMessages   int     `json:"total_messages"`
	InputTokens     int     `json:"input_tokens"`
	OutputTokens    int     `json:"output_tokens"`
	TotalTokens     int     `json:"total_tokens"`
	AvgExecutionMs  float64 `json:"avg_execution_ms"`
	UniqueSessions  int     `json:"unique_sessions"`

	ByDepartment map[string]int         `json:"by_department"`
	ByHour       map[string]int         `json:"by_hour"`
	ByDay        map[string]DailyBucket `json:"by_day"`

	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// Aggregate folds analytics records and feedback into a Summary. Hourly
// buckets use local time ("HH:00"); daily buckets use the ISO calendar
// date. Records with unparsable timestamps still count toward the totals
// but are skipped by the time histograms.
func Aggregate(records []chat.AnalyticsMetadata, feedback []chat.FeedbackRecord) Summary {
	summary := Summary{
		ByDepartment: map[string]int{},
		ByHour:       map[string]int{},
		ByDay:        map[string]DailyBucket{},
	}

	sessions := map[string]struct{}{}
	var execTotal int64

	for _, rec := range records {
		summary.TotalMessages++
		summary.InputTokens += rec.InputTokens
		summary.OutputTokens += rec.OutputTokens
		summary.TotalTokens += rec.TotalTokens
		execTotal += rec.ExecutionTimeMs

		if rec.SessionID != "" {
			sessions[rec.SessionID] = struct{}{}
		}
		if rec.Department != "" {
			summary.ByDepartment[rec.Department]++
		}

		ts, err := time.Parse(time.RFC3339, rec.Timestamp)
		if err != nil {
			continue
		}
		local := ts.Local()

		summary.ByHour[fmt.Sprintf("%02d:00", local.Hour())]++

		day := local.Format("2006-01-02")
		bucket := summary.ByDay[day]
		bucket.Messages++
		bucket.Tokens += rec.TotalTokens
		summary.ByDay[day] = bucket
	}

	if summary.TotalMessages > 0 {
		summary.AvgExecutionMs = float64(execTotal) / float64(summary.TotalMessages)
	}
	summary.UniqueSessions = len(sessions)

	for _, fb := range feedback {
		switch fb.Rating {
		case chat.RatingLike:
			summary.Likes++
		case chat.RatingDislike:
			summary.Dislikes++
		}
	}

	return summary
}
