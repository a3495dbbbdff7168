package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mejaggi/nexus-answers-56/internal/analytics"
	"github.com/mejaggi/nexus-answers-56/internal/config"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the usage dashboard summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			chatClient, _ := buildClient(cfg)

			records, feedback, err := chatClient.FetchAnalytics(cmd.Context())
			if err != nil {
				return err
			}

			summary := analytics.Aggregate(records, feedback)
			printSummary(summary)
			return nil
		},
	}
}

func printSummary(s analytics.Summary) {
	fmt.Printf("Messages:        %d\n", s.TotalMessages)
	fmt.Printf("Tokens:          %d in / %d out / %d total\n", s.InputTokens, s.OutputTokens, s.TotalTokens)
	fmt.Printf("Avg latency:     %.0f ms\n", s.AvgExecutionMs)
	fmt.Printf("Sessions:        %d\n", s.UniqueSessions)
	fmt.Printf("Feedback:        %d likes / %d dislikes\n", s.Likes, s.Dislikes)

	if len(s.ByDepartment) > 0 {
		fmt.Println("\nBy department:")
		for _, dep := range sortedKeys(s.ByDepartment) {
			fmt.Printf("  %-12s %d\n", dep, s.ByDepartment[dep])
		}
	}

	if len(s.ByDay) > 0 {
		fmt.Println("\nBy day:")
		days := make([]string, 0, len(s.ByDay))
		for d := range s.ByDay {
			days = append(days, d)
		}
		sort.Strings(days)
		for _, d := range days {
			b := s.ByDay[d]
			fmt.Printf("  %s  %d messages, %d tokens\n", d, b.Messages, b.Tokens)
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
