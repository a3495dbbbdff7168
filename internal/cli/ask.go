package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mejaggi/nexus-answers-56/internal/analytics"
	"github.com/mejaggi/nexus-answers-56/internal/chat"
	"github.com/mejaggi/nexus-answers-56/internal/config"
)

// chatSender is the slice of the chat client the ask command uses, kept as
// an interface so tests can stub the network.
type chatSender interface {
	SendChatMessage(ctx context.Context, req chat.Request) (*chat.Response, error)
	SaveAnalytics(ctx context.Context, rec chat.AnalyticsMetadata)
}

func newAskCmd() *cobra.Command {
	var department, locale, ragMode string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the assistant a question",
		Long: "Ask a single question, or start an interactive conversation when no\n" +
			"question is given. Interactive mode keeps the transcript and per-turn\n" +
			"analytics for the lifetime of the session.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if unset := cfg.Validate(); len(unset) > 0 {
				return fmt.Errorf("configuration incomplete, set: %s", strings.Join(unset, ", "))
			}

			chatClient, _ := buildClient(cfg)

			if len(args) > 0 {
				return askOnce(cmd, chatClient, department, locale, ragMode, strings.Join(args, " "))
			}
			return askInteractive(cmd, chatClient, department, locale, ragMode)
		},
	}

	cmd.Flags().StringVarP(&department, "department", "d", chat.DepartmentGeneral, "department scope (HR, Finance, IT, Operations, General)")
	cmd.Flags().StringVarP(&locale, "locale", "l", "en", "response locale")
	cmd.Flags().StringVar(&ragMode, "rag", "", "RAG mode tag passed through to analytics")
	return cmd
}

func askOnce(cmd *cobra.Command, c chatSender, department, locale, ragMode, question string) error {
	resp, err := c.SendChatMessage(cmd.Context(), chat.Request{
		Messages:   []chat.Message{{Role: chat.RoleUser, Content: question}},
		Department: department,
		Locale:     locale,
		RAGMode:    ragMode,
	})
	if err != nil {
		return err
	}

	printResponse(resp)
	c.SaveAnalytics(cmd.Context(), resp.Analytics)
	return nil
}

func askInteractive(cmd *cobra.Command, c chatSender, department, locale, ragMode string) error {
	fmt.Println("Interactive mode. Type a question, or 'exit' to quit.")

	recorder := analytics.NewRecorder()
	var history []chat.Message

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		history = append(history, chat.Message{Role: chat.RoleUser, Content: line})
		resp, err := c.SendChatMessage(cmd.Context(), chat.Request{
			Messages:   history,
			Department: department,
			Locale:     locale,
			RAGMode:    ragMode,
		})
		if err != nil {
			// Failures are terminal for the turn; drop the unanswered
			// message so a resend starts clean.
			history = history[:len(history)-1]
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		history = append(history, chat.Message{Role: chat.RoleAssistant, Content: resp.Content})
		printResponse(resp)

		recorder.Record(resp.Analytics)
		c.SaveAnalytics(cmd.Context(), resp.Analytics)
	}

	summary := recorder.Summarize()
	if summary.TotalMessages > 0 {
		fmt.Printf("\nSession: %d messages, %d tokens, avg %.0f ms\n",
			summary.TotalMessages, summary.TotalTokens, summary.AvgExecutionMs)
	}
	return scanner.Err()
}

func printResponse(resp *chat.Response) {
	fmt.Println(resp.Content)
	if len(resp.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, s := range resp.Sources {
			if s.Reference != "" {
				fmt.Printf("  - %s (%s, %s)\n", s.Title, s.Type, s.Reference)
			} else {
				fmt.Printf("  - %s (%s)\n", s.Title, s.Type)
			}
		}
	}
}
