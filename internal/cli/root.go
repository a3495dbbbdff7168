// Package cli wires the assistant's cobra commands: the edge server and the
// terminal front end that consumes it.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mejaggi/nexus-answers-56/internal/auth"
	"github.com/mejaggi/nexus-answers-56/internal/client"
	"github.com/mejaggi/nexus-answers-56/internal/config"
	"github.com/mejaggi/nexus-answers-56/internal/session"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "assistant",
		Short: "Department-scoped enterprise chat assistant",
		Long: "Nexus Answers: an enterprise chat assistant with pluggable LLM backends,\n" +
			"department-scoped prompts and lightweight usage analytics.",
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newLoginCmd(),
		newSignupCmd(),
		newLogoutCmd(),
		newAskCmd(),
		newStatsCmd(),
	)
	return root
}

// buildClient assembles the client-side stack from configuration: session
// file store, auth client and chat client.
func buildClient(cfg *config.Config) (*client.Client, *auth.Client) {
	sessions := session.NewFileStore(cfg.SessionFile)
	authClient := auth.NewClient(cfg.AuthEndpoint, sessions)
	chatClient := client.New(cfg.ChatEndpoint, cfg.AnalyticsEndpoint, cfg.UpstreamAPIKey, authClient, session.NewConversationStore())
	return chatClient, authClient
}
