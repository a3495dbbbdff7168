package cli

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mejaggi/nexus-answers-56/internal/auth"
	"github.com/mejaggi/nexus-answers-56/internal/config"
)

func newLoginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store a local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			_, authClient := buildClient(cfg)

			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}

			sess, err := authClient.Login(cmd.Context(), auth.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s\n", sess.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newSignupCmd() *cobra.Command {
	var email, name, department string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and store a local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			_, authClient := buildClient(cfg)

			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}

			sess, err := authClient.Signup(cmd.Context(), auth.Credentials{
				Email:      email,
				Password:   password,
				Name:       name,
				Department: department,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Account created for %s\n", sess.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&department, "department", "d", "", "home department")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			_, authClient := buildClient(cfg)

			if err := authClient.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}
