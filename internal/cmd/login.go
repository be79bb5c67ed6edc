package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gravitrone/clientdesk/internal/config"
	"github.com/gravitrone/clientdesk/internal/session"
)

const loginTimeout = 30 * time.Second

// RunInteractiveLogin prompts for email and password, signs in, and
// persists the session to the config file.
func RunInteractiveLogin(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	fmt.Fprint(out, "password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		return fmt.Errorf("password is required")
	}

	cfg, err := config.Read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		cfg = &config.Config{}
	}
	cfg.ApplyEnv()

	client := NewAPIClient(cfg)
	if _, err := client.Health(ctx); err != nil {
		return fmt.Errorf("backend %s unreachable: %w", BaseURL(cfg), err)
	}
	mgr := session.NewManager(client)
	profile, err := mgr.SignIn(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if profile.OrganizationID == "" {
		return errors.New("login failed: account is not a member of an organization")
	}

	tokens, _ := mgr.Tokens()
	if tokens.UserID != cfg.UserID {
		cfg.DefaultClientID = ""
	}
	storeSession(cfg, tokens, profile.OrganizationID)

	if cfg.DefaultClientID == "" {
		clients, err := client.ListClients(ctx, profile.OrganizationID)
		if err != nil {
			return fmt.Errorf("list clients: %w", err)
		}
		if len(clients) == 1 {
			cfg.DefaultClientID = clients[0].ID
		}
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(out, "logged in as %s\n", tokens.Email)
	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	return nil
}

// LoginCmd returns the `clientdesk login` command.
func LoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in to the ClientDesk backend",
		RunE: func(c *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(c.Context(), loginTimeout)
			defer cancel()
			return RunInteractiveLogin(ctx, c.InOrStdin(), c.OutOrStdout())
		},
	}
}

// LogoutCmd returns the `clientdesk logout` command. The local session is
// cleared even when the backend cannot be reached.
func LogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := config.Read()
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					fmt.Fprintln(c.OutOrStdout(), "not logged in")
					return nil
				}
				return err
			}
			cfg.ApplyEnv()

			if cfg.AccessToken != "" {
				mgr := session.NewManager(NewAPIClient(cfg))
				mgr.Restore(session.Tokens{AccessToken: cfg.AccessToken, UserID: cfg.UserID, Email: cfg.Email})
				ctx, cancel := context.WithTimeout(c.Context(), loginTimeout)
				defer cancel()
				if err := mgr.SignOut(ctx); err != nil {
					fmt.Fprintf(c.ErrOrStderr(), "warning: %v\n", err)
				}
			}

			cfg.ClearSession()
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintln(c.OutOrStdout(), "logged out")
			return nil
		},
	}
}
