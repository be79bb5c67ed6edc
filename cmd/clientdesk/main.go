package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gravitrone/clientdesk/internal/cmd"
	"github.com/gravitrone/clientdesk/internal/config"
	"github.com/gravitrone/clientdesk/internal/grid"
	"github.com/gravitrone/clientdesk/internal/locations"
	"github.com/gravitrone/clientdesk/internal/logging"
	"github.com/gravitrone/clientdesk/internal/realtime"
	"github.com/gravitrone/clientdesk/internal/ui"
)

func main() {
	root := &cobra.Command{
		Use:   "clientdesk",
		Short: "ClientDesk - insured locations editor",
		Long:  "ClientDesk CLI: edit a client's schedule of locations in a spreadsheet grid, import and export it.",
		RunE: func(c *cobra.Command, _ []string) error {
			return runTUI(c.Context())
		},
		PersistentPreRunE: cmd.ConsoleLogging,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	root.AddCommand(cmd.LoginCmd())
	root.AddCommand(cmd.LogoutCmd())
	root.AddCommand(cmd.LocationsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}

func runTUI(ctx context.Context) error {
	cfg, err := cmd.LoadConfig()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, config.ErrNoToken) {
			fmt.Println("not logged in. run 'clientdesk login' first.")
		}
		return err
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = config.DefaultLogFile()
	}
	closer, err := logging.Setup(cfg.LogLevel, logFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	env, err := cmd.Open(ctx, cfg)
	if err != nil {
		return err
	}
	scope, err := env.Scope()
	if err != nil {
		return err
	}

	store := env.Store()
	ctrl := grid.NewController(scope, env.Session, locations.Columns(), grid.WithUndoDepth(cfg.UndoDepth))
	opts := []ui.LocationsOption{
		ui.WithLoader(func(ctx context.Context) ([]grid.Row, error) {
			if err := env.Session.EnsureFresh(ctx); err != nil {
				return nil, err
			}
			return store.Load(ctx, scope)
		}),
		ui.WithRefresher(env.Session.EnsureFresh),
		ui.WithPageSize(cfg.PageSize),
	}

	feedCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if feed := subscribe(feedCtx, cfg, env, scope); feed != nil {
		defer feed.Close()
		opts = append(opts, ui.WithChangeSource(feed.Changes(store.RecordRow)))
	}

	model := ui.NewLocationsModel(ctrl, store, opts...)
	app := ui.NewApp(model, orgLabel(env), env.ClientName)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}

	if tokens, ok := env.Session.Tokens(); ok && tokens.AccessToken != cfg.AccessToken {
		cfg.AccessToken = tokens.AccessToken
		cfg.RefreshToken = tokens.RefreshToken
		cfg.ExpiresAt = tokens.ExpiresAt
		if err := cfg.Save(); err != nil {
			log.Warn().Err(err).Msg("could not persist refreshed session")
		}
	}
	return nil
}

// subscribe opens the realtime feed. The grid still works without it, so
// failures are only logged.
func subscribe(ctx context.Context, cfg *config.Config, env *cmd.Env, scope grid.Scope) *realtime.Feed {
	sub, err := realtime.NewSubscriber(cmd.BaseURL(cfg), cfg.AnonKey, env.Client.AccessToken())
	if err != nil {
		log.Warn().Err(err).Msg("realtime disabled")
		return nil
	}
	feed, err := sub.Subscribe(ctx, "locations", scope.OrganizationID)
	if err != nil {
		log.Warn().Err(err).Msg("realtime disabled")
		return nil
	}
	return feed
}

func orgLabel(env *cmd.Env) string {
	if env.Profile.FullName != "" {
		return env.Profile.FullName
	}
	return env.Profile.Email
}
