package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gravitrone/clientdesk/internal/api"
	"github.com/gravitrone/clientdesk/internal/config"
	"github.com/gravitrone/clientdesk/internal/grid"
	"github.com/gravitrone/clientdesk/internal/locations"
	"github.com/gravitrone/clientdesk/internal/logging"
	"github.com/gravitrone/clientdesk/internal/session"
)

// Env is a signed-in session resolved from the saved config.
type Env struct {
	Config  *config.Config
	Client  *api.Client
	Session *session.Manager
	Profile api.Profile
	// ClientName is the display name of the selected client, or "".
	ClientName string
}

// NewAPIClient builds the REST client for a config.
func NewAPIClient(cfg *config.Config) *api.Client {
	if cfg.BaseURL == "" {
		return api.NewDefaultClient(cfg.AnonKey)
	}
	return api.NewClient(cfg.BaseURL, cfg.AnonKey)
}

// BaseURL returns the configured backend URL or the default one.
func BaseURL(cfg *config.Config) string {
	if cfg.BaseURL == "" {
		return api.DefaultBaseURL
	}
	return cfg.BaseURL
}

// ConsoleLogging is the root PersistentPreRunE: commands log to stderr at
// the configured level. The TUI replaces this with file logging.
func ConsoleLogging(c *cobra.Command, _ []string) error {
	cfg, err := config.Read()
	if err != nil {
		cfg = &config.Config{}
	}
	cfg.ApplyEnv()
	logging.SetupConsole(cfg.LogLevel, c.ErrOrStderr())
	return nil
}

// LoadConfig reads the saved config and applies environment overrides.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("not logged in: %w", err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// Open restores the saved session, refreshing the token when needed, and
// loads the profile so the session can scope data calls.
func Open(ctx context.Context, cfg *config.Config) (*Env, error) {
	client := NewAPIClient(cfg)
	mgr := session.NewManager(client)
	mgr.Restore(session.Tokens{
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
		ExpiresAt:    cfg.ExpiresAt,
		UserID:       cfg.UserID,
		Email:        cfg.Email,
	})

	before := cfg.AccessToken
	if err := mgr.EnsureFresh(ctx); err != nil {
		return nil, fmt.Errorf("session: %w (run `clientdesk login`)", err)
	}
	profile, err := mgr.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if profile.OrganizationID == "" {
		return nil, errors.New("profile has no organization")
	}

	env := &Env{Config: cfg, Client: client, Session: mgr, Profile: profile}
	if err := env.selectClient(ctx); err != nil {
		return nil, err
	}

	tokens, _ := mgr.Tokens()
	if tokens.AccessToken != before || cfg.OrganizationID != profile.OrganizationID {
		storeSession(cfg, tokens, profile.OrganizationID)
		if err := cfg.Save(); err != nil {
			log.Warn().Err(err).Msg("could not persist refreshed session")
		}
	}
	return env, nil
}

// selectClient picks the configured default client. Without one, an
// organization with a single client uses it; otherwise all clients are
// shown.
func (e *Env) selectClient(ctx context.Context) error {
	clients, err := e.Client.ListClients(ctx, e.Profile.OrganizationID)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}
	id := e.Config.DefaultClientID
	switch {
	case id != "":
		for _, c := range clients {
			if c.ID == id {
				e.ClientName = c.Name
			}
		}
		if e.ClientName == "" {
			return fmt.Errorf("default client %s not found in organization", id)
		}
	case len(clients) == 1:
		id = clients[0].ID
		e.ClientName = clients[0].Name
	}
	e.Session.SetClient(id)
	return nil
}

// Scope returns the session scope; Open guarantees it is available.
func (e *Env) Scope() (grid.Scope, error) {
	return e.Session.Scope()
}

// Store returns the locations store over the REST client.
func (e *Env) Store() *locations.Store {
	return locations.NewStore(e.Client, locations.Columns())
}

func storeSession(cfg *config.Config, t session.Tokens, orgID string) {
	cfg.AccessToken = t.AccessToken
	cfg.RefreshToken = t.RefreshToken
	cfg.ExpiresAt = t.ExpiresAt
	cfg.UserID = t.UserID
	cfg.Email = t.Email
	cfg.OrganizationID = orgID
}
