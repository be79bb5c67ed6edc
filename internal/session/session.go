// Package session owns the signed-in identity: tokens, expiry, and the
// cached profile that supplies the organization scope of every data call.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gravitrone/clientdesk/internal/api"
	"github.com/gravitrone/clientdesk/internal/grid"
)

// refreshWindow is how close to expiry EnsureFresh refreshes the token.
const refreshWindow = time.Minute

var (
	ErrNotSignedIn = errors.New("not signed in")
	ErrExpired     = errors.New("session expired")
)

// Authenticator is the auth collaborator.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*api.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*api.Session, error)
	SignOut(ctx context.Context) error
	GetProfile(ctx context.Context, userID string) (*api.Profile, error)
	SetAccessToken(token string)
}

// Tokens is the persistable part of a session.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
	Email        string
}

// Manager tracks the current session and caches profiles by user id. The
// cache is dropped when the identity changes or on sign-out. Safe for
// concurrent use.
type Manager struct {
	auth Authenticator
	now  func() time.Time

	// refreshing serializes EnsureFresh so a rotated refresh token is
	// used once.
	refreshing sync.Mutex

	mu       sync.Mutex
	tokens   Tokens
	active   bool
	clientID string
	profiles map[string]api.Profile
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(auth Authenticator, opts ...Option) *Manager {
	m := &Manager{
		auth:     auth,
		now:      time.Now,
		profiles: make(map[string]api.Profile),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore resumes a session saved by an earlier run.
func (m *Manager) Restore(t Tokens) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.AccessToken == "" {
		return
	}
	m.setTokensLocked(t)
}

// SignIn authenticates and loads the profile of the new identity.
func (m *Manager) SignIn(ctx context.Context, email, password string) (api.Profile, error) {
	s, err := m.auth.SignIn(ctx, email, password)
	if err != nil {
		return api.Profile{}, fmt.Errorf("sign in: %w", err)
	}
	m.mu.Lock()
	m.setTokensLocked(Tokens{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.Expiry(m.now()),
		UserID:       s.User.ID,
		Email:        s.User.Email,
	})
	m.mu.Unlock()
	log.Info().Str("user", s.User.ID).Msg("signed in")
	return m.Profile(ctx)
}

// setTokensLocked installs tokens, dropping cached profiles when the user
// changes.
func (m *Manager) setTokensLocked(t Tokens) {
	if m.active && m.tokens.UserID != t.UserID {
		m.profiles = make(map[string]api.Profile)
		m.clientID = ""
	}
	m.tokens = t
	m.active = true
	m.auth.SetAccessToken(t.AccessToken)
}

// SignOut ends the session locally even when the remote call fails.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	wasActive := m.active
	m.tokens = Tokens{}
	m.active = false
	m.clientID = ""
	m.profiles = make(map[string]api.Profile)
	m.mu.Unlock()
	if !wasActive {
		return nil
	}
	if err := m.auth.SignOut(ctx); err != nil {
		log.Warn().Err(err).Msg("remote sign out failed")
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// EnsureFresh refreshes the access token when it is about to expire.
func (m *Manager) EnsureFresh(ctx context.Context) error {
	m.refreshing.Lock()
	defer m.refreshing.Unlock()

	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return ErrNotSignedIn
	}
	t := m.tokens
	m.mu.Unlock()

	if t.ExpiresAt.IsZero() || m.now().Add(refreshWindow).Before(t.ExpiresAt) {
		return nil
	}
	if t.RefreshToken == "" {
		return ErrExpired
	}
	s, err := m.auth.Refresh(ctx, t.RefreshToken)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExpired, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t.AccessToken = s.AccessToken
	if s.RefreshToken != "" {
		t.RefreshToken = s.RefreshToken
	}
	t.ExpiresAt = s.Expiry(m.now())
	m.setTokensLocked(t)
	log.Debug().Time("expires_at", t.ExpiresAt).Msg("session refreshed")
	return nil
}

// Profile returns the current user's profile, reading it once per
// identity.
func (m *Manager) Profile(ctx context.Context) (api.Profile, error) {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return api.Profile{}, ErrNotSignedIn
	}
	userID := m.tokens.UserID
	if p, ok := m.profiles[userID]; ok {
		m.mu.Unlock()
		return p, nil
	}
	m.mu.Unlock()

	p, err := m.auth.GetProfile(ctx, userID)
	if err != nil {
		return api.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Identity may have changed while the profile was loading.
	if m.active && m.tokens.UserID == userID {
		m.profiles[userID] = *p
	}
	return *p, nil
}

// SetClient selects the client whose locations are edited.
func (m *Manager) SetClient(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clientID = id
}

// Tokens returns the persistable session state.
func (m *Manager) Tokens() (Tokens, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens, m.active
}

// Scope implements grid.ScopeSource. It never performs I/O: the profile
// must have been loaded with Profile first. An expired session that holds
// a refresh token still has a scope; EnsureFresh renews it before the
// next store call.
func (m *Manager) Scope() (grid.Scope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return grid.Scope{}, fmt.Errorf("%w: %w", grid.ErrNoSession, ErrNotSignedIn)
	}
	if m.tokens.RefreshToken == "" && !m.tokens.ExpiresAt.IsZero() && !m.now().Before(m.tokens.ExpiresAt) {
		return grid.Scope{}, fmt.Errorf("%w: %w", grid.ErrNoSession, ErrExpired)
	}
	p, ok := m.profiles[m.tokens.UserID]
	if !ok || p.OrganizationID == "" {
		return grid.Scope{}, fmt.Errorf("%w: profile not loaded", grid.ErrNoSession)
	}
	return grid.Scope{OrganizationID: p.OrganizationID, ClientID: m.clientID}, nil
}
