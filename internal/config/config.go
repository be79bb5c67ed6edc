package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrNoToken means the config exists but holds no session.
var ErrNoToken = errors.New("config missing access_token")

// Config holds CLI configuration stored at ~/.clientdesk/config.
type Config struct {
	BaseURL string `yaml:"base_url"`
	AnonKey string `yaml:"anon_key"`

	AccessToken  string    `yaml:"access_token"`
	RefreshToken string    `yaml:"refresh_token,omitempty"`
	ExpiresAt    time.Time `yaml:"expires_at,omitempty"`
	UserID       string    `yaml:"user_id"`
	Email        string    `yaml:"email"`

	OrganizationID  string `yaml:"organization_id,omitempty"`
	DefaultClientID string `yaml:"default_client_id,omitempty"`

	PageSize  int    `yaml:"page_size,omitempty"`
	UndoDepth int    `yaml:"undo_depth,omitempty"`
	LogLevel  string `yaml:"log_level,omitempty"`
	LogFile   string `yaml:"log_file,omitempty"`
}

// Path returns the config file path.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".clientdesk", "config")
}

// DefaultLogFile is where the TUI writes logs when log_file is unset.
func DefaultLogFile() string {
	return filepath.Join(filepath.Dir(Path()), "clientdesk.log")
}

// Load reads and parses the config file. Returns error if missing,
// insecure, or signed out.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if cfg.AccessToken == "" {
		return nil, ErrNoToken
	}
	return cfg, nil
}

// Read parses the config file without requiring a session, for login.
func Read() (*Config, error) {
	path := Path()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0600)
}

// ClearSession drops tokens and identity, keeping connection settings.
func (c *Config) ClearSession() {
	c.AccessToken = ""
	c.RefreshToken = ""
	c.ExpiresAt = time.Time{}
	c.UserID = ""
	c.Email = ""
	c.OrganizationID = ""
	c.DefaultClientID = ""
}

// ApplyEnv loads .env files (missing files are fine) and lets
// CLIENTDESK_* variables override the file values.
func (c *Config) ApplyEnv(files ...string) {
	_ = godotenv.Load(files...)

	if v := os.Getenv("CLIENTDESK_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("CLIENTDESK_ANON_KEY"); v != "" {
		c.AnonKey = v
	}
	if v := os.Getenv("CLIENTDESK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("CLIENTDESK_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if n, err := strconv.Atoi(os.Getenv("CLIENTDESK_PAGE_SIZE")); err == nil && n > 0 {
		c.PageSize = n
	}
}
