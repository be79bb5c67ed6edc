package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/clientdesk/internal/config"
	"github.com/gravitrone/clientdesk/internal/export"
)

// fakeBackend serves the auth and REST endpoints the commands use.
type fakeBackend struct {
	mu        sync.Mutex
	locations []map[string]any
	created   []map[string]any
	logouts   int
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{locations: []map[string]any{
		{"id": "loc-1", "organization_id": "org-1", "client_id": "c-1", "location_number": 1,
			"location_name": "Alpha Plant", "city": "Austin", "state": "TX", "building_value": 1000},
		{"id": "loc-2", "organization_id": "org-1", "client_id": "c-1", "location_number": 2,
			"location_name": "Beta Plant", "city": "Dallas", "state": "TX", "building_value": 2000},
	}}
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/auth/v1/token" && r.Method == http.MethodPost:
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"tok-1","refresh_token":"ref-1","token_type":"bearer","expires_in":3600,"user":{"id":"u-1","email":"ana@example.com"}}`)
	case r.URL.Path == "/auth/v1/health":
		_, _ = io.WriteString(w, `{"name":"GoTrue","version":"v2.150.0"}`)
	case r.URL.Path == "/auth/v1/logout":
		b.logouts++
		w.WriteHeader(http.StatusNoContent)
	case r.URL.Path == "/rest/v1/profiles":
		_, _ = io.WriteString(w, `[{"id":"u-1","email":"ana@example.com","full_name":"Ana Ruiz","organization_id":"org-1","role":"broker"}]`)
	case r.URL.Path == "/rest/v1/clients":
		_, _ = io.WriteString(w, `[{"id":"c-1","organization_id":"org-1","name":"Globex","created_at":"2026-01-05T00:00:00Z"}]`)
	case r.URL.Path == "/rest/v1/locations" && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(b.locations)
	case r.URL.Path == "/rest/v1/locations" && r.Method == http.MethodPost:
		var recs []map[string]any
		if err := json.NewDecoder(r.Body).Decode(&recs); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for _, rec := range recs {
			rec["id"] = fmt.Sprintf("loc-%d", len(b.locations)+1)
			b.locations = append(b.locations, rec)
			b.created = append(b.created, rec)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(recs)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":"PGRST000","message":"not found"}`)
	}
}

func (b *fakeBackend) createdCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.created)
}

func setupHome(t *testing.T, srv *httptest.Server) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CLIENTDESK_BASE_URL", srv.URL)
	t.Setenv("CLIENTDESK_ANON_KEY", "anon")
}

func run(t *testing.T, c *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c.SetArgs(args)
	c.SetIn(strings.NewReader(stdin))
	c.SetOut(&out)
	c.SetErr(&out)
	err := c.Execute()
	return out.String(), err
}

func login(t *testing.T) {
	t.Helper()
	_, err := run(t, LoginCmd(), "ana@example.com\nsecret\n")
	require.NoError(t, err)
}

func TestLoginCmdRejectsEmptyEmail(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := run(t, LoginCmd(), "\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
}

func TestLoginCmdUnreachableBackend(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	t.Setenv("CLIENTDESK_BASE_URL", srv.URL)

	_, err := run(t, LoginCmd(), "ana@example.com\nsecret\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestLoginCmdSavesSession(t *testing.T) {
	_, srv := newFakeBackend(t)
	setupHome(t, srv)

	out, err := run(t, LoginCmd(), "ana@example.com\nsecret\n")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as ana@example.com")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", cfg.AccessToken)
	assert.Equal(t, "ref-1", cfg.RefreshToken)
	assert.Equal(t, "u-1", cfg.UserID)
	assert.Equal(t, "org-1", cfg.OrganizationID)
	assert.Equal(t, "c-1", cfg.DefaultClientID, "single client becomes the default")
	assert.False(t, cfg.ExpiresAt.IsZero())

	info, err := os.Stat(config.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoginCmdBadPassword(t *testing.T) {
	_, srv := newFakeBackend(t)
	setupHome(t, srv)

	_, err := run(t, LoginCmd(), "ana@example.com\nwrong\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")
	assert.Contains(t, err.Error(), "Invalid login credentials")

	_, statErr := os.Stat(config.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestLogoutCmdClearsSession(t *testing.T) {
	b, srv := newFakeBackend(t)
	setupHome(t, srv)
	login(t)

	out, err := run(t, LogoutCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "logged out")
	assert.Equal(t, 1, b.logouts)

	cfg, err := config.Read()
	require.NoError(t, err)
	assert.Empty(t, cfg.AccessToken)
	assert.Empty(t, cfg.OrganizationID)

	_, err = config.Load()
	assert.ErrorIs(t, err, config.ErrNoToken)
}

func TestLogoutCmdWithoutConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := run(t, LogoutCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")
}

func TestLocationsListNotLoggedIn(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := run(t, LocationsCmd(), "", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestLocationsListPrintsTable(t *testing.T) {
	_, srv := newFakeBackend(t)
	setupHome(t, srv)
	login(t)

	out, err := run(t, LocationsCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Location Name")
	assert.Contains(t, out, "Alpha Plant")
	assert.Contains(t, out, "Dallas")
	assert.Contains(t, out, "$2,000")
	assert.Contains(t, out, "2 locations, total insured value $3,000")
}

func TestLocationsImportAppendsRows(t *testing.T) {
	b, srv := newFakeBackend(t)
	setupHome(t, srv)
	login(t)

	path := filepath.Join(t.TempDir(), "sov.tsv")
	tsv := "Location Name\tCity\tBuilding Value\nGamma Depot\tWaco\t$1,250,000\nDelta Yard\tTyler\t\n"
	require.NoError(t, os.WriteFile(path, []byte(tsv), 0600))

	out, err := run(t, LocationsCmd(), "", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 locations")

	require.Equal(t, 2, b.createdCount())
	first := b.created[0]
	assert.Equal(t, "Gamma Depot", first["location_name"])
	assert.Equal(t, "org-1", first["organization_id"])
	assert.Equal(t, "c-1", first["client_id"])
	assert.EqualValues(t, 1250000, first["building_value"])
	assert.EqualValues(t, 3, first["location_number"])
	assert.EqualValues(t, 4, b.created[1]["location_number"])
	_, hasValue := b.created[1]["building_value"]
	assert.False(t, hasValue, "empty cells are omitted on create")
}

func TestLocationsImportFromStdinDryRun(t *testing.T) {
	b, srv := newFakeBackend(t)
	setupHome(t, srv)
	login(t)

	out, err := run(t, LocationsCmd(), "Echo Site\t1 Main St\n", "import", "--dry-run", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "1 locations would be imported")
	assert.Equal(t, 0, b.createdCount())
}

func TestLocationsImportRejectsMissingName(t *testing.T) {
	b, srv := newFakeBackend(t)
	setupHome(t, srv)
	login(t)

	_, err := run(t, LocationsCmd(), "Location Name\tCity\tState\nOk Site\tWaco\tTX\n\tTyler\tTX\n", "import", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Location Name is required")
	assert.Equal(t, 0, b.createdCount())
}

func TestLocationsExportWritesWorkbook(t *testing.T) {
	_, srv := newFakeBackend(t)
	setupHome(t, srv)
	login(t)

	path := filepath.Join(t.TempDir(), "sov")
	out, err := run(t, LocationsCmd(), "", "export", path)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 2 locations")

	f, err := os.Open(path + ".xlsx")
	require.NoError(t, err)
	defer f.Close()
	text, err := export.ReadTSV(f)
	require.NoError(t, err)
	assert.Contains(t, text, "Location Name")
	assert.Contains(t, text, "Beta Plant")
}

func TestLocationsCmdUnknownSubcommand(t *testing.T) {
	_, err := run(t, LocationsCmd(), "", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func withRoot(sub *cobra.Command) *cobra.Command {
	root := &cobra.Command{Use: "clientdesk", PersistentPreRunE: ConsoleLogging}
	root.AddCommand(sub)
	return root
}

func restoreLogger(t *testing.T) {
	t.Helper()
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestSubcommandsLogToStderrAtConfiguredLevel(t *testing.T) {
	restoreLogger(t)
	_, srv := newFakeBackend(t)
	setupHome(t, srv)
	login(t)

	path := filepath.Join(t.TempDir(), "sov.xlsx")
	out, err := run(t, withRoot(LocationsCmd()), "", "locations", "export", path)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 2 locations")
	assert.Contains(t, out, "locations exported", "info log reaches stderr")
	assert.NotContains(t, out, `"level"`, "console format, not JSON")
}

func TestSubcommandsHonorLogLevelOverride(t *testing.T) {
	restoreLogger(t)
	_, srv := newFakeBackend(t)
	setupHome(t, srv)
	login(t)
	t.Setenv("CLIENTDESK_LOG_LEVEL", "error")

	path := filepath.Join(t.TempDir(), "sov.xlsx")
	out, err := run(t, withRoot(LocationsCmd()), "", "locations", "export", path)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 2 locations")
	assert.NotContains(t, out, "locations exported")
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
}
