package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListClientsScopesByOrganization(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/clients", r.URL.Path)
		assert.Equal(t, "eq.org-1", r.URL.Query().Get("organization_id"))
		assert.Equal(t, "name.asc", r.URL.Query().Get("order"))
		w.Write([]byte(`[{"id":"c-1","organization_id":"org-1","name":"Globex","created_at":"2026-01-05T00:00:00Z"}]`))
	})

	clients, err := client.ListClients(context.Background(), "org-1")
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Globex", clients[0].Name)
	assert.Equal(t, 2026, clients[0].CreatedAt.Year())
}

func TestListClientsRequiresOrganization(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "anon")
	_, err := client.ListClients(context.Background(), "")
	assert.Error(t, err)
}
