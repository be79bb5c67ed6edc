package locations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/clientdesk/internal/api"
	"github.com/gravitrone/clientdesk/internal/grid"
)

var scope = grid.Scope{OrganizationID: "org-1", ClientID: "client-1"}

func testStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := api.NewClient(srv.URL, "anon-key")
	client.SetAccessToken("user-token")
	return NewStore(client, Columns())
}

func TestLoadNormalizesNumbersAndDropsUnknownFields(t *testing.T) {
	store := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.client-1", r.URL.Query().Get("client_id"))
		w.Write([]byte(`[{"id":"loc-1","location_number":1,"location_name":"HQ","building_value":"2500000",
			"year_built":1998,"occupancy":"office","created_at":"2024-01-01T00:00:00Z","zip_code":null}]`))
	})

	rows, err := store.Load(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "loc-1", r.Key)
	assert.Equal(t, 1.0, r.Values["location_number"])
	assert.Equal(t, 2500000.0, r.Values["building_value"])
	assert.Equal(t, "1998", r.Values["year_built"])
	assert.NotContains(t, r.Values, "created_at")
	assert.NotContains(t, r.Values, "zip_code")
}

func TestCreateRowsSetsClientAndOmitsEmpty(t *testing.T) {
	store := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		var body []map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if !assert.Len(t, body, 1) {
			return
		}
		assert.Equal(t, "client-1", body[0]["client_id"])
		assert.Equal(t, "org-1", body[0]["organization_id"])
		assert.NotContains(t, body[0], "city")
		body[0]["id"] = "loc-9"
		json.NewEncoder(w).Encode(body)
	})

	rows, err := store.CreateRows(context.Background(), scope, []grid.Row{
		{Key: "tmp-1", Temp: true, Values: map[string]any{"location_name": "Depot", "city": nil, "building_value": 10.0}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "loc-9", rows[0].Key)
	assert.Equal(t, 10.0, rows[0].Values["building_value"])
}

func TestUpdateRowMissingIsStale(t *testing.T) {
	store := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		assert.Contains(t, body, "city")
		assert.Nil(t, body["city"], "clearing sends null")
		w.Write([]byte(`[]`))
	})

	_, err := store.UpdateRow(context.Background(), scope, "loc-1", map[string]any{"city": nil})
	assert.ErrorIs(t, err, grid.ErrStaleRow)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestDeleteRowsIgnoresNotFound(t *testing.T) {
	store := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	assert.NoError(t, store.DeleteRows(context.Background(), scope, []string{"loc-1"}))
}

func TestStoreDrivesController(t *testing.T) {
	records := map[string]map[string]any{}
	store := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var body []map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			for i := range body {
				body[i]["id"] = "loc-new"
				records["loc-new"] = body[i]
			}
			json.NewEncoder(w).Encode(body)
		case http.MethodPatch:
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			rec := records["loc-new"]
			for k, v := range body {
				rec[k] = v
			}
			json.NewEncoder(w).Encode([]map[string]any{rec})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	c := grid.NewController(scope, grid.StaticScope(scope), Columns())
	cmds, err := c.AddRow(map[string]string{"location_name": "Depot"})
	require.NoError(t, err)
	next, err := c.Apply(grid.Execute(context.Background(), store, cmds[0]))
	require.NoError(t, err)
	assert.Empty(t, next)

	cmds, err = c.EditCell("loc-new", "building_value", "$1,250,000")
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	_, err = c.Apply(grid.Execute(context.Background(), store, cmds[0]))
	require.NoError(t, err)

	assert.Equal(t, 1250000.0, records["loc-new"]["building_value"])
	assert.Equal(t, 1.0, records["loc-new"]["location_number"])
	assert.False(t, c.Pending("loc-new", ""))
}
