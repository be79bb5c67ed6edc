package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientConcurrentUpdates(t *testing.T) {
	var count atomic.Int32
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch && r.URL.Path == locationsPath {
			var body Record
			json.NewDecoder(r.Body).Decode(&body)
			count.Add(1)
			body["id"] = r.URL.Query().Get("id")[len("eq."):]
			w.Write(jsonResponse([]Record{body}))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	const workers = 50
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			id := fmt.Sprintf("loc-%d", idx)
			rec, err := client.UpdateLocation(context.Background(), "org-1", id, Record{"city": "Austin"})
			if err == nil && rec.ID() != id {
				err = fmt.Errorf("got %s want %s", rec.ID(), id)
			}
			errCh <- err
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(workers), count.Load())
}

func TestClientHandlesMalformedJSON(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not-json"))
	})

	_, err := client.ListLocations(context.Background(), "org-1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClientUnicodePayload(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body []Record
		json.NewDecoder(r.Body).Decode(&body)
		if !assert.Len(t, body, 1) {
			return
		}
		assert.Equal(t, "Zürich Lager 🚀", body[0]["location_name"])
		body[0]["id"] = "loc-1"
		w.Write(jsonResponse(body))
	})

	recs, err := client.CreateLocations(context.Background(), "org-1", []Record{{"location_name": "Zürich Lager 🚀"}})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Zürich Lager 🚀", recs[0]["location_name"])
}
