package sender

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-tangra/go-tangra-memdev/internal/collector"
	"github.com/go-tangra/go-tangra-memdev/internal/memory"
)

func testSnapshot() *collector.Snapshot {
	return &collector.Snapshot{
		CollectedAt: time.Now().UTC(),
		Hostname:    "host-a",
		Source:      "udev",
		Memory:      &memory.Memory{Devices: []memory.MemDevice{}},
	}
}

func TestSend(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/snapshots", r.URL.Path)
		assert.Equal(t, "sekrit", r.Header.Get("X-Client-Secret"))

		var snap collector.Snapshot
		require.NoError(t, json.NewDecoder(r.Body).Decode(&snap))
		assert.Equal(t, "host-a", snap.Hostname)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":        "snap-1",
			"stored_at": time.Now().UTC(),
		})
	}))
	defer ts.Close()

	id, err := Send(context.Background(), ts.URL, "sekrit", testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "snap-1", id)
}

func TestSendCollectorError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing X-Client-Secret header", http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := Send(context.Background(), ts.URL, "", testSnapshot())
	require.Error(t, err)
	assert.ErrorContains(t, err, "401")
}
