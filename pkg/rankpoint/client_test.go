package rankpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Lookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/internal/rank-points", r.URL.Path)

		var req LookupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(1), req.SheepUserID)
		assert.Equal(t, int64(2), req.WolfUserID)

		json.NewEncoder(w).Encode(LookupResponse{
			SheepWinPoint:  15,
			SheepLosePoint: -12,
			WolfWinPoint:   17,
			WolfLosePoint:  -10,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.Lookup(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 15, result.SheepWinPoint)
	assert.Equal(t, -12, result.SheepLosePoint)
	assert.Equal(t, 17, result.WolfWinPoint)
	assert.Equal(t, -10, result.WolfLosePoint)
}

func TestClient_LookupServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.Lookup(context.Background(), 1, 2)
	assert.Error(t, err)
}

func TestClient_LookupUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")

	_, err := client.Lookup(context.Background(), 1, 2)
	assert.Error(t, err)
}

func TestClient_LookupInvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.Lookup(context.Background(), 1, 2)
	assert.Error(t, err)
}
