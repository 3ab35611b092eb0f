package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwy0805/CryWolfApiServer-sub000/internal/models"
)

func testResult() *models.MatchResult {
	return &models.MatchResult{
		MatchID: "match-1",
		MapID:   1,
		Sheep:   models.MatchPlayer{UserID: 1, SessionID: 100, RankPoint: 500},
		Wolf:    models.MatchPlayer{UserID: 2, SessionID: 200, RankPoint: 480},
	}
}

func TestClient_Deliver(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/internal/match-results", r.URL.Path)

		var result models.MatchResult
		require.NoError(t, json.NewDecoder(r.Body).Decode(&result))
		assert.Equal(t, "match-1", result.MatchID)
		assert.Equal(t, int64(1), result.Sheep.UserID)
		assert.Equal(t, int64(2), result.Wolf.UserID)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.Deliver(context.Background(), testResult())
	assert.NoError(t, err)
}

func TestClient_DeliverServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.Deliver(context.Background(), testResult())
	assert.Error(t, err)
}

func TestClient_DeliverUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")

	err := client.Deliver(context.Background(), testResult())
	assert.Error(t, err)
}
