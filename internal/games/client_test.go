package games

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "codeberg.org/gamevault/server/internal/errors"
	"codeberg.org/gamevault/server/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL+"/", "provider-key", timeout,
		upstream.WithRetries(1),
		upstream.WithInitialBackoff(time.Millisecond),
	)
}

func requireCode(t *testing.T, err error, code apperrors.Code, status int) {
	t.Helper()

	var safeErr *apperrors.SafeError
	require.ErrorAs(t, err, &safeErr)
	assert.Equal(t, code, safeErr.Code)
	assert.Equal(t, status, safeErr.Status)
}

func TestListGames(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games", r.URL.Path)
		assert.Equal(t, "Bearer provider-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck // test server
		_, _ = w.Write([]byte(`{"games":[
			{"id":"book-of-ra","name":"Book of Ra","category":"slots","provider":"novo","rtp":95.1,"enabled":true},
			{"id":"retired","name":"Retired","category":"slots","provider":"novo","enabled":false}
		]}`))
	}, time.Second)

	games, err := client.ListGames(context.Background())

	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "book-of-ra", games[0].ID)
	assert.InDelta(t, 95.1, games[0].RTP, 0.001)
}

func TestLaunch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/games/book-of-ra/sessions", r.URL.Path)

		var req launchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, launchRequest{PlayerID: "user-1", Currency: "USD"}, req)

		_ = json.NewEncoder(w).Encode(LaunchSession{ //nolint:errcheck // test server
			URL:          "https://play.example.com/s/abc",
			SessionToken: "abc",
			ExpiresAt:    time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}, time.Second)

	session, err := client.Launch(context.Background(), "book-of-ra", "user-1", "USD")

	require.NoError(t, err)
	assert.Equal(t, "book-of-ra", session.GameID)
	assert.Equal(t, "https://play.example.com/s/abc", session.URL)
}

func TestLaunch_UnknownGame(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no such game"}`, http.StatusNotFound)
	}, time.Second)

	_, err := client.Launch(context.Background(), "missing", "user-1", "USD")
	requireCode(t, err, apperrors.CodeGameUnavailable, http.StatusNotFound)
}

func TestLaunch_InvalidGameID(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { calls.Add(1) }, time.Second)

	for _, id := range []string{"", "../admin", "Book Of Ra", "a/b"} {
		_, err := client.Launch(context.Background(), id, "user-1", "USD")
		requireCode(t, err, apperrors.CodeInvalidIdentifier, http.StatusBadRequest)
	}

	assert.Zero(t, calls.Load())
}

func TestLaunch_MissingLaunchURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"session_token":"abc"}`)) //nolint:errcheck // test server
	}, time.Second)

	_, err := client.Launch(context.Background(), "book-of-ra", "user-1", "USD")
	requireCode(t, err, apperrors.CodeExternalUnavailable, http.StatusServiceUnavailable)
}

func TestListGames_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 50*time.Millisecond)

	_, err := client.ListGames(context.Background())

	var timeoutErr *upstream.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, serviceName, timeoutErr.Service)
}

func TestListGames_UpstreamStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, time.Second)

	_, err := client.ListGames(context.Background())

	var statusErr *upstream.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestListGames_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := NewClient(base, "", time.Second, upstream.WithRetries(0))

	_, err := client.ListGames(context.Background())
	requireCode(t, err, apperrors.CodeExternalUnavailable, http.StatusServiceUnavailable)
}

func TestListGames_MalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`)) //nolint:errcheck // test server
	}, time.Second)

	_, err := client.ListGames(context.Background())
	requireCode(t, err, apperrors.CodeExternalUnavailable, http.StatusServiceUnavailable)
}

func TestNotConfigured(t *testing.T) {
	client := NewClient("", "", time.Second)

	_, err := client.ListGames(context.Background())
	requireCode(t, err, apperrors.CodeConfiguration, http.StatusInternalServerError)

	_, err = client.Launch(context.Background(), "book-of-ra", "user-1", "USD")
	requireCode(t, err, apperrors.CodeConfiguration, http.StatusInternalServerError)
}
