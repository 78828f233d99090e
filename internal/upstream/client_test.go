package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(opts ...Option) *Client {
	opts = append([]Option{WithInitialBackoff(time.Millisecond)}, opts...)
	return New("test service", opts...)
}

func TestDoJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"ok"}`)) //nolint:errcheck // test server
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
	}

	err := newTestClient().DoJSON(context.Background(), Request{
		Op:      "create",
		Method:  http.MethodPost,
		URL:     srv.URL,
		Headers: map[string]string{"X-Api-Key": "secret"},
		Body:    map[string]string{"a": "b"},
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, "ok", out.Name)
}

func TestDoJSON_TimeoutIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	err := newTestClient(WithTimeout(50*time.Millisecond)).DoJSON(context.Background(), Request{
		Op:     "slow",
		Method: http.MethodGet,
		URL:    srv.URL,
	}, nil)

	var te *TimeoutError
	require.True(t, errors.As(err, &te), "expected TimeoutError, got %T: %v", err, err)
	assert.Equal(t, "test service", te.Service)
	assert.Equal(t, "slow", te.Op)
}

func TestDoJSON_ContextDeadlineIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := newTestClient().DoJSON(ctx, Request{Op: "slow", Method: http.MethodGet, URL: srv.URL}, nil)

	var te *TimeoutError
	assert.True(t, errors.As(err, &te), "expected TimeoutError, got %T: %v", err, err)
}

func TestDoJSON_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestClient(WithRetries(2)).DoJSON(context.Background(), Request{
		Op:     "flaky",
		Method: http.MethodGet,
		URL:    srv.URL,
	}, nil)

	var se *StatusError
	require.True(t, errors.As(err, &se), "expected StatusError, got %T: %v", err, err)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, int32(3), calls.Load(), "one attempt plus two retries")
}

func TestDoJSON_RecoversAfterTransientStatus(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		_, _ = w.Write([]byte(`{"ok":true}`)) //nolint:errcheck // test server
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}

	err := newTestClient().DoJSON(context.Background(), Request{Op: "flaky", Method: http.MethodGet, URL: srv.URL}, &out)

	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoJSON_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no such game"}`)) //nolint:errcheck // test server
	}))
	defer srv.Close()

	err := newTestClient().DoJSON(context.Background(), Request{Op: "get", Method: http.MethodGet, URL: srv.URL}, nil)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Contains(t, se.Body, "no such game")
	assert.NotContains(t, se.Error(), srv.URL, "errors must not carry upstream URLs")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoJSON_ConnectionRefusedIsUntyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := newTestClient(WithRetries(1)).DoJSON(context.Background(), Request{Op: "get", Method: http.MethodGet, URL: url}, nil)

	require.Error(t, err)

	var te *TimeoutError
	var se *StatusError
	assert.False(t, errors.As(err, &te))
	assert.False(t, errors.As(err, &se))
	assert.NotContains(t, err.Error(), url, "errors must not carry upstream URLs")
}

func TestDoJSON_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`)) //nolint:errcheck // test server
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient().DoJSON(context.Background(), Request{Op: "get", Method: http.MethodGet, URL: srv.URL}, &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
