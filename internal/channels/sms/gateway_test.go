package sms

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, handler http.HandlerFunc) *HTTPGateway {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewHTTPGateway(srv.URL, "test-api-key", 2*time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSendDelivered(t *testing.T) {
	var got sendRequest
	g := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(sendResponse{Status: "delivered"})
	})

	err := g.Send(context.Background(), "+15550001111", "hello")
	require.NoError(t, err)
	assert.Equal(t, "+15550001111", got.To)
	assert.Equal(t, "hello", got.Text)
}

func TestSendQueuedCountsAsSuccess(t *testing.T) {
	g := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(sendResponse{Status: "queued"})
	})
	require.NoError(t, g.Send(context.Background(), "+15550001111", "hello"))
}

func TestSendGatewayFailureStatuses(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		g := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		err := g.Send(context.Background(), "+15550001111", "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("gateway-reported failure", func(t *testing.T) {
		g := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(sendResponse{Status: "undeliverable"})
		})
		err := g.Send(context.Background(), "+15550001111", "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "undeliverable")
	})
}

func TestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	var calls int
	g := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for range 5 {
		require.Error(t, g.Send(context.Background(), "+15550001111", "hello"))
	}
	assert.True(t, g.breaker.IsOpen())

	err := g.Send(context.Background(), "+15550001111", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit open")
	assert.Equal(t, 5, calls, "an open circuit short-circuits before the wire")
}
