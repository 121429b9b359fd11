// Package sms wraps the external SMS gateway behind a send contract. The
// gateway is a collaborator, not part of this system: the client here only
// posts a templated, identity-free text and reports success or failure.
package sms

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"ember/pkg/platform/circuit"
)

// probeCooldown is how long an open circuit short-circuits before one real
// call is let through to test whether the gateway recovered.
const probeCooldown = 30 * time.Second

// HTTPGateway sends texts through a JSON-over-HTTP gateway. A circuit
// breaker fails fast when the gateway is down so a dispatch with many SMS
// partners does not burn its full per-partner timeout on every one.
type HTTPGateway struct {
	client  *resty.Client
	breaker *circuit.Breaker
	logger  *slog.Logger

	mu        sync.Mutex
	nextProbe time.Time
}

type sendRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type sendResponse struct {
	Status string `json:"status"`
}

// NewHTTPGateway builds a gateway client. timeout bounds a single send
// attempt end to end.
func NewHTTPGateway(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *HTTPGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &HTTPGateway{
		client:  client,
		breaker: circuit.New("sms-gateway", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		logger:  logger,
	}
}

// Send posts one text. Errors cover timeouts, transport failures, non-2xx
// responses, gateway-reported failure, and an open breaker.
func (g *HTTPGateway) Send(ctx context.Context, phoneNumber, text string) error {
	if g.breaker.IsOpen() && !g.probeAllowed() {
		return fmt.Errorf("sms gateway circuit open")
	}

	var result sendResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(sendRequest{To: phoneNumber, Text: text}).
		SetResult(&result).
		Post("/messages")
	if err != nil {
		g.recordFailure(ctx)
		return fmt.Errorf("sms gateway request: %w", err)
	}
	if resp.IsError() {
		g.recordFailure(ctx)
		return fmt.Errorf("sms gateway responded %d", resp.StatusCode())
	}
	if result.Status != "delivered" && result.Status != "queued" {
		g.recordFailure(ctx)
		return fmt.Errorf("sms gateway reported status %q", result.Status)
	}

	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "sms gateway circuit closed")
	}
	return nil
}

func (g *HTTPGateway) recordFailure(ctx context.Context) {
	if _, change := g.breaker.RecordFailure(); change.Opened {
		g.mu.Lock()
		g.nextProbe = time.Now().Add(probeCooldown)
		g.mu.Unlock()
		g.logger.WarnContext(ctx, "sms gateway circuit opened")
	}
}

// probeAllowed grants one call per cooldown window while the circuit is open.
func (g *HTTPGateway) probeAllowed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()
	if now.Before(g.nextProbe) {
		return false
	}
	g.nextProbe = now.Add(probeCooldown)
	return true
}
