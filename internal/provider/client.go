// Package provider implements the external lookup-provider client. Each
// command is bound to exactly one templated endpoint; a fetch returns a
// decoded JSON payload, a plain text payload, or an absent payload on any
// failure or non-success status.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frappeash/lookupbot/internal/config"
	"github.com/frappeash/lookupbot/internal/metrics"
)

// argPlaceholder marks where the command argument is interpolated into a
// configured endpoint URL.
const argPlaceholder = "{arg}"

// maxBodySize bounds how much of a provider response is read.
const maxBodySize = 4 << 20

// Payload is one provider reply: a decoded JSON value (map, slice, or
// scalar) or raw text. The zero value is absent.
type Payload struct {
	Value  any
	Absent bool
}

// AbsentPayload is the normalized form of every provider failure.
var AbsentPayload = Payload{Absent: true}

// Client fetches lookup results from the configured endpoints.
type Client struct {
	httpClient *http.Client
	endpoints  map[string]config.ProviderConfig
	logger     *slog.Logger
}

// NewClient creates a provider client over the configured endpoints.
func NewClient(endpoints map[string]config.ProviderConfig, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoints:  endpoints,
		logger:     logger.With("component", "provider"),
	}
}

// Title returns the display title bound to a command.
func (c *Client) Title(command string) string {
	return c.endpoints[command].Title
}

// Fetch performs one lookup for the named command. Every failure mode
// (unknown command, connection error, non-2xx status, unreadable body) is
// normalized to the absent payload; the error return exists for logging
// and metrics only and is never surfaced to the user.
func (c *Client) Fetch(ctx context.Context, command, arg string) (Payload, error) {
	payload, err := c.fetch(ctx, command, arg)
	metrics.IncProviderRequest(command, err)
	if err != nil {
		c.logger.WarnContext(ctx, "Provider fetch failed", "command", command, "error", err)
		return AbsentPayload, err
	}
	return payload, nil
}

func (c *Client) fetch(ctx context.Context, command, arg string) (Payload, error) {
	endpoint, ok := c.endpoints[command]
	if !ok {
		return AbsentPayload, fmt.Errorf("no endpoint configured for command %q", command)
	}

	reqURL := strings.ReplaceAll(endpoint.URL, argPlaceholder, url.QueryEscape(arg))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return AbsentPayload, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AbsentPayload, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return AbsentPayload, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return AbsentPayload, fmt.Errorf("failed to read response body: %w", err)
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		// Not JSON; fall back to the raw text body.
		return Payload{Value: strings.TrimSpace(string(body))}, nil
	}
	return Payload{Value: value}, nil
}
