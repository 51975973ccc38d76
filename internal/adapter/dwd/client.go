// Package dwd fetches the raw pollen report from the DWD open-data server.
package dwd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/couchcryptid/dwd-pollen/internal/domain"
	"github.com/couchcryptid/dwd-pollen/internal/observability"
)

// Client performs a single fetch attempt per call; retry policy belongs to
// the caller. A circuit breaker keeps repeated upstream failures from
// hammering the open-data server.
type Client struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a DWD transport client.
func NewClient(url string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "dwd-open-data",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    cb,
		metrics:    metrics,
		logger:     logger,
	}
}

// Fetch retrieves and decodes the current pollen report. Network errors,
// non-2xx responses, and malformed bodies all wrap domain.ErrFetchFailed.
func (c *Client) Fetch(ctx context.Context) (domain.APIPayload, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		return c.doFetch(ctx)
	})
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return domain.APIPayload{}, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	c.metrics.FetchRequests.WithLabelValues("success").Inc()
	return result.(domain.APIPayload), nil
}

func (c *Client) doFetch(ctx context.Context) (domain.APIPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.APIPayload{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.APIPayload{}, fmt.Errorf("pollen report request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.APIPayload{}, fmt.Errorf("dwd API error: status %d: %s", resp.StatusCode, body)
	}

	var payload domain.APIPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.APIPayload{}, fmt.Errorf("decode response: %w", err)
	}
	if len(payload.Content) == 0 {
		return domain.APIPayload{}, fmt.Errorf("empty pollen report")
	}

	c.logger.Debug("fetched pollen report",
		"regions", len(payload.Content), "last_update", payload.LastUpdate)
	return payload, nil
}
