package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"matchday/feature/fixture/models"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Client fetches the fixture feed from the upstream provider. The sync
// pipeline depends on this interface only; it never sees HTTP.
type Client interface {
	// FetchFixtures downloads and decodes the feed. The raw payload is
	// returned alongside the DTOs so callers can archive it verbatim.
	FetchFixtures(ctx context.Context) ([]models.FixtureDTO, []byte, error)
}

// feedEnvelope is the provider's top-level response shape.
type feedEnvelope struct {
	Fixtures []models.FixtureDTO `json:"fixtures"`
}

// HTTPClient implements Client against the configured feed endpoint with
// exponential backoff on transient failures.
type HTTPClient struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewHTTPClient creates the production feed client.
func NewHTTPClient(cfg Config, logger *zap.Logger) *HTTPClient {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &HTTPClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: time.Duration(timeout) * time.Second},
		logger: logger,
	}
}

// newFetchBackoff returns a fresh retry policy per fetch; BackOff
// implementations are stateful and must not be shared.
func (c *HTTPClient) newFetchBackoff(ctx context.Context) backoff.BackOff {
	maxRetries := c.cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxRetries))
	return backoff.WithContext(bo, ctx)
}

// FetchFixtures downloads the feed, retrying network errors and server-side
// failures. Client-side errors (4xx) and malformed payloads are permanent.
func (c *HTTPClient) FetchFixtures(ctx context.Context) ([]models.FixtureDTO, []byte, error) {
	if c.cfg.FeedURL == "" {
		return nil, nil, fmt.Errorf("provider feed url is not configured")
	}

	var payload []byte
	attempt := 0

	err := backoff.Retry(func() error {
		attempt++
		body, err := c.fetchOnce(ctx)
		if err != nil {
			c.logger.Warn("feed fetch attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		payload = body
		return nil
	}, c.newFetchBackoff(ctx))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch fixture feed: %w", err)
	}

	var envelope feedEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, nil, fmt.Errorf("failed to decode fixture feed: %w", err)
	}

	c.logger.Info("fixture feed fetched",
		zap.Int("fixtures", len(envelope.Fixtures)),
		zap.Int("bytes", len(payload)),
		zap.Int("attempts", attempt))

	return envelope.Fixtures, payload, nil
}

// fetchOnce performs a single HTTP round-trip. A 4xx response is wrapped as a
// permanent error so the retry loop stops immediately.
func (c *HTTPClient) fetchOnce(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.FeedURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build feed request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, backoff.Permanent(fmt.Errorf("feed request rejected: %s", resp.Status))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed request failed: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}
	return body, nil
}
