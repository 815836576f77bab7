// Package trakt reads a user's watchlist from the Trakt sync API so it can
// be ingested into a list. Obtaining the access token is the caller's job.
package trakt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "https://api.trakt.tv"
	apiVersion     = "2"
)

var (
	ErrDisabled     = errors.New("trakt client id not configured")
	ErrUnauthorized = errors.New("trakt rejected the access token")
)

// Client handles communication with the Trakt API.
type Client struct {
	httpClient      *http.Client
	clientID        string
	baseURL         string
	maxRetries      uint64
	initialInterval time.Duration
}

// NewClient creates a Trakt client. Requests are retried with exponential
// backoff on 429 and 5xx responses.
func NewClient(clientID, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		clientID:        clientID,
		baseURL:         baseURL,
		maxRetries:      4,
		initialInterval: 500 * time.Millisecond,
	}
}

// Enabled reports whether a client id is configured.
func (c *Client) Enabled() bool {
	return c.clientID != ""
}

// doRequest performs an authenticated GET against the Trakt API.
func (c *Client) doRequest(ctx context.Context, accessToken, path string, result any) error {
	fullURL := c.baseURL + path

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("trakt-api-version", apiVersion)
		req.Header.Set("trakt-api-key", c.clientID)
		req.Header.Set("Authorization", "Bearer "+accessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return backoff.Permanent(ErrUnauthorized)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("trakt returned status %d", resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("trakt returned status %d: %s", resp.StatusCode, body))
		}

		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialInterval
	b := backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx)

	return backoff.RetryNotify(operation, b, func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("path", path).Dur("retry_in", wait).Msg("Trakt request failed, retrying")
	})
}

// GetWatchlist retrieves one section of the watchlist; mediaType is "movies" or "shows".
func (c *Client) GetWatchlist(ctx context.Context, accessToken, mediaType string) ([]WatchlistEntry, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	var items []WatchlistEntry
	if err := c.doRequest(ctx, accessToken, fmt.Sprintf("/sync/watchlist/%s", mediaType), &items); err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	return items, nil
}

// Watchlist retrieves both movies and shows.
func (c *Client) Watchlist(ctx context.Context, accessToken string) ([]WatchlistEntry, error) {
	movies, err := c.GetWatchlist(ctx, accessToken, "movies")
	if err != nil {
		return nil, err
	}
	shows, err := c.GetWatchlist(ctx, accessToken, "shows")
	if err != nil {
		return nil, err
	}
	return append(movies, shows...), nil
}
