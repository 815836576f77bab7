// Package imdb is the client for the secondary ratings provider. It needs no
// credential and is keyed by IMDb ids ("tt" followed by digits).
package imdb

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/vrsandeep/reel-go/internal/models"
	"github.com/vrsandeep/reel-go/internal/providers"
)

const (
	ProviderID     = "imdb"
	DefaultBaseURL = "https://api.imdbapi.dev"
	DefaultTimeout = 8 * time.Second
)

var imdbIDPattern = regexp.MustCompile(`^tt\d{5,10}$`)

type titleResponse struct {
	ID     string `json:"id"`
	Rating *struct {
		AggregateRating float64 `json:"aggregateRating"`
		VoteCount       int     `json:"voteCount"`
	} `json:"rating"`
}

// Client fetches aggregate ratings. An empty base URL disables it.
type Client struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

// New creates a ratings client rooted at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		client:  &http.Client{},
		baseURL: baseURL,
		timeout: timeout,
	}
}

// Rating returns the aggregate rating and vote count for imdbID.
func (c *Client) Rating(ctx context.Context, imdbID string) (*models.ExternalRating, error) {
	if c.baseURL == "" {
		return nil, providers.NewError(ProviderID, providers.KindDisabled, nil)
	}
	if !imdbIDPattern.MatchString(imdbID) {
		return nil, providers.NewError(ProviderID, providers.KindNotFound, fmt.Errorf("invalid imdb id %q", imdbID))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/titles/%s", c.baseURL, imdbID), nil)
	if err != nil {
		return nil, providers.NewError(ProviderID, providers.KindUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	var resp titleResponse
	if err := providers.GetJSON(c.client, ProviderID, req, &resp); err != nil {
		return nil, err
	}
	if resp.Rating == nil {
		return nil, providers.NewError(ProviderID, providers.KindNotFound, fmt.Errorf("no rating for %s", imdbID))
	}
	return &models.ExternalRating{
		ImdbID:    imdbID,
		Rating:    resp.Rating.AggregateRating,
		VoteCount: resp.Rating.VoteCount,
	}, nil
}
