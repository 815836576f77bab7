// Package tmdb is the client for the primary metadata provider.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vrsandeep/reel-go/internal/cache"
	"github.com/vrsandeep/reel-go/internal/models"
	"github.com/vrsandeep/reel-go/internal/providers"
)

const (
	ProviderID     = "tmdb"
	DefaultBaseURL = "https://api.themoviedb.org/3"
	DefaultTimeout = 8 * time.Second
)

// Client talks to the TMDB v3 API. An empty API key disables it: every call
// then fails fast with a disabled FetchError.
type Client struct {
	client   *http.Client
	apiKey   string
	baseURL  string
	timeout  time.Duration
	cache    cache.Cache
	cacheTTL time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.client = hc } }

// WithCache keeps successful responses in store for ttl.
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// New creates a new TMDB client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		client:  &http.Client{},
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		cache:   cache.Noop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	if !c.Enabled() {
		return providers.NewError(ProviderID, providers.KindDisabled, nil)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return providers.NewError(ProviderID, providers.KindUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	return providers.GetJSON(c.client, ProviderID, req, v)
}

func (c *Client) cached(ctx context.Context, key string, v any) bool {
	raw, ok := c.cache.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func (c *Client) remember(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.cache.Set(ctx, key, raw, c.cacheTTL)
}

func validID(id string) bool {
	n, err := strconv.Atoi(id)
	return err == nil && n > 0
}

func mediaPath(mediaType models.MediaType) string {
	if mediaType == models.MediaTypeTV {
		return "tv"
	}
	return "movie"
}

// Details fetches the title, dates, poster and vote summary of one movie or show.
func (c *Client) Details(ctx context.Context, mediaType models.MediaType, id string) (*models.TitleDetails, error) {
	if !validID(id) {
		return nil, providers.NewError(ProviderID, providers.KindNotFound, fmt.Errorf("invalid id %q", id))
	}
	mediaType = models.MediaType(mediaPath(mediaType))
	key := fmt.Sprintf("tmdb:details:%s:%s", mediaType, id)

	var details models.TitleDetails
	if c.cached(ctx, key, &details) {
		return &details, nil
	}

	var resp titleResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%s", mediaType, id), nil, &resp); err != nil {
		return nil, err
	}
	details = resp.toDetails(mediaType)
	c.remember(ctx, key, details)
	return &details, nil
}

// ExternalIDs returns the IMDb cross-reference id of a movie or show.
func (c *Client) ExternalIDs(ctx context.Context, mediaType models.MediaType, id string) (string, error) {
	if !validID(id) {
		return "", providers.NewError(ProviderID, providers.KindNotFound, fmt.Errorf("invalid id %q", id))
	}
	mediaType = models.MediaType(mediaPath(mediaType))
	key := fmt.Sprintf("tmdb:external_ids:%s:%s", mediaType, id)

	var imdbID string
	if c.cached(ctx, key, &imdbID) {
		return imdbID, nil
	}

	var resp externalIDsResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%s/external_ids", mediaType, id), nil, &resp); err != nil {
		return "", err
	}
	if resp.ImdbID == "" {
		return "", providers.NewError(ProviderID, providers.KindNotFound, fmt.Errorf("no imdb id for %s %s", mediaType, id))
	}
	c.remember(ctx, key, resp.ImdbID)
	return resp.ImdbID, nil
}

// Search finds titles by name. A year > 0 narrows the search to that
// release (movie) or first-air (tv) year.
func (c *Client) Search(ctx context.Context, mediaType models.MediaType, query string, year int) ([]models.TitleDetails, error) {
	mediaType = models.MediaType(mediaPath(mediaType))
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if year > 0 {
		if mediaType == models.MediaTypeTV {
			params.Set("first_air_date_year", strconv.Itoa(year))
		} else {
			params.Set("year", strconv.Itoa(year))
		}
	}

	var resp searchResponse
	if err := c.get(ctx, "/search/"+string(mediaType), params, &resp); err != nil {
		return nil, err
	}
	results := make([]models.TitleDetails, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, r.toDetails(mediaType))
	}
	return results, nil
}

// Lookup resolves a bare id, trying movies first and then shows.
func (c *Client) Lookup(ctx context.Context, id string) (*models.TitleDetails, error) {
	details, err := c.Details(ctx, models.MediaTypeMovie, id)
	if err == nil {
		return details, nil
	}
	if !providers.IsNotFound(err) {
		return nil, err
	}
	return c.Details(ctx, models.MediaTypeTV, id)
}
