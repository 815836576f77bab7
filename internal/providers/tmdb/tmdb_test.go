package tmdb

// It uses a mock HTTP server to avoid making real network requests.

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/reel-go/internal/cache"
	"github.com/vrsandeep/reel-go/internal/models"
	"github.com/vrsandeep/reel-go/internal/providers"
)

func setupTestServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/movie/123", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Query().Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"id":123,"title":"Test Movie","release_date":"2022-05-01","poster_path":"/p.jpg","vote_average":7.345,"vote_count":111}`)
	})
	mux.HandleFunc("/movie/123/external_ids", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":123,"imdb_id":"tt0000123"}`)
	})
	mux.HandleFunc("/movie/456/external_ids", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":456,"imdb_id":null}`)
	})
	mux.HandleFunc("/tv/456", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":456,"name":"Test Show","first_air_date":"2019-03-02","vote_average":8.1,"vote_count":222}`)
	})
	mux.HandleFunc("/movie/456", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"status_code":34,"status_message":"The resource you requested could not be found."}`)
	})
	mux.HandleFunc("/movie/789", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"id":789}`)
	})
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Heat", r.URL.Query().Get("query"))
		assert.Equal(t, "1995", r.URL.Query().Get("year"))
		fmt.Fprint(w, `{"page":1,"results":[{"id":949,"title":"Heat","release_date":"1995-12-15","vote_average":7.9,"vote_count":7000}]}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient(t *testing.T) {
	var hits int32
	server := setupTestServer(t, &hits)
	ctx := context.Background()
	c := New("test-key", WithBaseURL(server.URL), WithCache(cache.NewMemory(time.Minute), time.Minute))

	t.Run("Details", func(t *testing.T) {
		d, err := c.Details(ctx, models.MediaTypeMovie, "123")
		require.NoError(t, err)
		assert.Equal(t, "Test Movie", d.Title)
		assert.Equal(t, "2022-05-01", d.ReleaseDate)
		require.NotNil(t, d.VoteAverage)
		assert.InDelta(t, 7.345, *d.VoteAverage, 0.0001)
		require.NotNil(t, d.VoteCount)
		assert.Equal(t, 111, *d.VoteCount)
	})

	t.Run("Details are cached", func(t *testing.T) {
		before := atomic.LoadInt32(&hits)
		_, err := c.Details(ctx, models.MediaTypeMovie, "123")
		require.NoError(t, err)
		assert.Equal(t, before, atomic.LoadInt32(&hits))
	})

	t.Run("TV details use the show fields", func(t *testing.T) {
		d, err := c.Details(ctx, models.MediaTypeTV, "456")
		require.NoError(t, err)
		assert.Equal(t, "Test Show", d.Title)
		assert.Equal(t, "2019-03-02", d.ReleaseDate)
		assert.Equal(t, models.MediaTypeTV, d.MediaType)
	})

	t.Run("ExternalIDs", func(t *testing.T) {
		id, err := c.ExternalIDs(ctx, models.MediaTypeMovie, "123")
		require.NoError(t, err)
		assert.Equal(t, "tt0000123", id)

		_, err = c.ExternalIDs(ctx, models.MediaTypeMovie, "456")
		assert.True(t, providers.IsNotFound(err))
	})

	t.Run("Non numeric ids never reach the network", func(t *testing.T) {
		before := atomic.LoadInt32(&hits)
		_, err := c.Details(ctx, models.MediaTypeMovie, "abc")
		assert.True(t, providers.IsNotFound(err))
		assert.Equal(t, before, atomic.LoadInt32(&hits))
	})

	t.Run("Search", func(t *testing.T) {
		results, err := c.Search(ctx, models.MediaTypeMovie, "Heat", 1995)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "949", results[0].ID)
		assert.Equal(t, "1995-12-15", results[0].ReleaseDate)
	})

	t.Run("Lookup falls back to tv", func(t *testing.T) {
		d, err := c.Lookup(ctx, "456")
		require.NoError(t, err)
		assert.Equal(t, models.MediaTypeTV, d.MediaType)

		d, err = c.Lookup(ctx, "123")
		require.NoError(t, err)
		assert.Equal(t, models.MediaTypeMovie, d.MediaType)
	})

	t.Run("Timeout", func(t *testing.T) {
		slow := New("test-key", WithBaseURL(server.URL), WithTimeout(20*time.Millisecond))
		_, err := slow.Details(ctx, models.MediaTypeMovie, "789")
		assert.Equal(t, providers.KindTimeout, providers.KindOf(err))
	})

	t.Run("Bad credentials are unavailable", func(t *testing.T) {
		bad := New("wrong", WithBaseURL(server.URL))
		_, err := bad.Details(ctx, models.MediaTypeMovie, "123")
		assert.Equal(t, providers.KindUnavailable, providers.KindOf(err))
	})
}

func TestDisabledClient(t *testing.T) {
	c := New("")
	assert.False(t, c.Enabled())

	_, err := c.Details(context.Background(), models.MediaTypeMovie, "123")
	assert.Equal(t, providers.KindDisabled, providers.KindOf(err))
	_, err = c.Search(context.Background(), models.MediaTypeMovie, "Heat", 0)
	assert.Equal(t, providers.KindDisabled, providers.KindOf(err))
}
