package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/reel-go/internal/config"
	"github.com/vrsandeep/reel-go/internal/core"
	"github.com/vrsandeep/reel-go/internal/models"
	"github.com/vrsandeep/reel-go/internal/testutil"
)

func TestDefaultProviders(t *testing.T) {
	cfg := config.Default()
	p := core.DefaultProviders(cfg)
	assert.Nil(t, p.Metadata, "no TMDB key means no metadata provider")
	assert.NotNil(t, p.Ratings)
	require.NotNil(t, p.Trakt)
	assert.False(t, p.Trakt.Enabled())

	cfg.TMDB.APIKey = "key"
	cfg.IMDB.BaseURL = ""
	p = core.DefaultProviders(cfg)
	assert.NotNil(t, p.Metadata)
	assert.Nil(t, p.Ratings)
}

func TestStartEnrichment(t *testing.T) {
	meta := testutil.NewFakeMetadata().
		AddTitle(models.TitleDetails{ID: "11", MediaType: models.MediaTypeMovie, Title: "Star Wars", ReleaseDate: "1977-05-25"}, "").
		Delay("11", 100*time.Millisecond)
	app := testutil.SetupTestApp(t, core.Providers{Metadata: meta})

	user, err := app.Store.CreateUser("alice", "!", "user")
	require.NoError(t, err)
	ref := models.ListRef{UserID: user.ID, ListID: models.WatchlistID}
	require.NoError(t, app.Store.AddItems(context.Background(), ref, []*models.ListItem{{ID: "11", MediaType: models.MediaTypeMovie}}))

	// No user ids means every user.
	started, err := app.StartEnrichment()
	require.NoError(t, err)
	assert.True(t, started)

	started, err = app.StartEnrichment(user.ID)
	require.NoError(t, err)
	assert.False(t, started, "a run is already in progress")

	app.Jobs.Wait()
	item, err := app.Store.GetItem(context.Background(), ref, "11")
	require.NoError(t, err)
	assert.Equal(t, models.EnrichmentEnriched, item.EnrichmentStatus)
	assert.Equal(t, "Star Wars", item.Title)
	assert.Equal(t, "success", app.Jobs.GetStatus()[0].Status)
}
