package enrich_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/reel-go/internal/enrich"
	"github.com/vrsandeep/reel-go/internal/models"
	"github.com/vrsandeep/reel-go/internal/providers"
	"github.com/vrsandeep/reel-go/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestEnrichItem_ProvidersDisabled(t *testing.T) {
	e := enrich.NewEnricher(nil, nil)
	ctx := context.Background()

	movie := &models.ListItem{ID: "123", Title: "Test Movie", ReleaseDate: "2022-06-01", MediaType: models.MediaTypeMovie,
		TmdbRating: ptr(7.3), TmdbVoteCount: ptr(111)}
	show := &models.ListItem{ID: "456", Name: "Test Show", FirstAirDate: "2019-09-10",
		TmdbRating: ptr(8.1), TmdbVoteCount: ptr(222)}

	res := e.EnrichItem(ctx, movie)
	assert.Equal(t, []string{"123", "", "Test Movie", "2022", "movie", "7.3", "", "111", ""}, res.Record.Fields())
	assert.False(t, res.HasData())

	res = e.EnrichItem(ctx, show)
	assert.Equal(t, []string{"456", "", "Test Show", "2019", "tv", "8.1", "", "222", ""}, res.Record.Fields())
}

func TestEnrichItem_FreshData(t *testing.T) {
	meta := testutil.NewFakeMetadata().AddTitle(models.TitleDetails{
		ID: "10", MediaType: models.MediaTypeMovie, Title: "Fresh", ReleaseDate: "2001-02-03",
		VoteAverage: ptr(7.26), VoteCount: ptr(4200),
	}, "tt0000010")
	ratings := testutil.NewFakeRatings().Add("tt0000010", 8.04, 1000)
	e := enrich.NewEnricher(meta, ratings)

	item := &models.ListItem{ID: "10", Title: "Stored", ReleaseDate: "2001-02-03", TmdbRating: ptr(1.0)}
	res := e.EnrichItem(context.Background(), item)

	assert.True(t, res.MetadataOK())
	assert.True(t, res.RatingsOK())
	assert.Equal(t, "tt0000010", res.ImdbID)
	assert.Equal(t, models.ExportRecord{
		TmdbID: "10", ImdbID: "tt0000010", Name: "Stored", Year: "2001", MediaType: "movie",
		TmdbRating: "7.3", ImdbRating: "8.0", TmdbVotes: "4200", ImdbVotes: "1000",
	}, res.Record)
}

func TestEnrichItem_FallsBackToStoredCrossReference(t *testing.T) {
	meta := testutil.NewFakeMetadata().Fail("20", providers.KindTimeout)
	ratings := testutil.NewFakeRatings().Add("tt0000020", 6.5, 30)
	e := enrich.NewEnricher(meta, ratings)

	item := &models.ListItem{ID: "20", Title: "Old", ImdbID: ptr("tt0000020")}
	res := e.EnrichItem(context.Background(), item)

	assert.False(t, res.MetadataOK())
	assert.True(t, res.RatingsOK())
	assert.Equal(t, "tt0000020", res.Record.ImdbID)
	assert.Equal(t, "6.5", res.Record.ImdbRating)
	assert.Equal(t, "30", res.Record.ImdbVotes)
	assert.Equal(t, "", res.Record.TmdbRating)
}

func TestEnrichItem_EverythingFails(t *testing.T) {
	meta := testutil.NewFakeMetadata().Fail("30", providers.KindUnavailable)
	ratings := testutil.NewFakeRatings()
	ratings.Disabled = true
	e := enrich.NewEnricher(meta, ratings)

	item := &models.ListItem{ID: "30", Title: "Bad Date", ReleaseDate: "someday"}
	res := e.EnrichItem(context.Background(), item)

	assert.False(t, res.HasData())
	assert.Equal(t, []string{"30", "", "Bad Date", "", "movie", "", "", "", ""}, res.Record.Fields())
	assert.Equal(t, 0, ratings.Calls(), "no cross-reference means no ratings call")
}

func TestEnrichItem_MetadataCallsRunConcurrently(t *testing.T) {
	meta := testutil.NewFakeMetadata().
		AddTitle(models.TitleDetails{ID: "40", MediaType: models.MediaTypeMovie, Title: "Slow"}, "tt0000040").
		Delay("40", 150*time.Millisecond)
	e := enrich.NewEnricher(meta, nil)

	start := time.Now()
	res := e.EnrichItem(context.Background(), &models.ListItem{ID: "40"})
	elapsed := time.Since(start)

	require.Equal(t, "tt0000040", res.ImdbID)
	assert.Equal(t, 2, meta.Calls("40"))
	assert.Less(t, elapsed, 280*time.Millisecond)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "", enrich.FormatRating(nil))
	assert.Equal(t, "7.0", enrich.FormatRating(ptr(7.0)))
	assert.Equal(t, "7.3", enrich.FormatRating(ptr(7.26)))
	assert.Equal(t, "", enrich.FormatVotes(nil))
	assert.Equal(t, "0", enrich.FormatVotes(ptr(0)))
	assert.InDelta(t, 7.3, enrich.RoundRating(7.26), 1e-9)
}
