package trakt

import (
	"strconv"
	"time"

	"github.com/vrsandeep/reel-go/internal/models"
)

// ToListItems maps watchlist entries to new pending list items. Entries
// without a TMDB id cannot be addressed in a list and are skipped, as are
// repeats of an id already mapped.
func ToListItems(entries []WatchlistEntry, now time.Time) []*models.ListItem {
	items := make([]*models.ListItem, 0, len(entries))
	seen := make(map[string]bool)
	for _, e := range entries {
		var t *Title
		var mediaType models.MediaType
		switch {
		case e.Movie != nil:
			t, mediaType = e.Movie, models.MediaTypeMovie
		case e.Show != nil:
			t, mediaType = e.Show, models.MediaTypeTV
		default:
			continue
		}
		if t.IDs.TMDB <= 0 {
			continue
		}
		id := strconv.Itoa(t.IDs.TMDB)
		if seen[id] {
			continue
		}
		seen[id] = true

		item := &models.ListItem{
			ID:               id,
			MediaType:        mediaType,
			EnrichmentStatus: models.EnrichmentPending,
			DateAdded:        now,
		}
		if mediaType == models.MediaTypeTV {
			item.Name = t.Title
		} else {
			item.Title = t.Title
		}
		if t.IDs.IMDB != "" {
			imdbID := t.IDs.IMDB
			item.ImdbID = &imdbID
		}
		items = append(items, item)
	}
	return items
}
