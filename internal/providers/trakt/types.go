package trakt

import "time"

// IDs are the cross-references Trakt keeps for a title.
type IDs struct {
	Trakt int    `json:"trakt"`
	Slug  string `json:"slug"`
	IMDB  string `json:"imdb"` // e.g. "tt0133093"
	TMDB  int    `json:"tmdb"`
}

type Title struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   IDs    `json:"ids"`
}

// WatchlistEntry is one element of /sync/watchlist/{movies,shows}.
type WatchlistEntry struct {
	Rank     int       `json:"rank"`
	ListedAt time.Time `json:"listed_at"`
	Type     string    `json:"type"` // "movie" or "show"
	Movie    *Title    `json:"movie,omitempty"`
	Show     *Title    `json:"show,omitempty"`
}
