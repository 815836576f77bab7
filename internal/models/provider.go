package models

// TitleDetails is what the metadata provider reports for one movie or show.
type TitleDetails struct {
	ID          string    `json:"id"`
	MediaType   MediaType `json:"mediaType"`
	Title       string    `json:"title"`
	ReleaseDate string    `json:"releaseDate"`
	PosterPath  string    `json:"posterPath"`
	VoteAverage *float64  `json:"voteAverage"`
	VoteCount   *int      `json:"voteCount"`
}

// ToListItem converts provider details into a new, not yet enriched list item.
func (d *TitleDetails) ToListItem() *ListItem {
	item := &ListItem{
		ID:               d.ID,
		MediaType:        d.MediaType,
		TmdbRating:       d.VoteAverage,
		TmdbVoteCount:    d.VoteCount,
		EnrichmentStatus: EnrichmentPending,
	}
	if d.MediaType == MediaTypeTV {
		item.Name = d.Title
		item.FirstAirDate = d.ReleaseDate
	} else {
		item.Title = d.Title
		item.ReleaseDate = d.ReleaseDate
	}
	if d.PosterPath != "" {
		poster := d.PosterPath
		item.PosterPath = &poster
	}
	return item
}

// ExternalRating is what the secondary ratings provider reports for one title.
type ExternalRating struct {
	ImdbID    string  `json:"imdbId"`
	Rating    float64 `json:"rating"`
	VoteCount int     `json:"voteCount"`
}
