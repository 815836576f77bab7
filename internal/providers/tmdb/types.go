package tmdb

import (
	"strconv"

	"github.com/vrsandeep/reel-go/internal/models"
)

// titleResponse covers both /movie/{id} and /tv/{id}; movies fill Title and
// ReleaseDate, shows fill Name and FirstAirDate.
type titleResponse struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Name         string   `json:"name"`
	ReleaseDate  string   `json:"release_date"`
	FirstAirDate string   `json:"first_air_date"`
	PosterPath   string   `json:"poster_path"`
	VoteAverage  *float64 `json:"vote_average"`
	VoteCount    *int     `json:"vote_count"`
}

func (t titleResponse) toDetails(mediaType models.MediaType) models.TitleDetails {
	d := models.TitleDetails{
		ID:          strconv.Itoa(t.ID),
		MediaType:   mediaType,
		Title:       t.Title,
		ReleaseDate: t.ReleaseDate,
		PosterPath:  t.PosterPath,
		VoteAverage: t.VoteAverage,
		VoteCount:   t.VoteCount,
	}
	if mediaType == models.MediaTypeTV {
		d.Title = t.Name
		d.ReleaseDate = t.FirstAirDate
	}
	return d
}

type externalIDsResponse struct {
	ID     int    `json:"id"`
	ImdbID string `json:"imdb_id"`
}

type searchResponse struct {
	Page    int             `json:"page"`
	Results []titleResponse `json:"results"`
}
