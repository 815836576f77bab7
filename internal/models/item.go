package models

import (
	"fmt"
	"time"
)

type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Valid reports whether m is one of the known media types.
func (m MediaType) Valid() bool {
	return m == MediaTypeMovie || m == MediaTypeTV
}

type EnrichmentStatus string

const (
	EnrichmentPending  EnrichmentStatus = "pending"
	EnrichmentEnriched EnrichmentStatus = "enriched"
	EnrichmentFailed   EnrichmentStatus = "failed"
)

// ListItem is one movie or show stored in a list. Its ID is the metadata
// provider's id and is unique within a single list only.
type ListItem struct {
	ID               string           `json:"id"`
	Title            string           `json:"title,omitempty"`
	Name             string           `json:"name,omitempty"`
	ReleaseDate      string           `json:"releaseDate,omitempty"`
	FirstAirDate     string           `json:"firstAirDate,omitempty"`
	MediaType        MediaType        `json:"mediaType,omitempty"`
	PosterPath       *string          `json:"posterPath"`
	ImdbID           *string          `json:"imdbId"`
	TmdbRating       *float64         `json:"tmdbRating,omitempty"`
	TmdbVoteCount    *int             `json:"tmdbVoteCount,omitempty"`
	ImdbRating       *float64         `json:"imdbRating,omitempty"`
	ImdbVoteCount    *int             `json:"imdbVoteCount,omitempty"`
	EnrichmentStatus EnrichmentStatus `json:"enrichmentStatus,omitempty"`
	LastEnriched     *time.Time       `json:"lastEnriched,omitempty"`
	DateAdded        time.Time        `json:"dateAdded"`
}

// ResolvedMediaType returns the explicit media type, inferring tv from the
// presence of a first air date and defaulting to movie.
func (i *ListItem) ResolvedMediaType() MediaType {
	if i.MediaType.Valid() {
		return i.MediaType
	}
	if i.FirstAirDate != "" {
		return MediaTypeTV
	}
	return MediaTypeMovie
}

// DisplayTitle prefers the title field appropriate to the media type.
func (i *ListItem) DisplayTitle() string {
	if i.ResolvedMediaType() == MediaTypeTV {
		if i.Name != "" {
			return i.Name
		}
		return i.Title
	}
	if i.Title != "" {
		return i.Title
	}
	return i.Name
}

// ReleaseOrAirDate returns the date field appropriate to the media type.
func (i *ListItem) ReleaseOrAirDate() string {
	if i.ResolvedMediaType() == MediaTypeTV {
		return i.FirstAirDate
	}
	return i.ReleaseDate
}

// IsPending reports whether the item still awaits background enrichment.
// Items written before the status field existed count as pending.
func (i *ListItem) IsPending() bool {
	return i.EnrichmentStatus == "" || i.EnrichmentStatus == EnrichmentPending
}

// Year returns the four-digit UTC year of the type-appropriate date, or ""
// when the date is missing or unparseable.
func (i *ListItem) Year() string {
	return YearOf(i.ReleaseOrAirDate())
}

// YearOf extracts the UTC year from an ISO date or RFC 3339 timestamp.
func YearOf(date string) string {
	if date == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339Nano} {
		if t, err := time.Parse(layout, date); err == nil {
			return fmt.Sprintf("%04d", t.UTC().Year())
		}
	}
	return ""
}
