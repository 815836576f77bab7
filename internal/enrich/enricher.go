// Package enrich merges what the metadata and ratings providers know about a
// list item, both for exports and for the background enrichment worker.
package enrich

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/vrsandeep/reel-go/internal/models"
	"github.com/vrsandeep/reel-go/internal/providers"
)

// Enrichment is the outcome of enriching one item. Record is always fully
// populated with strings; the remaining fields carry the raw values that were
// obtained so callers can persist them.
type Enrichment struct {
	Record    models.ExportRecord
	MediaType models.MediaType
	// ImdbID is the cross-reference id, fresh from the metadata provider or
	// the one already stored on the item.
	ImdbID  string
	Details *models.TitleDetails
	Rating  *models.ExternalRating

	freshImdbID bool
}

// MetadataOK reports whether the metadata provider returned anything.
func (e *Enrichment) MetadataOK() bool {
	return e.Details != nil || e.freshImdbID
}

// RatingsOK reports whether the ratings provider returned a rating.
func (e *Enrichment) RatingsOK() bool {
	return e.Rating != nil
}

// HasData reports whether either source produced data.
func (e *Enrichment) HasData() bool {
	return e.MetadataOK() || e.RatingsOK()
}

// Enricher combines the two providers. A nil provider counts as disabled.
type Enricher struct {
	metadata providers.MetadataProvider
	ratings  providers.RatingsProvider
}

func NewEnricher(metadata providers.MetadataProvider, ratings providers.RatingsProvider) *Enricher {
	return &Enricher{metadata: metadata, ratings: ratings}
}

// EnrichItem never fails: every provider error degrades the affected fields
// to empty strings.
func (e *Enricher) EnrichItem(ctx context.Context, item *models.ListItem) Enrichment {
	mediaType := item.ResolvedMediaType()
	out := Enrichment{MediaType: mediaType}

	var (
		wg         sync.WaitGroup
		xref       string
		xrefErr    error
		details    *models.TitleDetails
		detailsErr error
	)
	if e.metadata != nil && item.ID != "" {
		wg.Add(2)
		go func() {
			defer wg.Done()
			xref, xrefErr = e.metadata.ExternalIDs(ctx, mediaType, item.ID)
		}()
		go func() {
			defer wg.Done()
			details, detailsErr = e.metadata.Details(ctx, mediaType, item.ID)
		}()
		wg.Wait()
		logFetchError(item.ID, "external_ids", xrefErr)
		logFetchError(item.ID, "details", detailsErr)
	}

	if xrefErr == nil && xref != "" {
		out.ImdbID = xref
		out.freshImdbID = true
	} else if item.ImdbID != nil {
		out.ImdbID = *item.ImdbID
	}
	if detailsErr == nil {
		out.Details = details
	}

	tmdbRating, tmdbVotes := item.TmdbRating, item.TmdbVoteCount
	if out.Details != nil {
		if finite(out.Details.VoteAverage) {
			tmdbRating = out.Details.VoteAverage
		}
		if out.Details.VoteCount != nil {
			tmdbVotes = out.Details.VoteCount
		}
	}

	var imdbRating, imdbVotes string
	if out.ImdbID != "" && e.ratings != nil {
		rating, err := e.ratings.Rating(ctx, out.ImdbID)
		logFetchError(item.ID, "rating", err)
		if err == nil && rating != nil {
			out.Rating = rating
			imdbRating = FormatRating(&rating.Rating)
			imdbVotes = strconv.Itoa(rating.VoteCount)
		}
	}

	out.Record = models.ExportRecord{
		TmdbID:     item.ID,
		ImdbID:     out.ImdbID,
		Name:       item.DisplayTitle(),
		Year:       item.Year(),
		MediaType:  string(mediaType),
		TmdbRating: FormatRating(tmdbRating),
		ImdbRating: imdbRating,
		TmdbVotes:  FormatVotes(tmdbVotes),
		ImdbVotes:  imdbVotes,
	}
	return out
}

// FormatRating renders a rating with one decimal, or "" when absent or not a number.
func FormatRating(v *float64) string {
	if !finite(v) {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}

func FormatVotes(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// RoundRating rounds to the one decimal shown to users.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func logFetchError(itemID, call string, err error) {
	if err == nil {
		return
	}
	switch providers.KindOf(err) {
	case providers.KindDisabled, providers.KindNotFound:
		log.Debug().Err(err).Str("item_id", itemID).Str("call", call).Msg("Provider returned no data")
	default:
		log.Warn().Err(err).Str("item_id", itemID).Str("call", call).Msg("Provider call failed")
	}
}
