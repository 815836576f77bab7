package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vrsandeep/reel-go/internal/metrics"
	"github.com/vrsandeep/reel-go/internal/models"
)

// JobName identifies the enrichment run in the job manager and in progress updates.
const JobName = "enrichment"

const (
	DefaultBatchSize = 5
	DefaultItemDelay = 2 * time.Second
)

// Store is the part of the list repository the worker needs.
type Store interface {
	ListLists(ctx context.Context, userID string) ([]*models.List, error)
	PendingItems(ctx context.Context, ref models.ListRef, limit int) ([]*models.ListItem, error)
	MergeItem(ctx context.Context, ref models.ListRef, itemID string, fields map[string]any) error
}

// Notifier receives progress updates addressed to one user. The websocket
// hub implements it.
type Notifier interface {
	SendJSON(userID string, v any)
}

type Options struct {
	BatchSize int
	ItemDelay time.Duration
}

// Worker walks a user's lists and enriches items that are still pending.
type Worker struct {
	store     Store
	enricher  *Enricher
	notifier  Notifier
	batchSize int
	itemDelay time.Duration
	now       func() time.Time
}

func NewWorker(store Store, enricher *Enricher, notifier Notifier, opts Options) *Worker {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.ItemDelay < 0 {
		opts.ItemDelay = 0
	}
	return &Worker{
		store:     store,
		enricher:  enricher,
		notifier:  notifier,
		batchSize: opts.BatchSize,
		itemDelay: opts.ItemDelay,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Summary counts what one run did.
type Summary struct {
	Lists    int  `json:"lists"`
	Enriched int  `json:"enriched"`
	Failed   int  `json:"failed"`
	Stopped  bool `json:"stopped"`
}

// Run enriches one batch of pending items per list for each user, the
// watchlist first. Cancelling ctx stops the run at the next list or item
// boundary, or during the pause between items; calls already in flight
// finish. A stopped run returns the partial summary and ctx.Err().
// Progress updates only go to the user whose lists are being processed.
func (w *Worker) Run(ctx context.Context, userIDs ...string) (Summary, error) {
	var sum Summary
	started := false

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return w.stop(userID, sum, ctx.Err())
		}
		refs, err := w.listRefs(context.WithoutCancel(ctx), userID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Could not enumerate lists for enrichment")
			continue
		}
		w.notify(userID, models.ProgressUpdate{JobID: JobName, Message: "Enrichment started", UserID: userID, Status: "running"})
		var own Summary

		for _, ref := range refs {
			if ctx.Err() != nil {
				return w.stop(userID, sum, ctx.Err())
			}
			items, err := w.store.PendingItems(context.WithoutCancel(ctx), ref, w.batchSize)
			if err != nil {
				log.Error().Err(err).Str("user_id", userID).Str("list_id", ref.ListID).Msg("Could not load pending items")
				continue
			}
			sum.Lists++
			own.Lists++
			if len(items) == 0 {
				continue
			}
			log.Info().Str("user_id", userID).Str("list_id", ref.ListID).Int("items", len(items)).Msg("Enriching pending items")

			for i, item := range items {
				if started {
					if err := w.pause(ctx); err != nil {
						return w.stop(userID, sum, err)
					}
				} else if ctx.Err() != nil {
					return w.stop(userID, sum, ctx.Err())
				}
				started = true

				status := w.processItem(ctx, ref, item)
				if status == models.EnrichmentEnriched {
					sum.Enriched++
					own.Enriched++
				} else {
					sum.Failed++
					own.Failed++
				}
				w.notify(userID, models.ProgressUpdate{
					JobID:    JobName,
					Message:  fmt.Sprintf("%s %s", item.DisplayTitle(), status),
					Progress: float64(i+1) / float64(len(items)) * 100,
					UserID:   userID,
					ListID:   ref.ListID,
					ItemID:   item.ID,
					Status:   string(status),
				})
			}
		}

		w.notify(userID, models.ProgressUpdate{
			JobID:    JobName,
			Message:  fmt.Sprintf("Enriched %d items, %d failed", own.Enriched, own.Failed),
			Progress: 100,
			UserID:   userID,
			Status:   "completed",
			Done:     true,
		})
	}

	log.Info().Int("lists", sum.Lists).Int("enriched", sum.Enriched).Int("failed", sum.Failed).Msg("Enrichment run finished")
	return sum, nil
}

func (w *Worker) listRefs(ctx context.Context, userID string) ([]models.ListRef, error) {
	lists, err := w.store.ListLists(ctx, userID)
	if err != nil {
		return nil, err
	}
	refs := make([]models.ListRef, 0, len(lists)+1)
	refs = append(refs, models.ListRef{UserID: userID, ListID: models.WatchlistID})
	for _, l := range lists {
		refs = append(refs, models.ListRef{UserID: userID, ListID: l.ID})
	}
	return refs, nil
}

// processItem enriches and persists one item. Provider and store calls run on
// a context detached from cancellation so a stop never cuts them short.
func (w *Worker) processItem(ctx context.Context, ref models.ListRef, item *models.ListItem) models.EnrichmentStatus {
	detached := context.WithoutCancel(ctx)
	now := w.now()

	res := w.enricher.EnrichItem(detached, item)
	fields := MergeFields(item, &res, now)
	status := fields["enrichmentStatus"].(models.EnrichmentStatus)

	if err := w.store.MergeItem(detached, ref, item.ID, fields); err != nil {
		log.Error().Err(err).Str("list_id", ref.ListID).Str("item_id", item.ID).Msg("Could not save enrichment")
		status = models.EnrichmentFailed
		failed := map[string]any{"enrichmentStatus": status, "lastEnriched": now}
		if err := w.store.MergeItem(detached, ref, item.ID, failed); err != nil {
			log.Error().Err(err).Str("item_id", item.ID).Msg("Could not mark item as failed")
		}
	}
	metrics.EnrichmentItems.WithLabelValues(string(status)).Inc()
	return status
}

// MergeFields returns the document fields an enrichment result writes back
// onto item. Fields the item already has are only overwritten with fresh
// provider data, and descriptive fields are only filled when missing.
func MergeFields(item *models.ListItem, res *Enrichment, now time.Time) map[string]any {
	status := models.EnrichmentFailed
	if res.HasData() {
		status = models.EnrichmentEnriched
	}
	fields := map[string]any{
		"enrichmentStatus": status,
		"lastEnriched":     now,
	}
	if res.ImdbID != "" {
		fields["imdbId"] = res.ImdbID
	}
	if !item.MediaType.Valid() {
		fields["mediaType"] = res.MediaType
	}

	if d := res.Details; d != nil {
		if finite(d.VoteAverage) {
			fields["tmdbRating"] = RoundRating(*d.VoteAverage)
		}
		if d.VoteCount != nil {
			fields["tmdbVoteCount"] = *d.VoteCount
		}
		if res.MediaType == models.MediaTypeTV {
			if item.Name == "" && d.Title != "" {
				fields["name"] = d.Title
			}
			if item.FirstAirDate == "" && d.ReleaseDate != "" {
				fields["firstAirDate"] = d.ReleaseDate
			}
		} else {
			if item.Title == "" && d.Title != "" {
				fields["title"] = d.Title
			}
			if item.ReleaseDate == "" && d.ReleaseDate != "" {
				fields["releaseDate"] = d.ReleaseDate
			}
		}
		if item.PosterPath == nil && d.PosterPath != "" {
			fields["posterPath"] = d.PosterPath
		}
	}

	if r := res.Rating; r != nil {
		fields["imdbRating"] = RoundRating(r.Rating)
		fields["imdbVoteCount"] = r.VoteCount
	}
	return fields
}

func (w *Worker) pause(ctx context.Context) error {
	if w.itemDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(w.itemDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) stop(userID string, sum Summary, err error) (Summary, error) {
	sum.Stopped = true
	log.Info().Int("enriched", sum.Enriched).Int("failed", sum.Failed).Msg("Enrichment run stopped")
	w.notify(userID, models.ProgressUpdate{
		JobID:   JobName,
		Message: "Enrichment stopped",
		UserID:  userID,
		Status:  "stopped",
		Done:    true,
	})
	return sum, err
}

func (w *Worker) notify(userID string, update models.ProgressUpdate) {
	if w.notifier != nil {
		w.notifier.SendJSON(userID, update)
	}
}

// IsStopped reports whether err came from a cancelled run.
func IsStopped(err error) bool {
	return errors.Is(err, context.Canceled)
}
