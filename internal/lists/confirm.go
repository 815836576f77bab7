package lists

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vrsandeep/reel-go/internal/limiter"
	"github.com/vrsandeep/reel-go/internal/models"
)

// ImportSelection is one approved id. MediaType comes from the analysis
// result; it is empty when the client sent a bare id.
type ImportSelection struct {
	ID        string
	MediaType models.MediaType
}

// SelectIDs turns bare ids into selections without a media type.
func SelectIDs(ids ...string) []ImportSelection {
	out := make([]ImportSelection, len(ids))
	for i, id := range ids {
		out[i] = ImportSelection{ID: id}
	}
	return out
}

// ConfirmImport adds the approved ids that are not in rl yet and returns how
// many were written. Ids the metadata provider cannot resolve are left out of
// the write and the count. Re-submitting the same ids adds nothing.
func (s *Service) ConfirmImport(ctx context.Context, rl *ResolvedList, picks []ImportSelection) (int, error) {
	if len(picks) == 0 {
		return 0, nil
	}

	existing, err := s.repo.ItemIDs(ctx, rl.Ref)
	if err != nil {
		return 0, fmt.Errorf("load existing ids: %w", err)
	}
	fresh := newSelections(picks, existing)
	if len(fresh) == 0 {
		return 0, nil
	}

	now := s.now()
	resolved := limiter.Map(ctx, s.limiter, fresh, func(ctx context.Context, pick ImportSelection) *models.ListItem {
		return s.lookupItem(ctx, pick, now)
	})
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	items := make([]*models.ListItem, 0, len(resolved))
	for i, item := range resolved {
		if item == nil {
			log.Warn().Str("user_id", rl.Ref.UserID).Str("list_id", rl.Ref.ListID).Str("tmdb_id", fresh[i].ID).
				Msg("Dropping import id the metadata provider could not resolve")
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return 0, nil
	}
	if err := s.repo.AddItems(ctx, rl.Ref, items); err != nil {
		return 0, fmt.Errorf("write imported items: %w", err)
	}

	log.Info().Str("user_id", rl.Ref.UserID).Str("list_id", rl.Ref.ListID).Int("added", len(items)).
		Int("dropped", len(fresh)-len(items)).Msg("Confirmed import")
	return len(items), nil
}

// lookupItem resolves a selection to a new pending item, or nil when the
// provider has nothing for it. Movie and tv ids overlap, so a known media type
// is looked up directly and only bare ids go through Lookup.
func (s *Service) lookupItem(ctx context.Context, pick ImportSelection, now time.Time) *models.ListItem {
	if s.metadata == nil {
		return nil
	}
	var (
		details *models.TitleDetails
		err     error
	)
	if pick.MediaType.Valid() {
		details, err = s.metadata.Details(ctx, pick.MediaType, pick.ID)
	} else {
		details, err = s.metadata.Lookup(ctx, pick.ID)
	}
	if err != nil || details == nil {
		log.Debug().Err(err).Str("tmdb_id", pick.ID).Str("media_type", string(pick.MediaType)).Msg("Metadata lookup failed")
		return nil
	}
	item := details.ToListItem()
	item.ID = pick.ID
	item.DateAdded = now
	return item
}

// newSelections trims ids and drops blanks, repeats and ids already in
// existing, keeping first-seen order. Item ids are unique per list whatever
// their media type.
func newSelections(picks []ImportSelection, existing map[string]bool) []ImportSelection {
	seen := make(map[string]bool, len(picks))
	out := make([]ImportSelection, 0, len(picks))
	for _, pick := range picks {
		pick.ID = strings.TrimSpace(pick.ID)
		if pick.ID == "" || existing[pick.ID] || seen[pick.ID] {
			continue
		}
		seen[pick.ID] = true
		out = append(out, pick)
	}
	return out
}
