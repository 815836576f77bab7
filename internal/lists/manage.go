package lists

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vrsandeep/reel-go/internal/models"
	"github.com/vrsandeep/reel-go/internal/store"
)

// CreateList creates a custom list owned by userID. A blank name becomes the id.
func (s *Service) CreateList(ctx context.Context, userID, name string) (*models.List, error) {
	list := &models.List{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		OwnerID:   userID,
		CreatedAt: s.now(),
	}
	if list.Name == "" {
		list.Name = list.ID
	}
	if err := s.repo.CreateList(ctx, list); err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}
	return list, nil
}

// ListLists returns the caller's custom lists. The watchlist is implicit and
// not included.
func (s *Service) ListLists(ctx context.Context, userID string) ([]*models.List, error) {
	lists, err := s.repo.ListLists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	return lists, nil
}

// DeleteList removes a custom list and all of its items.
func (s *Service) DeleteList(ctx context.Context, userID, listID string) (int, error) {
	rl, err := s.ResolveList(ctx, userID, listID)
	if err != nil {
		return 0, err
	}
	if rl.Ref.IsWatchlist() {
		return 0, ErrWatchlistReadOnly
	}
	removed, err := s.repo.DeleteList(ctx, userID, rl.Ref.ListID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrListNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("delete list %s: %w", listID, err)
	}
	log.Info().Str("user_id", userID).Str("list_id", listID).Int("items", removed).Msg("Deleted list")
	return removed, nil
}

func (s *Service) ListItems(ctx context.Context, userID, listID string) ([]*models.ListItem, error) {
	rl, err := s.ResolveList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	return s.items(ctx, rl)
}

// AddItem adds one title to a list. When only an id is given the rest is
// filled from the metadata provider. The item starts out pending enrichment.
func (s *Service) AddItem(ctx context.Context, userID, listID string, in *models.ListItem) (*models.ListItem, error) {
	rl, err := s.ResolveList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, ErrInvalidItem
	}
	id := strings.TrimSpace(in.ID)
	if !listIDPattern.MatchString(id) || id == models.WatchlistID {
		return nil, ErrInvalidItem
	}

	existing, err := s.repo.ItemIDs(ctx, rl.Ref)
	if err != nil {
		return nil, fmt.Errorf("load existing ids: %w", err)
	}
	if existing[id] {
		return nil, ErrItemExists
	}

	item := *in
	item.ID = id
	if item.DisplayTitle() == "" {
		if s.metadata == nil {
			return nil, ErrProviderRequired
		}
		var details *models.TitleDetails
		if item.MediaType.Valid() {
			details, err = s.metadata.Details(ctx, item.MediaType, id)
		} else {
			details, err = s.metadata.Lookup(ctx, id)
		}
		if err != nil {
			log.Debug().Err(err).Str("tmdb_id", id).Msg("Could not resolve item to add")
			return nil, ErrItemNotInCatalogue
		}
		resolved := details.ToListItem()
		resolved.ID = id
		item = *resolved
	}
	if !item.MediaType.Valid() {
		item.MediaType = item.ResolvedMediaType()
	}
	item.EnrichmentStatus = models.EnrichmentPending
	item.LastEnriched = nil
	item.DateAdded = s.now()

	if err := s.repo.AddItems(ctx, rl.Ref, []*models.ListItem{&item}); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return &item, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, listID, itemID string) error {
	rl, err := s.ResolveList(ctx, userID, listID)
	if err != nil {
		return err
	}
	err = s.repo.DeleteItem(ctx, rl.Ref, itemID)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidPath) {
		return ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

// IngestSync writes items pulled from a sync provider. Items already in the
// list are left untouched; the rest are written in one batch as pending.
func (s *Service) IngestSync(ctx context.Context, userID, listID string, items []*models.ListItem) (int, error) {
	rl, err := s.ResolveList(ctx, userID, listID)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	existing, err := s.repo.ItemIDs(ctx, rl.Ref)
	if err != nil {
		return 0, fmt.Errorf("load existing ids: %w", err)
	}

	now := s.now()
	fresh := make([]*models.ListItem, 0, len(items))
	for _, item := range items {
		if item == nil || item.ID == "" || existing[item.ID] {
			continue
		}
		existing[item.ID] = true
		item.EnrichmentStatus = models.EnrichmentPending
		if item.DateAdded.IsZero() {
			item.DateAdded = now
		}
		fresh = append(fresh, item)
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	if err := s.repo.AddItems(ctx, rl.Ref, fresh); err != nil {
		return 0, fmt.Errorf("write synced items: %w", err)
	}
	log.Info().Str("user_id", userID).Str("list_id", rl.Ref.ListID).Int("added", len(fresh)).Msg("Ingested synced items")
	return len(fresh), nil
}
