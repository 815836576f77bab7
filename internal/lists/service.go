// Package lists holds the list pipelines: resolution, CSV export, import
// analysis and confirmation, sync ingestion and plain list management.
package lists

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/vrsandeep/reel-go/internal/enrich"
	"github.com/vrsandeep/reel-go/internal/limiter"
	"github.com/vrsandeep/reel-go/internal/models"
	"github.com/vrsandeep/reel-go/internal/providers"
	"github.com/vrsandeep/reel-go/internal/store"
)

var (
	ErrListNotFound       = errors.New("list not found")
	ErrForbidden          = errors.New("list belongs to another user")
	ErrInvalidListID      = errors.New("invalid list id")
	ErrWatchlistReadOnly  = errors.New("the watchlist cannot be deleted")
	ErrEmptyList          = errors.New("list has no items")
	ErrNoRows             = errors.New("csv has no data rows")
	ErrInvalidItem        = errors.New("invalid item")
	ErrItemNotFound       = errors.New("item not found")
	ErrItemExists         = errors.New("item already in list")
	ErrProviderRequired   = errors.New("item details are required while the metadata provider is disabled")
	ErrItemNotInCatalogue = errors.New("item not found in metadata provider")
)

// DefaultConcurrency caps in-flight provider calls for interactive requests.
const DefaultConcurrency = 8

const watchlistLabel = "Watchlist"

var listIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// Repository is the typed document store the pipelines read and write.
type Repository interface {
	GetList(ctx context.Context, listID string) (*models.List, error)
	ListLists(ctx context.Context, userID string) ([]*models.List, error)
	CreateList(ctx context.Context, list *models.List) error
	DeleteList(ctx context.Context, userID, listID string) (int, error)
	GetListItems(ctx context.Context, userID, listID string) ([]*models.ListItem, error)
	GetWatchlistItems(ctx context.Context, userID string) ([]*models.ListItem, error)
	ItemIDs(ctx context.Context, ref models.ListRef) (map[string]bool, error)
	AddItems(ctx context.Context, ref models.ListRef, items []*models.ListItem) error
	DeleteItem(ctx context.Context, ref models.ListRef, itemID string) error
}

type Service struct {
	repo     Repository
	metadata providers.MetadataProvider
	enricher *enrich.Enricher
	limiter  *limiter.Limiter
	now      func() time.Time
}

// NewService wires the pipelines. metadata may be nil when the provider is
// not configured; concurrency <= 0 falls back to DefaultConcurrency.
func NewService(repo Repository, metadata providers.MetadataProvider, enricher *enrich.Enricher, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Service{
		repo:     repo,
		metadata: metadata,
		enricher: enricher,
		limiter:  limiter.New(concurrency),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ResolvedList is a list the caller is allowed to use.
type ResolvedList struct {
	Ref         models.ListRef
	DisplayName string
	// List is nil for the watchlist.
	List *models.List
}

// ResolveList maps a list id to the caller's watchlist or to one of their
// custom lists.
func (s *Service) ResolveList(ctx context.Context, userID, listID string) (*ResolvedList, error) {
	if !listIDPattern.MatchString(listID) {
		return nil, ErrInvalidListID
	}
	if listID == models.WatchlistID {
		return &ResolvedList{
			Ref:         models.ListRef{UserID: userID, ListID: models.WatchlistID},
			DisplayName: watchlistLabel,
		}, nil
	}

	list, err := s.repo.GetList(ctx, listID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load list %s: %w", listID, err)
	}
	if list.OwnerID != userID {
		return nil, ErrForbidden
	}
	return &ResolvedList{
		Ref:         models.ListRef{UserID: userID, ListID: list.ID},
		DisplayName: list.DisplayName(),
		List:        list,
	}, nil
}

func (s *Service) items(ctx context.Context, rl *ResolvedList) ([]*models.ListItem, error) {
	var (
		items []*models.ListItem
		err   error
	)
	if rl.Ref.IsWatchlist() {
		items, err = s.repo.GetWatchlistItems(ctx, rl.Ref.UserID)
	} else {
		items, err = s.repo.GetListItems(ctx, rl.Ref.UserID, rl.Ref.ListID)
	}
	if err != nil {
		return nil, fmt.Errorf("load items of %s: %w", rl.Ref.ListID, err)
	}
	return items, nil
}
