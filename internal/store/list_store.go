package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vrsandeep/reel-go/internal/models"
)

// Document layout:
//
//	users/{uid}/watchlist/{itemId}
//	users/{uid}/custom_lists/{listId}
//	users/{uid}/custom_lists/{listId}/items/{itemId}

func listsCollection(userID string) (string, error) {
	return docPath("users", userID, "custom_lists")
}

func listDoc(userID, listID string) (string, error) {
	return docPath("users", userID, "custom_lists", listID)
}

func itemsCollection(ref models.ListRef) (string, error) {
	if ref.IsWatchlist() {
		return docPath("users", ref.UserID, models.WatchlistID)
	}
	return docPath("users", ref.UserID, "custom_lists", ref.ListID, "items")
}

func itemDoc(ref models.ListRef, itemID string) (string, error) {
	parent, err := itemsCollection(ref)
	if err != nil {
		return "", err
	}
	if _, err := docPath(itemID); err != nil {
		return "", err
	}
	return parent + "/" + itemID, nil
}

// GetList finds a custom list by id regardless of its owner, so callers can
// tell a missing list apart from one owned by someone else.
func (s *Store) GetList(ctx context.Context, listID string) (*models.List, error) {
	if _, err := docPath(listID); err != nil {
		return nil, err
	}
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE doc_id = ? AND parent GLOB 'users/*/custom_lists' ORDER BY rowid LIMIT 1",
		listID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var list models.List
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, fmt.Errorf("decode list %s: %w", listID, err)
	}
	return &list, nil
}

// ListLists returns a user's custom lists in creation order.
func (s *Store) ListLists(ctx context.Context, userID string) ([]*models.List, error) {
	parent, err := listsCollection(userID)
	if err != nil {
		return nil, err
	}
	docs, err := collectionData(ctx, s.db, parent, "", 0)
	if err != nil {
		return nil, err
	}
	lists := make([]*models.List, 0, len(docs))
	for _, data := range docs {
		var list models.List
		if err := json.Unmarshal([]byte(data), &list); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		lists = append(lists, &list)
	}
	return lists, nil
}

// CreateList stores a new custom list under its owner.
func (s *Store) CreateList(ctx context.Context, list *models.List) error {
	path, err := listDoc(list.OwnerID, list.ID)
	if err != nil {
		return err
	}
	return setDoc(ctx, s.db, path, list)
}

// DeleteList removes a list and every item in it. The item collection is
// enumerated and deleted in the same transaction as the list document.
func (s *Store) DeleteList(ctx context.Context, userID, listID string) (int, error) {
	path, err := listDoc(userID, listID)
	if err != nil {
		return 0, err
	}
	items, err := itemsCollection(models.ListRef{UserID: userID, ListID: listID})
	if err != nil {
		return 0, err
	}

	removed := 0
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, "SELECT path FROM documents WHERE parent = ?", items)
		if err != nil {
			return err
		}
		var paths []string
		for rows.Next() {
			var p string
			if err := rows.Scan(&p); err != nil {
				rows.Close()
				return err
			}
			paths = append(paths, p)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, p := range paths {
			if err := deleteDoc(ctx, tx, p); err != nil {
				return fmt.Errorf("delete item %s: %w", p, err)
			}
			removed++
		}
		return deleteDoc(ctx, tx, path)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func decodeItems(docs []string) ([]*models.ListItem, error) {
	items := make([]*models.ListItem, 0, len(docs))
	for _, data := range docs {
		var item models.ListItem
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		items = append(items, &item)
	}
	return items, nil
}

// GetItems returns every item of a list in insertion order.
func (s *Store) GetItems(ctx context.Context, ref models.ListRef) ([]*models.ListItem, error) {
	parent, err := itemsCollection(ref)
	if err != nil {
		return nil, err
	}
	docs, err := collectionData(ctx, s.db, parent, "", 0)
	if err != nil {
		return nil, err
	}
	return decodeItems(docs)
}

// GetListItems returns the items of a custom list.
func (s *Store) GetListItems(ctx context.Context, userID, listID string) ([]*models.ListItem, error) {
	return s.GetItems(ctx, models.ListRef{UserID: userID, ListID: listID})
}

// GetWatchlistItems returns the items of a user's watchlist.
func (s *Store) GetWatchlistItems(ctx context.Context, userID string) ([]*models.ListItem, error) {
	return s.GetItems(ctx, models.ListRef{UserID: userID, ListID: models.WatchlistID})
}

// GetItem returns one item of a list.
func (s *Store) GetItem(ctx context.Context, ref models.ListRef, itemID string) (*models.ListItem, error) {
	path, err := itemDoc(ref, itemID)
	if err != nil {
		return nil, err
	}
	var item models.ListItem
	if err := getDoc(ctx, s.db, path, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ItemIDs returns the set of item ids present in a list.
func (s *Store) ItemIDs(ctx context.Context, ref models.ListRef) (map[string]bool, error) {
	parent, err := itemsCollection(ref)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT doc_id FROM documents WHERE parent = ?", parent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// AddItems writes all items in one transaction. Either every item is
// written or none is. Existing items with the same id are replaced.
func (s *Store) AddItems(ctx context.Context, ref models.ListRef, items []*models.ListItem) error {
	if len(items) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, item := range items {
			path, err := itemDoc(ref, item.ID)
			if err != nil {
				return err
			}
			if err := setDoc(ctx, tx, path, item); err != nil {
				return fmt.Errorf("write item %s: %w", item.ID, err)
			}
		}
		return nil
	})
}

// PutItem writes a single item, replacing any previous version.
func (s *Store) PutItem(ctx context.Context, ref models.ListRef, item *models.ListItem) error {
	path, err := itemDoc(ref, item.ID)
	if err != nil {
		return err
	}
	return setDoc(ctx, s.db, path, item)
}

// MergeItem updates only the named fields of an existing item. Fields are
// keyed by their JSON names.
func (s *Store) MergeItem(ctx context.Context, ref models.ListRef, itemID string, fields map[string]any) error {
	path, err := itemDoc(ref, itemID)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return mergeDoc(ctx, tx, path, fields)
	})
}

// DeleteItem removes one item from a list.
func (s *Store) DeleteItem(ctx context.Context, ref models.ListRef, itemID string) error {
	path, err := itemDoc(ref, itemID)
	if err != nil {
		return err
	}
	return deleteDoc(ctx, s.db, path)
}

// PendingItems returns up to limit items that still await enrichment.
func (s *Store) PendingItems(ctx context.Context, ref models.ListRef, limit int) ([]*models.ListItem, error) {
	parent, err := itemsCollection(ref)
	if err != nil {
		return nil, err
	}
	docs, err := collectionData(ctx, s.db, parent,
		"COALESCE(NULLIF(json_extract(data, '$.enrichmentStatus'), ''), ?) = ?", limit,
		string(models.EnrichmentPending), string(models.EnrichmentPending))
	if err != nil {
		return nil, err
	}
	return decodeItems(docs)
}
