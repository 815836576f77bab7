package models

import "time"

// WatchlistID is the sentinel list id addressing a user's implicit watchlist.
const WatchlistID = "watchlist"

// List is a user-owned custom list. The watchlist has no stored List document.
type List struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	OwnerID   string     `json:"ownerId"`
	IsPinned  bool       `json:"isPinned"`
	PinnedAt  *time.Time `json:"pinnedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// DisplayName returns the list name, or its id when the name is blank.
func (l *List) DisplayName() string {
	if l.Name == "" {
		return l.ID
	}
	return l.Name
}

// ListRef addresses one item collection: a custom list or the watchlist.
type ListRef struct {
	UserID string
	ListID string
}

// IsWatchlist reports whether the reference points at the implicit watchlist.
func (r ListRef) IsWatchlist() bool {
	return r.ListID == WatchlistID
}
