package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vrsandeep/reel-go/internal/models"
	"github.com/vrsandeep/reel-go/internal/providers"
)

// FakeMetadata is an in-memory MetadataProvider. Unknown ids fail with
// not_found; Disabled makes every call fail with disabled.
type FakeMetadata struct {
	mu       sync.Mutex
	Disabled bool
	details  map[string]models.TitleDetails
	xrefs    map[string]string
	delays   map[string]time.Duration
	failures map[string]providers.Kind
	calls    map[string]int
}

func NewFakeMetadata() *FakeMetadata {
	return &FakeMetadata{
		details:  make(map[string]models.TitleDetails),
		xrefs:    make(map[string]string),
		delays:   make(map[string]time.Duration),
		failures: make(map[string]providers.Kind),
		calls:    make(map[string]int),
	}
}

func fakeKey(mediaType models.MediaType, id string) string {
	if mediaType != models.MediaTypeTV {
		mediaType = models.MediaTypeMovie
	}
	return fmt.Sprintf("%s:%s", mediaType, id)
}

// AddTitle registers details, and optionally an IMDb cross-reference.
func (f *FakeMetadata) AddTitle(d models.TitleDetails, imdbID string) *FakeMetadata {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fakeKey(d.MediaType, d.ID)
	f.details[key] = d
	if imdbID != "" {
		f.xrefs[key] = imdbID
	}
	return f
}

// Delay makes calls for id take d before answering.
func (f *FakeMetadata) Delay(id string, d time.Duration) *FakeMetadata {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[id] = d
	return f
}

// Fail makes calls for id fail with kind.
func (f *FakeMetadata) Fail(id string, kind providers.Kind) *FakeMetadata {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[id] = kind
	return f
}

// Calls returns how many calls were made for id.
func (f *FakeMetadata) Calls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func (f *FakeMetadata) begin(ctx context.Context, id string) error {
	f.mu.Lock()
	f.calls[id]++
	delay := f.delays[id]
	kind, failing := f.failures[id]
	disabled := f.Disabled
	f.mu.Unlock()

	if disabled {
		return providers.NewError("fake-metadata", providers.KindDisabled, nil)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return providers.NewError("fake-metadata", providers.KindTimeout, ctx.Err())
		}
	}
	if failing {
		return providers.NewError("fake-metadata", kind, nil)
	}
	return nil
}

func (f *FakeMetadata) Details(ctx context.Context, mediaType models.MediaType, id string) (*models.TitleDetails, error) {
	if err := f.begin(ctx, id); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.details[fakeKey(mediaType, id)]
	if !ok {
		return nil, providers.NewError("fake-metadata", providers.KindNotFound, nil)
	}
	return &d, nil
}

func (f *FakeMetadata) ExternalIDs(ctx context.Context, mediaType models.MediaType, id string) (string, error) {
	if err := f.begin(ctx, id); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	x, ok := f.xrefs[fakeKey(mediaType, id)]
	if !ok {
		return "", providers.NewError("fake-metadata", providers.KindNotFound, nil)
	}
	return x, nil
}

// Search returns every registered title of mediaType released in year (any year when 0).
func (f *FakeMetadata) Search(ctx context.Context, mediaType models.MediaType, query string, year int) ([]models.TitleDetails, error) {
	if err := f.begin(ctx, "search:"+query); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TitleDetails
	for _, d := range f.details {
		if fakeKey(d.MediaType, "") != fakeKey(mediaType, "") {
			continue
		}
		if year > 0 && models.YearOf(d.ReleaseDate) != fmt.Sprintf("%04d", year) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *FakeMetadata) Lookup(ctx context.Context, id string) (*models.TitleDetails, error) {
	d, err := f.Details(ctx, models.MediaTypeMovie, id)
	if err == nil || !providers.IsNotFound(err) {
		return d, err
	}
	return f.Details(ctx, models.MediaTypeTV, id)
}

// FakeRatings is an in-memory RatingsProvider keyed by IMDb id.
type FakeRatings struct {
	mu       sync.Mutex
	Disabled bool
	ratings  map[string]models.ExternalRating
	calls    int
}

func NewFakeRatings() *FakeRatings {
	return &FakeRatings{ratings: make(map[string]models.ExternalRating)}
}

func (f *FakeRatings) Add(imdbID string, rating float64, votes int) *FakeRatings {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings[imdbID] = models.ExternalRating{ImdbID: imdbID, Rating: rating, VoteCount: votes}
	return f
}

func (f *FakeRatings) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeRatings) Rating(ctx context.Context, imdbID string) (*models.ExternalRating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.Disabled {
		return nil, providers.NewError("fake-ratings", providers.KindDisabled, nil)
	}
	r, ok := f.ratings[imdbID]
	if !ok {
		return nil, providers.NewError("fake-ratings", providers.KindNotFound, nil)
	}
	return &r, nil
}
