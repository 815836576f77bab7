// Package providers holds what the external metadata and ratings clients
// share: the failure taxonomy and the JSON request helper. Every provider
// call is best effort, so failures are ordinary error values that callers
// degrade on.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/vrsandeep/reel-go/internal/metrics"
	"github.com/vrsandeep/reel-go/internal/models"
)

type Kind string

const (
	KindDisabled    Kind = "disabled"
	KindNotFound    Kind = "not_found"
	KindTimeout     Kind = "timeout"
	KindUnavailable Kind = "unavailable"
	KindDecode      Kind = "decode"
)

// FetchError describes why a provider call produced no data.
type FetchError struct {
	Provider string
	Kind     Kind
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewError builds a FetchError and counts it.
func NewError(provider string, kind Kind, err error) *FetchError {
	metrics.FetchFailures.WithLabelValues(provider, string(kind)).Inc()
	return &FetchError{Provider: provider, Kind: kind, Err: err}
}

// KindOf returns the failure kind of err, or "" when err is not a FetchError.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsNotFound reports whether the provider answered that the title does not exist.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// MetadataProvider is the primary metadata source: details, cross-reference
// ids and title search.
type MetadataProvider interface {
	Details(ctx context.Context, mediaType models.MediaType, id string) (*models.TitleDetails, error)
	ExternalIDs(ctx context.Context, mediaType models.MediaType, id string) (string, error)
	Search(ctx context.Context, mediaType models.MediaType, query string, year int) ([]models.TitleDetails, error)
	Lookup(ctx context.Context, id string) (*models.TitleDetails, error)
}

// RatingsProvider is the secondary ratings source keyed by the cross-reference id.
type RatingsProvider interface {
	Rating(ctx context.Context, imdbID string) (*models.ExternalRating, error)
}

// GetJSON issues req and decodes a 2xx JSON body into v. Transport failures,
// deadlines, non-2xx statuses and malformed bodies become FetchErrors.
func GetJSON(client *http.Client, provider string, req *http.Request, v any) error {
	resp, err := client.Do(req)
	if err != nil {
		return NewError(provider, classifyTransport(req.Context(), err), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return NewError(provider, KindNotFound, nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		io.Copy(io.Discard, resp.Body)
		return NewError(provider, KindUnavailable, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		if kind := classifyTransport(req.Context(), err); kind == KindTimeout {
			return NewError(provider, kind, err)
		}
		return NewError(provider, KindDecode, err)
	}
	return nil
}

func classifyTransport(ctx context.Context, err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindUnavailable
}
