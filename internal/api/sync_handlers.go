package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vrsandeep/reel-go/internal/providers/trakt"
)

// handleTraktSync copies the caller's Trakt watchlist into a list. The
// Trakt OAuth token is supplied by the client on every call.
func (s *Server) handleTraktSync(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	listID := chi.URLParam(r, "listID")

	if _, err := s.app.Lists.ResolveList(r.Context(), user.ID, listID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	accessToken := r.Header.Get("X-Trakt-Access-Token")
	if accessToken == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing X-Trakt-Access-Token header")
		return
	}
	if s.app.Trakt == nil || !s.app.Trakt.Enabled() {
		RespondWithError(w, http.StatusBadRequest, "Trakt sync is not configured")
		return
	}

	entries, err := s.app.Trakt.Watchlist(r.Context(), accessToken)
	switch {
	case err == nil:
	case errors.Is(err, trakt.ErrDisabled):
		RespondWithError(w, http.StatusBadRequest, "Trakt sync is not configured")
		return
	case errors.Is(err, trakt.ErrUnauthorized):
		RespondWithError(w, http.StatusBadRequest, "Trakt rejected the access token")
		return
	default:
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Trakt watchlist fetch failed")
		RespondWithError(w, http.StatusBadGateway, "Could not reach Trakt")
		return
	}

	items := trakt.ToListItems(entries, time.Now().UTC())
	added, err := s.app.Lists.IngestSync(r.Context(), user.ID, listID, items)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if added > 0 {
		s.triggerEnrichment(user.ID)
	}
	RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"fetched":    len(entries),
		"itemsAdded": added,
	})
}
