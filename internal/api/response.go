// Helper functions for sending standardized JSON responses.

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/vrsandeep/reel-go/internal/csvcodec"
	"github.com/vrsandeep/reel-go/internal/lists"
)

// RespondWithJSON writes a JSON response with the given status code and payload.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		// If marshaling fails, return an error response
		RespondWithError(w, http.StatusInternalServerError, "Failed to marshal response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError writes a standardized JSON error response.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps errors from the lists service and the CSV
// codec to a status and a user-facing message. Anything unrecognised is a
// 500 whose detail only goes to the log.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, lists.ErrInvalidListID):
		RespondWithError(w, http.StatusBadRequest, "Invalid list id")
	case errors.Is(err, lists.ErrListNotFound):
		RespondWithError(w, http.StatusNotFound, "List not found")
	case errors.Is(err, lists.ErrForbidden):
		RespondWithError(w, http.StatusForbidden, "Forbidden: You do not have permission to access this list")
	case errors.Is(err, lists.ErrWatchlistReadOnly):
		RespondWithError(w, http.StatusBadRequest, "The watchlist cannot be deleted")
	case errors.Is(err, lists.ErrInvalidItem):
		RespondWithError(w, http.StatusBadRequest, "Invalid item: an id is required")
	case errors.Is(err, lists.ErrItemNotFound):
		RespondWithError(w, http.StatusNotFound, "Item not found")
	case errors.Is(err, lists.ErrItemExists):
		RespondWithError(w, http.StatusConflict, "Item is already in this list")
	case errors.Is(err, lists.ErrProviderRequired):
		RespondWithError(w, http.StatusBadRequest, "Item details are required while metadata lookups are disabled")
	case errors.Is(err, lists.ErrItemNotInCatalogue):
		RespondWithError(w, http.StatusNotFound, "Item not found in the metadata provider")
	case errors.Is(err, csvcodec.ErrEmptyFile), errors.Is(err, lists.ErrNoRows):
		RespondWithError(w, http.StatusBadRequest, "CSV file is empty or contains no data rows")
	case errors.Is(err, csvcodec.ErrLegacyHeaders):
		RespondWithError(w, http.StatusBadRequest, "This CSV uses the legacy export format. Please re-export your list and import the new file.")
	case errors.Is(err, csvcodec.ErrInvalidHeaders):
		RespondWithError(w, http.StatusBadRequest, "Invalid CSV headers. Expected: "+csvcodec.Header)
	default:
		log.Error().Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("Request failed")
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
