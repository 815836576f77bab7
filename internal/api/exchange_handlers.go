package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vrsandeep/reel-go/internal/lists"
	"github.com/vrsandeep/reel-go/internal/models"
)

// maxUploadBytes caps the size of an uploaded CSV, multipart framing included.
const maxUploadBytes = 10 << 20

func (s *Server) handleExportList(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	listID := chi.URLParam(r, "listID")

	file, err := s.app.Lists.Export(r.Context(), user.ID, listID)
	if errors.Is(err, lists.ErrEmptyList) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Body)
}

func (s *Server) handleAnalyzeImport(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	listID := chi.URLParam(r, "listID")

	// Ownership is checked before the body is looked at.
	rl, err := s.app.Lists.ResolveList(r.Context(), user.ID, listID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		RespondWithError(w, http.StatusBadRequest, "Content-Type must be multipart/form-data")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondWithError(w, http.StatusBadRequest, "CSV file is too large")
			return
		}
		RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, `Missing CSV file in form field "file"`)
		return
	}
	defer file.Close()

	result, err := s.app.Lists.AnalyzeImport(r.Context(), rl, file)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, result)
}

func (s *Server) handleConfirmImport(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	listID := chi.URLParam(r, "listID")

	rl, err := s.app.Lists.ResolveList(r.Context(), user.ID, listID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	picks, ok := decodeImportSelections(r)
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "moviesToImport must be an array of ids")
		return
	}

	added, err := s.app.Lists.ConfirmImport(r.Context(), rl, picks)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if added > 0 {
		s.triggerEnrichment(user.ID)
	}
	RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"moviesAdded": added,
		"message":     fmt.Sprintf("Successfully imported %d items", added),
	})
}

// decodeImportSelections reads {"moviesToImport": [...]} where every entry is
// a string or number id, or an object such as {"id": 1399, "mediaType": "tv"}.
// Matched items from the analysis response can be sent back as they are.
func decodeImportSelections(r *http.Request) ([]lists.ImportSelection, bool) {
	var payload struct {
		MoviesToImport json.RawMessage `json:"moviesToImport"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, false
	}
	var raw []json.RawMessage
	if len(payload.MoviesToImport) == 0 || string(payload.MoviesToImport) == "null" {
		return nil, false
	}
	if err := json.Unmarshal(payload.MoviesToImport, &raw); err != nil {
		return nil, false
	}
	picks := make([]lists.ImportSelection, 0, len(raw))
	for _, v := range raw {
		pick, ok := parseImportSelection(v)
		if !ok {
			return nil, false
		}
		picks = append(picks, pick)
	}
	return picks, true
}

func parseImportSelection(raw json.RawMessage) (lists.ImportSelection, bool) {
	if id, ok := parseItemID(raw); ok {
		return lists.ImportSelection{ID: id}, true
	}
	var entry struct {
		ID        json.RawMessage  `json:"id"`
		MediaType models.MediaType `json:"mediaType"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return lists.ImportSelection{}, false
	}
	id, ok := parseItemID(entry.ID)
	if !ok || (entry.MediaType != "" && !entry.MediaType.Valid()) {
		return lists.ImportSelection{}, false
	}
	return lists.ImportSelection{ID: id, MediaType: entry.MediaType}, true
}
