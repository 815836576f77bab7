package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vrsandeep/reel-go/internal/models"
)

func (s *Server) handleListLists(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	lists, err := s.app.Lists.ListLists(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if lists == nil {
		lists = []*models.List{}
	}
	RespondWithJSON(w, http.StatusOK, lists)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	list, err := s.app.Lists.CreateList(r.Context(), user.ID, payload.Name)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, list)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	listID := chi.URLParam(r, "listID")
	removed, err := s.app.Lists.DeleteList(r.Context(), user.ID, listID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"itemsRemoved": removed,
	})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	listID := chi.URLParam(r, "listID")
	items, err := s.app.Lists.ListItems(r.Context(), user.ID, listID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []*models.ListItem{}
	}
	RespondWithJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	listID := chi.URLParam(r, "listID")

	// The outer ID shadows the item's so ids may be sent as numbers.
	var payload struct {
		models.ListItem
		ID json.RawMessage `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	id, ok := parseItemID(payload.ID)
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid item: an id is required")
		return
	}
	in := payload.ListItem
	in.ID = id

	item, err := s.app.Lists.AddItem(r.Context(), user.ID, listID, &in)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	s.triggerEnrichment(user.ID)
	RespondWithJSON(w, http.StatusCreated, item)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	listID := chi.URLParam(r, "listID")
	itemID := chi.URLParam(r, "itemID")
	if err := s.app.Lists.RemoveItem(r.Context(), user.ID, listID, itemID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseItemID accepts an id sent either as a JSON string or a JSON number.
func parseItemID(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), true
	}
	return n.String(), true
}
