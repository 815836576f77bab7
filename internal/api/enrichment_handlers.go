package api

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// handleStartEnrichment starts a run over the caller's lists. A run that is
// already in progress is left alone.
func (s *Server) handleStartEnrichment(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	started, err := s.app.StartEnrichment(user.ID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	message := "Enrichment started."
	if !started {
		message = "Enrichment is already running."
	}
	RespondWithJSON(w, http.StatusAccepted, map[string]interface{}{
		"started": started,
		"message": message,
	})
}

func (s *Server) handleStopEnrichment(w http.ResponseWriter, r *http.Request) {
	stopped := s.app.Jobs.StopJob()
	RespondWithJSON(w, http.StatusOK, map[string]bool{"stopped": stopped})
}

func (s *Server) handleGetEnrichmentStatus(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"running": s.app.Jobs.IsRunning(),
		"jobs":    s.app.Jobs.GetStatus(),
	})
}

// triggerEnrichment queues freshly written items for enrichment without
// failing the request that wrote them.
func (s *Server) triggerEnrichment(userID string) {
	if _, err := s.app.StartEnrichment(userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Could not start enrichment")
	}
}
