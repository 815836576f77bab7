package api

// This file contains the middleware for request logging and bearer authentication.

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/vrsandeep/reel-go/internal/auth"
	"github.com/vrsandeep/reel-go/internal/models"
	"github.com/vrsandeep/reel-go/internal/store"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey string

const userContextKey = contextKey("user")

// requestLogger writes one access log line per request, tagged with the id
// set by middleware.RequestID.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		evt := log.Info()
		if status >= http.StatusInternalServerError {
			evt = log.Warn()
		}
		evt.
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_ip", r.RemoteAddr).
			Int("status", status).
			Int("size", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	})
}

// queryTokenAsBearer copies a ?token= query parameter into the Authorization
// header when the request carries none.
func queryTokenAsBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := r.URL.Query().Get("token"); token != "" && r.Header.Get("Authorization") == "" {
			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+token)
		}
		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware verifies the bearer token of a request.
// If the session is valid, it retrieves the user's details from the database
// and injects them into the request's context for downstream handlers to use.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			if errors.Is(err, auth.ErrMissingToken) {
				RespondWithError(w, http.StatusUnauthorized, "Unauthorized: Missing bearer token")
				return
			}
			RespondWithError(w, http.StatusUnauthorized, "Unauthorized: Invalid token")
			return
		}

		// Add the user object to the request context.
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) authenticate(r *http.Request) (*models.User, error) {
	token, ok := auth.BearerToken(r)
	if !ok {
		return nil, auth.ErrMissingToken
	}
	user, err := s.store.GetUserFromSession(token)
	if err != nil {
		if !errors.Is(err, store.ErrInvalidSession) && !errors.Is(err, store.ErrSessionExpired) {
			log.Error().Err(err).Msg("Session lookup failed")
		}
		return nil, auth.ErrInvalidToken
	}
	return user, nil
}

// getUserFromContext is a helper function to safely retrieve the user object from the request context.
// It returns nil if the user is not found in the context.
func getUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(userContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
