// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vrsandeep/reel-go/internal/core"
	"github.com/vrsandeep/reel-go/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app   *core.App
	store *store.Store
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app:   app,
		store: app.Store,
	}
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Set before any sub-router is mounted so they inherit the JSON bodies.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if origins := s.app.Config.CORS.AllowedOrigins; len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Trakt-Access-Token"},
			ExposedHeaders:   []string{"Content-Disposition", "X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           600,
		}))
	}

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.Ping(r.Context()); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/users/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)

			r.Post("/users/logout", s.handleLogout)
			r.Get("/users/me", s.handleGetMe)

			// List Routes
			r.Get("/lists", s.handleListLists)
			r.Post("/lists", s.handleCreateList)
			r.Route("/lists/{listID}", func(r chi.Router) {
				r.Delete("/", s.handleDeleteList)

				r.Get("/items", s.handleListItems)
				r.Post("/items", s.handleAddItem)
				r.Delete("/items/{itemID}", s.handleRemoveItem)

				// Exchange Routes
				r.Get("/export", s.handleExportList)
				r.Post("/import/analyze", s.handleAnalyzeImport)
				r.Post("/import/confirm", s.handleConfirmImport)

				r.Post("/sync/trakt", s.handleTraktSync)
			})

			// Enrichment Job Routes
			r.Post("/enrichment/start", s.handleStartEnrichment)
			r.Post("/enrichment/stop", s.handleStopEnrichment)
			r.Get("/enrichment/status", s.handleGetEnrichmentStatus)
		})
	})

	// WebSocket route. Browsers cannot set headers on the handshake, so the
	// token may also come from the query string.
	r.Group(func(r chi.Router) {
		r.Use(queryTokenAsBearer)
		r.Use(s.AuthMiddleware)
		r.Get("/ws/enrichment/progress", func(w http.ResponseWriter, r *http.Request) {
			s.app.WsHub.ServeWs(w, r, getUserFromContext(r).ID)
		})
	})

	return r
}
