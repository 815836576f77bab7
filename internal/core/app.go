package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vrsandeep/reel-go/internal/cache"
	"github.com/vrsandeep/reel-go/internal/config"
	"github.com/vrsandeep/reel-go/internal/db"
	"github.com/vrsandeep/reel-go/internal/enrich"
	"github.com/vrsandeep/reel-go/internal/jobs"
	"github.com/vrsandeep/reel-go/internal/lists"
	"github.com/vrsandeep/reel-go/internal/providers"
	"github.com/vrsandeep/reel-go/internal/providers/imdb"
	"github.com/vrsandeep/reel-go/internal/providers/tmdb"
	"github.com/vrsandeep/reel-go/internal/providers/trakt"
	"github.com/vrsandeep/reel-go/internal/store"
	"github.com/vrsandeep/reel-go/internal/websocket"
)

// App holds the core components of the application that are shared
// between the server and the CLI.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Store    *store.Store
	WsHub    *websocket.Hub
	Jobs     *jobs.Manager
	Metadata providers.MetadataProvider
	Ratings  providers.RatingsProvider
	Trakt    *trakt.Client
	Enricher *enrich.Enricher
	Worker   *enrich.Worker
	Lists    *lists.Service
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, and running migrations.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(database); err != nil {
		// We can't proceed without a valid database schema.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	app := Build(cfg, database, DefaultProviders(cfg))
	log.Info().Msg("Core application setup complete.")
	return app, nil
}

// Providers are the external clients an App talks to. Nil fields are
// treated as disabled.
type Providers struct {
	Metadata providers.MetadataProvider
	Ratings  providers.RatingsProvider
	Trakt    *trakt.Client
}

// DefaultProviders builds the real HTTP clients from configuration.
func DefaultProviders(cfg *config.Config) Providers {
	p := Providers{
		Trakt: trakt.NewClient(cfg.Trakt.ClientID, cfg.Trakt.BaseURL),
	}
	tmdbClient := tmdb.New(cfg.TMDB.APIKey,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithTimeout(cfg.ProviderTimeout()),
		tmdb.WithCache(cache.NewMemory(cfg.CacheTTL()), cfg.CacheTTL()),
	)
	if tmdbClient.Enabled() {
		p.Metadata = tmdbClient
	} else {
		log.Warn().Msg("TMDB API key not set, metadata lookups are disabled")
	}
	if cfg.IMDB.BaseURL != "" {
		p.Ratings = imdb.New(cfg.IMDB.BaseURL, cfg.ProviderTimeout())
	}
	return p
}

// Build wires every service on top of an open, migrated database. The
// enrichment job is registered but not started.
func Build(cfg *config.Config, database *sql.DB, p Providers) *App {
	st := store.New(database)
	hub := websocket.NewHub(cfg.CORS.AllowedOrigins...)
	go hub.Run()

	enricher := enrich.NewEnricher(p.Metadata, p.Ratings)
	app := &App{
		Config:   cfg,
		DB:       database,
		Store:    st,
		WsHub:    hub,
		Jobs:     jobs.NewManager(),
		Metadata: p.Metadata,
		Ratings:  p.Ratings,
		Trakt:    p.Trakt,
		Enricher: enricher,
		Worker: enrich.NewWorker(st, enricher, hub, enrich.Options{
			BatchSize: cfg.Enrichment.BatchSize,
			ItemDelay: cfg.ItemDelay(),
		}),
		Lists: lists.NewService(st, p.Metadata, enricher, cfg.Export.Concurrency),
	}
	app.Jobs.Register(enrich.JobName, "Item enrichment", app.runEnrichment)
	return app
}

// runEnrichment is the enrichment job. arg is a []string of user ids; nil
// means every user.
func (a *App) runEnrichment(ctx context.Context, arg any) error {
	userIDs, _ := arg.([]string)
	if len(userIDs) == 0 {
		ids, err := a.Store.UserIDs(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		userIDs = ids
	}
	_, err := a.Worker.Run(ctx, userIDs...)
	return err
}

// StartEnrichment asks the job manager to enrich the given users' lists. It
// is a no-op returning false when a run is already in progress.
func (a *App) StartEnrichment(userIDs ...string) (bool, error) {
	var arg any
	if len(userIDs) > 0 {
		arg = userIDs
	}
	err := a.Jobs.RunJob(enrich.JobName, arg)
	if errors.Is(err, jobs.ErrJobRunning) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.Jobs != nil {
		a.Jobs.StopJob()
		a.Jobs.Wait()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
