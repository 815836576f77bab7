package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vrsandeep/reel-go/internal/api"
	"github.com/vrsandeep/reel-go/internal/auth"
	"github.com/vrsandeep/reel-go/internal/core"
	"github.com/vrsandeep/reel-go/internal/enrich"
	"github.com/vrsandeep/reel-go/internal/jobs"
	"github.com/vrsandeep/reel-go/internal/logging"
	"github.com/vrsandeep/reel-go/internal/store"
)

func main() {
	// Initialize the core application components
	app, err := core.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Fatal error during application setup")
	}
	defer app.Close()
	logging.Setup(app.Config.Log.Level, app.Config.Log.Format)

	// --- First User Provisioning ---
	if err := provisionAdmin(app.Store); err != nil {
		log.Fatal().Err(err).Msg("Could not provision the default admin user")
	}

	// Sweep every user's lists for pending items now and on a schedule.
	if _, err := app.StartEnrichment(); err != nil {
		log.Warn().Err(err).Msg("Initial enrichment run could not start")
	}
	if scheduler := jobs.StartScheduler(app.Jobs, enrich.JobName, app.Config.Enrichment.SweepInterval); scheduler != nil {
		defer scheduler.Stop()
	}

	// Setup the API server
	server := api.NewServer(app)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Config.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("Starting web server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Could not start server")
		}
	}()

	// Wait for an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Create a context with a timeout to allow existing connections to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting.")
}

// provisionAdmin creates an "admin" account with a random password when the
// user table is empty, and prints the password once.
func provisionAdmin(st *store.Store) error {
	userCount, err := st.CountUsers()
	if err != nil {
		return fmt.Errorf("could not check user count: %w", err)
	}
	if userCount > 0 {
		return nil
	}

	log.Info().Msg("No users found. Creating default admin account.")
	password := rand.Text()
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := st.CreateUser("admin", passwordHash, "admin"); err != nil {
		return err
	}
	log.Info().Msg("==================================================")
	log.Info().Msg("Default admin user created.")
	log.Info().Msg("Username: admin")
	log.Info().Msgf("Password: %s", password)
	log.Info().Msg("Please change this password immediately.")
	log.Info().Msg("==================================================")
	return nil
}
