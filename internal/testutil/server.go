// Shared test server setup, which simplifies all API tests.

package testutil

import (
	"testing"

	"github.com/vrsandeep/reel-go/internal/api"
	"github.com/vrsandeep/reel-go/internal/config"
	"github.com/vrsandeep/reel-go/internal/core"
)

// SetupTestApp builds a fully wired core.App on an in-memory database.
// Zero-valued providers are disabled. Enrichment runs without the pause
// between items.
func SetupTestApp(t *testing.T, p core.Providers) *core.App {
	t.Helper()
	db := SetupTestDB(t)

	cfg := config.Default()
	cfg.Enrichment.ItemDelayMS = 0
	app := core.Build(cfg, db, p)

	// Registered after the database cleanup, so it runs first: no job may
	// touch the database once it is closed.
	t.Cleanup(func() {
		app.Jobs.StopJob()
		app.Jobs.Wait()
	})
	return app
}

// SetupTestServer initializes a core.App with every provider disabled and
// an api.Server on top of it.
func SetupTestServer(t *testing.T) (*api.Server, *core.App) {
	t.Helper()
	return SetupTestServerWithProviders(t, core.Providers{})
}

// SetupTestServerWithProviders is SetupTestServer with explicit providers.
func SetupTestServerWithProviders(t *testing.T, p core.Providers) (*api.Server, *core.App) {
	t.Helper()
	app := SetupTestApp(t, p)
	return api.NewServer(app), app
}
