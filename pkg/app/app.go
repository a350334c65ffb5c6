// Package app wires the adapters and engines into a runnable
// application. Both the CLI commands and the TUI build from here.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/datajonas82/fergetid-sub000/pkg/config"
	"github.com/datajonas82/fergetid-sub000/pkg/entur"
	"github.com/datajonas82/fergetid-sub000/pkg/ferry"
	"github.com/datajonas82/fergetid-sub000/pkg/geocode"
	"github.com/datajonas82/fergetid-sub000/pkg/location"
	"github.com/datajonas82/fergetid-sub000/pkg/routing"
)

// App holds the long-lived collaborators for one process.
type App struct {
	Config  *config.AppConfig
	Options config.Options
	Curated config.CuratedData

	Planner ferry.PlannerAPI
	Catalog *ferry.Catalog
	Fetcher *ferry.Fetcher
	Returns *ferry.ReturnResolver
	Router  ferry.Router
	Store   *location.Store
	Namer   *geocode.Resolver
}

// New loads configuration and curated data and assembles the engines.
// The catalog is not loaded yet; call WarmCatalog early so pipelines
// rarely wait on it.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	opts := cfg.Resolve()

	curated := config.DefaultCuratedData()
	if cfg.CuratedDataPath != "" {
		curated, err = config.LoadCuratedData(cfg.CuratedDataPath)
		if err != nil {
			return nil, fmt.Errorf("curated data at %s: %w", cfg.CuratedDataPath, err)
		}
	}

	planner := entur.NewCachedClient("")
	catalog := ferry.NewCatalog(planner, opts, curated)
	fetcher := ferry.NewFetcher(planner, opts)

	return &App{
		Config:  cfg,
		Options: opts,
		Curated: curated,
		Planner: planner,
		Catalog: catalog,
		Fetcher: fetcher,
		Returns: ferry.NewReturnResolver(fetcher, catalog, ferry.NewFerryGroups(curated.FerryGroups)),
		Router:  routing.NewDefaultChain(os.Getenv("HERE_API_KEY")),
		Store:   location.NewStore(),
		Namer:   geocode.NewResolver(),
	}, nil
}

// WarmCatalog starts the stop place load in the background.
func (a *App) WarmCatalog(ctx context.Context) {
	go func() {
		if err := a.Catalog.Load(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}()
}

// Orchestrator builds the mode orchestrator around a location
// provider and an optional publication observer.
func (a *App) Orchestrator(provider location.Provider, onUpdate func(ferry.Snapshot)) *ferry.Orchestrator {
	return ferry.NewOrchestrator(ferry.OrchestratorDeps{
		Catalog:  a.Catalog,
		Fetcher:  a.Fetcher,
		Returns:  a.Returns,
		Router:   a.Router,
		Provider: provider,
		Store:    a.Store,
		Namer:    a.Namer,
		Options:  a.Options,
		OnUpdate: onUpdate,
	})
}
