// Package app wires configuration, storage, catalogs and services into one
// object shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"mediahub/database"
	"mediahub/internal/auth"
	"mediahub/internal/cache"
	"mediahub/internal/catalog"
	"mediahub/internal/config"
	"mediahub/internal/importer"
	"mediahub/internal/microservices/http-api/repository"
	"mediahub/internal/microservices/http-api/service"
)

// App holds the long-lived dependencies of one process.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *database.DB
	Cache    cache.Store
	Verifier *auth.Verifier

	Library service.LibraryService
	Versus  service.VersusService
	Import  service.ImportService
	Search  service.SearchService

	closers []io.Closer
}

// New connects to the database and cache and builds the services.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := database.ConnectDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Verifier: auth.NewVerifier(cfg.AuthJWTSecret, cfg.AuthJWTIssuer),
	}

	if err := a.openCache(ctx); err != nil {
		db.Close()
		return nil, err
	}

	tmdb := catalog.NewTMDB(a.catalogConfig(cfg.TMDBAPIURL, cfg.TMDBAPIKey))
	rawg := catalog.NewRAWG(a.catalogConfig(cfg.RAWGAPIURL, cfg.RAWGAPIKey))
	movies := catalog.NewCached("tmdb", tmdb, a.Cache, cfg.CacheDuration(), logger)
	games := catalog.NewCached("rawg", rawg, a.Cache, cfg.CacheDuration(), logger)

	gdb := db.Gorm
	a.Library = service.NewLibraryService(
		repository.NewWatchedRepository(gdb),
		repository.NewPlayedRepository(gdb),
		repository.NewWatchlistRepository(gdb),
		a.Cache,
		cfg.CacheDuration(),
		logger,
	)
	a.Versus = service.NewVersusService(a.Library, logger)
	a.Import = service.NewImportService(a.Library, movies, importer.Options{
		Concurrency: cfg.ImportConcurrency,
		BatchDelay:  cfg.ImportBatchDelay,
		Logger:      logger,
	})
	a.Search = service.NewSearchService(movies, games, rawg)

	return a, nil
}

// openCache uses Redis when REDIS_URL is set and an in-process cache
// otherwise.
func (a *App) openCache(ctx context.Context) error {
	if a.Config.RedisURL == "" {
		a.Cache = cache.NewMemory()
		a.Logger.Info("cache_backend_selected", "backend", "memory")
		return nil
	}
	store, err := cache.NewRedis(ctx, a.Config.RedisURL, a.Config.RedisPassword)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	if c, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	a.Cache = store
	a.Logger.Info("cache_backend_selected", "backend", "redis")
	return nil
}

func (a *App) catalogConfig(baseURL, apiKey string) catalog.ClientConfig {
	return catalog.ClientConfig{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		RateLimit: a.Config.CatalogRateLimit,
		Logger:    a.Logger,
	}
}

// Close releases the cache and database connections.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.Logger.Warn("close_failed", "error", err)
		}
	}
	a.DB.Close()
}
