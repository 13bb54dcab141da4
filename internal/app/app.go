// Package app wires the services shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"infinitism/internal/config"
	"infinitism/internal/domain/repositories"
	"infinitism/internal/domain/services"
	"infinitism/internal/prompts"
	"infinitism/internal/repository/memory"
	"infinitism/internal/repository/postgres"
	"infinitism/internal/service/export"
	"infinitism/internal/service/extraction"
	serviceLLM "infinitism/internal/service/llm"
	serviceMindmap "infinitism/internal/service/mindmap"
	"infinitism/internal/service/source"
	"infinitism/internal/service/view"
)

// App holds the wired services. Close releases the database pool, if any.
type App struct {
	Mindmaps services.MindmapService
	Sources  *source.Extractor
	Exporter *export.Exporter
	Views    *view.Registry

	pool *pgxpool.Pool
}

// New builds every service from cfg. An empty DatabaseURL keeps mind maps in
// memory; otherwise the schema is created on first use. A failure after the
// pool is opened closes it again.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{}

	repo, err := a.repository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer a.closeOnError(&err)

	providers, err := serviceLLM.SetupProviders(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry, err := prompts.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	nodePalette, err := registry.Palette(prompts.PaletteNodes)
	if err != nil {
		return nil, err
	}

	extractor, err := extraction.NewExtractor(providers, registry, cfg.DefaultModel, cfg.GenerationTimeout, logger)
	if err != nil {
		return nil, err
	}

	a.Mindmaps = serviceMindmap.NewService(
		repo,
		extractor,
		serviceMindmap.NewBuilder(nodePalette),
		serviceMindmap.NewGenerationGate(cfg.MaxConcurrentGenerations),
		logger,
	)
	a.Sources = source.NewExtractor(source.NewConverterRegistry(), cfg.MaxUploadBytes, logger)
	a.Exporter = export.NewExporter(a.Mindmaps, cfg.ExportPixelRatio, logger)
	a.Views = view.NewRegistry(a.Mindmaps, view.DefaultIdleTimeout, logger)

	logger.Info("services initialized",
		"store", a.storeName(),
		"default_model", cfg.DefaultModel,
		"max_concurrent_generations", cfg.MaxConcurrentGenerations,
	)
	return a, nil
}

func (a *App) repository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.MindmapRepository, error) {
	if cfg.DatabaseURL == "" {
		return memory.NewMindmapRepository(logger), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	pool, err := postgres.CreateConnectionPool(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(connectCtx, pool, tables); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	a.pool = pool

	logger.Info("database connected", "table_prefix", cfg.TablePrefix)
	return postgres.NewMindmapRepository(&postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}), nil
}

func (a *App) storeName() string {
	if a.pool != nil {
		return "postgres"
	}
	return "memory"
}

func (a *App) closeOnError(err *error) {
	if *err != nil {
		a.Close()
	}
}

// Close releases held resources. It is safe to call more than once.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}
