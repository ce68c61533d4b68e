// Package app wires the production dependencies shared by the CLI and the
// worker: Postgres, the MinIO search index, metrics and the pipeline.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/dharsanguruparan/BillIndex/internal/citation"
	"github.com/dharsanguruparan/BillIndex/internal/config"
	"github.com/dharsanguruparan/BillIndex/internal/database"
	"github.com/dharsanguruparan/BillIndex/internal/logger"
	"github.com/dharsanguruparan/BillIndex/internal/metadata"
	"github.com/dharsanguruparan/BillIndex/internal/metrics"
	"github.com/dharsanguruparan/BillIndex/internal/pipeline"
	"github.com/dharsanguruparan/BillIndex/internal/report"
	"github.com/dharsanguruparan/BillIndex/internal/repository"
	"github.com/dharsanguruparan/BillIndex/internal/searchindex"
	"github.com/dharsanguruparan/BillIndex/internal/sink"
	"github.com/dharsanguruparan/BillIndex/internal/source"
	"github.com/dharsanguruparan/BillIndex/internal/version"
)

// App holds the opened connections.
type App struct {
	Config  *config.Config
	Log     zerolog.Logger
	Pool    *pgxpool.Pool
	Store   *repository.Store
	Index   *searchindex.MinioIndex
	Metrics *metrics.Metrics
	Writer  *sink.Writer
	Runner  *pipeline.Runner
}

// NewLogger builds the root logger from configuration.
func NewLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
}

// Open connects to both sinks, ensures the schema and buckets exist, and
// builds the pipeline.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	store := repository.NewStore(pool)

	index, err := searchindex.NewMinio(cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := index.EnsureBuckets(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure buckets: %w", err)
	}

	m := metrics.New()
	writer := sink.NewWriter(store, index, m, logger.Component(log, "sink"))
	runner := pipeline.New(pipeline.Deps{
		Store:          store,
		Writer:         writer,
		Layout:         source.Layout{Root: cfg.DataDir},
		Resolver:       metadata.NewResolver(cfg.SuppressedVersions),
		Builder:        version.NewBuilder(citation.NewBluebookExtractor()),
		Emitters:       []report.Emitter{report.LogEmitter{Log: logger.Component(log, "report")}, store.Reports()},
		Metrics:        m,
		Log:            log,
		CurrentSession: cfg.CurrentSession,
	})
	log.Debug().Str("data_dir", cfg.DataDir).Int("current_session", cfg.CurrentSession).Msg("dependencies ready")

	return &App{
		Config:  cfg,
		Log:     log,
		Pool:    pool,
		Store:   store,
		Index:   index,
		Metrics: m,
		Writer:  writer,
		Runner:  runner,
	}, nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.Pool.Close()
}
