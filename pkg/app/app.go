// Package app wires configuration, the model client, notes storage and the
// studio controller for the binaries under cmd/.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mikeboe/newsletter-helper/pkg/clients"
	"github.com/mikeboe/newsletter-helper/pkg/config"
	"github.com/mikeboe/newsletter-helper/pkg/database"
	"github.com/mikeboe/newsletter-helper/pkg/metrics"
	"github.com/mikeboe/newsletter-helper/pkg/newsletter"
	"github.com/mikeboe/newsletter-helper/pkg/storage"
	"github.com/mikeboe/newsletter-helper/pkg/studio"
)

type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Researcher *newsletter.Researcher
	Writer     *newsletter.Writer
	Studio     *studio.Controller

	db *database.PostgresDB
}

// New builds the pipelines and a controller whose notes live in Postgres when
// DATABASE_URL is set and in NOTES_FILE otherwise.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, recorder metrics.Recorder) (*App, error) {
	client, err := clients.NewGeminiClient(ctx, cfg.GoogleApiKey, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	a := &App{Config: cfg, Logger: logger}

	a.Researcher = newsletter.NewResearcher(client)
	a.Researcher.Logger = logger
	a.Writer = newsletter.NewWriter(client)
	a.Writer.Logger = logger

	notes, err := a.openNotes(ctx)
	if err != nil {
		return nil, err
	}

	if recorder == nil {
		recorder = metrics.Nop{}
	}
	a.Studio, err = studio.NewController(ctx, a.Researcher, a.Writer, notes,
		studio.WithLogger(logger),
		studio.WithMetrics(recorder),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) openNotes(ctx context.Context) (storage.Store, error) {
	if a.Config.DatabaseURL == "" {
		a.Logger.Debug("Storing notes in file", "path", a.Config.NotesFile)
		return storage.NewFileStore(a.Config.NotesFile), nil
	}

	db, err := database.NewPostgresDB(ctx, a.Config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.InitSchema(ctx, database.DefaultKVTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	kv, err := database.NewKVStore(db.Pool, database.DefaultKVTable)
	if err != nil {
		db.Close()
		return nil, err
	}

	a.db = db
	a.Logger.Debug("Storing notes in database", "table", database.DefaultKVTable)
	return kv, nil
}

// WithTimeout applies MODEL_TIMEOUT to a model-backed call.
func (a *App) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.Config.ModelTimeout > 0 {
		return context.WithTimeout(ctx, a.Config.ModelTimeout)
	}
	return context.WithCancel(ctx)
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}
