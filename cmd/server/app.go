package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lingotale/lingotale-api/internal/config"
	"github.com/lingotale/lingotale-api/internal/job"
	"github.com/lingotale/lingotale-api/internal/platform/gemini"
	"github.com/lingotale/lingotale-api/internal/platform/localblob"
	"github.com/lingotale/lingotale-api/internal/platform/postgres"
	"github.com/lingotale/lingotale-api/internal/platform/speech"
	"github.com/lingotale/lingotale-api/internal/quota"
	"github.com/lingotale/lingotale-api/internal/service"
	"github.com/lingotale/lingotale-api/internal/service/auth"
	"github.com/lingotale/lingotale-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	jobStore   job.Store
	quotaStore quota.Store
	wordStore  store.WordStore
	storyStore store.StoryStore

	// Services
	jwtService   auth.JWTService
	storyService service.StoryService
	wordService  service.WordService

	// Job processing
	queue  *job.Queue
	worker *job.Worker
}

// newApplication creates a new application instance with all dependencies
// initialized, recovers jobs interrupted by a previous shutdown, and starts
// the worker pool.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Quota.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load quota time zone %q: %w", cfg.Quota.TimeZone, err)
	}

	// Stores
	app.jobStore = postgres.NewPostgresJobStore(db, logger)
	app.quotaStore = postgres.NewPostgresQuotaStore(db, cfg.Quota.DailyLimit, loc, logger)
	app.wordStore = postgres.NewPostgresWordStore(db, logger)
	app.storyStore = postgres.NewPostgresStoryStore(db, logger)

	// Generation collaborators
	geminiClient, err := gemini.NewClient(ctx, logger.With("component", "gemini"), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	storyGenerator := gemini.NewStoryGenerator(geminiClient)
	translator := gemini.NewTranslator(geminiClient)
	lemmatizer := gemini.NewLemmatizer(geminiClient)

	synthesizer, err := speech.NewGoogleSpeech(speech.Config{
		APIKey:      cfg.Audio.TTSAPIKey,
		TargetVoice: cfg.Audio.TargetVoice,
		SourceVoice: cfg.Audio.SourceVoice,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize speech synthesizer: %w", err)
	}

	audioStore, err := localblob.NewAudioStore(cfg.Audio.StorageDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio store: %w", err)
	}

	// The services and the queue form a construction cycle: services
	// enqueue jobs, and the job handlers persist through the services.
	// queueRef defers queue resolution to call time; the queue field is
	// set before the server accepts requests or the worker starts.
	app.wordService, err = service.NewWordService(app.wordStore, queueRef{app}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create word service: %w", err)
	}
	app.storyService, err = service.NewStoryService(db, app.storyStore, app.wordStore, app.quotaStore, queueRef{app}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create story service: %w", err)
	}

	storyHandler, err := job.NewStoryGenerationHandler(
		app.wordService,
		storyGenerator,
		translator,
		lemmatizer,
		synthesizer,
		audioStore,
		app.storyService,
		app.quotaStore,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create story generation handler: %w", err)
	}

	wordHandler, err := job.NewWordStatusHandler(app.wordService, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create word status handler: %w", err)
	}

	registry, err := job.NewRegistry(
		storyHandler.Registration(cfg.Job.StoryMaxAttempts),
		wordHandler.Registration(cfg.Job.WordStatusMaxAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build job registry: %w", err)
	}

	app.queue = job.NewQueue(app.jobStore, registry, cfg.Job.QueueSize, logger)
	app.worker = job.NewWorker(app.queue, app.jobStore, registry, job.WorkerConfig{
		WorkerCount: cfg.Job.WorkerCount,
	}, logger)

	// Requeue jobs left behind by a previous process before accepting new
	// work, so interrupted generations run again instead of hanging.
	if err := app.queue.Recover(ctx); err != nil {
		return nil, fmt.Errorf("failed to recover interrupted jobs: %w", err)
	}

	app.worker.Start()

	logger.Info("Application initialized successfully")
	return app, nil
}

// queueRef defers queue resolution until after the application is fully
// wired, breaking the services-queue construction cycle.
type queueRef struct {
	app *application
}

func (q queueRef) Enqueue(ctx context.Context, kind string, payload json.RawMessage) (uuid.UUID, error) {
	return q.app.queue.Enqueue(ctx, kind, payload)
}

func (q queueRef) GetStatus(ctx context.Context, id uuid.UUID) (*job.Status, error) {
	return q.app.queue.GetStatus(ctx, id)
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.worker != nil {
		app.worker.Stop()
	}
	if app.queue != nil {
		app.queue.Close()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
