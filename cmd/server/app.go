package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/prep-api/internal/api"
	"github.com/phrazzld/prep-api/internal/config"
	"github.com/phrazzld/prep-api/internal/domain/srs"
	"github.com/phrazzld/prep-api/internal/generation"
	"github.com/phrazzld/prep-api/internal/platform/cache"
	"github.com/phrazzld/prep-api/internal/platform/gemini"
	"github.com/phrazzld/prep-api/internal/platform/google"
	"github.com/phrazzld/prep-api/internal/platform/metrics"
	"github.com/phrazzld/prep-api/internal/platform/postgres"
	"github.com/phrazzld/prep-api/internal/service"
	"github.com/phrazzld/prep-api/internal/service/auth"
	"github.com/prometheus/client_golang/prometheus"
)

// application holds the shared dependencies and the resources released on
// shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	metrics    *metrics.Metrics
	jwtService auth.JWTService
	handlers   api.Handlers

	closers []namedCloser
}

type namedCloser struct {
	name string
	io.Closer
}

// newApplication wires stores, services and handlers. The database must
// already be connected; it is closed by cleanup, or left to the caller when
// newApplication fails.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sqlx.DB,
) (_ *application, err error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	defer func() {
		if err != nil {
			app.closeResources()
		}
	}()

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	sessionStore := postgres.NewPostgresSessionStore(db, logger)
	questionStore := postgres.NewPostgresQuestionStore(db, logger)
	patternStore := postgres.NewPostgresMistakePatternStore(db, logger)

	provider, err := app.setupProvider(ctx)
	if err != nil {
		return nil, err
	}

	dashboardCache, err := app.setupCache(ctx)
	if err != nil {
		return nil, err
	}

	srsService := srs.NewDefaultService()

	users, err := service.NewUserService(userStore, auth.NewBcryptVerifier(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	sessions, err := service.NewSessionService(
		db, sessionStore, questionStore, provider, dashboardCache, app.metrics, cfg.LLM.QuestionCount, logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}
	questions, err := service.NewQuestionService(
		db, sessionStore, questionStore, patternStore, provider, srsService, dashboardCache, app.metrics, logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create question service: %w", err)
	}
	mistakes, err := service.NewMistakeService(db, patternStore, srsService, dashboardCache, app.metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create mistake service: %w", err)
	}
	dashboards, err := service.NewDashboardService(sessionStore, dashboardCache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard service: %w", err)
	}

	authHandler := api.NewAuthHandler(users, app.jwtService, &cfg.Auth, app.metrics, logger)
	if cfg.OAuth.Google.Enabled() {
		googleProvider := google.NewProvider(cfg.OAuth.Google, logger)
		app.closers = append(app.closers, namedCloser{name: "google", Closer: googleProvider})
		authHandler.WithIdentityProvider(googleProvider, cfg.OAuth.Google.FrontendURL)
		logger.Info("Google sign-in enabled")
	}

	app.handlers = api.Handlers{
		Auth:          authHandler,
		Sessions:      api.NewSessionHandler(sessions, logger),
		Questions:     api.NewQuestionHandler(questions, logger),
		Mistakes:      api.NewMistakeHandler(mistakes, logger),
		Analytics:     api.NewAnalyticsHandler(dashboards, logger),
		GoogleEnabled: cfg.OAuth.Google.Enabled(),
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupProvider returns the Gemini provider, or the fallback-only provider
// when no API key is configured.
func (app *application) setupProvider(ctx context.Context) (generation.Provider, error) {
	if app.config.LLM.GeminiAPIKey == "" {
		app.logger.Warn("no Gemini API key configured, serving fallback content only")
		return generation.Unavailable{}, nil
	}

	provider, err := gemini.NewProvider(ctx, app.logger, app.config.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	app.logger.Info("LLM provider initialized", slog.String("model", app.config.LLM.ModelName))
	return provider, nil
}

// setupCache connects to Redis when configured. Without it dashboards are
// recomputed on every request.
func (app *application) setupCache(ctx context.Context) (cache.Cache, error) {
	if app.config.Cache.RedisAddr == "" {
		app.logger.Info("no Redis address configured, dashboard caching disabled")
		return cache.Noop{}, nil
	}

	redisCache, err := cache.NewRedis(ctx, app.config.Cache, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.closers = append(app.closers, namedCloser{name: "redis", Closer: redisCache})
	return redisCache, nil
}

// Run serves HTTP until ctx is cancelled, then releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases every resource, the database last.
func (app *application) cleanup() {
	app.closeResources()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		}
		app.db = nil
	}

	app.logger.Info("application shutdown completed")
}

// closeResources closes the clients opened by newApplication in reverse
// order of acquisition.
func (app *application) closeResources() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		c := app.closers[i]
		if err := c.Close(); err != nil {
			app.logger.Error("failed to close resource",
				slog.String("resource", c.name),
				slog.String("error", err.Error()))
		}
	}
	app.closers = nil
}
