package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/athena-forum/athena/internal/athena/ai"
	httpapi "github.com/athena-forum/athena/internal/athena/http"
	"github.com/athena-forum/athena/internal/athena/service"
	"github.com/athena-forum/athena/internal/athena/session"
	"github.com/athena-forum/athena/internal/athena/store"
	"github.com/athena-forum/athena/internal/athena/store/drivers/sqlite"
	"github.com/athena-forum/athena/pkg/cryptox"
	"github.com/athena-forum/athena/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the Athena service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	sessions *session.Manager
	webauthn *webauthn.WebAuthn
	ai       *ai.Client

	// Services
	authService         *service.AuthService
	streakService       *service.StreakService
	postService         *service.PostService
	journalService      *service.JournalService
	moodService         *service.MoodService
	blogService         *service.BlogService
	chatService         *service.ChatService
	profileService      *service.ProfileService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "athena",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSessions(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initWebAuthn(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initAI()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("athena starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down athena...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("athena stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initSessions builds the cookie session manager. Without a configured
// secret a random one is generated, which invalidates all sessions on
// restart; fine for dev, wrong for prod.
func (app *Application) initSessions() error {
	secret := app.cfg.SessionSecret
	if secret == "" {
		generated, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		secret = generated
		app.logger.Warn("ATHENA_SESSION_SECRET not set, using ephemeral secret; sessions will not survive restarts")
	}

	sessions, err := session.NewManager([]byte(secret), app.cfg.SessionTTL, app.cfg.SecureCookies)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}
	app.sessions = sessions
	return nil
}

func (app *Application) initWebAuthn() error {
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: app.cfg.RPDisplayName,
		RPID:          app.cfg.RPID,
		RPOrigins:     app.cfg.RPOrigins,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize webauthn: %w", err)
	}
	app.webauthn = wa
	return nil
}

func (app *Application) initAI() {
	app.ai = ai.NewClient(ai.Config{
		BaseURL: app.cfg.AIBaseURL,
		APIKey:  app.cfg.AIAPIKey,
		Model:   app.cfg.AIModel,
		Timeout: app.cfg.AITimeout,
	})
	if app.cfg.AIAPIKey == "" {
		app.logger.Warn("ATHENA_AI_API_KEY not set, moderation and companion features run in fallback mode")
	}
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.streakService = &service.StreakService{Store: app.db}

	app.authService = &service.AuthService{
		Store:        app.db,
		WebAuthn:     app.webauthn,
		ChallengeTTL: app.cfg.ChallengeTTL,
	}
	app.postService = &service.PostService{
		Store:  app.db,
		AI:     app.ai,
		Streak: app.streakService,
	}
	app.journalService = &service.JournalService{
		Store:  app.db,
		AI:     app.ai,
		Streak: app.streakService,
	}
	app.moodService = &service.MoodService{
		Store:  app.db,
		Streak: app.streakService,
	}
	app.blogService = &service.BlogService{Store: app.db}
	app.chatService = &service.ChatService{
		AI:         app.ai,
		TTL:        app.cfg.ChatTTL,
		MaxEntries: app.cfg.ChatMaxEntries,
	}
	app.profileService = &service.ProfileService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.sessions, app.logger)

	// Wire services to router
	router.AuthService = app.authService
	router.StreakService = app.streakService
	router.PostService = app.postService
	router.JournalService = app.journalService
	router.MoodService = app.moodService
	router.BlogService = app.blogService
	router.ChatService = app.chatService
	router.ProfileService = app.profileService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
