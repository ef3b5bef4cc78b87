// Package server initializes and runs the Matchpoint backend: storage,
// application services, the HTTP API, and graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matchpoint-app/matchpoint/internal/logging"
	"github.com/matchpoint-app/matchpoint/internal/server/config"
	"github.com/matchpoint-app/matchpoint/internal/server/httpapi"
	"github.com/matchpoint-app/matchpoint/internal/server/repositories/repomanager"
	"github.com/matchpoint-app/matchpoint/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	router *httpapi.Router
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	var db *sql.DB
	var m repomanager.RepositoryManager

	if cfg.UseMemoryStorage {
		m = repomanager.NewMemoryRepositoryManager()
	} else {
		var err error
		db, err = repomanager.OpenDB(cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		pm := repomanager.NewPostgresRepositoryManager()
		if err := pm.RunMigrations(context.Background(), db); err != nil {
			return nil, fmt.Errorf("db migration error: %w", err)
		}
		m = pm
	}

	router := httpapi.NewRouter(cfg, logger,
		services.NewUserService(db, m, cfg),
		services.NewProfileService(db, m),
		services.NewPhotoService(db, m, cfg),
		services.NewLocationService(cfg.GeocoderBaseURL, logger),
		httpapi.NewHub(logger),
	)

	return &App{config: cfg, logger: logger, db: db, router: router}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.router.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "http server error", "err", err)
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "err", err)
	}

	if app.db != nil {
		_ = app.db.Close()
	}

	app.logger.Info(context.Background(), "server stopped")
}
