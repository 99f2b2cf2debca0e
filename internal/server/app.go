// Package server initializes and runs the SecureChain backend: it opens the
// database, wires repositories, services and the REST API together, and
// handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/securechain/securechain/internal/logging"
	"github.com/securechain/securechain/internal/server/config"
	"github.com/securechain/securechain/internal/server/httpapi"
	"github.com/securechain/securechain/internal/server/repositories/repomanager"
	"github.com/securechain/securechain/internal/server/services"
	"github.com/securechain/securechain/internal/server/storage"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	handler *httpapi.Handler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	blobs, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()

	userService := services.NewUserService(db, repos, cfg)
	fileService := services.NewFileService(db, repos, blobs)
	ledgerService := services.NewLedgerService(db, repos, cfg.LedgerFinalityDelay)
	notifyService := services.NewNotifyService(db, repos, logger)

	handler := httpapi.NewHandler(cfg, userService, fileService, ledgerService, notifyService, logger)

	return &App{config: cfg, logger: logger, handler: handler}, nil
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

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.handler.NewRouter(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "http server error", "error", err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err.Error())
	}
	app.logger.Info(context.Background(), "server stopped")
}
