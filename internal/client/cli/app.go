// Package cli implements the interactive SecureChain client: a small REPL
// for sharing encrypted files and accessing files shared with you.
package cli

import (
	"bufio"
	"context"
	"crypto/rsa"
	"log/slog"
	"os"
	"time"

	"github.com/securechain/securechain/internal/client/api"
	"github.com/securechain/securechain/internal/client/config"
	"github.com/securechain/securechain/internal/client/services"
	"github.com/securechain/securechain/internal/client/session"
	"github.com/securechain/securechain/internal/client/verified"
	"github.com/securechain/securechain/internal/ledger"
	"github.com/securechain/securechain/internal/logging"
)

type App struct {
	config        *config.Config
	apiClient     *api.Client
	shareService  *services.ShareService
	accessService *services.AccessService
	store         *verified.Store
	binder        ledger.Binder
	logger        logging.Logger
	session       *session.Session
	rsaPriv       *rsa.PrivateKey
	reader        *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	apiClient := api.NewClient(c.ServerAddr)
	store := verified.NewStore()

	return &App{
		config:        c,
		apiClient:     apiClient,
		accessService: services.NewAccessService(apiClient, store, c.DownloadsDir),
		store:         store,
		logger:        logger,
		reader:        bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	// Expired verified keys must leave memory even when the user goes idle,
	// not only when the cache is read.
	a.store.StartSweeper(ctx, time.Minute)
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.Authenticated()
}

// initShareService rebuilds the share pipeline after login. The ledger
// binder carries the session token, so it cannot exist earlier.
func (a *App) initShareService() {
	a.binder = ledger.NewHTTPBinder(a.config.ServerAddr, a.session.AccessToken)
	a.shareService = services.NewShareService(a.apiClient, a.binder, a.logger)
}
