// Package server wires the auth server together: it selects the credential
// store, runs migrations, and starts the gRPC and metrics servers until a
// shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/bankauth/internal/logging"
	"github.com/dmitrijs2005/bankauth/internal/server/auth"
	"github.com/dmitrijs2005/bankauth/internal/server/config"
	"github.com/dmitrijs2005/bankauth/internal/server/metrics"
	"github.com/dmitrijs2005/bankauth/internal/server/password"
	"github.com/dmitrijs2005/bankauth/internal/server/services"
	"github.com/dmitrijs2005/bankauth/internal/shared"

	gs "github.com/dmitrijs2005/bankauth/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService *services.AuthService
	tokens      *auth.TokenIssuer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.NewJSONLogger(os.Stdout, slog.LevelInfo))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger}

	store, err := app.openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	secret := c.SecretKey
	if secret == "" {
		if secret, err = shared.MakeRandHexString(32); err != nil {
			return nil, fmt.Errorf("secret key: %w", err)
		}
		logger.Warn(ctx, "No secret key configured, using a random one for this process")
	}

	hasher := password.NewBcryptHasher(c.BcryptCost)
	app.authService = services.NewAuthService(store, hasher, logger)
	app.tokens = auth.NewTokenIssuer([]byte(secret), c.TokenValidityDuration)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authService, app.tokens, app.config.StoreTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := metrics.NewServer(app.config.MetricsAddr, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageType)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.closeDB(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}

func (app *App) closeDB() error {
	if app.db == nil {
		return nil
	}
	return app.db.Close()
}
