package server

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bankauth/internal/server/config"
	"github.com/dmitrijs2005/bankauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bankauth/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"
)

// test seams
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
	pingBackoff          = func() retry.Backoff {
		return retry.WithMaxRetries(5, retry.NewExponential(200*time.Millisecond))
	}
)

func (app *App) openStore(ctx context.Context) (users.Repository, error) {
	switch app.config.StorageType {
	case config.StorageMemory:
		app.logger.Warn(ctx, "Using in-memory credential store, accounts are lost on restart")
		return users.NewInMemoryRepository(), nil
	case config.StoragePostgres:
		return app.openPostgres(ctx)
	}
	return nil, fmt.Errorf("unknown storage type %q", app.config.StorageType)
}

func (app *App) openPostgres(ctx context.Context) (users.Repository, error) {
	db, err := openDB(app.config.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := app.ping(ctx, db, pingBackoff()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	app.db = db
	return rm.CredentialStore(db), nil
}

// ping waits for the database to accept connections.
func (app *App) ping(ctx context.Context, db *sql.DB, b retry.Backoff) error {
	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := db.PingContext(ctx); err != nil {
			app.logger.Warn(ctx, "Database not ready", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}
