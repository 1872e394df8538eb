package users

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bankauth/internal/dbx"
	"github.com/dmitrijs2005/bankauth/internal/server/models"
)

// PostgresStore is the Repository used by the running server. Reads go
// straight to the pool; Save runs in its own transaction and, for existing
// accounts, holds the row lock while writing.
type PostgresStore struct {
	db *sql.DB
	*PostgresRepository
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, PostgresRepository: NewPostgresRepository(db)}
}

func (s *PostgresStore) Save(ctx context.Context, user *models.User) (*models.User, error) {
	var saved *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewPostgresRepository(tx)
		if user.ID != "" {
			if err := repo.LockByID(ctx, user.ID); err != nil {
				return err
			}
		}
		var err error
		saved, err = repo.Save(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
