// Package repomanager vends repositories bound to a database handle and
// runs schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bankauth/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	// CredentialStore returns the repository the auth service should use.
	CredentialStore(db *sql.DB) users.Repository
}
