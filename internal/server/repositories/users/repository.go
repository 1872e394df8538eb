// Package users persists accounts. Every lookup on username or email is
// case-insensitive.
package users

import (
	"context"

	"github.com/dmitrijs2005/bankauth/internal/server/models"
)

// Repository is the credential store consumed by the auth service.
//
// Find methods return common.ErrorNotFound on a miss. Save inserts when
// user.ID is empty (assigning a new ID); a case-insensitive username or email
// collision yields *common.ConflictError. For an existing ID Save rewrites
// the password only and returns the stored record.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *models.User) (*models.User, error)
}
