// Package services holds the authentication engine: credential resolution,
// legacy password migration and account registration.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bankauth/internal/common"
	"github.com/dmitrijs2005/bankauth/internal/logging"
	"github.com/dmitrijs2005/bankauth/internal/server/metrics"
	"github.com/dmitrijs2005/bankauth/internal/server/models"
	"github.com/dmitrijs2005/bankauth/internal/server/password"
	"github.com/dmitrijs2005/bankauth/internal/server/repositories/users"
)

// PasswordHasher hashes and verifies passwords and tells a stored hash apart
// from a legacy plaintext value. Hash fails with password.ErrPasswordTooLong
// past password.MaxLength bytes; HashLong takes any length.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	HashLong(plaintext string) (string, error)
	IsHashed(value string) bool
	Verify(plaintext, hashed string) bool
}

// AuthResult is the outcome of a successful Login.
// Migrated reports whether the stored plaintext password was rewritten as a hash.
type AuthResult struct {
	User     *models.User
	Migrated bool
}

// RegisterRequest carries the fields of a new account. Role may be empty.
type RegisterRequest struct {
	Username string
	FullName string
	Email    string
	Password string
	Role     string
}

type AuthService struct {
	users  users.Repository
	hasher PasswordHasher
	logger logging.Logger
}

func NewAuthService(u users.Repository, h PasswordHasher, l logging.Logger) *AuthService {
	return &AuthService{users: u, hasher: h, logger: l.With("module", "auth_service")}
}

// Login resolves identifier to an account and checks password against it.
// Unknown accounts and wrong passwords both yield common.ErrorUnauthorized.
// A legacy plaintext password that matches is replaced by its hash before
// Login returns.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (res *AuthResult, err error) {
	defer func() { metrics.RecordLogin(err) }()

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, &common.InvalidInputError{Field: common.FieldIdentifier}
	}
	if strings.TrimSpace(password) == "" {
		return nil, &common.InvalidInputError{Field: common.FieldPassword}
	}

	user, err := s.resolveUser(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if s.hasher.IsHashed(user.Password) {
		if !s.hasher.Verify(password, user.Password) {
			return nil, common.ErrorUnauthorized
		}
		return &AuthResult{User: user}, nil
	}

	if user.Password == "" || user.Password != password {
		return nil, common.ErrorUnauthorized
	}

	return s.migrate(ctx, user, password)
}

// migrate replaces the legacy plaintext with its hash. Legacy values longer
// than bcrypt accepts are stored in the prehashed form.
func (s *AuthService) migrate(ctx context.Context, user *models.User, plaintext string) (*AuthResult, error) {
	hashed, err := s.hasher.Hash(plaintext)
	if errors.Is(err, password.ErrPasswordTooLong) {
		hashed, err = s.hasher.HashLong(plaintext)
	}
	if err != nil {
		s.logger.Error(ctx, "hashing legacy password failed", "user_id", user.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	user.Password = hashed
	saved, err := s.users.Save(ctx, user)
	if err != nil {
		s.logger.Error(ctx, "password migration write-back failed", "user_id", user.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorStoreUnavailable, err)
	}

	metrics.RecordMigration()
	s.logger.Info(ctx, "legacy password migrated", "user_id", saved.ID)

	return &AuthResult{User: saved, Migrated: true}, nil
}

// resolveUser looks the identifier up as an email first when it contains
// "@", as a username first otherwise, and falls back to the other lookup.
func (s *AuthService) resolveUser(ctx context.Context, identifier string) (*models.User, error) {
	lookups := []func(context.Context, string) (*models.User, error){s.users.FindByUsername, s.users.FindByEmail}
	if strings.Contains(identifier, "@") {
		lookups[0], lookups[1] = lookups[1], lookups[0]
	}

	for _, find := range lookups {
		user, err := find(ctx, identifier)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "credential lookup failed", "error", err)
			return nil, fmt.Errorf("%w: %w", common.ErrorStoreUnavailable, err)
		}
	}

	return nil, common.ErrorUnauthorized
}

// Register validates and normalizes req, hashes the password and stores a
// new account. The email is checked for conflicts before the username.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (u *models.User, err error) {
	defer func() { metrics.RecordRegistration(err) }()

	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Role:     strings.TrimSpace(req.Role),
	}

	switch {
	case user.Username == "":
		return nil, &common.InvalidInputError{Field: common.FieldUsername}
	case user.FullName == "":
		return nil, &common.InvalidInputError{Field: common.FieldFullName}
	case user.Email == "":
		return nil, &common.InvalidInputError{Field: common.FieldEmail}
	case strings.TrimSpace(req.Password) == "":
		return nil, &common.InvalidInputError{Field: common.FieldPassword}
	}

	if user.Role == "" {
		user.Role = common.DefaultRole
	}

	taken, err := s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, s.storeError(ctx, err)
	}
	if taken {
		s.logger.Info(ctx, "registration rejected", "reason", "email")
		return nil, &common.ConflictError{Field: common.FieldEmail}
	}

	taken, err = s.users.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return nil, s.storeError(ctx, err)
	}
	if taken {
		s.logger.Info(ctx, "registration rejected", "reason", "username")
		return nil, &common.ConflictError{Field: common.FieldUsername}
	}

	user.Password, err = s.hasher.Hash(req.Password)
	if errors.Is(err, password.ErrPasswordTooLong) {
		return nil, &common.InvalidInputError{
			Field:  common.FieldPassword,
			Reason: fmt.Sprintf("must be at most %d bytes", password.MaxLength),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	saved, err := s.users.Save(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			s.logger.Info(ctx, "registration rejected on insert", "error", err)
			return nil, err
		}
		return nil, s.storeError(ctx, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", saved.ID)
	return saved, nil
}

// IsUsernameAvailable reports whether no account holds username,
// ignoring case. A blank username is never available.
func (s *AuthService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, nil
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return false, s.storeError(ctx, err)
	}
	return !exists, nil
}

func (s *AuthService) storeError(ctx context.Context, err error) error {
	s.logger.Error(ctx, "credential store failure", "error", err)
	return fmt.Errorf("%w: %w", common.ErrorStoreUnavailable, err)
}
