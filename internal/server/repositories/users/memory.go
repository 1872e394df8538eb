package users

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/bankauth/internal/common"
	"github.com/dmitrijs2005/bankauth/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository keeps accounts in process memory. A single mutex makes
// the uniqueness check and the write one atomic step. Records are copied in
// and out so callers never share state with the store.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
	now   func() time.Time
}

func NewInMemoryRepository(seed ...models.User) *InMemoryRepository {
	r := &InMemoryRepository{users: make(map[string]models.User), now: time.Now}
	for _, u := range seed {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *InMemoryRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(ctx, func(u *models.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *InMemoryRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(ctx, func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *InMemoryRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, func(u *models.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *InMemoryRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *InMemoryRepository) Save(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if user.ID != "" {
		existing, ok := r.users[user.ID]
		if !ok {
			return nil, common.ErrorNotFound
		}
		existing.Password = user.Password
		existing.UpdatedAt = now
		r.users[existing.ID] = existing

		*user = existing
		return &existing, nil
	}

	for _, other := range r.users {
		if strings.EqualFold(other.Email, user.Email) {
			return nil, &common.ConflictError{Field: common.FieldEmail}
		}
		if strings.EqualFold(other.Username, user.Username) {
			return nil, &common.ConflictError{Field: common.FieldUsername}
		}
	}

	record := *user
	record.ID = uuid.NewString()
	record.CreatedAt = now
	record.UpdatedAt = now
	r.users[record.ID] = record

	*user = record
	return &record, nil
}

func (r *InMemoryRepository) find(ctx context.Context, match func(*models.User) bool) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(&u) {
			found := u
			return &found, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) exists(ctx context.Context, match func(*models.User) bool) (bool, error) {
	_, err := r.find(ctx, match)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrorNotFound):
		return false, nil
	default:
		return false, err
	}
}
