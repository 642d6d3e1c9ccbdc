// Package memory is an in-process AccountRepository. Uniqueness is enforced
// under a single mutex, matching the primary key guarantee of the Postgres
// store. It backs tests and local runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/IslamMhareeq/sha-256/internal/account/domain"
	autherror "github.com/IslamMhareeq/sha-256/internal/errors"
	"github.com/samber/oops"
)

type Repository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

func NewRepository() *Repository {
	return &Repository{accounts: map[string]domain.Account{}}
}

func (r *Repository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.Username]; ok {
		return oops.Code("ACCOUNT_USERNAME_TAKEN").
			With("username", account.Username).
			Wrap(autherror.ErrUsernameTaken)
	}
	r.accounts[account.Username] = *account
	return nil
}

func (r *Repository) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[username]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *Repository) UpdatePassword(_ context.Context, username, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[username]
	if !ok {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("username", username).
			Wrap(autherror.ErrAccountNotFound)
	}
	a.PasswordHash = passwordHash
	a.UpdatedAt = time.Now().UTC()
	r.accounts[username] = a
	return nil
}

// ListAll orders by creation time, then username, like the Postgres store.
func (r *Repository) ListAll(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Username < out[j].Username
	})
	return out, nil
}
