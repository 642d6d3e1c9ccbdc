package domain

//go:generate mockgen -destination=../../mocks/mock_account_repository.go -package=mocks github.com/IslamMhareeq/sha-256/internal/account/domain AccountRepository

import "context"

type AccountRepository interface {
	// Create fails with ErrUsernameTaken when the username already exists.
	Create(ctx context.Context, account *Account) error
	// GetByUsername returns nil, nil when no account matches.
	GetByUsername(ctx context.Context, username string) (*Account, error)
	// UpdatePassword fails with ErrAccountNotFound when no row was changed.
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	ListAll(ctx context.Context) ([]Account, error)
}
