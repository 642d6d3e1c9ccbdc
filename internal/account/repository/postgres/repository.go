package postgres

import (
	"context"
	"errors"

	"github.com/IslamMhareeq/sha-256/internal/account/domain"
	autherror "github.com/IslamMhareeq/sha-256/internal/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// PgxIface is the subset of *pgxpool.Pool the repository needs. pgxmock
// pools satisfy it as well.
type PgxIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	db PgxIface
}

func NewPostgresRepository(db PgxIface) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `username, password_hash, role, first_name, last_name, id_number,
		credit_card_number, valid_date, cvc, created_at, updated_at`

// Create relies on the primary key to reject duplicate usernames.
func (r *PostgresRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		account.Username, account.PasswordHash, string(account.Role),
		account.Profile.FirstName, account.Profile.LastName, account.Profile.IDNumber,
		account.Profile.CreditCardNumber, account.Profile.ValidDate, account.Profile.CVC,
		account.CreatedAt, account.UpdatedAt,
	)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code("ACCOUNT_USERNAME_TAKEN").
			With("username", account.Username).
			Wrap(autherror.ErrUsernameTaken)
	}
	return storeError("ACCOUNT_CREATE_FAILED", "insert account", err)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE username = $1
	`, username)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("ACCOUNT_GET_FAILED", "get account by username", err)
	}
	return account, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET password_hash = $1, updated_at = now()
		WHERE username = $2
	`, passwordHash, username)
	if err != nil {
		return storeError("ACCOUNT_UPDATE_PASSWORD_FAILED", "update password", err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("username", username).
			Wrap(autherror.ErrAccountNotFound)
	}
	return nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY created_at, username
	`)
	if err != nil {
		return nil, storeError("ACCOUNT_LIST_FAILED", "list accounts", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, storeError("ACCOUNT_LIST_FAILED", "scan account", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("ACCOUNT_LIST_FAILED", "iterate accounts", err)
	}
	return accounts, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a    domain.Account
		role string
	)
	err := row.Scan(
		&a.Username, &a.PasswordHash, &role,
		&a.Profile.FirstName, &a.Profile.LastName, &a.Profile.IDNumber,
		&a.Profile.CreditCardNumber, &a.Profile.ValidDate, &a.Profile.CVC,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Role = domain.Role(role)
	return &a, nil
}

// storeError tags err as ErrStoreUnavailable so callers can map it to a
// generic server error without inspecting driver details.
func storeError(code, operation string, err error) error {
	return oops.Code(code).
		With("operation", operation).
		Wrap(errors.Join(autherror.ErrStoreUnavailable, err))
}
