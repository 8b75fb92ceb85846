package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

const accountColumns = `id, code, name, type, currency, description, active, metadata, created_at, updated_at`

// SaveAccount persists a new account.
func (s *Store) SaveAccount(ctx context.Context, account *domain.Account) error {
	metadata, err := metadataToJSON(account.Metadata)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO accounts (id, code, name, type, currency, description, active, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		account.ID, account.Code, account.Name, string(account.Type), account.Currency,
		account.Description, account.Active, metadata,
		timeToPgTimestamptz(account.CreatedAt), timeToPgTimestamptz(account.UpdatedAt),
	)
	if err != nil {
		return translateError(err)
	}

	return nil
}

// UpdateAccount persists mutable account fields. Code and type are left
// out of the statement on purpose.
func (s *Store) UpdateAccount(ctx context.Context, account *domain.Account) error {
	metadata, err := metadataToJSON(account.Metadata)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE accounts
		SET name = $2, description = $3, active = $4, metadata = $5, updated_at = $6
		WHERE id = $1`,
		account.ID, account.Name, account.Description, account.Active, metadata,
		timeToPgTimestamptz(account.UpdatedAt),
	)
	if err != nil {
		return translateError(err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// GetAccountByID retrieves an account by ID.
func (s *Store) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)

	return scanAccount(row)
}

// GetAccountByCode retrieves an account by its unique code.
func (s *Store) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code = $1`, code)

	return scanAccount(row)
}

// ListAccounts lists accounts matching the filter, ordered by code.
func (s *Store) ListAccounts(ctx context.Context, filter usecase.AccountFilter) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE true`

	var args []any
	if filter.Active != nil {
		args = append(args, *filter.Active)
		query += ` AND active = $` + strconv.Itoa(len(args))
	}
	if filter.Currency != "" {
		args = append(args, filter.Currency)
		query += ` AND currency = $` + strconv.Itoa(len(args))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		query += ` AND type = $` + strconv.Itoa(len(args))
	}

	args = append(args, filter.Limit)
	query += ` ORDER BY code LIMIT $` + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		account              domain.Account
		accountType          string
		metadata             []byte
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&account.ID, &account.Code, &account.Name, &accountType, &account.Currency,
		&account.Description, &account.Active, &metadata, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, translateError(err)
	}

	account.Type = domain.AccountType(accountType)
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time

	account.Metadata, err = jsonToMetadata(metadata)
	if err != nil {
		return nil, err
	}

	return &account, nil
}
