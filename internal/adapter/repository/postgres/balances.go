package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// GetBalance reads one maintained balance. A pair the ledger never posted
// to reads as zero.
func (s *Store) GetBalance(ctx context.Context, accountID, currency string) (decimal.Decimal, error) {
	var balance pgtype.Numeric

	err := s.pool.QueryRow(ctx, `
		SELECT balance FROM account_balances WHERE account_id = $1 AND currency = $2`,
		accountID, currency,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}

		return decimal.Zero, translateError(err)
	}

	return numericToDecimal(balance), nil
}

// GetBalances reads all maintained balances for an account.
func (s *Store) GetBalances(ctx context.Context, accountID string) (map[string]decimal.Decimal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT currency, balance FROM account_balances WHERE account_id = $1`, accountID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	balances := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			currency string
			balance  pgtype.Numeric
		)

		if err := rows.Scan(&currency, &balance); err != nil {
			return nil, translateError(err)
		}

		balances[currency] = numericToDecimal(balance)
	}

	return balances, rows.Err()
}

// ComputeBalances derives the account's balances by aggregating its
// entries, signed on the account's normal side. Reconciliation compares
// this against the maintained rows.
func (s *Store) ComputeBalances(ctx context.Context, accountID string) (map[string]decimal.Decimal, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	normalSide := string(account.NormalSide())

	rows, err := s.pool.Query(ctx, `
		SELECT currency,
		       SUM(CASE WHEN side = $2 THEN amount ELSE -amount END)
		FROM entries
		WHERE account_id = $1
		GROUP BY currency`, accountID, normalSide)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	balances := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			currency string
			balance  pgtype.Numeric
		)

		if err := rows.Scan(&currency, &balance); err != nil {
			return nil, translateError(err)
		}

		balances[currency] = numericToDecimal(balance)
	}

	return balances, rows.Err()
}
