package postgres

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// AppendTransaction persists the transaction, its entries and the balance
// deltas inside one database transaction.
func (s *Store) AppendTransaction(ctx context.Context, txn *domain.Transaction, deltas []domain.BalanceDelta) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return translateError(err)
	}
	defer rollback(ctx, tx)

	if err := s.appendTx(ctx, tx, txn, deltas); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return translateError(err)
	}

	return nil
}

// AppendReversal flips the original transaction to voided and persists
// the reversal in the same database transaction; both become visible
// together or not at all.
func (s *Store) AppendReversal(ctx context.Context, originalID string, reversal *domain.Transaction, deltas []domain.BalanceDelta) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return translateError(err)
	}
	defer rollback(ctx, tx)

	tag, err := tx.Exec(ctx, `
		UPDATE transactions SET status = $2 WHERE id = $1 AND status = $3`,
		originalID, string(domain.TransactionStatusVoided), string(domain.TransactionStatusPosted),
	)
	if err != nil {
		return translateError(err)
	}

	if tag.RowsAffected() == 0 {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM transactions WHERE id = $1`, originalID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTransactionNotFound
		}
		if err != nil {
			return translateError(err)
		}

		return domain.ErrAlreadyVoided
	}

	if err := s.appendTx(ctx, tx, reversal, deltas); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return translateError(err)
	}

	return nil
}

func (s *Store) appendTx(ctx context.Context, tx pgx.Tx, txn *domain.Transaction, deltas []domain.BalanceDelta) error {
	metadata, err := metadataToJSON(txn.Metadata)
	if err != nil {
		return err
	}

	var reversalOf *string
	if txn.ReversalOf != "" {
		reversalOf = &txn.ReversalOf
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (id, description, reference, status, reversal_of, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		txn.ID, txn.Description, txn.Reference, string(txn.Status), reversalOf, metadata,
		timeToPgTimestamptz(txn.CreatedAt),
	)
	if err != nil {
		return translateError(err)
	}

	for i := range txn.Entries {
		e := &txn.Entries[i]

		_, err = tx.Exec(ctx, `
			INSERT INTO entries (id, transaction_id, account_id, side, amount, currency, description, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, e.TransactionID, e.AccountID, string(e.Side), decimalToNumeric(e.Amount),
			e.Currency, e.Description, i, timeToPgTimestamptz(e.CreatedAt),
		)
		if err != nil {
			return translateError(err)
		}
	}

	// Upsert balance rows in a fixed order so two postings touching the
	// same accounts cannot deadlock. The increment happens in SQL, never
	// from a value read earlier.
	sorted := make([]domain.BalanceDelta, len(deltas))
	copy(sorted, deltas)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].AccountID != sorted[j].AccountID {
			return sorted[i].AccountID < sorted[j].AccountID
		}

		return sorted[i].Currency < sorted[j].Currency
	})

	for _, delta := range sorted {
		_, err = tx.Exec(ctx, `
			INSERT INTO account_balances (account_id, currency, balance, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (account_id, currency)
			DO UPDATE SET balance = account_balances.balance + EXCLUDED.balance,
			              updated_at = EXCLUDED.updated_at`,
			delta.AccountID, delta.Currency, decimalToNumeric(delta.Delta),
			timeToPgTimestamptz(txn.CreatedAt),
		)
		if err != nil {
			return translateError(err)
		}
	}

	return nil
}

// GetTransaction retrieves a transaction with its entries.
func (s *Store) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	txn, err := s.scanTransactionRow(s.pool.QueryRow(ctx, `
		SELECT id, description, reference, status, reversal_of, metadata, created_at
		FROM transactions WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	entries, err := s.loadEntries(ctx, []string{id})
	if err != nil {
		return nil, err
	}

	txn.Entries = entries[id]

	return txn, nil
}

// ListTransactions lists transactions matching the filter, newest first.
func (s *Store) ListTransactions(ctx context.Context, filter usecase.TransactionFilter) ([]*domain.Transaction, error) {
	query := `
		SELECT id, description, reference, status, reversal_of, metadata, created_at
		FROM transactions WHERE true`

	var args []any
	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		query += ` AND id IN (SELECT transaction_id FROM entries WHERE account_id = $` + strconv.Itoa(len(args)) + `)`
	}
	if filter.From != nil {
		args = append(args, timeToPgTimestamptz(*filter.From))
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, timeToPgTimestamptz(*filter.To))
		query += ` AND created_at <= $` + strconv.Itoa(len(args))
	}

	args = append(args, filter.Limit)
	query += ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var txns []*domain.Transaction

	var ids []string
	for rows.Next() {
		txn, err := s.scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}

		txns = append(txns, txn)
		ids = append(ids, txn.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	if len(ids) == 0 {
		return txns, nil
	}

	entries, err := s.loadEntries(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, txn := range txns {
		txn.Entries = entries[txn.ID]
	}

	return txns, nil
}

func (s *Store) scanTransactionRow(row rowScanner) (*domain.Transaction, error) {
	var (
		txn        domain.Transaction
		status     string
		reversalOf *string
		metadata   []byte
		createdAt  pgtype.Timestamptz
	)

	err := row.Scan(&txn.ID, &txn.Description, &txn.Reference, &status, &reversalOf, &metadata, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, translateError(err)
	}

	txn.Status = domain.TransactionStatus(status)
	txn.CreatedAt = createdAt.Time
	if reversalOf != nil {
		txn.ReversalOf = *reversalOf
	}

	txn.Metadata, err = jsonToMetadata(metadata)
	if err != nil {
		return nil, err
	}

	return &txn, nil
}

func (s *Store) loadEntries(ctx context.Context, transactionIDs []string) (map[string][]domain.Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, transaction_id, account_id, side, amount, currency, description, created_at
		FROM entries WHERE transaction_id = ANY($1)
		ORDER BY transaction_id, position`, transactionIDs)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	entries := make(map[string][]domain.Entry)
	for rows.Next() {
		var (
			e         domain.Entry
			side      string
			amount    pgtype.Numeric
			createdAt pgtype.Timestamptz
		)

		err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID, &side, &amount, &e.Currency, &e.Description, &createdAt)
		if err != nil {
			return nil, translateError(err)
		}

		e.Side = domain.EntrySide(side)
		e.Amount = numericToDecimal(amount)
		e.CreatedAt = createdAt.Time

		entries[e.TransactionID] = append(entries[e.TransactionID], e)
	}

	return entries, rows.Err()
}
