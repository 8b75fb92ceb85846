package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
)

// AccountFilter narrows ListAccounts results. Nil fields match everything.
type AccountFilter struct {
	Active   *bool
	Currency string
	Type     domain.AccountType
	Limit    int
	Offset   int
}

// TransactionFilter narrows ListTransactions results.
type TransactionFilter struct {
	From      *time.Time
	To        *time.Time
	AccountID string
	Limit     int
	Offset    int
}

// Store is the storage adapter contract every backend implements. The
// ledger core depends only on this interface and never on a concrete
// backend. The adapter owns the only mutable shared state and provides
// the atomic unit the posting engine relies on: AppendTransaction and
// AppendReversal must be all-or-nothing, and concurrent balance updates
// must not lose writes. Write conflicts surface as domain.ErrConflict;
// the core never retries on its own.
type Store interface {
	// SaveAccount persists a new account. Fails with
	// domain.ErrDuplicateAccountCode if the code is taken.
	SaveAccount(ctx context.Context, account *domain.Account) error
	// UpdateAccount persists mutable account fields (name, description,
	// active flag, metadata). Code and type never change.
	UpdateAccount(ctx context.Context, account *domain.Account) error
	GetAccountByID(ctx context.Context, id string) (*domain.Account, error)
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)
	ListAccounts(ctx context.Context, filter AccountFilter) ([]*domain.Account, error)

	// AppendTransaction persists the transaction with its entries and
	// applies the balance deltas as one indivisible unit. On any error
	// no partial write is visible.
	AppendTransaction(ctx context.Context, txn *domain.Transaction, deltas []domain.BalanceDelta) error
	// AppendReversal persists the reversal (entries and deltas included)
	// and flips the original transaction's status to voided in the same
	// atomic unit. Fails with domain.ErrTransactionNotFound or
	// domain.ErrAlreadyVoided without writing anything.
	AppendReversal(ctx context.Context, originalID string, reversal *domain.Transaction, deltas []domain.BalanceDelta) error
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, error)

	// GetBalance reads the maintained balance for one account currency.
	// Missing history reads as zero.
	GetBalance(ctx context.Context, accountID, currency string) (decimal.Decimal, error)
	// GetBalances reads all maintained balances for an account, keyed by
	// currency.
	GetBalances(ctx context.Context, accountID string) (map[string]decimal.Decimal, error)
	// ComputeBalances derives the same mapping by scanning entries. It
	// exists so reconciliation can cross-check the maintained balances;
	// both forms must always agree.
	ComputeBalances(ctx context.Context, accountID string) (map[string]decimal.Decimal, error)
}

// IDGenerator generates unique, monotonically sortable IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage for callers that
// deduplicate retried requests. The core itself never deduplicates.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// Retrier retries an operation on transient conflicts. Used at the edges
// (HTTP handlers, CLI); the posting engine itself surfaces conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
