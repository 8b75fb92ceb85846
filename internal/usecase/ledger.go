package usecase

import (
	"github.com/rs/zerolog"

	"github.com/iho/bookkeeper/internal/infrastructure/metrics"
)

// Ledger bundles the use cases over one storage adapter. There is no
// process-wide instance; callers construct a Ledger with the adapter they
// want and share it across goroutines.
type Ledger struct {
	Accounts       *AccountUseCase
	Posting        *PostingUseCase
	Balances       *BalanceUseCase
	Reconciliation *ReconciliationUseCase
}

// NewLedger wires the use cases around a storage adapter. metrics may be
// nil to disable instrumentation.
func NewLedger(store Store, idGen IDGenerator, logger zerolog.Logger, defaultCurrency string, m *metrics.Metrics) *Ledger {
	return &Ledger{
		Accounts:       NewAccountUseCase(store, idGen, defaultCurrency, m),
		Posting:        NewPostingUseCase(store, idGen, logger, m),
		Balances:       NewBalanceUseCase(store, m),
		Reconciliation: NewReconciliationUseCase(store, logger, m),
	}
}
