package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/infrastructure/metrics"
)

const asOfPageSize = 1000

// BalanceUseCase is the balance accumulator. It answers balance queries
// from the maintained balances, which the posting engine keeps in lock
// step with the entry history inside each atomic unit, so every read
// reflects all transactions committed before the call.
type BalanceUseCase struct {
	store   Store
	metrics *metrics.Metrics
}

// NewBalanceUseCase creates a new BalanceUseCase. metrics may be nil.
func NewBalanceUseCase(store Store, m *metrics.Metrics) *BalanceUseCase {
	return &BalanceUseCase{store: store, metrics: m}
}

// GetBalance returns the account's balance in the given currency,
// computed on the account's normal side. With an empty currency, the
// single currency of the account's history is used; an account holding
// several currencies rejects the ambiguous read with
// domain.ErrMultipleCurrencies rather than summing across currencies.
func (uc *BalanceUseCase) GetBalance(ctx context.Context, accountID, currency string) (decimal.Decimal, error) {
	uc.countRead()

	if _, err := uc.store.GetAccountByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}

	if currency != "" {
		return uc.store.GetBalance(ctx, accountID, canonicalCurrency(currency))
	}

	balances, err := uc.store.GetBalances(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return soleBalance(balances)
}

// GetBalances returns every currency balance the account holds.
func (uc *BalanceUseCase) GetBalances(ctx context.Context, accountID string) (map[string]decimal.Decimal, error) {
	uc.countRead()

	if _, err := uc.store.GetAccountByID(ctx, accountID); err != nil {
		return nil, err
	}

	return uc.store.GetBalances(ctx, accountID)
}

// GetBalanceAsOf returns the balance the account held at asOf, with the
// same currency resolution as GetBalance.
func (uc *BalanceUseCase) GetBalanceAsOf(ctx context.Context, accountID, currency string, asOf time.Time) (decimal.Decimal, error) {
	uc.countRead()

	balances, err := uc.scanBalancesAsOf(ctx, accountID, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	if currency != "" {
		return balances[canonicalCurrency(currency)], nil
	}

	return soleBalance(balances)
}

// GetBalancesAsOf returns every currency balance the account held at
// asOf.
func (uc *BalanceUseCase) GetBalancesAsOf(ctx context.Context, accountID string, asOf time.Time) (map[string]decimal.Decimal, error) {
	uc.countRead()

	return uc.scanBalancesAsOf(ctx, accountID, asOf)
}

// scanBalancesAsOf derives historical balances from the entry history.
// Only transactions committed at or before the cutoff contribute: a
// voided original whose reversal came later still counts in full, which
// is exactly what the account held at that moment.
func (uc *BalanceUseCase) scanBalancesAsOf(ctx context.Context, accountID string, asOf time.Time) (map[string]decimal.Decimal, error) {
	account, err := uc.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	side := account.NormalSide()
	balances := make(map[string]decimal.Decimal)

	filter := TransactionFilter{
		AccountID: accountID,
		To:        &asOf,
		Limit:     asOfPageSize,
	}

	for {
		txns, err := uc.store.ListTransactions(ctx, filter)
		if err != nil {
			return nil, err
		}

		for _, txn := range txns {
			for i := range txn.Entries {
				e := &txn.Entries[i]
				if e.AccountID != accountID {
					continue
				}

				balances[e.Currency] = balances[e.Currency].Add(e.NormalAmount(side))
			}
		}

		if len(txns) < filter.Limit {
			return balances, nil
		}

		filter.Offset += filter.Limit
	}
}

func (uc *BalanceUseCase) countRead() {
	if uc.metrics != nil {
		uc.metrics.BalanceReads.Inc()
	}
}

// canonicalCurrency maps a registered code to its canonical form;
// unregistered codes pass through and read as zero balances.
func canonicalCurrency(currency string) string {
	if c, ok := domain.LookupCurrency(currency); ok {
		return c.Code
	}

	return currency
}

// soleBalance resolves an unqualified read against a balance map.
func soleBalance(balances map[string]decimal.Decimal) (decimal.Decimal, error) {
	switch len(balances) {
	case 0:
		return decimal.Zero, nil
	case 1:
		for _, balance := range balances {
			return balance, nil
		}
	}

	return decimal.Zero, domain.ErrMultipleCurrencies
}
