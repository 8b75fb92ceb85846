package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a committed transaction.
type TransactionStatus string

const (
	TransactionStatusPosted TransactionStatus = "posted"
	TransactionStatusVoided TransactionStatus = "voided"
)

// Transaction is an immutable, committed group of balanced entries. The
// only permitted mutation after commit is the posted -> voided status
// transition, performed exactly once by the void path.
type Transaction struct {
	CreatedAt   time.Time
	Metadata    map[string]any
	ID          string
	Description string
	Reference   string
	ReversalOf  string
	Status      TransactionStatus
	Entries     []Entry
}

// IsVoided reports whether the transaction has been voided.
func (t *Transaction) IsVoided() bool {
	return t.Status == TransactionStatusVoided
}

// IsReversal reports whether the transaction reverses another one.
func (t *Transaction) IsReversal() bool {
	return t.ReversalOf != ""
}

// DebitTotal returns the sum of debit amounts in the given currency.
func (t *Transaction) DebitTotal(currency string) decimal.Decimal {
	return t.sideTotal(EntrySideDebit, currency)
}

// CreditTotal returns the sum of credit amounts in the given currency.
func (t *Transaction) CreditTotal(currency string) decimal.Decimal {
	return t.sideTotal(EntrySideCredit, currency)
}

func (t *Transaction) sideTotal(side EntrySide, currency string) decimal.Decimal {
	total := decimal.Zero
	for i := range t.Entries {
		e := &t.Entries[i]
		if e.Side == side && e.Currency == currency {
			total = total.Add(e.Amount)
		}
	}

	return total
}

// Currencies returns the distinct currencies present in the entries, in
// first-appearance order.
func (t *Transaction) Currencies() []string {
	seen := make(map[string]bool)

	var currencies []string
	for i := range t.Entries {
		c := t.Entries[i].Currency
		if !seen[c] {
			seen[c] = true
			currencies = append(currencies, c)
		}
	}

	return currencies
}

// BalanceDelta is the balance effect of a transaction on one
// (account, currency) pair, expressed on the account's normal side.
type BalanceDelta struct {
	AccountID string
	Currency  string
	Delta     decimal.Decimal
}
