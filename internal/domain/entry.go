package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntrySide is the side of a ledger entry.
type EntrySide string

const (
	EntrySideDebit  EntrySide = "debit"
	EntrySideCredit EntrySide = "credit"
)

// Opposite returns the swapped side.
func (s EntrySide) Opposite() EntrySide {
	if s == EntrySideDebit {
		return EntrySideCredit
	}

	return EntrySideDebit
}

// Entry is one immutable line of a transaction. Entries belong to exactly
// one transaction and are never edited or removed after commit.
type Entry struct {
	CreatedAt     time.Time
	ID            string
	TransactionID string
	AccountID     string
	Currency      string
	Description   string
	Side          EntrySide
	Amount        decimal.Decimal
}

// IsDebit reports whether the entry is on the debit side.
func (e *Entry) IsDebit() bool {
	return e.Side == EntrySideDebit
}

// SignedAmount returns the amount signed by side: positive for debits,
// negative for credits.
func (e *Entry) SignedAmount() decimal.Decimal {
	if e.IsDebit() {
		return e.Amount
	}

	return e.Amount.Neg()
}

// NormalAmount returns the entry's contribution to the balance of an
// account whose normal side is normalSide.
func (e *Entry) NormalAmount(normalSide EntrySide) decimal.Decimal {
	if e.Side == normalSide {
		return e.Amount
	}

	return e.Amount.Neg()
}
