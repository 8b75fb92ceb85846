package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Account errors
	ErrDuplicateAccountCode = errors.New("account code already exists")
	ErrAccountNotFound      = errors.New("account not found")
	ErrInvalidAccountType   = errors.New("invalid account type")

	// Validation errors
	ErrUnknownAccount       = errors.New("transaction references unknown or inactive account")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrMalformedTransaction = errors.New("transaction needs at least one debit and one credit")
	ErrInvalidScale         = errors.New("amount has more decimal places than the currency allows")
	ErrUnknownCurrency      = errors.New("unknown currency code")
	ErrMetadataTooLarge     = errors.New("metadata size exceeds limit")

	// State errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyVoided       = errors.New("transaction is already voided")
	ErrMultipleCurrencies  = errors.New("account holds balances in multiple currencies; specify one")

	// Storage errors
	ErrConflict = errors.New("write conflict, retry may succeed")
)

// UnbalancedError reports a per-currency debit/credit mismatch. Imbalance
// is debit total minus credit total for the offending currency.
type UnbalancedError struct {
	Currency  string
	Imbalance decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("unbalanced transaction: currency %s is off by %s", e.Currency, e.Imbalance)
}

// IsUnbalanced reports whether err is an UnbalancedError.
func IsUnbalanced(err error) bool {
	var ue *UnbalancedError
	return errors.As(err, &ue)
}
