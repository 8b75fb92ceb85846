package domain

import (
	"time"
)

// AccountType classifies an account in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}

	return false
}

// Account represents a ledger account. Code is immutable once assigned;
// accounts are never deleted, only deactivated.
type Account struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Metadata    map[string]any
	ID          string
	Code        string
	Name        string
	Description string
	Currency    string
	Type        AccountType
	Active      bool
}

// NormalSide returns the side that increases the account's balance.
// Asset and expense accounts are debit-normal; liability, equity and
// revenue accounts are credit-normal.
func (a *Account) NormalSide() EntrySide {
	if a.Type == AccountTypeAsset || a.Type == AccountTypeExpense {
		return EntrySideDebit
	}

	return EntrySideCredit
}

// Validate validates account fields at creation time and normalizes the
// currency to its canonical registry code.
func (a *Account) Validate() error {
	if err := ValidateAccountCode(a.Code); err != nil {
		return err
	}

	if err := ValidateAccountName(a.Name); err != nil {
		return err
	}

	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}

	currency, err := ValidateCurrency(a.Currency)
	if err != nil {
		return err
	}
	a.Currency = currency

	return nil
}
