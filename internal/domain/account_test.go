package domain

import (
	"errors"
	"testing"
)

func TestAccount_NormalSide(t *testing.T) {
	tests := []struct {
		name     string
		accType  AccountType
		expected EntrySide
	}{
		{name: "asset is debit-normal", accType: AccountTypeAsset, expected: EntrySideDebit},
		{name: "expense is debit-normal", accType: AccountTypeExpense, expected: EntrySideDebit},
		{name: "liability is credit-normal", accType: AccountTypeLiability, expected: EntrySideCredit},
		{name: "equity is credit-normal", accType: AccountTypeEquity, expected: EntrySideCredit},
		{name: "revenue is credit-normal", accType: AccountTypeRevenue, expected: EntrySideCredit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Type: tt.accType}

			if got := acc.NormalSide(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestAccount_Validate(t *testing.T) {
	valid := Account{
		Code:     "1000",
		Name:     "Cash",
		Type:     AccountTypeAsset,
		Currency: "USD",
	}

	tests := []struct {
		name        string
		mutate      func(*Account)
		expectError bool
	}{
		{
			name:        "valid account",
			mutate:      func(a *Account) {},
			expectError: false,
		},
		{
			name:        "empty code",
			mutate:      func(a *Account) { a.Code = "" },
			expectError: true,
		},
		{
			name:        "whitespace code",
			mutate:      func(a *Account) { a.Code = "   " },
			expectError: true,
		},
		{
			name:        "empty name",
			mutate:      func(a *Account) { a.Name = "" },
			expectError: true,
		},
		{
			name:        "unknown type",
			mutate:      func(a *Account) { a.Type = "contra-asset" },
			expectError: true,
		},
		{
			name:        "unknown currency",
			mutate:      func(a *Account) { a.Currency = "XXX" },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := valid
			tt.mutate(&acc)

			err := acc.Validate()

			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAccount_ValidateUnknownCurrency(t *testing.T) {
	acc := Account{Code: "1000", Name: "Cash", Type: AccountTypeAsset, Currency: "XXX"}

	if err := acc.Validate(); !errors.Is(err, ErrUnknownCurrency) {
		t.Errorf("expected ErrUnknownCurrency, got %v", err)
	}
}

func TestAccount_ValidateNormalizesCurrency(t *testing.T) {
	acc := Account{Code: "1000", Name: "Cash", Type: AccountTypeAsset, Currency: "usd"}

	if err := acc.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if acc.Currency != "USD" {
		t.Errorf("expected canonical USD, got %q", acc.Currency)
	}
}

func TestEntrySide_Opposite(t *testing.T) {
	if EntrySideDebit.Opposite() != EntrySideCredit {
		t.Error("expected debit opposite to be credit")
	}

	if EntrySideCredit.Opposite() != EntrySideDebit {
		t.Error("expected credit opposite to be debit")
	}
}
