package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	ID          string         `json:"id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Currency    string         `json:"currency"`
	Description string         `json:"description,omitempty"`
	Active      bool           `json:"active"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:          a.ID,
		Code:        a.Code,
		Name:        a.Name,
		Type:        string(a.Type),
		Currency:    a.Currency,
		Description: a.Description,
		Active:      a.Active,
		Metadata:    a.Metadata,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}

	return result
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	CreatedAt   time.Time       `json:"created_at"`
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Side        string          `json:"side"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	CreatedAt   time.Time        `json:"created_at"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Reference   string           `json:"reference,omitempty"`
	Status      string           `json:"status"`
	ReversalOf  string           `json:"reversal_of,omitempty"`
	Entries     []*EntryResponse `json:"entries"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	entries := make([]*EntryResponse, len(t.Entries))
	for i := range t.Entries {
		e := &t.Entries[i]
		entries[i] = &EntryResponse{
			ID:          e.ID,
			AccountID:   e.AccountID,
			Side:        string(e.Side),
			Amount:      e.Amount,
			Currency:    e.Currency,
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
		}
	}

	return &TransactionResponse{
		ID:          t.ID,
		Description: t.Description,
		Reference:   t.Reference,
		Status:      string(t.Status),
		ReversalOf:  t.ReversalOf,
		Metadata:    t.Metadata,
		Entries:     entries,
		CreatedAt:   t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}

	return result
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
}

// BalanceResponse represents an account's balances. Balance is set for a
// single-currency read; Balances carries the per-currency mapping.
type BalanceResponse struct {
	Balance   *decimal.Decimal           `json:"balance,omitempty"`
	Balances  map[string]decimal.Decimal `json:"balances,omitempty"`
	AccountID string                     `json:"account_id"`
	Currency  string                     `json:"currency,omitempty"`
}

// DiscrepancyResponse is one balance mismatch found by reconciliation.
type DiscrepancyResponse struct {
	AccountID  string          `json:"account_id"`
	Currency   string          `json:"currency"`
	Maintained decimal.Decimal `json:"maintained"`
	Derived    decimal.Decimal `json:"derived"`
}

// ConsistencyResponse is the outcome of a reconciliation run.
type ConsistencyResponse struct {
	Status          string                `json:"status"`
	Discrepancies   []DiscrepancyResponse `json:"discrepancies,omitempty"`
	AccountsChecked int                   `json:"accounts_checked"`
	Consistent      bool                  `json:"consistent"`
}

// ConsistencyFromReport converts a reconciliation report to a response.
func ConsistencyFromReport(report *usecase.Report) *ConsistencyResponse {
	resp := &ConsistencyResponse{
		Consistent:      report.Consistent(),
		AccountsChecked: report.AccountsChecked,
		Status:          "ok",
	}

	if !report.Consistent() {
		resp.Status = "inconsistent"
		for _, d := range report.Discrepancies {
			resp.Discrepancies = append(resp.Discrepancies, DiscrepancyResponse{
				AccountID:  d.AccountID,
				Currency:   d.Currency,
				Maintained: d.Maintained,
				Derived:    d.Derived,
			})
		}
	}

	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
