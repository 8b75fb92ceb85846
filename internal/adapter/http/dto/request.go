package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Metadata    map[string]any `json:"metadata,omitempty"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Currency    string         `json:"currency,omitempty"`
	Description string         `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Code:        r.Code,
		Name:        r.Name,
		Type:        domain.AccountType(r.Type),
		Currency:    r.Currency,
		Description: r.Description,
		Metadata:    r.Metadata,
	}
}

// UpdateAccountRequest represents a partial account update. Absent fields
// stay unchanged.
type UpdateAccountRequest struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Active      *bool          `json:"active,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateAccountRequest) ToUseCaseInput() usecase.UpdateAccountInput {
	return usecase.UpdateAccountInput{
		Name:        r.Name,
		Description: r.Description,
		Active:      r.Active,
		Metadata:    r.Metadata,
	}
}

// EntryLineRequest is one debit or credit line of a posting request.
type EntryLineRequest struct {
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	Description string          `json:"description,omitempty"`
}

// RecordTransactionRequest represents a request to post a transaction.
type RecordTransactionRequest struct {
	Metadata    map[string]any     `json:"metadata,omitempty"`
	Description string             `json:"description"`
	Reference   string             `json:"reference,omitempty"`
	Debits      []EntryLineRequest `json:"debits"`
	Credits     []EntryLineRequest `json:"credits"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordTransactionRequest) ToUseCaseInput() usecase.RecordTransactionInput {
	return usecase.RecordTransactionInput{
		Description: r.Description,
		Reference:   r.Reference,
		Metadata:    r.Metadata,
		Debits:      linesToDomain(r.Debits),
		Credits:     linesToDomain(r.Credits),
	}
}

func linesToDomain(lines []EntryLineRequest) []domain.EntryLine {
	result := make([]domain.EntryLine, len(lines))
	for i, line := range lines {
		result[i] = domain.EntryLine{
			AccountID:   line.AccountID,
			Amount:      line.Amount,
			Currency:    line.Currency,
			Description: line.Description,
		}
	}

	return result
}

// VoidTransactionRequest represents a request to void a transaction.
type VoidTransactionRequest struct {
	Reason string `json:"reason"`
}
