package usecase

import (
	"context"
	"time"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/infrastructure/metrics"
)

// AccountUseCase is the account registry: it creates and looks up
// accounts and enforces code uniqueness.
type AccountUseCase struct {
	store           Store
	idGen           IDGenerator
	defaultCurrency string
	metrics         *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase. metrics may be nil.
func NewAccountUseCase(store Store, idGen IDGenerator, defaultCurrency string, m *metrics.Metrics) *AccountUseCase {
	return &AccountUseCase{
		store:           store,
		idGen:           idGen,
		defaultCurrency: defaultCurrency,
		metrics:         m,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Metadata    map[string]any
	Code        string
	Name        string
	Description string
	Currency    string
	Type        domain.AccountType
}

// CreateAccount creates a new account. No default accounts are ever
// created implicitly; every account comes through here.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	currency := input.Currency
	if currency == "" {
		currency = uc.defaultCurrency
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:          uc.idGen.Generate(),
		Code:        input.Code,
		Name:        input.Name,
		Type:        input.Type,
		Currency:    currency,
		Description: input.Description,
		Metadata:    input.Metadata,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	if err := uc.store.SaveAccount(ctx, account); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
		uc.metrics.AccountOperations.WithLabelValues("create").Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.store.GetAccountByID(ctx, id)
}

// GetAccountByCode retrieves an account by its unique code.
func (uc *AccountUseCase) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	return uc.store.GetAccountByCode(ctx, code)
}

// ListAccounts lists accounts matching the filter.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, filter AccountFilter) ([]*domain.Account, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	return uc.store.ListAccounts(ctx, filter)
}

// UpdateAccountInput carries the mutable account fields. Nil pointers
// leave the field unchanged; code and type are immutable by design of the
// data model, so they are absent here.
type UpdateAccountInput struct {
	Name        *string
	Description *string
	Active      *bool
	Metadata    map[string]any
}

// UpdateAccount applies the given changes to an account.
func (uc *AccountUseCase) UpdateAccount(ctx context.Context, id string, input UpdateAccountInput) (*domain.Account, error) {
	account, err := uc.store.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := domain.ValidateAccountName(*input.Name); err != nil {
			return nil, err
		}
		account.Name = *input.Name
	}

	if input.Description != nil {
		account.Description = *input.Description
	}

	if input.Active != nil {
		account.Active = *input.Active
	}

	if input.Metadata != nil {
		if err := domain.ValidateMetadata(input.Metadata); err != nil {
			return nil, err
		}
		account.Metadata = input.Metadata
	}

	account.UpdatedAt = time.Now().UTC()

	if err := uc.store.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues("update").Inc()
	}

	return account, nil
}

// DeactivateAccount marks an account inactive. Accounts are never
// deleted; inactive accounts reject new postings but keep their history.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, id string) (*domain.Account, error) {
	inactive := false

	return uc.UpdateAccount(ctx, id, UpdateAccountInput{Active: &inactive})
}
