package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
	"github.com/iho/bookkeeper/internal/usecase/mocks"
)

func TestAccountUseCase_CreateAccount(t *testing.T) {
	tests := []struct {
		name         string
		input        usecase.CreateAccountInput
		saveErr      error
		expectErr    bool
		expectSave   bool
		wantCurrency string
	}{
		{
			name: "successful creation",
			input: usecase.CreateAccountInput{
				Code: "1000", Name: "Cash", Type: domain.AccountTypeAsset, Currency: "EUR",
			},
			expectSave:   true,
			wantCurrency: "EUR",
		},
		{
			name: "empty currency falls back to default",
			input: usecase.CreateAccountInput{
				Code: "1001", Name: "Cash", Type: domain.AccountTypeAsset,
			},
			expectSave:   true,
			wantCurrency: "USD",
		},
		{
			name: "invalid account type",
			input: usecase.CreateAccountInput{
				Code: "1002", Name: "Cash", Type: "goodwill",
			},
			expectErr: true,
		},
		{
			name: "duplicate code",
			input: usecase.CreateAccountInput{
				Code: "1000", Name: "Cash", Type: domain.AccountTypeAsset,
			},
			saveErr:    domain.ErrDuplicateAccountCode,
			expectSave: true,
			expectErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := mocks.NewMockStore(ctrl)
			idGen := mocks.NewMockIDGenerator(ctrl)
			idGen.EXPECT().Generate().Return("acc-id").AnyTimes()

			if tt.expectSave {
				store.EXPECT().SaveAccount(gomock.Any(), gomock.Any()).Return(tt.saveErr)
			}

			uc := usecase.NewAccountUseCase(store, idGen, "USD", nil)

			account, err := uc.CreateAccount(context.Background(), tt.input)

			if tt.expectErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !account.Active {
				t.Error("new accounts start active")
			}

			if account.Currency != tt.wantCurrency {
				t.Errorf("expected currency %s, got %s", tt.wantCurrency, account.Currency)
			}
		})
	}
}

func TestAccountUseCase_UpdateAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	existing := &domain.Account{
		ID: "acc-1", Code: "1000", Name: "Cash",
		Type: domain.AccountTypeAsset, Currency: "USD", Active: true,
	}

	store.EXPECT().GetAccountByID(gomock.Any(), "acc-1").Return(existing, nil)
	store.EXPECT().UpdateAccount(gomock.Any(), gomock.Any()).Return(nil)

	uc := usecase.NewAccountUseCase(store, idGen, "USD", nil)

	newName := "Petty Cash"
	account, err := uc.UpdateAccount(context.Background(), "acc-1", usecase.UpdateAccountInput{
		Name: &newName,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.Name != "Petty Cash" {
		t.Errorf("expected updated name, got %s", account.Name)
	}

	// Untouched fields survive a partial update.
	if account.Code != "1000" || !account.Active {
		t.Error("partial update changed unrelated fields")
	}
}

func TestAccountUseCase_UpdateAccountNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	store.EXPECT().GetAccountByID(gomock.Any(), "missing").Return(nil, domain.ErrAccountNotFound)

	uc := usecase.NewAccountUseCase(store, idGen, "USD", nil)

	_, err := uc.UpdateAccount(context.Background(), "missing", usecase.UpdateAccountInput{})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountUseCase_DeactivateAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	existing := &domain.Account{
		ID: "acc-1", Code: "1000", Name: "Cash",
		Type: domain.AccountTypeAsset, Currency: "USD", Active: true,
	}

	store.EXPECT().GetAccountByID(gomock.Any(), "acc-1").Return(existing, nil)
	store.EXPECT().UpdateAccount(gomock.Any(), gomock.Any()).Return(nil)

	uc := usecase.NewAccountUseCase(store, idGen, "USD", nil)

	account, err := uc.DeactivateAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.Active {
		t.Error("expected account to be inactive")
	}
}
