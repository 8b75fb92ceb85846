package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
	"github.com/iho/bookkeeper/internal/usecase/mocks"
)

func cashAccount() *domain.Account {
	return &domain.Account{
		ID: "cash", Code: "1000", Name: "Cash",
		Type: domain.AccountTypeAsset, Currency: "USD", Active: true,
	}
}

func revenueAccount() *domain.Account {
	return &domain.Account{
		ID: "revenue", Code: "4000", Name: "Revenue",
		Type: domain.AccountTypeRevenue, Currency: "USD", Active: true,
	}
}

func recordInput(amount int64) usecase.RecordTransactionInput {
	return usecase.RecordTransactionInput{
		Description: "sale",
		Debits:      []domain.EntryLine{{AccountID: "cash", Amount: decimal.NewFromInt(amount)}},
		Credits:     []domain.EntryLine{{AccountID: "revenue", Amount: decimal.NewFromInt(amount)}},
	}
}

func TestPostingUseCase_RecordTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	store.EXPECT().GetAccountByID(gomock.Any(), "cash").Return(cashAccount(), nil)
	store.EXPECT().GetAccountByID(gomock.Any(), "revenue").Return(revenueAccount(), nil)
	idGen.EXPECT().Generate().Return("id").AnyTimes()

	var captured *domain.Transaction
	var capturedDeltas []domain.BalanceDelta
	store.EXPECT().AppendTransaction(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txn *domain.Transaction, deltas []domain.BalanceDelta) error {
			captured = txn
			capturedDeltas = deltas
			return nil
		})

	uc := usecase.NewPostingUseCase(store, idGen, testLogger(), nil)

	txn, err := uc.RecordTransaction(context.Background(), recordInput(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Status != domain.TransactionStatusPosted {
		t.Errorf("expected posted status, got %s", txn.Status)
	}

	if captured == nil || len(captured.Entries) != 2 {
		t.Fatalf("expected transaction with 2 entries committed, got %+v", captured)
	}

	if len(capturedDeltas) != 2 {
		t.Fatalf("expected 2 balance deltas, got %d", len(capturedDeltas))
	}

	// Both accounts gain 100 on their normal side.
	for _, d := range capturedDeltas {
		if !d.Delta.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected delta 100 for %s, got %s", d.AccountID, d.Delta)
		}
	}
}

func TestPostingUseCase_RecordTransactionUnknownAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	store.EXPECT().GetAccountByID(gomock.Any(), "cash").Return(nil, domain.ErrAccountNotFound)

	uc := usecase.NewPostingUseCase(store, idGen, testLogger(), nil)

	_, err := uc.RecordTransaction(context.Background(), recordInput(100))
	if !errors.Is(err, domain.ErrUnknownAccount) {
		t.Errorf("expected ErrUnknownAccount, got %v", err)
	}
}

// Validation failures never reach the store's write path.
func TestPostingUseCase_RecordTransactionUnbalanced(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	store.EXPECT().GetAccountByID(gomock.Any(), "cash").Return(cashAccount(), nil)
	store.EXPECT().GetAccountByID(gomock.Any(), "revenue").Return(revenueAccount(), nil)

	uc := usecase.NewPostingUseCase(store, idGen, testLogger(), nil)

	input := usecase.RecordTransactionInput{
		Debits:  []domain.EntryLine{{AccountID: "cash", Amount: decimal.NewFromInt(100)}},
		Credits: []domain.EntryLine{{AccountID: "revenue", Amount: decimal.NewFromInt(90)}},
	}

	_, err := uc.RecordTransaction(context.Background(), input)
	if !domain.IsUnbalanced(err) {
		t.Errorf("expected UnbalancedError, got %v", err)
	}
}

func TestPostingUseCase_VoidTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	original := &domain.Transaction{
		ID:          "txn-1",
		Description: "sale",
		Status:      domain.TransactionStatusPosted,
		CreatedAt:   time.Now().UTC(),
		Entries: []domain.Entry{
			{ID: "e1", TransactionID: "txn-1", AccountID: "cash", Side: domain.EntrySideDebit, Amount: decimal.NewFromInt(100), Currency: "USD"},
			{ID: "e2", TransactionID: "txn-1", AccountID: "revenue", Side: domain.EntrySideCredit, Amount: decimal.NewFromInt(100), Currency: "USD"},
		},
	}

	store.EXPECT().GetTransaction(gomock.Any(), "txn-1").Return(original, nil)
	store.EXPECT().GetAccountByID(gomock.Any(), "cash").Return(cashAccount(), nil)
	store.EXPECT().GetAccountByID(gomock.Any(), "revenue").Return(revenueAccount(), nil)
	idGen.EXPECT().Generate().Return("rev-id").AnyTimes()

	var capturedDeltas []domain.BalanceDelta
	store.EXPECT().AppendReversal(gomock.Any(), "txn-1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, reversal *domain.Transaction, deltas []domain.BalanceDelta) error {
			capturedDeltas = deltas
			return nil
		})

	uc := usecase.NewPostingUseCase(store, idGen, testLogger(), nil)

	reversal, err := uc.VoidTransaction(context.Background(), "txn-1", "duplicate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reversal.ReversalOf != "txn-1" {
		t.Errorf("expected reversal linked to txn-1, got %s", reversal.ReversalOf)
	}

	// Reversal deltas are the exact negation of the original posting.
	for _, d := range capturedDeltas {
		if !d.Delta.Equal(decimal.NewFromInt(-100)) {
			t.Errorf("expected delta -100 for %s, got %s", d.AccountID, d.Delta)
		}
	}
}

func TestPostingUseCase_VoidAlreadyVoided(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	store.EXPECT().GetTransaction(gomock.Any(), "txn-1").Return(&domain.Transaction{
		ID:     "txn-1",
		Status: domain.TransactionStatusVoided,
	}, nil)

	uc := usecase.NewPostingUseCase(store, idGen, testLogger(), nil)

	_, err := uc.VoidTransaction(context.Background(), "txn-1", "")
	if !errors.Is(err, domain.ErrAlreadyVoided) {
		t.Errorf("expected ErrAlreadyVoided, got %v", err)
	}
}

// An account deactivated after the original posting must not block the
// void of that posting.
func TestPostingUseCase_VoidWithDeactivatedAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	original := &domain.Transaction{
		ID:     "txn-1",
		Status: domain.TransactionStatusPosted,
		Entries: []domain.Entry{
			{AccountID: "cash", Side: domain.EntrySideDebit, Amount: decimal.NewFromInt(50), Currency: "USD"},
			{AccountID: "revenue", Side: domain.EntrySideCredit, Amount: decimal.NewFromInt(50), Currency: "USD"},
		},
	}

	inactive := cashAccount()
	inactive.Active = false

	store.EXPECT().GetTransaction(gomock.Any(), "txn-1").Return(original, nil)
	store.EXPECT().GetAccountByID(gomock.Any(), "cash").Return(inactive, nil)
	store.EXPECT().GetAccountByID(gomock.Any(), "revenue").Return(revenueAccount(), nil)
	idGen.EXPECT().Generate().Return("rev-id").AnyTimes()
	store.EXPECT().AppendReversal(gomock.Any(), "txn-1", gomock.Any(), gomock.Any()).Return(nil)

	uc := usecase.NewPostingUseCase(store, idGen, testLogger(), nil)

	if _, err := uc.VoidTransaction(context.Background(), "txn-1", ""); err != nil {
		t.Errorf("void should succeed despite inactive account: %v", err)
	}
}
