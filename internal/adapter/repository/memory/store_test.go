package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bookkeeper/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/bookkeeper/internal/adapter/repository/postgres"
	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

func newTestLedger(t *testing.T) (*usecase.Ledger, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	ledger := usecase.NewLedger(store, postgresRepo.NewULIDGenerator(), testLogger(), "USD", nil)

	return ledger, store
}

func createAccount(t *testing.T, ledger *usecase.Ledger, code string, accType domain.AccountType, currency string) *domain.Account {
	t.Helper()

	account, err := ledger.Accounts.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Code:     code,
		Name:     "Account " + code,
		Type:     accType,
		Currency: currency,
	})
	require.NoError(t, err)

	return account
}

func post(t *testing.T, ledger *usecase.Ledger, debitID, creditID string, amount int64) *domain.Transaction {
	t.Helper()

	txn, err := ledger.Posting.RecordTransaction(context.Background(), usecase.RecordTransactionInput{
		Description: "posting",
		Debits:      []domain.EntryLine{{AccountID: debitID, Amount: decimal.NewFromInt(amount)}},
		Credits:     []domain.EntryLine{{AccountID: creditID, Amount: decimal.NewFromInt(amount)}},
	})
	require.NoError(t, err)

	return txn
}

func TestLedger_PostingMovesBalances(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	cash := createAccount(t, ledger, "1000", domain.AccountTypeAsset, "USD")
	revenue := createAccount(t, ledger, "4000", domain.AccountTypeRevenue, "USD")

	post(t, ledger, cash.ID, revenue.ID, 100)
	post(t, ledger, cash.ID, revenue.ID, 50)

	cashBalance, err := ledger.Balances.GetBalance(ctx, cash.ID, "USD")
	require.NoError(t, err)
	assert.True(t, cashBalance.Equal(decimal.NewFromInt(150)), "cash balance %s", cashBalance)

	revBalance, err := ledger.Balances.GetBalance(ctx, revenue.ID, "USD")
	require.NoError(t, err)
	assert.True(t, revBalance.Equal(decimal.NewFromInt(150)), "revenue balance %s", revBalance)
}

func TestLedger_DebitReducesCreditNormalAccount(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	cash := createAccount(t, ledger, "1000", domain.AccountTypeAsset, "USD")
	loan := createAccount(t, ledger, "2000", domain.AccountTypeLiability, "USD")

	// Borrow 100, repay 30.
	post(t, ledger, cash.ID, loan.ID, 100)
	post(t, ledger, loan.ID, cash.ID, 30)

	loanBalance, err := ledger.Balances.GetBalance(ctx, loan.ID, "USD")
	require.NoError(t, err)
	assert.True(t, loanBalance.Equal(decimal.NewFromInt(70)), "loan balance %s", loanBalance)

	cashBalance, err := ledger.Balances.GetBalance(ctx, cash.ID, "USD")
	require.NoError(t, err)
	assert.True(t, cashBalance.Equal(decimal.NewFromInt(70)), "cash balance %s", cashBalance)
}

func TestLedger_VoidRestoresBalances(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()

	cash := createAccount(t, ledger, "1000", domain.AccountTypeAsset, "USD")
	revenue := createAccount(t, ledger, "4000", domain.AccountTypeRevenue, "USD")

	txn := post(t, ledger, cash.ID, revenue.ID, 100)

	reversal, err := ledger.Posting.VoidTransaction(ctx, txn.ID, "mistake")
	require.NoError(t, err)
	assert.Equal(t, txn.ID, reversal.ReversalOf)

	// Original is voided but still in the history.
	original, err := ledger.Posting.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, original.IsVoided())
	assert.Len(t, original.Entries, 2)

	// Balances back to zero on both sides.
	for _, id := range []string{cash.ID, revenue.ID} {
		balance, err := ledger.Balances.GetBalance(ctx, id, "USD")
		require.NoError(t, err)
		assert.True(t, balance.IsZero(), "balance for %s is %s", id, balance)
	}

	// Maintained and derived balances agree after the void.
	derived, err := store.ComputeBalances(ctx, cash.ID)
	require.NoError(t, err)
	assert.True(t, derived["USD"].IsZero())

	// Voiding twice fails.
	_, err = ledger.Posting.VoidTransaction(ctx, txn.ID, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyVoided)
}

func TestLedger_VoidOfReversalIsAllowed(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	cash := createAccount(t, ledger, "1000", domain.AccountTypeAsset, "USD")
	revenue := createAccount(t, ledger, "4000", domain.AccountTypeRevenue, "USD")

	txn := post(t, ledger, cash.ID, revenue.ID, 100)

	reversal, err := ledger.Posting.VoidTransaction(ctx, txn.ID, "")
	require.NoError(t, err)

	// A reversal is an ordinary posted transaction and can be voided too.
	_, err = ledger.Posting.VoidTransaction(ctx, reversal.ID, "undo the undo")
	require.NoError(t, err)

	balance, err := ledger.Balances.GetBalance(ctx, cash.ID, "USD")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(100)), "balance %s", balance)
}

func TestLedger_MultiCurrency(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	cash := createAccount(t, ledger, "1000", domain.AccountTypeAsset, "USD")
	revenue := createAccount(t, ledger, "4000", domain.AccountTypeRevenue, "USD")

	_, err := ledger.Posting.RecordTransaction(ctx, usecase.RecordTransactionInput{
		Description: "multi-currency sale",
		Debits: []domain.EntryLine{
			{AccountID: cash.ID, Amount: decimal.NewFromInt(100), Currency: "USD"},
			{AccountID: cash.ID, Amount: decimal.NewFromInt(80), Currency: "EUR"},
		},
		Credits: []domain.EntryLine{
			{AccountID: revenue.ID, Amount: decimal.NewFromInt(100), Currency: "USD"},
			{AccountID: revenue.ID, Amount: decimal.NewFromInt(80), Currency: "EUR"},
		},
	})
	require.NoError(t, err)

	balances, err := ledger.Balances.GetBalances(ctx, cash.ID)
	require.NoError(t, err)
	assert.Len(t, balances, 2)
	assert.True(t, balances["USD"].Equal(decimal.NewFromInt(100)))
	assert.True(t, balances["EUR"].Equal(decimal.NewFromInt(80)))

	// Ambiguous single-currency read is rejected.
	_, err = ledger.Balances.GetBalance(ctx, cash.ID, "")
	assert.ErrorIs(t, err, domain.ErrMultipleCurrencies)

	// Explicit currency still works.
	eur, err := ledger.Balances.GetBalance(ctx, cash.ID, "EUR")
	require.NoError(t, err)
	assert.True(t, eur.Equal(decimal.NewFromInt(80)))
}

func TestLedger_InactiveAccountRejectsPostings(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	cash := createAccount(t, ledger, "1000", domain.AccountTypeAsset, "USD")
	revenue := createAccount(t, ledger, "4000", domain.AccountTypeRevenue, "USD")

	post(t, ledger, cash.ID, revenue.ID, 100)

	_, err := ledger.Accounts.DeactivateAccount(ctx, cash.ID)
	require.NoError(t, err)

	_, err = ledger.Posting.RecordTransaction(ctx, usecase.RecordTransactionInput{
		Debits:  []domain.EntryLine{{AccountID: cash.ID, Amount: decimal.NewFromInt(10)}},
		Credits: []domain.EntryLine{{AccountID: revenue.ID, Amount: decimal.NewFromInt(10)}},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownAccount)

	// History and balances survive deactivation.
	balance, err := ledger.Balances.GetBalance(ctx, cash.ID, "USD")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(100)))
}

func TestLedger_ListTransactionsByAccount(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	cash := createAccount(t, ledger, "1000", domain.AccountTypeAsset, "USD")
	bank := createAccount(t, ledger, "1100", domain.AccountTypeAsset, "USD")
	revenue := createAccount(t, ledger, "4000", domain.AccountTypeRevenue, "USD")

	post(t, ledger, cash.ID, revenue.ID, 10)
	post(t, ledger, bank.ID, revenue.ID, 20)
	last := post(t, ledger, cash.ID, revenue.ID, 30)

	txns, err := ledger.Posting.ListTransactions(ctx, usecase.TransactionFilter{AccountID: cash.ID})
	require.NoError(t, err)
	require.Len(t, txns, 2)

	// Newest first.
	assert.Equal(t, last.ID, txns[0].ID)

	all, err := ledger.Posting.ListTransactions(ctx, usecase.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_DuplicateAccountCode(t *testing.T) {
	ledger, _ := newTestLedger(t)

	createAccount(t, ledger, "1000", domain.AccountTypeAsset, "USD")

	_, err := ledger.Accounts.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Code: "1000",
		Name: "Duplicate",
		Type: domain.AccountTypeAsset,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateAccountCode)
}

func TestStore_AppendReversalUnknownTransaction(t *testing.T) {
	store := memory.NewStore()

	err := store.AppendReversal(context.Background(), "missing", &domain.Transaction{ID: "rev"}, nil)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

// Concurrent postings through the shared store must neither lose balance
// updates nor let maintained balances drift from the entry history.
func TestLedger_ConcurrentPostings(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()

	cash := createAccount(t, ledger, "1000", domain.AccountTypeAsset, "USD")
	revenue := createAccount(t, ledger, "4000", domain.AccountTypeRevenue, "USD")

	const (
		goroutines = 8
		perWorker  = 25
	)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := ledger.Posting.RecordTransaction(ctx, usecase.RecordTransactionInput{
					Debits:  []domain.EntryLine{{AccountID: cash.ID, Amount: decimal.NewFromInt(1)}},
					Credits: []domain.EntryLine{{AccountID: revenue.ID, Amount: decimal.NewFromInt(1)}},
				})
				if err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	expected := decimal.NewFromInt(goroutines * perWorker)

	balance, err := ledger.Balances.GetBalance(ctx, cash.ID, "USD")
	require.NoError(t, err)
	assert.True(t, balance.Equal(expected), "expected %s, got %s", expected, balance)

	derived, err := store.ComputeBalances(ctx, cash.ID)
	require.NoError(t, err)
	assert.True(t, derived["USD"].Equal(expected), "derived %s", derived["USD"])

	report, err := ledger.Reconciliation.Run(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
}

// Only one of many concurrent voids of the same transaction can win.
func TestLedger_ConcurrentVoids(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	cash := createAccount(t, ledger, "1000", domain.AccountTypeAsset, "USD")
	revenue := createAccount(t, ledger, "4000", domain.AccountTypeRevenue, "USD")

	txn := post(t, ledger, cash.ID, revenue.ID, 100)

	const attempts = 8

	var wg sync.WaitGroup
	successes := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Posting.VoidTransaction(ctx, txn.ID, ""); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	assert.Equal(t, 1, len(successes), "exactly one void may succeed")

	balance, err := ledger.Balances.GetBalance(ctx, cash.ID, "USD")
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "balance after void races: %s", balance)
}

// A lowercase currency code on a posting must land in the same balance
// bucket as the canonical code, and both spellings must read it back.
func TestLedger_CurrencyCaseDoesNotSplitBalances(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	cash := createAccount(t, ledger, "1000", domain.AccountTypeAsset, "USD")
	revenue := createAccount(t, ledger, "4000", domain.AccountTypeRevenue, "USD")

	_, err := ledger.Posting.RecordTransaction(ctx, usecase.RecordTransactionInput{
		Description: "lowercase currency",
		Debits:      []domain.EntryLine{{AccountID: cash.ID, Amount: decimal.NewFromInt(100), Currency: "usd"}},
		Credits:     []domain.EntryLine{{AccountID: revenue.ID, Amount: decimal.NewFromInt(100), Currency: "usd"}},
	})
	require.NoError(t, err)

	balance, err := ledger.Balances.GetBalance(ctx, cash.ID, "USD")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(100)), "canonical read got %s", balance)

	lower, err := ledger.Balances.GetBalance(ctx, cash.ID, "usd")
	require.NoError(t, err)
	assert.True(t, lower.Equal(decimal.NewFromInt(100)), "lowercase read got %s", lower)

	balances, err := ledger.Balances.GetBalances(ctx, cash.ID)
	require.NoError(t, err)
	assert.Len(t, balances, 1)
	assert.True(t, balances["USD"].Equal(decimal.NewFromInt(100)), "expected one USD bucket, got %v", balances)
}

func TestLedger_UnknownCurrencyRejected(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()

	cash := createAccount(t, ledger, "1000", domain.AccountTypeAsset, "USD")
	revenue := createAccount(t, ledger, "4000", domain.AccountTypeRevenue, "USD")

	_, err := ledger.Posting.RecordTransaction(ctx, usecase.RecordTransactionInput{
		Debits:  []domain.EntryLine{{AccountID: cash.ID, Amount: decimal.NewFromInt(10), Currency: "XXX"}},
		Credits: []domain.EntryLine{{AccountID: revenue.ID, Amount: decimal.NewFromInt(10), Currency: "XXX"}},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownCurrency)

	txns, err := store.ListTransactions(ctx, usecase.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txns, "rejected posting must leave no trace")
}
