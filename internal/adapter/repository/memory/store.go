// Package memory provides the reference in-memory storage adapter. It
// keeps the whole ledger behind one mutex, which is the atomic unit: a
// reader never observes entries without their balance deltas applied.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

type balanceKey struct {
	accountID string
	currency  string
}

// Store implements usecase.Store with in-process maps.
type Store struct {
	mu             sync.RWMutex
	accounts       map[string]*domain.Account
	accountsByCode map[string]string
	transactions   map[string]*domain.Transaction
	order          []string
	balances       map[balanceKey]decimal.Decimal
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts:       make(map[string]*domain.Account),
		accountsByCode: make(map[string]string),
		transactions:   make(map[string]*domain.Transaction),
		balances:       make(map[balanceKey]decimal.Decimal),
	}
}

// SaveAccount persists a new account, enforcing code uniqueness.
func (s *Store) SaveAccount(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accountsByCode[account.Code]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateAccountCode, account.Code)
	}

	copied := copyAccount(account)
	s.accounts[copied.ID] = copied
	s.accountsByCode[copied.Code] = copied.ID

	return nil
}

// UpdateAccount persists mutable account fields.
func (s *Store) UpdateAccount(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.accounts[account.ID]
	if !ok {
		return domain.ErrAccountNotFound
	}

	copied := copyAccount(account)
	copied.Code = stored.Code
	copied.Type = stored.Type
	s.accounts[copied.ID] = copied

	return nil
}

// GetAccountByID retrieves an account by ID.
func (s *Store) GetAccountByID(_ context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return copyAccount(account), nil
}

// GetAccountByCode retrieves an account by code.
func (s *Store) GetAccountByCode(_ context.Context, code string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.accountsByCode[code]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return copyAccount(s.accounts[id]), nil
}

// ListAccounts lists accounts matching the filter, ordered by code.
func (s *Store) ListAccounts(_ context.Context, filter usecase.AccountFilter) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var accounts []*domain.Account
	for _, account := range s.accounts {
		if filter.Active != nil && account.Active != *filter.Active {
			continue
		}
		if filter.Currency != "" && account.Currency != filter.Currency {
			continue
		}
		if filter.Type != "" && account.Type != filter.Type {
			continue
		}

		accounts = append(accounts, copyAccount(account))
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Code < accounts[j].Code
	})

	return paginate(accounts, filter.Limit, filter.Offset), nil
}

// AppendTransaction persists the transaction, its entries and the balance
// deltas under one lock acquisition.
func (s *Store) AppendTransaction(_ context.Context, txn *domain.Transaction, deltas []domain.BalanceDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.append(txn, deltas)

	return nil
}

// AppendReversal persists the reversal and flips the original's status in
// the same critical section.
func (s *Store) AppendReversal(_ context.Context, originalID string, reversal *domain.Transaction, deltas []domain.BalanceDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.transactions[originalID]
	if !ok {
		return domain.ErrTransactionNotFound
	}

	if original.Status == domain.TransactionStatusVoided {
		return domain.ErrAlreadyVoided
	}

	original.Status = domain.TransactionStatusVoided
	s.append(reversal, deltas)

	return nil
}

// append assumes s.mu is held for writing.
func (s *Store) append(txn *domain.Transaction, deltas []domain.BalanceDelta) {
	copied := copyTransaction(txn)
	s.transactions[copied.ID] = copied
	s.order = append(s.order, copied.ID)

	for _, delta := range deltas {
		k := balanceKey{accountID: delta.AccountID, currency: delta.Currency}
		s.balances[k] = s.balances[k].Add(delta.Delta)
	}
}

// GetTransaction retrieves a transaction by ID.
func (s *Store) GetTransaction(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}

	return copyTransaction(txn), nil
}

// ListTransactions lists transactions matching the filter, newest first.
func (s *Store) ListTransactions(_ context.Context, filter usecase.TransactionFilter) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var txns []*domain.Transaction
	for i := len(s.order) - 1; i >= 0; i-- {
		txn := s.transactions[s.order[i]]

		if filter.AccountID != "" && !touchesAccount(txn, filter.AccountID) {
			continue
		}
		if filter.From != nil && txn.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && txn.CreatedAt.After(*filter.To) {
			continue
		}

		txns = append(txns, copyTransaction(txn))
	}

	return paginate(txns, filter.Limit, filter.Offset), nil
}

// GetBalance reads one maintained balance. Untouched pairs read as zero.
func (s *Store) GetBalance(_ context.Context, accountID, currency string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balances[balanceKey{accountID: accountID, currency: currency}], nil
}

// GetBalances reads all maintained balances for an account.
func (s *Store) GetBalances(_ context.Context, accountID string) (map[string]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balances := make(map[string]decimal.Decimal)
	for k, balance := range s.balances {
		if k.accountID == accountID {
			balances[k.currency] = balance
		}
	}

	return balances, nil
}

// ComputeBalances derives balances by scanning the entry history. All
// committed transactions contribute, voided originals included; a void's
// net effect cancels through its reversal's swapped entries, never by
// excluding the original from the sum.
func (s *Store) ComputeBalances(_ context.Context, accountID string) (map[string]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	normalSide := account.NormalSide()
	balances := make(map[string]decimal.Decimal)

	for _, txn := range s.transactions {
		for i := range txn.Entries {
			e := &txn.Entries[i]
			if e.AccountID != accountID {
				continue
			}

			balances[e.Currency] = balances[e.Currency].Add(e.NormalAmount(normalSide))
		}
	}

	return balances, nil
}

func touchesAccount(txn *domain.Transaction, accountID string) bool {
	for i := range txn.Entries {
		if txn.Entries[i].AccountID == accountID {
			return true
		}
	}

	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}

	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items
}

func copyAccount(account *domain.Account) *domain.Account {
	copied := *account
	copied.Metadata = copyMetadata(account.Metadata)

	return &copied
}

func copyTransaction(txn *domain.Transaction) *domain.Transaction {
	copied := *txn
	copied.Metadata = copyMetadata(txn.Metadata)
	copied.Entries = make([]domain.Entry, len(txn.Entries))
	copy(copied.Entries, txn.Entries)

	return &copied
}

func copyMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}

	copied := make(map[string]any, len(metadata))
	for k, v := range metadata {
		copied[k] = v
	}

	return copied
}
