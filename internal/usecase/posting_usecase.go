package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/infrastructure/metrics"
)

// PostingUseCase is the posting engine: it validates drafts and commits
// them through the storage adapter's atomic unit. It also hosts the void
// path, which reuses the same validate-then-commit pipeline.
type PostingUseCase struct {
	store   Store
	idGen   IDGenerator
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewPostingUseCase creates a new PostingUseCase. metrics may be nil.
func NewPostingUseCase(store Store, idGen IDGenerator, logger zerolog.Logger, m *metrics.Metrics) *PostingUseCase {
	return &PostingUseCase{
		store:   store,
		idGen:   idGen,
		logger:  logger,
		metrics: m,
	}
}

// RecordTransactionInput represents input for recording a transaction.
type RecordTransactionInput struct {
	Metadata    map[string]any
	Description string
	Reference   string
	Debits      []domain.EntryLine
	Credits     []domain.EntryLine
}

// RecordTransaction validates the input and commits it as one atomic
// unit: transaction record, entries and balance deltas become visible
// together or not at all. Validation failures leave storage untouched.
func (uc *PostingUseCase) RecordTransaction(ctx context.Context, input RecordTransactionInput) (*domain.Transaction, error) {
	draft := &domain.Draft{
		Description: input.Description,
		Reference:   input.Reference,
		Metadata:    input.Metadata,
		Debits:      input.Debits,
		Credits:     input.Credits,
	}

	return uc.commitDraft(ctx, draft)
}

// VoidTransaction voids a posted transaction by committing its reversal
// and flipping the original's status in the same atomic unit. Returns the
// reversal transaction.
func (uc *PostingUseCase) VoidTransaction(ctx context.Context, transactionID, reason string) (*domain.Transaction, error) {
	original, err := uc.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if original.IsVoided() {
		return nil, domain.ErrAlreadyVoided
	}

	draft := original.ReversalDraft(reason)

	accounts, err := uc.loadAccounts(ctx, draft)
	if err != nil {
		return nil, err
	}

	// Swapping sides of a balanced set preserves balance, so the draft
	// passes the same validation the original did. An account deactivated
	// since then must not block the void.
	if err := draft.Validate(activeView(accounts)); err != nil {
		return nil, err
	}

	reversal := draft.Build(uc.idGen.Generate(), time.Now().UTC(), uc.idGen.Generate)
	deltas := domain.Deltas(reversal, accounts)

	if err := uc.store.AppendReversal(ctx, original.ID, reversal, deltas); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsVoided.Inc()
	}

	uc.logger.Info().
		Str("transaction_id", original.ID).
		Str("reversal_id", reversal.ID).
		Msg("transaction voided")

	return reversal, nil
}

// GetTransaction retrieves a transaction by ID.
func (uc *PostingUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.store.GetTransaction(ctx, id)
}

// ListTransactions lists transactions matching the filter, newest first.
func (uc *PostingUseCase) ListTransactions(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	return uc.store.ListTransactions(ctx, filter)
}

func (uc *PostingUseCase) commitDraft(ctx context.Context, draft *domain.Draft) (*domain.Transaction, error) {
	start := time.Now()

	accounts, err := uc.loadAccounts(ctx, draft)
	if err != nil {
		uc.countError(err)
		return nil, err
	}

	if err := draft.Validate(accounts); err != nil {
		uc.countError(err)
		return nil, err
	}

	txn := draft.Build(uc.idGen.Generate(), time.Now().UTC(), uc.idGen.Generate)
	deltas := domain.Deltas(txn, accounts)

	if err := uc.store.AppendTransaction(ctx, txn, deltas); err != nil {
		uc.countError(err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsPosted.Inc()
		uc.metrics.PostingDuration.Observe(time.Since(start).Seconds())
		uc.metrics.EntriesPerPosting.Observe(float64(len(txn.Entries)))
	}

	uc.logger.Info().
		Str("transaction_id", txn.ID).
		Int("entries", len(txn.Entries)).
		Msg("transaction posted")

	return txn, nil
}

// loadAccounts resolves every account a draft references. Missing
// accounts report as unknown, matching the validator's taxonomy.
func (uc *PostingUseCase) loadAccounts(ctx context.Context, draft *domain.Draft) (map[string]*domain.Account, error) {
	accounts := make(map[string]*domain.Account)

	lines := make([]domain.EntryLine, 0, len(draft.Debits)+len(draft.Credits))
	lines = append(lines, draft.Debits...)
	lines = append(lines, draft.Credits...)

	for _, line := range lines {
		if _, ok := accounts[line.AccountID]; ok {
			continue
		}

		account, err := uc.store.GetAccountByID(ctx, line.AccountID)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAccount, line.AccountID)
			}

			return nil, err
		}

		accounts[line.AccountID] = account
	}

	return accounts, nil
}

// countError buckets posting failures by cause for the error counter.
func (uc *PostingUseCase) countError(err error) {
	if uc.metrics == nil {
		return
	}

	label := "storage"
	switch {
	case errors.Is(err, domain.ErrUnknownAccount):
		label = "unknown_account"
	case errors.Is(err, domain.ErrInvalidAmount):
		label = "invalid_amount"
	case errors.Is(err, domain.ErrInvalidScale):
		label = "invalid_scale"
	case errors.Is(err, domain.ErrUnknownCurrency):
		label = "unknown_currency"
	case errors.Is(err, domain.ErrMalformedTransaction):
		label = "malformed"
	case errors.Is(err, domain.ErrConflict):
		label = "conflict"
	case domain.IsUnbalanced(err):
		label = "unbalanced"
	}

	uc.metrics.PostingErrors.WithLabelValues(label).Inc()
}

// activeView returns a copy of accounts with every account treated as
// active, for the void path only.
func activeView(accounts map[string]*domain.Account) map[string]*domain.Account {
	view := make(map[string]*domain.Account, len(accounts))
	for id, account := range accounts {
		copied := *account
		copied.Active = true
		view[id] = &copied
	}

	return view
}
