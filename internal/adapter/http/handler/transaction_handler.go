package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// PostingService defines the behavior needed by TransactionHandler.
type PostingService interface {
	RecordTransaction(ctx context.Context, input usecase.RecordTransactionInput) (*domain.Transaction, error)
	VoidTransaction(ctx context.Context, transactionID, reason string) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter usecase.TransactionFilter) ([]*domain.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	postingUC PostingService
	retrier   usecase.Retrier
}

// NewTransactionHandler creates a new TransactionHandler. A nil retrier
// disables retries and conflicts surface to the client as 409.
func NewTransactionHandler(postingUC PostingService, retrier usecase.Retrier) *TransactionHandler {
	return &TransactionHandler{postingUC: postingUC, retrier: retrier}
}

func (h *TransactionHandler) retry(ctx context.Context, operation func() error) error {
	if h.retrier == nil {
		return operation()
	}

	return h.retrier.Retry(ctx, operation)
}

// Record posts a new transaction.
func (h *TransactionHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	var txn *domain.Transaction
	err := h.retry(r.Context(), func() error {
		var recordErr error
		txn, recordErr = h.postingUC.RecordTransaction(r.Context(), req.ToUseCaseInput())

		return recordErr
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.postingUC.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// List lists transactions, newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := usecase.TransactionFilter{
		AccountID: r.URL.Query().Get("account_id"),
		Limit:     parseIntQuery(r, "limit", 50),
		Offset:    parseIntQuery(r, "offset", 0),
	}

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from timestamp", err.Error())
			return
		}
		filter.From = &t
	}

	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to timestamp", err.Error())
			return
		}
		filter.To = &t
	}

	txns, err := h.postingUC.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txns),
	})
}

// Void voids a posted transaction and returns the reversal.
func (h *TransactionHandler) Void(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.VoidTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	var reversal *domain.Transaction
	err := h.retry(r.Context(), func() error {
		var voidErr error
		reversal, voidErr = h.postingUC.VoidTransaction(r.Context(), id, req.Reason)

		return voidErr
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to void transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(reversal))
}
