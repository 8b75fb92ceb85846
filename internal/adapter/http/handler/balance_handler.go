package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
	"github.com/iho/bookkeeper/internal/domain"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	GetBalance(ctx context.Context, accountID, currency string) (decimal.Decimal, error)
	GetBalances(ctx context.Context, accountID string) (map[string]decimal.Decimal, error)
	GetBalanceAsOf(ctx context.Context, accountID, currency string, asOf time.Time) (decimal.Decimal, error)
	GetBalancesAsOf(ctx context.Context, accountID string, asOf time.Time) (map[string]decimal.Decimal, error)
}

// BalanceHandler handles balance queries.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// Get returns an account's balance. With ?currency= it returns that
// currency's balance; without, it returns the single balance when the
// account holds one currency, or the full mapping when it holds several.
// An ?as_of= RFC 3339 timestamp answers from the history at that moment
// instead of the current balances.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	currency := r.URL.Query().Get("currency")

	getOne := h.balanceUC.GetBalance
	getAll := h.balanceUC.GetBalances

	if asOfRaw := r.URL.Query().Get("as_of"); asOfRaw != "" {
		asOf, err := time.Parse(time.RFC3339, asOfRaw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid as_of timestamp", err.Error())
			return
		}

		getOne = func(ctx context.Context, accountID, currency string) (decimal.Decimal, error) {
			return h.balanceUC.GetBalanceAsOf(ctx, accountID, currency, asOf)
		}
		getAll = func(ctx context.Context, accountID string) (map[string]decimal.Decimal, error) {
			return h.balanceUC.GetBalancesAsOf(ctx, accountID, asOf)
		}
	}

	balance, err := getOne(r.Context(), accountID, currency)
	if err == nil {
		writeJSON(w, http.StatusOK, dto.BalanceResponse{
			AccountID: accountID,
			Currency:  currency,
			Balance:   &balance,
		})

		return
	}

	if !errors.Is(err, domain.ErrMultipleCurrencies) {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	balances, err := getAll(r.Context(), accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: accountID,
		Balances:  balances,
	})
}
