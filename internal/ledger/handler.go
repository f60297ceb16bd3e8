package ledger

import (
	"context"
	"errors"
	"net/http"

	"lv-brokerage/internal/httputil"
	"lv-brokerage/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type accountResponse struct {
	ID               string `json:"id"`
	CashBalance      string `json:"cash_balance"`
	ReservedBalance  string `json:"reserved_balance"`
	AvailableBalance string `json:"available_balance"`
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	a, err := h.svc.Get(r.Context(), clientID)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "account not found"})
			return
		}
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to load account"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, accountResponse{
		ID:               a.ID,
		CashBalance:      a.CashBalance.String(),
		ReservedBalance:  a.ReservedBalance.String(),
		AvailableBalance: a.Available().String(),
	})
}

type fundsRequest struct {
	Amount string `json:"amount"`
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.moveFunds(w, r, h.svc.Credit)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.moveFunds(w, r, h.svc.Withdraw)
}

func (h *Handler) moveFunds(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, clientID string, amount decimal.Decimal) error) {
	clientID := chi.URLParam(r, "clientID")
	var req fundsRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid amount"})
		return
	}
	if err := op(r.Context(), clientID, amount); err != nil {
		switch {
		case errors.Is(err, model.ErrAccountNotFound):
			httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "account not found"})
		case errors.Is(err, model.ErrInsufficientFunds):
			httputil.WriteJSON(w, http.StatusUnprocessableEntity, httputil.ErrorResponse{Error: "insufficient funds"})
		default:
			httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to move funds"})
		}
		return
	}
	h.GetAccount(w, r)
}
