package orders

import (
	"errors"
	"net/http"

	"lv-brokerage/internal/httputil"
	"lv-brokerage/internal/model"
	"lv-brokerage/internal/types"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type submitRequest struct {
	ClientID string `json:"client_id"`
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
	Price    string `json:"price"`
	Side     string `json:"side"`
	Kind     string `json:"kind"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid price"})
		return
	}
	o, err := h.svc.Submit(r.Context(), SubmitParams{
		ClientID: req.ClientID,
		Symbol:   req.Symbol,
		Quantity: req.Quantity,
		Price:    price,
		Side:     types.OrderSide(req.Side),
		Kind:     types.OrderKind(req.Kind),
	})
	if err != nil {
		switch {
		case errors.Is(err, model.ErrClientNotFound):
			httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "client not found"})
		case errors.Is(err, model.ErrInsufficientFunds):
			httputil.WriteJSON(w, http.StatusUnprocessableEntity, httputil.ErrorResponse{Error: "insufficient funds"})
		case errors.Is(err, model.ErrAccountNotFound):
			httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "account not found"})
		default:
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		}
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Get(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "order not found"})
			return
		}
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to load order"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) ListByClient(w http.ResponseWriter, r *http.Request) {
	os, err := h.svc.ListByClient(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to list orders"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, os)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor := "SYSTEM"
	if email, ok := r.Context().Value(httputil.CtxUserEmail).(string); ok && email != "" {
		actor = email
	}
	o, err := h.svc.Cancel(r.Context(), chi.URLParam(r, "orderID"), actor)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrOrderNotFound):
			httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "order not found"})
		case errors.Is(err, model.ErrInvalidTransition):
			httputil.WriteJSON(w, http.StatusConflict, httputil.ErrorResponse{Error: "order cannot be cancelled"})
		default:
			httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to cancel order"})
		}
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}
