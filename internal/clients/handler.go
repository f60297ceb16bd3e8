package clients

import (
	"errors"
	"net/http"

	"lv-brokerage/internal/httputil"
	"lv-brokerage/internal/model"
	"lv-brokerage/internal/types"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	OpeningBalance  string `json:"opening_balance"`
	RiskTier        string `json:"risk_tier"`
	DailyTradeLimit string `json:"daily_trade_limit"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	c, err := h.svc.Create(r.Context(), CreateParams{
		Code:            req.Code,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		OpeningBalance:  req.OpeningBalance,
		RiskTier:        types.RiskTier(req.RiskTier),
		DailyTradeLimit: req.DailyTradeLimit,
	})
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		if errors.Is(err, model.ErrClientNotFound) {
			httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "client not found"})
			return
		}
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to load client"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.List(r.Context())
	if err != nil {
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to list clients"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cs)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	id := chi.URLParam(r, "clientID")
	err := h.svc.SetStatus(r.Context(), id, types.ClientStatus(req.Status), actorFrom(r))
	if err != nil {
		if errors.Is(err, model.ErrClientNotFound) {
			httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "client not found"})
			return
		}
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	h.Get(w, r)
}

// actorFrom reports who performed the request, for the audit trail.
func actorFrom(r *http.Request) string {
	if email, ok := r.Context().Value(httputil.CtxUserEmail).(string); ok && email != "" {
		return email
	}
	return "SYSTEM"
}
