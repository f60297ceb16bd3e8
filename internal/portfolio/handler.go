package portfolio

import (
	"errors"
	"net/http"

	"lv-brokerage/internal/httputil"
	"lv-brokerage/internal/model"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Holdings(w http.ResponseWriter, r *http.Request) {
	hs, err := h.svc.Holdings(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to load holdings"})
		return
	}
	if hs == nil {
		hs = []Holding{}
	}
	httputil.WriteJSON(w, http.StatusOK, hs)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summarize(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "account not found"})
			return
		}
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to load portfolio"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s)
}
