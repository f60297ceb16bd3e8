package audit

import (
	"net/http"
	"strconv"

	"lv-brokerage/internal/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.svc.ListRecent(r.Context(), limit)
	if err != nil {
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to load audit trail"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) ListByEntity(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "entityID")
	entries, err := h.svc.ListByEntity(r.Context(), entityType, entityID)
	if err != nil {
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to load audit trail"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}
