package httpserver

import (
	"context"
	"net/http"
	"strings"

	"lv-brokerage/internal/auth"
	"lv-brokerage/internal/httputil"
)

func WithAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "missing bearer token"})
				return
			}
			userID, err := svc.ParseToken(parts[1])
			if err != nil {
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "invalid token"})
				return
			}
			ctx := context.WithValue(r.Context(), httputil.CtxUserID, userID)
			if u, err := svc.GetUser(ctx, userID); err == nil {
				ctx = context.WithValue(ctx, httputil.CtxUserEmail, u.Email)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(httputil.CtxUserID).(string)
	return id, ok
}
