package httputil

type ctxKey string

// Context keys populated by the auth middleware.
const (
	CtxUserID    ctxKey = "user_id"
	CtxUserEmail ctxKey = "user_email"
)
