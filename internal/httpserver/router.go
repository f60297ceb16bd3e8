package httpserver

import (
	"net/http"

	"lv-brokerage/internal/audit"
	"lv-brokerage/internal/auth"
	"lv-brokerage/internal/clients"
	"lv-brokerage/internal/health"
	"lv-brokerage/internal/ledger"
	"lv-brokerage/internal/orders"
	"lv-brokerage/internal/portfolio"

	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	AuthHandler      *auth.Handler
	ClientsHandler   *clients.Handler
	LedgerHandler    *ledger.Handler
	OrderHandler     *orders.Handler
	PortfolioHandler *portfolio.Handler
	AuditHandler     *audit.Handler
	HealthHandler    *health.Handler
	AuthService      *auth.Service
	WSHandler        http.Handler
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS middleware for development
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = "*"
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Use(SecurityHeaders)
	r.Use(RateLimitMiddleware)

	r.Get("/health", d.HealthHandler.Live)
	r.Get("/ready", d.HealthHandler.Ready)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.AuthHandler.Register)
			r.Post("/login", d.AuthHandler.Login)
		})
		r.Get("/ws", d.WSHandler.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(WithAuth(d.AuthService))

			r.Get("/me", d.AuthHandler.Me)

			r.Route("/clients", func(r chi.Router) {
				r.Post("/", d.ClientsHandler.Create)
				r.Get("/", d.ClientsHandler.List)
				r.Route("/{clientID}", func(r chi.Router) {
					r.Get("/", d.ClientsHandler.Get)
					r.Put("/status", d.ClientsHandler.SetStatus)
					r.Get("/account", d.LedgerHandler.GetAccount)
					r.Post("/deposit", d.LedgerHandler.Deposit)
					r.Post("/withdraw", d.LedgerHandler.Withdraw)
					r.Get("/orders", d.OrderHandler.ListByClient)
					r.Get("/portfolio", d.PortfolioHandler.Holdings)
					r.Get("/portfolio/summary", d.PortfolioHandler.Summary)
				})
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", d.OrderHandler.Submit)
				r.Get("/{orderID}", d.OrderHandler.Get)
				r.Post("/{orderID}/cancel", d.OrderHandler.Cancel)
			})

			r.Route("/audit", func(r chi.Router) {
				r.Get("/", d.AuditHandler.ListRecent)
				r.Get("/{entityType}/{entityID}", d.AuditHandler.ListByEntity)
			})
		})
	})

	return r
}
