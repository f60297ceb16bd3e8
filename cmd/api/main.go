package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lv-brokerage/internal/audit"
	"lv-brokerage/internal/auth"
	"lv-brokerage/internal/clients"
	"lv-brokerage/internal/config"
	"lv-brokerage/internal/db"
	"lv-brokerage/internal/events"
	"lv-brokerage/internal/health"
	"lv-brokerage/internal/httpserver"
	"lv-brokerage/internal/ledger"
	"lv-brokerage/internal/orders"
	"lv-brokerage/internal/portfolio"
	"lv-brokerage/internal/positions"
	"lv-brokerage/internal/pricing"
	"lv-brokerage/internal/sweeper"
	"lv-brokerage/internal/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var pool *pgxpool.Pool
	var accountStore ledger.AccountStore
	var positionStore positions.PositionStore
	var orderStore orders.OrderStore
	var clientStore clients.ClientStore
	var auditStore audit.Store
	var userStore auth.UserStore

	if cfg.StorageMode == "postgres" {
		pool, err = db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatal(err)
		}
		accountStore = ledger.NewPGStore(pool)
		positionStore = positions.NewPGStore(pool)
		orderStore = orders.NewPGStore(pool)
		clientStore = clients.NewPGStore(pool)
		auditStore = audit.NewPGStore(pool)
		userStore = auth.NewPGStore(pool)
	} else {
		log.Printf("storage mode %q, state will not survive a restart", cfg.StorageMode)
		accountStore = ledger.NewMemStore()
		positionStore = positions.NewMemStore()
		orderStore = orders.NewMemStore()
		clientStore = clients.NewMemStore()
		auditStore = audit.NewMemStore()
		userStore = auth.NewMemStore()
	}

	bus := events.NewBus()
	locks := ledger.NewAccountLocks()

	var oracle pricing.Oracle
	if cfg.OracleMode == "http" {
		oracle = pricing.NewHTTPOracle(cfg.QuoteBaseURL)
	} else {
		oracle = pricing.NewFixedOracle()
	}

	ledgerSvc := ledger.NewService(accountStore, locks)
	book := positions.NewBook(positionStore, locks)
	auditSvc := audit.NewService(auditStore, bus)
	clientSvc := clients.NewService(clientStore, ledgerSvc, auditSvc)

	check, err := validator.NewEngine(clientStore, orderStore, ledgerSvc, cfg.MarketOpen, cfg.MarketClose)
	if err != nil {
		log.Fatal(err)
	}
	orderSvc := orders.NewService(orderStore, clientStore, ledgerSvc, book, check, auditSvc, bus)
	portfolioSvc := portfolio.NewService(book, ledgerSvc, oracle)
	authSvc := auth.NewService(userStore, cfg.JWTIssuer, []byte(cfg.JWTSecret), cfg.JWTTTL)

	limitSweep := sweeper.NewLimitSweeper(orderStore, book, ledgerSvc, oracle, auditSvc, bus, cfg.LimitSweepEvery)
	reconciler := sweeper.NewReconciler(clientStore, orderStore, ledgerSvc, book, cfg.ReconcileEvery)
	go limitSweep.Run(ctx)
	go reconciler.Run(ctx)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandler:      auth.NewHandler(authSvc),
		ClientsHandler:   clients.NewHandler(clientSvc),
		LedgerHandler:    ledger.NewHandler(ledgerSvc),
		OrderHandler:     orders.NewHandler(orderSvc),
		PortfolioHandler: portfolio.NewHandler(portfolioSvc),
		AuditHandler:     audit.NewHandler(auditSvc),
		HealthHandler:    health.NewHandler(pool, time.Now()),
		AuthService:      authSvc,
		WSHandler:        httpserver.NewWSHandler(bus, authSvc, cfg.WebSocketOrigin),
	})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	log.Printf("server listening on %s", cfg.HTTPAddr)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
