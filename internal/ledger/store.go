package ledger

import (
	"context"
	"errors"
	"time"

	"lv-brokerage/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type AccountStore interface {
	Create(ctx context.Context, a model.Account) (model.Account, error)
	GetByClient(ctx context.Context, clientID string) (model.Account, error)
	UpdateBalances(ctx context.Context, clientID string, cash, reserved decimal.Decimal) error
}

type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Create(ctx context.Context, a model.Account) (model.Account, error) {
	err := s.pool.QueryRow(ctx,
		"insert into accounts (client_id, cash_balance, reserved_balance, updated_at) values ($1, $2, $3, $4) returning id, updated_at",
		a.ClientID, a.CashBalance, a.ReservedBalance, time.Now().UTC()).Scan(&a.ID, &a.UpdatedAt)
	return a, err
}

func (s *PGStore) GetByClient(ctx context.Context, clientID string) (model.Account, error) {
	var a model.Account
	err := s.pool.QueryRow(ctx,
		"select id, client_id, cash_balance, reserved_balance, updated_at from accounts where client_id = $1",
		clientID).Scan(&a.ID, &a.ClientID, &a.CashBalance, &a.ReservedBalance, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, model.ErrAccountNotFound
	}
	return a, err
}

func (s *PGStore) UpdateBalances(ctx context.Context, clientID string, cash, reserved decimal.Decimal) error {
	tag, err := s.pool.Exec(ctx,
		"update accounts set cash_balance = $1, reserved_balance = $2, updated_at = $3 where client_id = $4",
		cash, reserved, time.Now().UTC(), clientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}
