package clients

import (
	"context"
	"errors"

	"lv-brokerage/internal/model"
	"lv-brokerage/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClientStore interface {
	Create(ctx context.Context, c model.Client) (model.Client, error)
	GetByID(ctx context.Context, id string) (model.Client, error)
	List(ctx context.Context) ([]model.Client, error)
	UpdateStatus(ctx context.Context, id string, status types.ClientStatus) error
}

type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const clientColumns = `id, code, name, email, phone, opening_balance, status, risk_tier, daily_trade_limit, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, c model.Client) (model.Client, error) {
	err := s.pool.QueryRow(ctx,
		`insert into clients (code, name, email, phone, opening_balance, status, risk_tier, daily_trade_limit)
		 values ($1, $2, $3, $4, $5, $6, $7, $8)
		 returning id, created_at, updated_at`,
		c.Code, c.Name, c.Email, c.Phone, c.OpeningBalance, c.Status, c.RiskTier, c.DailyTradeLimit,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *PGStore) GetByID(ctx context.Context, id string) (model.Client, error) {
	var c model.Client
	err := s.pool.QueryRow(ctx,
		`select `+clientColumns+` from clients where id = $1`, id).Scan(
		&c.ID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.OpeningBalance,
		&c.Status, &c.RiskTier, &c.DailyTradeLimit, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Client{}, model.ErrClientNotFound
	}
	return c, err
}

func (s *PGStore) List(ctx context.Context) ([]model.Client, error) {
	return s.list(ctx, `select `+clientColumns+` from clients order by created_at`)
}

func (s *PGStore) list(ctx context.Context, query string) ([]model.Client, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.OpeningBalance,
			&c.Status, &c.RiskTier, &c.DailyTradeLimit, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PGStore) UpdateStatus(ctx context.Context, id string, status types.ClientStatus) error {
	tag, err := s.pool.Exec(ctx,
		`update clients set status = $2, updated_at = now() where id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrClientNotFound
	}
	return nil
}
