package positions

import (
	"context"
	"errors"
	"time"

	"lv-brokerage/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PositionStore interface {
	GetByClientAndSymbol(ctx context.Context, clientID, symbol string) (model.Position, bool, error)
	ListByClient(ctx context.Context, clientID string) ([]model.Position, error)
	Upsert(ctx context.Context, p model.Position) (model.Position, error)
	Delete(ctx context.Context, clientID, symbol string) error
	ReplaceAll(ctx context.Context, clientID string, ps []model.Position) error
}

type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) GetByClientAndSymbol(ctx context.Context, clientID, symbol string) (model.Position, bool, error) {
	var p model.Position
	err := s.pool.QueryRow(ctx,
		"select id, client_id, symbol, quantity, average_cost, updated_at from positions where client_id = $1 and symbol = $2",
		clientID, symbol).Scan(&p.ID, &p.ClientID, &p.Symbol, &p.Quantity, &p.AverageCost, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, false, nil
		}
		return p, false, err
	}
	return p, true, nil
}

func (s *PGStore) ListByClient(ctx context.Context, clientID string) ([]model.Position, error) {
	rows, err := s.pool.Query(ctx,
		"select id, client_id, symbol, quantity, average_cost, updated_at from positions where client_id = $1 order by symbol",
		clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Position
	for rows.Next() {
		var p model.Position
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Symbol, &p.Quantity, &p.AverageCost, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PGStore) Upsert(ctx context.Context, p model.Position) (model.Position, error) {
	err := s.pool.QueryRow(ctx,
		`insert into positions (client_id, symbol, quantity, average_cost, updated_at)
		 values ($1, $2, $3, $4, $5)
		 on conflict (client_id, symbol) do update set quantity = $3, average_cost = $4, updated_at = $5
		 returning id, updated_at`,
		p.ClientID, p.Symbol, p.Quantity, p.AverageCost, time.Now().UTC()).Scan(&p.ID, &p.UpdatedAt)
	return p, err
}

func (s *PGStore) Delete(ctx context.Context, clientID, symbol string) error {
	_, err := s.pool.Exec(ctx, "delete from positions where client_id = $1 and symbol = $2", clientID, symbol)
	return err
}

func (s *PGStore) ReplaceAll(ctx context.Context, clientID string, ps []model.Position) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, "delete from positions where client_id = $1", clientID); err != nil {
		return err
	}
	for _, p := range ps {
		if _, err := tx.Exec(ctx,
			"insert into positions (client_id, symbol, quantity, average_cost, updated_at) values ($1, $2, $3, $4, $5)",
			clientID, p.Symbol, p.Quantity, p.AverageCost, time.Now().UTC()); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
