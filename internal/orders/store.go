package orders

import (
	"context"
	"errors"
	"time"

	"lv-brokerage/internal/model"
	"lv-brokerage/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderStore interface {
	Create(ctx context.Context, o model.Order) (model.Order, error)
	Get(ctx context.Context, id string) (model.Order, error)
	ListByClient(ctx context.Context, clientID string) ([]model.Order, error)
	ListByClientSince(ctx context.Context, clientID string, since time.Time) ([]model.Order, error)
	ListByClientAndStatus(ctx context.Context, clientID string, status types.OrderStatus) ([]model.Order, error)
	// ListPendingLimit returns resting limit orders oldest first.
	ListPendingLimit(ctx context.Context) ([]model.Order, error)
	// UpdateStatusIf moves the order from one of the given statuses to the
	// target in a single compare-and-set, so two sweeps cannot both claim a
	// fill. Reports whether the transition was applied. A non-nil tradeTime
	// stamps the fill time in the same step.
	UpdateStatusIf(ctx context.Context, id string, from []types.OrderStatus, to types.OrderStatus, tradeTime *time.Time) (bool, error)
}

type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const orderColumns = `id, client_id, symbol, quantity, price, side, kind, status, trade_time, expiry_time, check_passed, check_reason, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, o model.Order) (model.Order, error) {
	err := s.pool.QueryRow(ctx,
		`insert into orders (client_id, symbol, quantity, price, side, kind, status, trade_time, expiry_time, check_passed, check_reason)
		 values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 returning id, created_at, updated_at`,
		o.ClientID, o.Symbol, o.Quantity, o.Price, o.Side, o.Kind, o.Status,
		o.TradeTime, o.ExpiryTime, o.CheckPassed, o.CheckReason,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (s *PGStore) Get(ctx context.Context, id string) (model.Order, error) {
	row := s.pool.QueryRow(ctx, `select `+orderColumns+` from orders where id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Order{}, model.ErrOrderNotFound
	}
	return o, err
}

func (s *PGStore) ListByClient(ctx context.Context, clientID string) ([]model.Order, error) {
	return s.list(ctx,
		`select `+orderColumns+` from orders where client_id = $1 order by created_at desc`, clientID)
}

func (s *PGStore) ListByClientSince(ctx context.Context, clientID string, since time.Time) ([]model.Order, error) {
	return s.list(ctx,
		`select `+orderColumns+` from orders where client_id = $1 and created_at >= $2 order by created_at`, clientID, since)
}

func (s *PGStore) ListByClientAndStatus(ctx context.Context, clientID string, status types.OrderStatus) ([]model.Order, error) {
	return s.list(ctx,
		`select `+orderColumns+` from orders where client_id = $1 and status = $2 order by trade_time`, clientID, status)
}

func (s *PGStore) ListPendingLimit(ctx context.Context) ([]model.Order, error) {
	return s.list(ctx,
		`select `+orderColumns+` from orders where status = $1 and kind = $2 order by created_at`,
		types.OrderStatusPending, types.OrderKindLimit)
}

func (s *PGStore) UpdateStatusIf(ctx context.Context, id string, from []types.OrderStatus, to types.OrderStatus, tradeTime *time.Time) (bool, error) {
	statuses := make([]string, len(from))
	for i, st := range from {
		statuses[i] = string(st)
	}
	tag, err := s.pool.Exec(ctx,
		`update orders
		 set status = $2, trade_time = coalesce($3, trade_time), updated_at = now()
		 where id = $1 and status = any($4)`,
		id, to, tradeTime, statuses)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.ClientID, &o.Symbol, &o.Quantity, &o.Price, &o.Side, &o.Kind,
		&o.Status, &o.TradeTime, &o.ExpiryTime, &o.CheckPassed, &o.CheckReason, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}
