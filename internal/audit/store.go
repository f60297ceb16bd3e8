package audit

import (
	"context"

	"lv-brokerage/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Append(ctx context.Context, e model.AuditEntry) (model.AuditEntry, error)
	ListByEntity(ctx context.Context, entityType, entityID string) ([]model.AuditEntry, error)
	ListRecent(ctx context.Context, limit int) ([]model.AuditEntry, error)
}

type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Append(ctx context.Context, e model.AuditEntry) (model.AuditEntry, error) {
	err := s.pool.QueryRow(ctx,
		`insert into audit_log (entity_type, entity_id, action, actor, details)
		 values ($1, $2, $3, $4, $5)
		 returning id, event_time`,
		e.EntityType, e.EntityID, e.Action, e.Actor, e.Details,
	).Scan(&e.ID, &e.EventTime)
	return e, err
}

func (s *PGStore) ListByEntity(ctx context.Context, entityType, entityID string) ([]model.AuditEntry, error) {
	rows, err := s.pool.Query(ctx,
		`select id, event_time, entity_type, entity_id, action, actor, details
		 from audit_log where entity_type = $1 and entity_id = $2
		 order by event_time`,
		entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *PGStore) ListRecent(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	rows, err := s.pool.Query(ctx,
		`select id, event_time, entity_type, entity_id, action, actor, details
		 from audit_log order by event_time desc limit $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]model.AuditEntry, error) {
	var out []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.EventTime, &e.EntityType, &e.EntityID, &e.Action, &e.Actor, &e.Details); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
