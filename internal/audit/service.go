// Package audit records who did what to which entity. Recording is
// best-effort: a failed append is logged, never surfaced to the caller,
// so audit trouble cannot fail a trade.
package audit

import (
	"context"
	"log"

	"lv-brokerage/internal/events"
	"lv-brokerage/internal/model"
	"lv-brokerage/internal/types"
)

type Service struct {
	store Store
	bus   *events.Bus
}

func NewService(store Store, bus *events.Bus) *Service {
	return &Service{store: store, bus: bus}
}

// Record appends one trail entry and publishes it to live subscribers.
func (s *Service) Record(ctx context.Context, entityType, entityID string, action types.AuditAction, actor, details string) {
	e, err := s.store.Append(ctx, model.AuditEntry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     string(action),
		Actor:      actor,
		Details:    details,
	})
	if err != nil {
		log.Printf("[audit] append failed entity=%s/%s action=%s: %v", entityType, entityID, action, err)
		return
	}
	if s.bus != nil {
		s.bus.Publish(events.TypeAudit, e)
	}
}

func (s *Service) ListByEntity(ctx context.Context, entityType, entityID string) ([]model.AuditEntry, error) {
	return s.store.ListByEntity(ctx, entityType, entityID)
}

func (s *Service) ListRecent(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.ListRecent(ctx, limit)
}
