// Package adapters contains anti-corruption adapters between domain modules.
package adapters

import (
	"context"
	"time"

	"github.com/google/uuid"

	requestsvc "fleetops_backend/internal/requests/service"
	schedulesvc "fleetops_backend/internal/schedule/service"
)

// ScheduleConflictAdapter adapts the schedule service for the lifecycle
// engine's double-booking check. It implements requests/service.ConflictChecker.
type ScheduleConflictAdapter struct {
	svc *schedulesvc.Service
}

// NewScheduleConflictAdapter wraps the schedule service for the engine.
func NewScheduleConflictAdapter(svc *schedulesvc.Service) *ScheduleConflictAdapter {
	return &ScheduleConflictAdapter{svc: svc}
}

// HasOverlap reports whether the technician already holds a block crossing
// the requested window.
func (a *ScheduleConflictAdapter) HasOverlap(ctx context.Context, technicianID uuid.UUID, from, to time.Time) (bool, error) {
	return a.svc.HasOverlap(ctx, technicianID, from, to)
}

var _ requestsvc.ConflictChecker = (*ScheduleConflictAdapter)(nil)
