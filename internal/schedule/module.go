// Package schedule provides the technician scheduling domain module.
package schedule

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"fleetops_backend/internal/events"
	apphttp "fleetops_backend/internal/http"
	"fleetops_backend/internal/schedule/handler"
	"fleetops_backend/internal/schedule/repository"
	"fleetops_backend/internal/schedule/service"
	"fleetops_backend/platform/httpkit"
	"fleetops_backend/platform/logger"
	"fleetops_backend/platform/validator"
)

// Module represents the schedule domain module. It owns technician blocks
// and keeps them in step with the request lifecycle via domain events.
type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

// NewModule creates a new schedule module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		log:     log,
	}
}

// Service exposes block queries for adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "schedule"
}

// RegisterRoutes registers the dispatch board routes under /api/v1/schedule.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/schedule")
	group.Use(httpkit.RequireRole("DISPATCH", "ADMIN"))
	m.handler.RegisterRoutes(group)
}

// RegisterHandlers subscribes the module to request lifecycle events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.RequestScheduled{}.EventName(), m)
	bus.Subscribe(events.RequestSentBack{}.EventName(), m)
	bus.Subscribe(events.RequestCanceled{}.EventName(), m)
}

// Handle processes request lifecycle events, keeping blocks consistent with
// the scheduled state.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.RequestScheduled:
		if err := m.service.Reserve(ctx, e.RequestID, e.TechnicianID, e.StartsAt, e.EndsAt); err != nil {
			m.log.Error("failed to reserve schedule block", "requestId", e.RequestID, "error", err)
			return err
		}
	case events.RequestSentBack:
		if err := m.service.Release(ctx, e.RequestID); err != nil {
			m.log.Error("failed to release schedule blocks", "requestId", e.RequestID, "error", err)
			return err
		}
	case events.RequestCanceled:
		if err := m.service.Release(ctx, e.RequestID); err != nil {
			m.log.Error("failed to release schedule blocks", "requestId", e.RequestID, "error", err)
			return err
		}
	}
	return nil
}

var (
	_ apphttp.Module = (*Module)(nil)
	_ events.Handler = (*Module)(nil)
)
