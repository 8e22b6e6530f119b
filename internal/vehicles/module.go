// Package vehicles provides the vehicle registry domain module.
package vehicles

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"fleetops_backend/internal/events"
	apphttp "fleetops_backend/internal/http"
	"fleetops_backend/internal/vehicles/handler"
	"fleetops_backend/internal/vehicles/repository"
	"fleetops_backend/internal/vehicles/service"
	"fleetops_backend/platform/httpkit"
	"fleetops_backend/platform/logger"
	"fleetops_backend/platform/validator"
)

// Module represents the vehicles domain module. It keeps odometer readings
// current by consuming completion events from the request lifecycle.
type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

// NewModule creates a new vehicles module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		log:     log,
	}
}

// Service exposes vehicle lookups for adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "vehicles"
}

// RegisterRoutes registers the vehicle routes under /api/v1/vehicles.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/vehicles")
	group.Use(httpkit.RequireRole("OFFICE", "SALES", "ADMIN"))
	m.handler.RegisterRoutes(group)
}

// RegisterHandlers subscribes the module to request lifecycle events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.RequestCompleted{}.EventName(), m)
}

// Handle advances the vehicle odometer when a service visit records mileage.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	completed, ok := event.(events.RequestCompleted)
	if !ok || completed.Mileage == nil {
		return nil
	}

	if err := m.service.RecordMileage(ctx, completed.VehicleID, *completed.Mileage); err != nil {
		m.log.Error("failed to record vehicle mileage",
			"vehicleId", completed.VehicleID, "error", err)
		return err
	}
	return nil
}

var (
	_ apphttp.Module = (*Module)(nil)
	_ events.Handler = (*Module)(nil)
)
