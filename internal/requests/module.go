// Package requests provides the service request lifecycle module.
package requests

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"fleetops_backend/internal/events"
	apphttp "fleetops_backend/internal/http"
	"fleetops_backend/internal/requests/handler"
	"fleetops_backend/internal/requests/repository"
	"fleetops_backend/internal/requests/service"
	"fleetops_backend/platform/logger"
	"fleetops_backend/platform/validator"
)

// Module represents the service requests domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new requests module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Service exposes the lifecycle engine for adapters and cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// SetConflictChecker wires the schedule-conflict source from the composition
// root, breaking the cycle with the schedule module.
func (m *Module) SetConflictChecker(checker service.ConflictChecker) {
	m.service.SetConflictChecker(checker)
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "requests"
}

// RegisterRoutes registers the module's routes under /api/v1/requests.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/requests"))
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
