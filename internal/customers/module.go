// Package customers provides the customer profile domain module.
package customers

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"fleetops_backend/internal/customers/handler"
	"fleetops_backend/internal/customers/repository"
	"fleetops_backend/internal/customers/service"
	apphttp "fleetops_backend/internal/http"
	"fleetops_backend/platform/httpkit"
	"fleetops_backend/platform/validator"
)

// Module represents the customers domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new customers module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Service exposes customer lookups for adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "customers"
}

// RegisterRoutes registers the customer routes under /api/v1/customers.
// Profile management is an office concern.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/customers")
	group.Use(httpkit.RequireRole("OFFICE", "SALES", "ADMIN"))
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
