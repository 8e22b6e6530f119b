package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleetops_backend/internal/requests/domain"
	"fleetops_backend/internal/requests/service"
	"fleetops_backend/internal/requests/transport"
	"fleetops_backend/platform/httpkit"
	"fleetops_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// rolePrecedence resolves a multi-role token to the actor's effective role.
var rolePrecedence = []domain.Role{
	domain.RoleAdmin,
	domain.RoleDispatch,
	domain.RoleOffice,
	domain.RoleTech,
	domain.RoleSales,
	domain.RoleCustomer,
}

// Handler handles HTTP requests for service requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new service requests handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the request routes. Queue routes carry their own
// role middleware; everything else authorizes inside the service layer.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.GET("/:id/history", h.History)
	rg.POST("/:id/transitions", h.Transition)

	rg.GET("/queue/office",
		httpkit.RequireRole(string(domain.RoleOffice), string(domain.RoleAdmin)), h.OfficeQueue)
	rg.GET("/queue/dispatch",
		httpkit.RequireRole(string(domain.RoleDispatch), string(domain.RoleAdmin)), h.DispatchQueue)
	rg.GET("/queue/technician",
		httpkit.RequireRole(string(domain.RoleTech), string(domain.RoleAdmin)), h.TechnicianQueue)
}

// actorFrom resolves the acting identity into a domain actor. Aborts with an
// error response and returns false when no recognized role is present.
func actorFrom(c *gin.Context) (domain.Actor, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return domain.Actor{}, false
	}

	for _, role := range rolePrecedence {
		if identity.HasRole(string(role)) {
			return domain.Actor{ID: identity.UserID(), Role: role}, true
		}
	}

	httpkit.Error(c, http.StatusForbidden, "no recognized role", nil)
	return domain.Actor{}, false
}

// Create handles POST /api/v1/requests.
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateServiceRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	customerID, ok := resolveCustomerID(c, actor, req.CustomerID)
	if !ok {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), actor, customerID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, result)
}

// resolveCustomerID determines which customer the request is opened for.
// Customers always act for themselves; staff must name the customer.
func resolveCustomerID(c *gin.Context, actor domain.Actor, bodyID *uuid.UUID) (uuid.UUID, bool) {
	if actor.Role == domain.RoleCustomer {
		if bodyID != nil && *bodyID != actor.ID {
			httpkit.Error(c, http.StatusForbidden, "customers can only open requests for themselves", nil)
			return uuid.Nil, false
		}
		return actor.ID, true
	}

	if bodyID == nil {
		httpkit.Error(c, http.StatusBadRequest, "customerId is required", nil)
		return uuid.Nil, false
	}
	return *bodyID, true
}

// List handles GET /api/v1/requests.
func (h *Handler) List(c *gin.Context) {
	var query transport.ListRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var status *domain.Status
	if query.Status != "" {
		parsed, valid := domain.ParseStatus(query.Status)
		if !valid {
			httpkit.Error(c, http.StatusBadRequest, "unknown status", query.Status)
			return
		}
		status = &parsed
	}

	result, err := h.svc.List(c.Request.Context(), actor, status, query.Limit, query.Offset)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetByID handles GET /api/v1/requests/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// History handles GET /api/v1/requests/:id/history.
func (h *Handler) History(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	result, err := h.svc.History(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Transition handles POST /api/v1/requests/:id/transitions.
func (h *Handler) Transition(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req transport.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	toStatus, valid := domain.ParseStatus(req.ToStatus)
	if !valid {
		httpkit.Error(c, http.StatusBadRequest, "unknown status", req.ToStatus)
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	payload := domain.TransitionPayload{
		TechnicianID: req.TechnicianID,
		ScheduledAt:  req.ScheduledAt,
		Reason:       req.Reason,
		Notes:        req.Notes,
		Mileage:      req.Mileage,
	}

	result, err := h.svc.ApplyTransition(c.Request.Context(), id, actor, toStatus, payload)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// OfficeQueue handles GET /api/v1/requests/queue/office.
func (h *Handler) OfficeQueue(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	result, err := h.svc.OfficeQueue(c.Request.Context(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// DispatchQueue handles GET /api/v1/requests/queue/dispatch.
func (h *Handler) DispatchQueue(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	result, err := h.svc.DispatchQueue(c.Request.Context(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// TechnicianQueue handles GET /api/v1/requests/queue/technician. The queue is
// always scoped to the acting technician's own assignments.
func (h *Handler) TechnicianQueue(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	result, err := h.svc.TechnicianQueue(c.Request.Context(), actor.ID, limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (limit, offset int, ok bool) {
	var query transport.ListRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return 0, 0, false
	}
	return query.Limit, query.Offset, true
}
