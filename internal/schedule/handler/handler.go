package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleetops_backend/internal/schedule/service"
	"fleetops_backend/internal/schedule/transport"
	"fleetops_backend/platform/httpkit"
	"fleetops_backend/platform/validator"
)

// defaultWindow is the listing window when from/to are omitted.
const defaultWindow = 7 * 24 * time.Hour

// Handler handles HTTP requests for the dispatch board.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new schedule handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the schedule routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/blocks", h.ListBlocks)
}

// ListBlocks handles GET /api/v1/schedule/blocks.
func (h *Handler) ListBlocks(c *gin.Context) {
	var query transport.ListBlocksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	technicianID, err := uuid.Parse(query.TechnicianID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid technician id", nil)
		return
	}

	from, to, ok := parseWindow(c, query.From, query.To)
	if !ok {
		return
	}

	result, err := h.svc.ListForTechnician(c.Request.Context(), technicianID, from, to)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func parseWindow(c *gin.Context, fromRaw, toRaw string) (from, to time.Time, ok bool) {
	from = time.Now().UTC()
	to = from.Add(defaultWindow)

	if fromRaw != "" {
		parsed, err := time.Parse(time.RFC3339, fromRaw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid from timestamp", nil)
			return from, to, false
		}
		from = parsed
		to = from.Add(defaultWindow)
	}
	if toRaw != "" {
		parsed, err := time.Parse(time.RFC3339, toRaw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid to timestamp", nil)
			return from, to, false
		}
		to = parsed
	}
	if !to.After(from) {
		httpkit.Error(c, http.StatusBadRequest, "to must be after from", nil)
		return from, to, false
	}
	return from, to, true
}
