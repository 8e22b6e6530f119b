package transport

import (
	"time"

	"github.com/google/uuid"
)

// ListBlocksQuery holds query parameters for the dispatch board listing.
type ListBlocksQuery struct {
	TechnicianID string `form:"technicianId" validate:"required,uuid"`
	From         string `form:"from"`
	To           string `form:"to"`
}

// BlockResponse represents one technician reservation in API responses.
type BlockResponse struct {
	ID           uuid.UUID `json:"id"`
	RequestID    uuid.UUID `json:"requestId"`
	TechnicianID uuid.UUID `json:"technicianId"`
	StartsAt     time.Time `json:"startsAt"`
	EndsAt       time.Time `json:"endsAt"`
}

// BlockListResponse wraps a block listing.
type BlockListResponse struct {
	Items []BlockResponse `json:"items"`
	Total int             `json:"total"`
}
