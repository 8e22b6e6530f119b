package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateServiceRequestRequest contains data for opening a new service request.
// CustomerID is only honored for staff creating a request on a customer's
// behalf; customers always create for themselves.
type CreateServiceRequestRequest struct {
	CustomerID  *uuid.UUID `json:"customerId,omitempty"`
	VehicleID   uuid.UUID  `json:"vehicleId" validate:"required"`
	ServiceType string     `json:"serviceType" validate:"required,min=1,max=100"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// ListRequestsQuery holds query parameters for request listings.
type ListRequestsQuery struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// TransitionRequest is the body of a transition attempt. Which optional
// fields are required depends on the destination status.
type TransitionRequest struct {
	ToStatus     string     `json:"toStatus" validate:"required"`
	TechnicianID *uuid.UUID `json:"technicianId,omitempty"`
	ScheduledAt  *time.Time `json:"scheduledAt,omitempty"`
	Reason       *string    `json:"reason,omitempty" validate:"omitempty,max=500"`
	Notes        *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Mileage      *int64     `json:"mileage,omitempty" validate:"omitempty,min=0"`
}

// ServiceRequestResponse represents a service request in API responses.
type ServiceRequestResponse struct {
	ID           uuid.UUID  `json:"id"`
	CustomerID   uuid.UUID  `json:"customerId"`
	VehicleID    uuid.UUID  `json:"vehicleId"`
	TechnicianID *uuid.UUID `json:"technicianId,omitempty"`
	ServiceType  string     `json:"serviceType"`
	Description  *string    `json:"description,omitempty"`
	Status       string     `json:"status"`
	Version      int64      `json:"version"`

	ScheduledAt          *string `json:"scheduledAt,omitempty"`
	StartedAt            *string `json:"startedAt,omitempty"`
	WaitingForPartsAt    *string `json:"waitingForPartsAt,omitempty"`
	WaitingForApprovalAt *string `json:"waitingForApprovalAt,omitempty"`
	CompletedAt          *string `json:"completedAt,omitempty"`

	CompletionNotes *string `json:"completionNotes,omitempty"`
	Mileage         *int64  `json:"mileage,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ServiceRequestListResponse wraps a queue listing.
type ServiceRequestListResponse struct {
	Items []ServiceRequestResponse `json:"items"`
	Total int                      `json:"total"`
}

// TransitionLogEntry is one audit timeline row.
type TransitionLogEntry struct {
	ID         uuid.UUID `json:"id"`
	ActorID    uuid.UUID `json:"actorId"`
	ActorRole  string    `json:"actorRole"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	Outcome    string    `json:"outcome"`
	Reason     *string   `json:"reason,omitempty"`
	CreatedAt  string    `json:"createdAt"`
}

// TransitionLogResponse wraps a request's audit timeline, oldest first.
type TransitionLogResponse struct {
	Items []TransitionLogEntry `json:"items"`
}
