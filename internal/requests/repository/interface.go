package repository

import (
	"context"
	"time"

	"fleetops_backend/internal/requests/domain"

	"github.com/google/uuid"
)

// CreateParams contains the data needed to create a service request.
// Requests are always created in status NEW.
type CreateParams struct {
	CustomerID  uuid.UUID
	VehicleID   uuid.UUID
	ServiceType string
	Description *string
}

// UpdateStatusParams describes one conditioned status write. The write only
// succeeds when the stored version still equals ExpectedVersion; the version
// is incremented in the same statement.
type UpdateStatusParams struct {
	ID              uuid.UUID
	ExpectedVersion int64
	ToStatus        domain.Status

	// TouchTechnician controls whether technician_id is written at all;
	// when true, TechnicianID nil clears the assignment (send-back, cancel).
	TouchTechnician bool
	TechnicianID    *uuid.UUID

	// Timestamps owned by the destination state; nil leaves the column as is.
	ScheduledAt          *time.Time
	StartedAt            *time.Time
	WaitingForPartsAt    *time.Time
	WaitingForApprovalAt *time.Time
	CompletedAt          *time.Time

	CompletionNotes *string
	Mileage         *int64
}

// ListParams filters the read-side queue listings.
type ListParams struct {
	Statuses     []domain.Status
	TechnicianID *uuid.UUID
	CustomerID   *uuid.UUID
	Limit        int
	Offset       int
}

// Repository is the persistence boundary of the requests bounded context.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (domain.ServiceRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.ServiceRequest, error)
	// UpdateStatus performs the compare-and-swap write. It returns
	// apperr.Conflict when the version no longer matches and apperr.NotFound
	// when the request does not exist.
	UpdateStatus(ctx context.Context, params UpdateStatusParams) (domain.ServiceRequest, error)
	List(ctx context.Context, params ListParams) ([]domain.ServiceRequest, error)

	// Audit log: append-only, insert and ordered read only.
	InsertTransition(ctx context.Context, record domain.TransitionRecord) error
	ListTransitions(ctx context.Context, requestID uuid.UUID) ([]domain.TransitionRecord, error)
}
