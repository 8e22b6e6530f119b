package domain

import (
	"time"

	"github.com/google/uuid"
)

// ServiceRequest is the entity under lifecycle control. Status may only be
// changed through the lifecycle engine; the version column is the
// optimistic-concurrency guard for every status write.
type ServiceRequest struct {
	ID           uuid.UUID
	CustomerID   uuid.UUID
	VehicleID    uuid.UUID
	TechnicianID *uuid.UUID
	ServiceType  string
	Description  *string
	Status       Status
	Version      int64

	ScheduledAt          *time.Time
	StartedAt            *time.Time
	WaitingForPartsAt    *time.Time
	WaitingForApprovalAt *time.Time
	CompletedAt          *time.Time

	CompletionNotes *string
	Mileage         *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssignedTo reports whether the request is currently assigned to the given
// technician.
func (r ServiceRequest) AssignedTo(techID uuid.UUID) bool {
	return r.TechnicianID != nil && *r.TechnicianID == techID
}

// Outcome of a transition attempt as recorded in the audit log.
const (
	OutcomeApplied  = "APPLIED"
	OutcomeRejected = "REJECTED"
)

// Rejection reason codes surfaced to API callers.
const (
	ReasonIllegalTransition = "ILLEGAL_TRANSITION"
	ReasonGuardDenied       = "GUARD_DENIED"
	ReasonConflict          = "CONFLICT"
)

// TransitionRecord is one immutable audit log entry. Every attempted
// transition produces exactly one record, applied or rejected.
type TransitionRecord struct {
	ID         uuid.UUID
	RequestID  uuid.UUID
	ActorID    uuid.UUID
	ActorRole  Role
	FromStatus Status
	ToStatus   Status
	Outcome    string
	Reason     *string
	CreatedAt  time.Time
}
