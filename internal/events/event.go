// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"fleetops_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserSignedUp is published when a new user account is created.
type UserSignedUp struct {
	BaseEvent
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Roles  []string  `json:"roles"`
}

func (e UserSignedUp) EventName() string { return "auth.user.signed_up" }

// =============================================================================
// Service Request Lifecycle Events
// =============================================================================

// RequestCreated is published when a new service request enters intake.
type RequestCreated struct {
	BaseEvent
	RequestID   uuid.UUID `json:"requestId"`
	CustomerID  uuid.UUID `json:"customerId"`
	VehicleID   uuid.UUID `json:"vehicleId"`
	ServiceType string    `json:"serviceType"`
}

func (e RequestCreated) EventName() string { return "requests.created" }

// RequestTransitioned is published after every applied lifecycle transition.
type RequestTransitioned struct {
	BaseEvent
	RequestID  uuid.UUID `json:"requestId"`
	CustomerID uuid.UUID `json:"customerId"`
	ActorID    uuid.UUID `json:"actorId"`
	ActorRole  string    `json:"actorRole"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	Version    int64     `json:"version"`
}

func (e RequestTransitioned) EventName() string { return "requests.transitioned" }

// RequestScheduled is published when dispatch books a technician visit.
type RequestScheduled struct {
	BaseEvent
	RequestID    uuid.UUID `json:"requestId"`
	CustomerID   uuid.UUID `json:"customerId"`
	TechnicianID uuid.UUID `json:"technicianId"`
	StartsAt     time.Time `json:"startsAt"`
	EndsAt       time.Time `json:"endsAt"`
}

func (e RequestScheduled) EventName() string { return "requests.scheduled" }

// RequestSentBack is published when an assigned request returns to the
// scheduling queue, releasing the technician.
type RequestSentBack struct {
	BaseEvent
	RequestID    uuid.UUID  `json:"requestId"`
	TechnicianID *uuid.UUID `json:"technicianId,omitempty"`
	Reason       string     `json:"reason"`
}

func (e RequestSentBack) EventName() string { return "requests.sent_back" }

// RequestCompleted is published when work on a request finishes.
type RequestCompleted struct {
	BaseEvent
	RequestID  uuid.UUID `json:"requestId"`
	CustomerID uuid.UUID `json:"customerId"`
	VehicleID  uuid.UUID `json:"vehicleId"`
	Mileage    *int64    `json:"mileage,omitempty"`
}

func (e RequestCompleted) EventName() string { return "requests.completed" }

// RequestCanceled is published when a request is canceled from any
// non-terminal state.
type RequestCanceled struct {
	BaseEvent
	RequestID    uuid.UUID  `json:"requestId"`
	CustomerID   uuid.UUID  `json:"customerId"`
	TechnicianID *uuid.UUID `json:"technicianId,omitempty"`
	Reason       string     `json:"reason"`
}

func (e RequestCanceled) EventName() string { return "requests.canceled" }
