// Package domain provides core business rules for the service request
// lifecycle: the status set, the transition table, and the guard rules that
// decide which actor may fire which transition.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a service request. The set is closed;
// values arriving over the wire must pass ParseStatus.
type Status string

const (
	StatusNew                Status = "NEW"
	StatusWaiting            Status = "WAITING"
	StatusWaitingForParts    Status = "WAITING_FOR_PARTS"
	StatusWaitingForApproval Status = "WAITING_FOR_APPROVAL"
	StatusReadyToSchedule    Status = "READY_TO_SCHEDULE"
	StatusScheduled          Status = "SCHEDULED"
	StatusInProgress         Status = "IN_PROGRESS"
	StatusCompleted          Status = "COMPLETED"
	StatusCanceled           Status = "CANCELED"
)

var knownStatuses = map[Status]struct{}{
	StatusNew:                {},
	StatusWaiting:            {},
	StatusWaitingForParts:    {},
	StatusWaitingForApproval: {},
	StatusReadyToSchedule:    {},
	StatusScheduled:          {},
	StatusInProgress:         {},
	StatusCompleted:          {},
	StatusCanceled:           {},
}

// ParseStatus validates a wire value against the closed status set.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	_, ok := knownStatuses[status]
	return status, ok
}

// IsTerminal reports whether no further transitions may leave the status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// Role is the actor role carried by the session token. The engine trusts the
// role as resolved by the auth middleware and does not re-authenticate.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleSales    Role = "SALES"
	RoleOffice   Role = "OFFICE"
	RoleDispatch Role = "DISPATCH"
	RoleTech     Role = "TECH"
	RoleAdmin    Role = "ADMIN"
)

var knownRoles = map[Role]struct{}{
	RoleCustomer: {},
	RoleSales:    {},
	RoleOffice:   {},
	RoleDispatch: {},
	RoleTech:     {},
	RoleAdmin:    {},
}

// ParseRole validates a wire value against the known role set.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	_, ok := knownRoles[role]
	return role, ok
}

// Actor identifies who is attempting a transition.
type Actor struct {
	ID   uuid.UUID
	Role Role
}
