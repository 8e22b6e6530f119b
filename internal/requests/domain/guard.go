package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransitionPayload carries the optional fields a transition may require.
// Which fields are mandatory depends on the destination state; the guard
// rules below enforce that.
type TransitionPayload struct {
	TechnicianID *uuid.UUID
	ScheduledAt  *time.Time
	Reason       *string
	Notes        *string
	Mileage      *int64
}

// Decision is the guard verdict for one transition attempt. A denied
// decision always carries a human-readable reason.
type Decision struct {
	OK     bool
	Reason string
}

func allow() Decision {
	return Decision{OK: true}
}

func deny(reason string) Decision {
	return Decision{OK: false, Reason: reason}
}

// guardRule gates one edge (or edge family) of the transition table beyond
// structural legality. Rules are matched by destination and, when fromStates
// is non-empty, by origin.
type guardRule struct {
	to         Status
	fromStates []Status
	evaluate   func(actor Actor, req ServiceRequest, payload TransitionPayload) Decision
}

var guardRules = []guardRule{
	{
		// Intake: any authenticated actor moves a fresh request into triage.
		to: StatusWaiting,
		evaluate: func(Actor, ServiceRequest, TransitionPayload) Decision {
			return allow()
		},
	},
	{
		// Triage complete: office marks the request schedulable.
		to:         StatusReadyToSchedule,
		fromStates: []Status{StatusWaiting, StatusWaitingForApproval, StatusWaitingForParts},
		evaluate: func(actor Actor, req ServiceRequest, _ TransitionPayload) Decision {
			if !hasRole(actor, RoleOffice, RoleAdmin) {
				return deny("only office staff may mark a request ready to schedule")
			}
			if req.ServiceType == "" {
				return deny("service type must be set before scheduling")
			}
			if req.VehicleID == uuid.Nil {
				return deny("vehicle must be set before scheduling")
			}
			return allow()
		},
	},
	{
		to:       StatusWaitingForApproval,
		evaluate: requireHoldReason,
	},
	{
		to:       StatusWaitingForParts,
		evaluate: requireHoldReason,
	},
	{
		// Assignment: dispatch books a technician into a free window.
		to: StatusScheduled,
		evaluate: func(actor Actor, _ ServiceRequest, payload TransitionPayload) Decision {
			if !hasRole(actor, RoleDispatch, RoleAdmin) {
				return deny("only dispatch may schedule a request")
			}
			if payload.TechnicianID == nil {
				return deny("technician is required to schedule")
			}
			if payload.ScheduledAt == nil {
				return deny("scheduled time is required to schedule")
			}
			return allow()
		},
	},
	{
		// Work start: only the assigned technician (or an admin) may begin.
		to: StatusInProgress,
		evaluate: func(actor Actor, req ServiceRequest, _ TransitionPayload) Decision {
			if hasRole(actor, RoleAdmin) {
				return allow()
			}
			if actor.Role == RoleTech && req.AssignedTo(actor.ID) {
				return allow()
			}
			return deny("only the assigned technician may start this request")
		},
	},
	{
		// Completion requires a completion payload: notes or mileage.
		to: StatusCompleted,
		evaluate: func(actor Actor, req ServiceRequest, payload TransitionPayload) Decision {
			assignedTech := actor.Role == RoleTech && req.AssignedTo(actor.ID)
			if !assignedTech && !hasRole(actor, RoleOffice, RoleAdmin) {
				return deny("only the assigned technician or office staff may complete this request")
			}
			if emptyString(payload.Notes) && payload.Mileage == nil {
				return deny("completion requires notes or mileage")
			}
			return allow()
		},
	},
	{
		// Send-back: return an assigned request to the scheduling queue.
		to:         StatusReadyToSchedule,
		fromStates: []Status{StatusScheduled, StatusInProgress},
		evaluate: func(actor Actor, req ServiceRequest, payload TransitionPayload) Decision {
			assignedTech := actor.Role == RoleTech && req.AssignedTo(actor.ID)
			if !assignedTech && !hasRole(actor, RoleDispatch, RoleAdmin) {
				return deny("only the assigned technician or dispatch may send this request back")
			}
			if emptyString(payload.Reason) {
				return deny("send-back requires a reason")
			}
			return allow()
		},
	},
	{
		to: StatusCanceled,
		evaluate: func(actor Actor, _ ServiceRequest, payload TransitionPayload) Decision {
			if !hasRole(actor, RoleOffice, RoleAdmin) {
				return deny("only office staff may cancel a request")
			}
			if emptyString(payload.Reason) {
				return deny("cancellation requires a reason")
			}
			return allow()
		},
	},
}

// EvaluateGuard decides whether the actor may fire the structurally legal
// transition req.Status -> to. The schedule-conflict check for SCHEDULED is
// an I/O concern and lives with the engine, not here; this function is pure.
func EvaluateGuard(actor Actor, req ServiceRequest, to Status, payload TransitionPayload) Decision {
	for _, rule := range guardRules {
		if rule.to != to {
			continue
		}
		if len(rule.fromStates) > 0 && !containsStatus(rule.fromStates, req.Status) {
			continue
		}
		return rule.evaluate(actor, req, payload)
	}
	return deny("no guard rule permits this transition")
}

func requireHoldReason(actor Actor, _ ServiceRequest, payload TransitionPayload) Decision {
	if !hasRole(actor, RoleOffice, RoleDispatch, RoleAdmin) {
		return deny("only office or dispatch may place a request on hold")
	}
	if emptyString(payload.Reason) {
		return deny("a reason note is required to place a request on hold")
	}
	return allow()
}

func hasRole(actor Actor, roles ...Role) bool {
	for _, role := range roles {
		if actor.Role == role {
			return true
		}
	}
	return false
}

func containsStatus(statuses []Status, status Status) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func emptyString(value *string) bool {
	if value == nil {
		return true
	}
	return strings.TrimSpace(*value) == ""
}
