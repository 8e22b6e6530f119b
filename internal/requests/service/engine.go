package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fleetops_backend/internal/events"
	"fleetops_backend/internal/requests/domain"
	"fleetops_backend/internal/requests/repository"
	"fleetops_backend/internal/requests/transport"
	"fleetops_backend/platform/apperr"
)

// maxConflictRetries bounds the internal reload-and-retry loop when the
// conditioned write loses a version race.
const maxConflictRetries = 3

// visitDuration is the booking window reserved per scheduled visit.
const visitDuration = 2 * time.Hour

// ConflictChecker reports whether a technician already has a booking
// overlapping the requested window. Implemented by the schedule module and
// injected through an adapter.
type ConflictChecker interface {
	HasOverlap(ctx context.Context, technicianID uuid.UUID, from, to time.Time) (bool, error)
}

// ApplyTransition is the sole mutation point for service request status.
// It validates the edge against the transition table, runs the guard, then
// commits via a compare-and-swap on the request version. Every attempt,
// applied or rejected, produces exactly one audit record.
func (s *Service) ApplyTransition(ctx context.Context, requestID uuid.UUID, actor domain.Actor, to domain.Status, payload domain.TransitionPayload) (transport.ServiceRequestResponse, error) {
	var current domain.ServiceRequest
	lostRace := false

	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		loaded, err := s.repo.GetByID(ctx, requestID)
		if err != nil {
			// Unknown id: nothing to anchor an audit record to.
			return transport.ServiceRequestResponse{}, err
		}
		current = loaded

		if !domain.CanTransition(current.Status, to) {
			if lostRace {
				// A concurrent transition won and moved the request past this
				// edge; the caller holds stale state, not an illegal request.
				s.audit(ctx, current, actor, to, domain.OutcomeRejected, domain.ReasonConflict)
				return transport.ServiceRequestResponse{}, apperr.Conflict(domain.ReasonConflict).
					WithDetails("a concurrent transition was applied first; reload and retry")
			}
			s.audit(ctx, current, actor, to, domain.OutcomeRejected, domain.ReasonIllegalTransition)
			return transport.ServiceRequestResponse{}, apperr.Unprocessable(domain.ReasonIllegalTransition).
				WithDetails(map[string]string{
					"from": string(current.Status),
					"to":   string(to),
				})
		}

		if decision := domain.EvaluateGuard(actor, current, to, payload); !decision.OK {
			s.audit(ctx, current, actor, to, domain.OutcomeRejected, decision.Reason)
			return transport.ServiceRequestResponse{}, apperr.Unprocessable(domain.ReasonGuardDenied).
				WithDetails(decision.Reason)
		}

		if to == domain.StatusScheduled {
			if reason, err := s.checkBookingWindow(ctx, payload); err != nil {
				return transport.ServiceRequestResponse{}, err
			} else if reason != "" {
				s.audit(ctx, current, actor, to, domain.OutcomeRejected, reason)
				return transport.ServiceRequestResponse{}, apperr.Unprocessable(domain.ReasonGuardDenied).
					WithDetails(reason)
			}
		}

		updated, err := s.repo.UpdateStatus(ctx, buildUpdateParams(current, to, payload))
		if err != nil {
			if apperr.Is(err, apperr.KindConflict) {
				// Lost the version race; reload and re-evaluate from scratch.
				lostRace = true
				continue
			}
			return transport.ServiceRequestResponse{}, err
		}

		s.audit(ctx, current, actor, to, domain.OutcomeApplied, "")
		s.log.TransitionEvent(current.ID.String(), string(current.Status), string(to), domain.OutcomeApplied, "")
		s.publishTransitionEvents(ctx, current, updated, actor, payload)
		return toResponse(updated), nil
	}

	s.audit(ctx, current, actor, to, domain.OutcomeRejected, domain.ReasonConflict)
	return transport.ServiceRequestResponse{}, apperr.Conflict(domain.ReasonConflict).
		WithDetails("service request was modified concurrently; reload and retry")
}

// checkBookingWindow returns a non-empty denial reason when the technician is
// already booked in the requested window.
func (s *Service) checkBookingWindow(ctx context.Context, payload domain.TransitionPayload) (string, error) {
	if s.conflicts == nil || payload.TechnicianID == nil || payload.ScheduledAt == nil {
		return "", nil
	}

	from := *payload.ScheduledAt
	overlap, err := s.conflicts.HasOverlap(ctx, *payload.TechnicianID, from, from.Add(visitDuration))
	if err != nil {
		return "", err
	}
	if overlap {
		return "technician is already booked in the requested time window", nil
	}
	return "", nil
}

// buildUpdateParams maps a validated transition onto the single conditioned
// write: the destination's timestamp is stamped, and technician assignment is
// only touched by scheduling, send-back, and cancellation.
func buildUpdateParams(current domain.ServiceRequest, to domain.Status, payload domain.TransitionPayload) repository.UpdateStatusParams {
	now := time.Now().UTC()
	params := repository.UpdateStatusParams{
		ID:              current.ID,
		ExpectedVersion: current.Version,
		ToStatus:        to,
	}

	switch to {
	case domain.StatusScheduled:
		params.TouchTechnician = true
		params.TechnicianID = payload.TechnicianID
		params.ScheduledAt = payload.ScheduledAt
	case domain.StatusInProgress:
		params.StartedAt = &now
	case domain.StatusWaitingForParts:
		params.WaitingForPartsAt = &now
	case domain.StatusWaitingForApproval:
		params.WaitingForApprovalAt = &now
	case domain.StatusCompleted:
		params.CompletedAt = &now
		params.CompletionNotes = payload.Notes
		params.Mileage = payload.Mileage
	case domain.StatusReadyToSchedule:
		if domain.IsSendBack(current.Status, to) {
			params.TouchTechnician = true
			params.TechnicianID = nil
		}
	case domain.StatusCanceled:
		params.TouchTechnician = true
		params.TechnicianID = nil
	}

	return params
}

// audit appends the single record for this attempt. A failed append is logged
// but does not fail the transition; the status write is the source of truth.
func (s *Service) audit(ctx context.Context, req domain.ServiceRequest, actor domain.Actor, to domain.Status, outcome, reason string) {
	if req.ID == uuid.Nil {
		return
	}

	record := domain.TransitionRecord{
		RequestID:  req.ID,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		FromStatus: req.Status,
		ToStatus:   to,
		Outcome:    outcome,
	}
	if reason != "" {
		record.Reason = &reason
	}

	if err := s.repo.InsertTransition(ctx, record); err != nil {
		s.log.DatabaseError("insert transition record", err)
	}
	if outcome == domain.OutcomeRejected {
		s.log.TransitionEvent(req.ID.String(), string(req.Status), string(to), outcome, reason)
	}
}

func (s *Service) publishTransitionEvents(ctx context.Context, previous, updated domain.ServiceRequest, actor domain.Actor, payload domain.TransitionPayload) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(ctx, events.RequestTransitioned{
		BaseEvent:  events.NewBaseEvent(),
		RequestID:  updated.ID,
		CustomerID: updated.CustomerID,
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		FromStatus: string(previous.Status),
		ToStatus:   string(updated.Status),
		Version:    updated.Version,
	})

	switch updated.Status {
	case domain.StatusScheduled:
		if updated.TechnicianID != nil && updated.ScheduledAt != nil {
			s.bus.Publish(ctx, events.RequestScheduled{
				BaseEvent:    events.NewBaseEvent(),
				RequestID:    updated.ID,
				CustomerID:   updated.CustomerID,
				TechnicianID: *updated.TechnicianID,
				StartsAt:     *updated.ScheduledAt,
				EndsAt:       updated.ScheduledAt.Add(visitDuration),
			})
		}
	case domain.StatusReadyToSchedule:
		if domain.IsSendBack(previous.Status, updated.Status) {
			s.bus.Publish(ctx, events.RequestSentBack{
				BaseEvent:    events.NewBaseEvent(),
				RequestID:    updated.ID,
				TechnicianID: previous.TechnicianID,
				Reason:       derefString(payload.Reason),
			})
		}
	case domain.StatusCompleted:
		s.bus.Publish(ctx, events.RequestCompleted{
			BaseEvent:  events.NewBaseEvent(),
			RequestID:  updated.ID,
			CustomerID: updated.CustomerID,
			VehicleID:  updated.VehicleID,
			Mileage:    updated.Mileage,
		})
	case domain.StatusCanceled:
		s.bus.Publish(ctx, events.RequestCanceled{
			BaseEvent:    events.NewBaseEvent(),
			RequestID:    updated.ID,
			CustomerID:   updated.CustomerID,
			TechnicianID: previous.TechnicianID,
			Reason:       derefString(payload.Reason),
		})
	}
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
