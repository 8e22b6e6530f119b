// Package service provides the lifecycle engine and read-side queries for
// service requests.
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
	"fleetops_backend/platform/logger"
)

// Service provides business logic for service requests. All status mutation
// flows through ApplyTransition in engine.go.
type Service struct {
	repo      repository.Repository
	conflicts ConflictChecker
	bus       events.Bus
	log       *logger.Logger
}

// New creates a new service requests service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// SetConflictChecker wires the schedule-conflict source. Set from the
// composition root to break the module cycle with the schedule context.
func (s *Service) SetConflictChecker(checker ConflictChecker) {
	s.conflicts = checker
}

// Create opens a new service request for the acting customer and immediately
// applies the intake transition so the audit trail starts at NEW -> WAITING.
func (s *Service) Create(ctx context.Context, actor domain.Actor, customerID uuid.UUID, req transport.CreateServiceRequestRequest) (transport.ServiceRequestResponse, error) {
	created, err := s.repo.Create(ctx, repository.CreateParams{
		CustomerID:  customerID,
		VehicleID:   req.VehicleID,
		ServiceType: req.ServiceType,
		Description: req.Description,
	})
	if err != nil {
		return transport.ServiceRequestResponse{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.RequestCreated{
			BaseEvent:   events.NewBaseEvent(),
			RequestID:   created.ID,
			CustomerID:  created.CustomerID,
			VehicleID:   created.VehicleID,
			ServiceType: created.ServiceType,
		})
	}

	return s.ApplyTransition(ctx, created.ID, actor, domain.StatusWaiting, domain.TransitionPayload{})
}

// GetByID retrieves a service request, restricted to its owner for customers.
func (s *Service) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (transport.ServiceRequestResponse, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceRequestResponse{}, err
	}

	if actor.Role == domain.RoleCustomer && req.CustomerID != actor.ID {
		return transport.ServiceRequestResponse{}, apperr.NotFound("service request not found")
	}

	return toResponse(req), nil
}

// History returns the audit timeline for a request, oldest first.
func (s *Service) History(ctx context.Context, actor domain.Actor, id uuid.UUID) (transport.TransitionLogResponse, error) {
	if _, err := s.GetByID(ctx, actor, id); err != nil {
		return transport.TransitionLogResponse{}, err
	}

	records, err := s.repo.ListTransitions(ctx, id)
	if err != nil {
		return transport.TransitionLogResponse{}, err
	}

	items := make([]transport.TransitionLogEntry, 0, len(records))
	for _, record := range records {
		items = append(items, transport.TransitionLogEntry{
			ID:         record.ID,
			ActorID:    record.ActorID,
			ActorRole:  string(record.ActorRole),
			FromStatus: string(record.FromStatus),
			ToStatus:   string(record.ToStatus),
			Outcome:    record.Outcome,
			Reason:     record.Reason,
			CreatedAt:  record.CreatedAt.Format(time.RFC3339),
		})
	}

	return transport.TransitionLogResponse{Items: items}, nil
}

func toResponse(req domain.ServiceRequest) transport.ServiceRequestResponse {
	return transport.ServiceRequestResponse{
		ID:                   req.ID,
		CustomerID:           req.CustomerID,
		VehicleID:            req.VehicleID,
		TechnicianID:         req.TechnicianID,
		ServiceType:          req.ServiceType,
		Description:          req.Description,
		Status:               string(req.Status),
		Version:              req.Version,
		ScheduledAt:          formatTime(req.ScheduledAt),
		StartedAt:            formatTime(req.StartedAt),
		WaitingForPartsAt:    formatTime(req.WaitingForPartsAt),
		WaitingForApprovalAt: formatTime(req.WaitingForApprovalAt),
		CompletedAt:          formatTime(req.CompletedAt),
		CompletionNotes:      req.CompletionNotes,
		Mileage:              req.Mileage,
		CreatedAt:            req.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            req.UpdatedAt.Format(time.RFC3339),
	}
}

func formatTime(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.Format(time.RFC3339)
	return &formatted
}
