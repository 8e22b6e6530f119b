package service

import (
	"context"

	"github.com/google/uuid"

	"fleetops_backend/internal/requests/domain"
	"fleetops_backend/internal/requests/repository"
	"fleetops_backend/internal/requests/transport"
)

// Role queues are pure filters over current status; they never mutate.
var (
	officeQueueStatuses = []domain.Status{
		domain.StatusNew,
		domain.StatusWaiting,
		domain.StatusWaitingForApproval,
		domain.StatusWaitingForParts,
	}
	dispatchQueueStatuses = []domain.Status{
		domain.StatusReadyToSchedule,
	}
	technicianQueueStatuses = []domain.Status{
		domain.StatusScheduled,
		domain.StatusInProgress,
	}
)

// OfficeQueue lists requests waiting on triage or holds.
func (s *Service) OfficeQueue(ctx context.Context, limit, offset int) (transport.ServiceRequestListResponse, error) {
	return s.listQueue(ctx, repository.ListParams{
		Statuses: officeQueueStatuses,
		Limit:    limit,
		Offset:   offset,
	})
}

// DispatchQueue lists requests ready to be scheduled.
func (s *Service) DispatchQueue(ctx context.Context, limit, offset int) (transport.ServiceRequestListResponse, error) {
	return s.listQueue(ctx, repository.ListParams{
		Statuses: dispatchQueueStatuses,
		Limit:    limit,
		Offset:   offset,
	})
}

// TechnicianQueue lists the acting technician's assigned work.
func (s *Service) TechnicianQueue(ctx context.Context, technicianID uuid.UUID, limit, offset int) (transport.ServiceRequestListResponse, error) {
	return s.listQueue(ctx, repository.ListParams{
		Statuses:     technicianQueueStatuses,
		TechnicianID: &technicianID,
		Limit:        limit,
		Offset:       offset,
	})
}

// ListForCustomer lists a customer's own requests across all states.
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) (transport.ServiceRequestListResponse, error) {
	return s.listQueue(ctx, repository.ListParams{
		CustomerID: &customerID,
		Limit:      limit,
		Offset:     offset,
	})
}

// List is the general listing endpoint: customers see their own requests,
// staff see the whole fleet, optionally narrowed to one status.
func (s *Service) List(ctx context.Context, actor domain.Actor, status *domain.Status, limit, offset int) (transport.ServiceRequestListResponse, error) {
	params := repository.ListParams{Limit: limit, Offset: offset}
	if actor.Role == domain.RoleCustomer {
		customerID := actor.ID
		params.CustomerID = &customerID
	}
	if status != nil {
		params.Statuses = []domain.Status{*status}
	}
	return s.listQueue(ctx, params)
}

func (s *Service) listQueue(ctx context.Context, params repository.ListParams) (transport.ServiceRequestListResponse, error) {
	items, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.ServiceRequestListResponse{}, err
	}

	responses := make([]transport.ServiceRequestResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toResponse(item))
	}

	return transport.ServiceRequestListResponse{Items: responses, Total: len(responses)}, nil
}
