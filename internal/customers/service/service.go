// Package service provides customer profile management.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fleetops_backend/internal/customers/repository"
	"fleetops_backend/internal/customers/transport"
	"fleetops_backend/platform/phone"
)

// Service provides customer profile operations. Phone numbers are normalized
// to E.164 on the way in so lookups and notifications use one format.
type Service struct {
	repo repository.Repository
}

// New creates a new customers service.
func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a customer profile. When UserID is set, the profile shares
// the account's id so request ownership checks line up.
func (s *Service) Create(ctx context.Context, req transport.CreateCustomerRequest) (transport.CustomerResponse, error) {
	params := repository.CreateParams{
		Name:  req.Name,
		Email: req.Email,
		Phone: phone.NormalizeE164(req.Phone),
		Notes: req.Notes,
	}
	if req.UserID != nil {
		params.ID = *req.UserID
	}

	customer, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	return toResponse(customer), nil
}

// GetByID retrieves one customer profile.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.CustomerResponse, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	return toResponse(customer), nil
}

// Update replaces a customer's profile fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateCustomerRequest) (transport.CustomerResponse, error) {
	customer, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
		Phone: phone.NormalizeE164(req.Phone),
		Notes: req.Notes,
	})
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	return toResponse(customer), nil
}

// List returns customer profiles ordered by name.
func (s *Service) List(ctx context.Context, limit, offset int) (transport.CustomerListResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	customers, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return transport.CustomerListResponse{}, err
	}

	items := make([]transport.CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		items = append(items, toResponse(customer))
	}
	return transport.CustomerListResponse{Items: items, Total: len(items)}, nil
}

func toResponse(customer repository.Customer) transport.CustomerResponse {
	return transport.CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Email:     customer.Email,
		Phone:     customer.Phone,
		Notes:     customer.Notes,
		CreatedAt: customer.CreatedAt.Format(time.RFC3339),
		UpdatedAt: customer.UpdatedAt.Format(time.RFC3339),
	}
}
