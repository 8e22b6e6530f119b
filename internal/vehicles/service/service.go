// Package service provides vehicle registry operations.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fleetops_backend/internal/vehicles/repository"
	"fleetops_backend/internal/vehicles/transport"
)

// Service provides vehicle registry operations.
type Service struct {
	repo repository.Repository
}

// New creates a new vehicles service.
func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a vehicle for a customer.
func (s *Service) Create(ctx context.Context, req transport.CreateVehicleRequest) (transport.VehicleResponse, error) {
	vehicle, err := s.repo.Create(ctx, repository.CreateParams{
		CustomerID: req.CustomerID,
		VIN:        req.VIN,
		Make:       req.Make,
		Model:      req.Model,
		Year:       req.Year,
		Odometer:   req.Odometer,
	})
	if err != nil {
		return transport.VehicleResponse{}, err
	}
	return toResponse(vehicle), nil
}

// GetByID retrieves one vehicle.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.VehicleResponse, error) {
	vehicle, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.VehicleResponse{}, err
	}
	return toResponse(vehicle), nil
}

// ListForCustomer returns a customer's vehicles.
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID) (transport.VehicleListResponse, error) {
	vehicles, err := s.repo.ListForCustomer(ctx, customerID)
	if err != nil {
		return transport.VehicleListResponse{}, err
	}

	items := make([]transport.VehicleResponse, 0, len(vehicles))
	for _, vehicle := range vehicles {
		items = append(items, toResponse(vehicle))
	}
	return transport.VehicleListResponse{Items: items, Total: len(items)}, nil
}

// RecordMileage advances a vehicle's odometer from a completed service visit.
func (s *Service) RecordMileage(ctx context.Context, vehicleID uuid.UUID, odometer int64) error {
	return s.repo.UpdateOdometer(ctx, vehicleID, odometer)
}

func toResponse(vehicle repository.Vehicle) transport.VehicleResponse {
	return transport.VehicleResponse{
		ID:         vehicle.ID,
		CustomerID: vehicle.CustomerID,
		VIN:        vehicle.VIN,
		Make:       vehicle.Make,
		Model:      vehicle.Model,
		Year:       vehicle.Year,
		Odometer:   vehicle.Odometer,
		CreatedAt:  vehicle.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  vehicle.UpdatedAt.Format(time.RFC3339),
	}
}
