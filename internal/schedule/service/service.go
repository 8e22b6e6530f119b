// Package service maintains technician schedule blocks.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fleetops_backend/internal/schedule/domain"
	"fleetops_backend/internal/schedule/repository"
	"fleetops_backend/internal/schedule/transport"
	"fleetops_backend/platform/logger"
)

// Service provides schedule block management. Blocks track the lifecycle of
// scheduled visits: reserved on scheduling, released on send-back or
// cancellation.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new schedule service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// HasOverlap reports whether the technician is already booked in the window.
func (s *Service) HasOverlap(ctx context.Context, technicianID uuid.UUID, from, to time.Time) (bool, error) {
	return s.repo.HasOverlap(ctx, technicianID, from, to)
}

// Reserve creates a block for a scheduled visit.
func (s *Service) Reserve(ctx context.Context, requestID, technicianID uuid.UUID, startsAt, endsAt time.Time) error {
	_, err := s.repo.CreateBlock(ctx, domain.Block{
		RequestID:    requestID,
		TechnicianID: technicianID,
		StartsAt:     startsAt,
		EndsAt:       endsAt,
	})
	return err
}

// Release frees every block held by a request.
func (s *Service) Release(ctx context.Context, requestID uuid.UUID) error {
	return s.repo.ReleaseBlocksForRequest(ctx, requestID)
}

// ListForTechnician returns the technician's blocks crossing the window.
func (s *Service) ListForTechnician(ctx context.Context, technicianID uuid.UUID, from, to time.Time) (transport.BlockListResponse, error) {
	blocks, err := s.repo.ListForTechnician(ctx, technicianID, from, to)
	if err != nil {
		return transport.BlockListResponse{}, err
	}

	items := make([]transport.BlockResponse, 0, len(blocks))
	for _, block := range blocks {
		items = append(items, transport.BlockResponse{
			ID:           block.ID,
			RequestID:    block.RequestID,
			TechnicianID: block.TechnicianID,
			StartsAt:     block.StartsAt,
			EndsAt:       block.EndsAt,
		})
	}

	return transport.BlockListResponse{Items: items, Total: len(items)}, nil
}
