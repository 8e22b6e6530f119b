// Package repository provides PostgreSQL persistence for schedule blocks.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleetops_backend/internal/schedule/domain"
	"fleetops_backend/platform/apperr"
)

const blockColumns = `id, request_id, technician_id, starts_at, ends_at, created_at`

const insertBlockQuery = `
	INSERT INTO schedule_blocks (id, request_id, technician_id, starts_at, ends_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + blockColumns

const releaseBlocksQuery = `
	DELETE FROM schedule_blocks WHERE request_id = $1`

// Two windows overlap when each starts before the other ends.
const hasOverlapQuery = `
	SELECT EXISTS (
		SELECT 1 FROM schedule_blocks
		WHERE technician_id = $1 AND starts_at < $3 AND ends_at > $2
	)`

const listBlocksQuery = `
	SELECT ` + blockColumns + `
	FROM schedule_blocks
	WHERE technician_id = $1 AND starts_at < $3 AND ends_at > $2
	ORDER BY starts_at ASC`

// Repository defines schedule block persistence operations.
type Repository interface {
	CreateBlock(ctx context.Context, block domain.Block) (domain.Block, error)
	ReleaseBlocksForRequest(ctx context.Context, requestID uuid.UUID) error
	HasOverlap(ctx context.Context, technicianID uuid.UUID, from, to time.Time) (bool, error)
	ListForTechnician(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]domain.Block, error)
}

// Repo implements Repository backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new schedule repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// CreateBlock reserves the technician for the visit window.
func (r *Repo) CreateBlock(ctx context.Context, block domain.Block) (domain.Block, error) {
	if block.ID == uuid.Nil {
		block.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, insertBlockQuery,
		block.ID, block.RequestID, block.TechnicianID, block.StartsAt, block.EndsAt)

	var created domain.Block
	if err := row.Scan(&created.ID, &created.RequestID, &created.TechnicianID,
		&created.StartsAt, &created.EndsAt, &created.CreatedAt); err != nil {
		return domain.Block{}, apperr.Internal(fmt.Sprintf("create schedule block: %v", err))
	}
	return created, nil
}

// ReleaseBlocksForRequest frees all reservations held by a request.
func (r *Repo) ReleaseBlocksForRequest(ctx context.Context, requestID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, releaseBlocksQuery, requestID); err != nil {
		return apperr.Internal(fmt.Sprintf("release schedule blocks: %v", err))
	}
	return nil
}

// HasOverlap reports whether the technician already holds a block crossing
// the given window.
func (r *Repo) HasOverlap(ctx context.Context, technicianID uuid.UUID, from, to time.Time) (bool, error) {
	var overlap bool
	if err := r.pool.QueryRow(ctx, hasOverlapQuery, technicianID, from, to).Scan(&overlap); err != nil {
		return false, apperr.Internal(fmt.Sprintf("check schedule overlap: %v", err))
	}
	return overlap, nil
}

// ListForTechnician returns the technician's blocks crossing the window,
// earliest first.
func (r *Repo) ListForTechnician(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]domain.Block, error) {
	rows, err := r.pool.Query(ctx, listBlocksQuery, technicianID, from, to)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list schedule blocks: %v", err))
	}
	defer rows.Close()

	blocks := make([]domain.Block, 0)
	for rows.Next() {
		var block domain.Block
		if err := rows.Scan(&block.ID, &block.RequestID, &block.TechnicianID,
			&block.StartsAt, &block.EndsAt, &block.CreatedAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan schedule block: %v", err))
		}
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}
