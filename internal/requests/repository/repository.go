package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleetops_backend/internal/requests/domain"
	"fleetops_backend/platform/apperr"
)

const requestNotFoundMessage = "service request not found"

const requestColumns = `id, customer_id, vehicle_id, technician_id, service_type, description, status, version,
		scheduled_at, started_at, waiting_for_parts_at, waiting_for_approval_at, completed_at,
		completion_notes, mileage, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new service requests repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// createRequestQuery binds the id explicitly; the table declares no DEFAULT
// for it.
const createRequestQuery = `
	INSERT INTO service_requests (id, customer_id, vehicle_id, service_type, description, status, version)
	VALUES ($1, $2, $3, $4, $5, $6, 1)
	RETURNING ` + requestColumns

// Create inserts a new service request in status NEW with version 1.
func (r *Repo) Create(ctx context.Context, params CreateParams) (domain.ServiceRequest, error) {
	row := r.pool.QueryRow(ctx, createRequestQuery,
		uuid.New(), params.CustomerID, params.VehicleID, params.ServiceType, params.Description, domain.StatusNew,
	)

	req, err := scanRequest(row)
	if err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("create service request: %w", err)
	}
	return req, nil
}

// GetByID retrieves a service request by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE id = $1`

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ServiceRequest{}, apperr.NotFound(requestNotFoundMessage)
		}
		return domain.ServiceRequest{}, fmt.Errorf("get service request by id: %w", err)
	}
	return req, nil
}

// updateStatusQuery is the single conditioned write for lifecycle state.
// The WHERE clause on (id, version) is the optimistic-concurrency guard:
// a stale caller matches zero rows and loses the race.
const updateStatusQuery = `
	UPDATE service_requests
	SET status = $3,
		version = version + 1,
		technician_id = CASE WHEN $4 THEN $5 ELSE technician_id END,
		scheduled_at = COALESCE($6, scheduled_at),
		started_at = COALESCE($7, started_at),
		waiting_for_parts_at = COALESCE($8, waiting_for_parts_at),
		waiting_for_approval_at = COALESCE($9, waiting_for_approval_at),
		completed_at = COALESCE($10, completed_at),
		completion_notes = COALESCE($11, completion_notes),
		mileage = COALESCE($12, mileage),
		updated_at = now()
	WHERE id = $1 AND version = $2
	RETURNING ` + requestColumns

// UpdateStatus performs the compare-and-swap status write.
func (r *Repo) UpdateStatus(ctx context.Context, params UpdateStatusParams) (domain.ServiceRequest, error) {
	row := r.pool.QueryRow(ctx, updateStatusQuery,
		params.ID,
		params.ExpectedVersion,
		params.ToStatus,
		params.TouchTechnician,
		params.TechnicianID,
		params.ScheduledAt,
		params.StartedAt,
		params.WaitingForPartsAt,
		params.WaitingForApprovalAt,
		params.CompletedAt,
		params.CompletionNotes,
		params.Mileage,
	)

	req, err := scanRequest(row)
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.ServiceRequest{}, fmt.Errorf("update service request status: %w", err)
	}

	// Zero rows matched: distinguish an unknown id from a lost version race.
	var exists bool
	existsQuery := `SELECT EXISTS(SELECT 1 FROM service_requests WHERE id = $1)`
	if err := r.pool.QueryRow(ctx, existsQuery, params.ID).Scan(&exists); err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("check service request exists: %w", err)
	}
	if !exists {
		return domain.ServiceRequest{}, apperr.NotFound(requestNotFoundMessage)
	}
	return domain.ServiceRequest{}, apperr.Conflict("service request was modified concurrently")
}

// List retrieves service requests matching the given queue filters, oldest first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]domain.ServiceRequest, error) {
	limit := params.Limit
	if limit < 1 || limit > 200 {
		limit = 50
	}

	statuses := make([]string, 0, len(params.Statuses))
	for _, status := range params.Statuses {
		statuses = append(statuses, string(status))
	}

	query := `
		SELECT ` + requestColumns + `
		FROM service_requests
		WHERE ($1::text[] IS NULL OR status = ANY($1))
			AND ($2::uuid IS NULL OR technician_id = $2)
			AND ($3::uuid IS NULL OR customer_id = $3)
		ORDER BY created_at ASC
		LIMIT $4 OFFSET $5`

	var statusParam interface{}
	if len(statuses) > 0 {
		statusParam = statuses
	}

	rows, err := r.pool.Query(ctx, query, statusParam, params.TechnicianID, params.CustomerID, limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list service requests: %w", err)
	}
	defer rows.Close()

	items := make([]domain.ServiceRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service request: %w", err)
		}
		items = append(items, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service requests: %w", err)
	}

	return items, nil
}

func scanRequest(row pgx.Row) (domain.ServiceRequest, error) {
	var req domain.ServiceRequest
	err := row.Scan(
		&req.ID,
		&req.CustomerID,
		&req.VehicleID,
		&req.TechnicianID,
		&req.ServiceType,
		&req.Description,
		&req.Status,
		&req.Version,
		&req.ScheduledAt,
		&req.StartedAt,
		&req.WaitingForPartsAt,
		&req.WaitingForApprovalAt,
		&req.CompletedAt,
		&req.CompletionNotes,
		&req.Mileage,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	return req, err
}
