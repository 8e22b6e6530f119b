// Package repository provides PostgreSQL persistence for customer vehicles.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleetops_backend/platform/apperr"
)

// Vehicle is a stored customer vehicle.
type Vehicle struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	VIN        *string
	Make       string
	Model      string
	Year       int
	Odometer   *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateParams holds fields for a new vehicle.
type CreateParams struct {
	CustomerID uuid.UUID
	VIN        *string
	Make       string
	Model      string
	Year       int
	Odometer   *int64
}

const vehicleColumns = `id, customer_id, vin, make, model, year, odometer, created_at, updated_at`

const createVehicleQuery = `
	INSERT INTO vehicles (id, customer_id, vin, make, model, year, odometer)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING ` + vehicleColumns

const getVehicleQuery = `
	SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

const listVehiclesForCustomerQuery = `
	SELECT ` + vehicleColumns + `
	FROM vehicles
	WHERE customer_id = $1
	ORDER BY created_at ASC`

// Odometer readings only move forward; a lower reading is ignored.
const updateOdometerQuery = `
	UPDATE vehicles
	SET odometer = $2, updated_at = now()
	WHERE id = $1 AND (odometer IS NULL OR odometer < $2)`

// Repository defines vehicle persistence operations.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Vehicle, error)
	GetByID(ctx context.Context, id uuid.UUID) (Vehicle, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]Vehicle, error)
	UpdateOdometer(ctx context.Context, id uuid.UUID, odometer int64) error
}

// Repo implements Repository backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new vehicles repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func (r *Repo) Create(ctx context.Context, params CreateParams) (Vehicle, error) {
	row := r.pool.QueryRow(ctx, createVehicleQuery,
		uuid.New(), params.CustomerID, params.VIN, params.Make, params.Model,
		params.Year, params.Odometer)
	vehicle, err := scanVehicle(row)
	if err != nil {
		return Vehicle{}, apperr.Internal(fmt.Sprintf("create vehicle: %v", err))
	}
	return vehicle, nil
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Vehicle, error) {
	vehicle, err := scanVehicle(r.pool.QueryRow(ctx, getVehicleQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vehicle{}, apperr.NotFound("vehicle not found")
		}
		return Vehicle{}, apperr.Internal(fmt.Sprintf("get vehicle: %v", err))
	}
	return vehicle, nil
}

func (r *Repo) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]Vehicle, error) {
	rows, err := r.pool.Query(ctx, listVehiclesForCustomerQuery, customerID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list vehicles: %v", err))
	}
	defer rows.Close()

	vehicles := make([]Vehicle, 0)
	for rows.Next() {
		var vehicle Vehicle
		if err := rows.Scan(&vehicle.ID, &vehicle.CustomerID, &vehicle.VIN, &vehicle.Make,
			&vehicle.Model, &vehicle.Year, &vehicle.Odometer,
			&vehicle.CreatedAt, &vehicle.UpdatedAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan vehicle: %v", err))
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, rows.Err()
}

func (r *Repo) UpdateOdometer(ctx context.Context, id uuid.UUID, odometer int64) error {
	if _, err := r.pool.Exec(ctx, updateOdometerQuery, id, odometer); err != nil {
		return apperr.Internal(fmt.Sprintf("update odometer: %v", err))
	}
	return nil
}

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var vehicle Vehicle
	err := row.Scan(&vehicle.ID, &vehicle.CustomerID, &vehicle.VIN, &vehicle.Make,
		&vehicle.Model, &vehicle.Year, &vehicle.Odometer,
		&vehicle.CreatedAt, &vehicle.UpdatedAt)
	return vehicle, err
}
