// Package repository provides PostgreSQL persistence for customer profiles.
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

// Customer is a stored customer profile.
type Customer struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateParams holds fields for a new customer.
type CreateParams struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone string
	Notes *string
}

// UpdateParams holds updatable customer fields.
type UpdateParams struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone string
	Notes *string
}

const customerColumns = `id, name, email, phone, notes, created_at, updated_at`

const createCustomerQuery = `
	INSERT INTO customers (id, name, email, phone, notes)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + customerColumns

const getCustomerQuery = `
	SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

const updateCustomerQuery = `
	UPDATE customers
	SET name = $2, email = $3, phone = $4, notes = $5, updated_at = now()
	WHERE id = $1
	RETURNING ` + customerColumns

const listCustomersQuery = `
	SELECT ` + customerColumns + `
	FROM customers
	ORDER BY name ASC
	LIMIT $1 OFFSET $2`

// Repository defines customer persistence operations.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (Customer, error)
	Update(ctx context.Context, params UpdateParams) (Customer, error)
	List(ctx context.Context, limit, offset int) ([]Customer, error)
}

// Repo implements Repository backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new customers repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func (r *Repo) Create(ctx context.Context, params CreateParams) (Customer, error) {
	if params.ID == uuid.Nil {
		params.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, createCustomerQuery,
		params.ID, params.Name, params.Email, params.Phone, params.Notes)
	customer, err := scanCustomer(row)
	if err != nil {
		return Customer{}, apperr.Internal(fmt.Sprintf("create customer: %v", err))
	}
	return customer, nil
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Customer, error) {
	customer, err := scanCustomer(r.pool.QueryRow(ctx, getCustomerQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, apperr.NotFound("customer not found")
		}
		return Customer{}, apperr.Internal(fmt.Sprintf("get customer: %v", err))
	}
	return customer, nil
}

func (r *Repo) Update(ctx context.Context, params UpdateParams) (Customer, error) {
	row := r.pool.QueryRow(ctx, updateCustomerQuery,
		params.ID, params.Name, params.Email, params.Phone, params.Notes)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, apperr.NotFound("customer not found")
		}
		return Customer{}, apperr.Internal(fmt.Sprintf("update customer: %v", err))
	}
	return customer, nil
}

func (r *Repo) List(ctx context.Context, limit, offset int) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, listCustomersQuery, limit, offset)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list customers: %v", err))
	}
	defer rows.Close()

	customers := make([]Customer, 0)
	for rows.Next() {
		var customer Customer
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone,
			&customer.Notes, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan customer: %v", err))
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var customer Customer
	err := row.Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone,
		&customer.Notes, &customer.CreatedAt, &customer.UpdatedAt)
	return customer, err
}
