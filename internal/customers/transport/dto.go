package transport

import "github.com/google/uuid"

// CreateCustomerRequest contains data for registering a customer profile.
type CreateCustomerRequest struct {
	// UserID links the profile to an existing account; omitted for walk-ins.
	UserID *uuid.UUID `json:"userId,omitempty"`
	Name   string     `json:"name" validate:"required,min=1,max=200"`
	Email  string     `json:"email" validate:"required,email"`
	Phone  string     `json:"phone" validate:"required"`
	Notes  *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateCustomerRequest contains updatable profile fields.
type UpdateCustomerRequest struct {
	Name  string  `json:"name" validate:"required,min=1,max=200"`
	Email string  `json:"email" validate:"required,email"`
	Phone string  `json:"phone" validate:"required"`
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// CustomerResponse represents a customer in API responses.
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

// CustomerListResponse wraps a customer listing.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Total int                `json:"total"`
}
