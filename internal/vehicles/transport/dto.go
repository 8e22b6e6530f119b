package transport

import "github.com/google/uuid"

// CreateVehicleRequest contains data for registering a vehicle.
type CreateVehicleRequest struct {
	CustomerID uuid.UUID `json:"customerId" validate:"required"`
	VIN        *string   `json:"vin,omitempty" validate:"omitempty,len=17"`
	Make       string    `json:"make" validate:"required,min=1,max=100"`
	Model      string    `json:"model" validate:"required,min=1,max=100"`
	Year       int       `json:"year" validate:"required,min=1900,max=2100"`
	Odometer   *int64    `json:"odometer,omitempty" validate:"omitempty,min=0"`
}

// VehicleResponse represents a vehicle in API responses.
type VehicleResponse struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customerId"`
	VIN        *string   `json:"vin,omitempty"`
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	Year       int       `json:"year"`
	Odometer   *int64    `json:"odometer,omitempty"`
	CreatedAt  string    `json:"createdAt"`
	UpdatedAt  string    `json:"updatedAt"`
}

// VehicleListResponse wraps a vehicle listing.
type VehicleListResponse struct {
	Items []VehicleResponse `json:"items"`
	Total int               `json:"total"`
}
