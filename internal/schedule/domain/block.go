// Package domain holds the schedule module's core types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Block reserves a technician for one service visit. Blocks are created when
// dispatch schedules a request and released on send-back or cancellation.
type Block struct {
	ID           uuid.UUID
	RequestID    uuid.UUID
	TechnicianID uuid.UUID
	StartsAt     time.Time
	EndsAt       time.Time
	CreatedAt    time.Time
}
