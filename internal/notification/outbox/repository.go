// Package outbox stores pending email deliveries so a crash between the
// lifecycle write and the SMTP send cannot lose a notification.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleetops_backend/platform/apperr"
)

// Status is the delivery state of an outbox record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// maxAttempts is how many deliveries are tried before a record is failed.
const maxAttempts = 5

// Record is one queued email delivery.
type Record struct {
	ID        uuid.UUID
	Recipient string
	Template  string
	Payload   json.RawMessage
	RunAt     time.Time
	Status    Status
	Attempts  int
	LastError *string
}

// InsertParams holds fields for a new outbox record.
type InsertParams struct {
	Recipient string
	Template  string
	Payload   any
	RunAt     time.Time
}

const recordColumns = `id, recipient, template, payload, run_at, status, attempts, last_error`

const insertQuery = `
	INSERT INTO notification_outbox (id, recipient, template, payload, run_at, status)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id`

const getQuery = `
	SELECT ` + recordColumns + ` FROM notification_outbox WHERE id = $1`

const listDueQuery = `
	SELECT ` + recordColumns + `
	FROM notification_outbox
	WHERE status = 'pending' AND run_at <= now()
	ORDER BY run_at ASC
	LIMIT $1`

const markSucceededQuery = `
	UPDATE notification_outbox
	SET status = 'succeeded', attempts = attempts + 1, last_error = NULL
	WHERE id = $1`

const markAttemptFailedQuery = `
	UPDATE notification_outbox
	SET attempts = attempts + 1,
	    last_error = $2,
	    status = CASE WHEN attempts + 1 >= $3 THEN 'failed' ELSE 'pending' END
	WHERE id = $1`

// Repository persists outbox records.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new outbox repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert queues a delivery. RunAt defaults to now.
func (r *Repository) Insert(ctx context.Context, p InsertParams) (uuid.UUID, error) {
	if p.Recipient == "" {
		return uuid.Nil, apperr.Validation("recipient is required")
	}
	if p.Template == "" {
		return uuid.Nil, apperr.Validation("template is required")
	}
	if p.RunAt.IsZero() {
		p.RunAt = time.Now().UTC()
	}

	payloadBytes, err := json.Marshal(p.Payload)
	if err != nil {
		return uuid.Nil, apperr.Internal(fmt.Sprintf("marshal outbox payload: %v", err))
	}

	var id uuid.UUID
	err = r.pool.QueryRow(ctx, insertQuery,
		uuid.New(), p.Recipient, p.Template, payloadBytes, p.RunAt, StatusPending).Scan(&id)
	if err != nil {
		return uuid.Nil, apperr.Internal(fmt.Sprintf("insert outbox record: %v", err))
	}
	return id, nil
}

// Get loads one record.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	record, err := scanRecord(r.pool.QueryRow(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, apperr.NotFound("outbox record not found")
		}
		return Record{}, apperr.Internal(fmt.Sprintf("get outbox record: %v", err))
	}
	return record, nil
}

// ListDue returns pending records whose run time has passed.
func (r *Repository) ListDue(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, listDueQuery, limit)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list due outbox records: %v", err))
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan outbox record: %v", err))
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// MarkSucceeded records a successful delivery.
func (r *Repository) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, markSucceededQuery, id); err != nil {
		return apperr.Internal(fmt.Sprintf("mark outbox succeeded: %v", err))
	}
	return nil
}

// MarkAttemptFailed records a failed attempt; the record fails permanently
// once the attempt budget is spent.
func (r *Repository) MarkAttemptFailed(ctx context.Context, id uuid.UUID, deliveryErr error) error {
	message := deliveryErr.Error()
	if _, err := r.pool.Exec(ctx, markAttemptFailedQuery, id, message, maxAttempts); err != nil {
		return apperr.Internal(fmt.Sprintf("mark outbox attempt failed: %v", err))
	}
	return nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var record Record
	err := row.Scan(&record.ID, &record.Recipient, &record.Template, &record.Payload,
		&record.RunAt, &record.Status, &record.Attempts, &record.LastError)
	return record, err
}
