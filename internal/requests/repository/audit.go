package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fleetops_backend/internal/requests/domain"
)

// The transition log is append-only: this file exposes insert and ordered
// read, nothing else. No update or delete statement may ever target
// request_transitions.

const insertTransitionQuery = `
	INSERT INTO request_transitions (id, request_id, actor_id, actor_role, from_status, to_status, outcome, reason)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// InsertTransition appends one audit record for a transition attempt.
func (r *Repo) InsertTransition(ctx context.Context, record domain.TransitionRecord) error {
	_, err := r.pool.Exec(ctx, insertTransitionQuery,
		uuid.New(),
		record.RequestID,
		record.ActorID,
		record.ActorRole,
		record.FromStatus,
		record.ToStatus,
		record.Outcome,
		record.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert transition record: %w", err)
	}
	return nil
}

const listTransitionsQuery = `
	SELECT id, request_id, actor_id, actor_role, from_status, to_status, outcome, reason, created_at
	FROM request_transitions
	WHERE request_id = $1
	ORDER BY created_at ASC, id ASC`

// ListTransitions returns the audit timeline for a request, oldest first.
func (r *Repo) ListTransitions(ctx context.Context, requestID uuid.UUID) ([]domain.TransitionRecord, error) {
	rows, err := r.pool.Query(ctx, listTransitionsQuery, requestID)
	if err != nil {
		return nil, fmt.Errorf("list transition records: %w", err)
	}
	defer rows.Close()

	items := make([]domain.TransitionRecord, 0)
	for rows.Next() {
		var record domain.TransitionRecord
		if err := rows.Scan(
			&record.ID,
			&record.RequestID,
			&record.ActorID,
			&record.ActorRole,
			&record.FromStatus,
			&record.ToStatus,
			&record.Outcome,
			&record.Reason,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transition record: %w", err)
		}
		items = append(items, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transition records: %w", err)
	}

	return items, nil
}
