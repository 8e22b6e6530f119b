// Package inapp stores in-app notifications shown in the portal.
package inapp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleetops_backend/platform/apperr"
)

// Notification is one in-app notification row.
type Notification struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	ResourceID *uuid.UUID `json:"resourceId,omitempty"`
	Category   string     `json:"category"`
	IsRead     bool       `json:"isRead"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// CreateParams holds fields for a new notification.
type CreateParams struct {
	UserID     uuid.UUID
	Title      string
	Content    string
	ResourceID *uuid.UUID
	Category   string
}

const notificationColumns = `id, user_id, title, content, resource_id, category, is_read, created_at`

const createQuery = `
	INSERT INTO notifications (id, user_id, title, content, resource_id, category)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + notificationColumns

const listQuery = `
	SELECT ` + notificationColumns + `
	FROM notifications
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3`

const countUnreadQuery = `
	SELECT count(*) FROM notifications WHERE user_id = $1 AND is_read = false`

const markReadQuery = `
	UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`

const markAllReadQuery = `
	UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`

// Repository persists in-app notifications.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new in-app notification repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (Notification, error) {
	if p.UserID == uuid.Nil {
		return Notification{}, apperr.Validation("userId is required")
	}

	row := r.pool.QueryRow(ctx, createQuery,
		uuid.New(), p.UserID, p.Title, p.Content, p.ResourceID, p.Category)

	var n Notification
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.ResourceID,
		&n.Category, &n.IsRead, &n.CreatedAt); err != nil {
		return Notification{}, apperr.Internal(fmt.Sprintf("create notification: %v", err))
	}
	return n, nil
}

func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, listQuery, userID, limit, offset)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list notifications: %v", err))
	}
	defer rows.Close()

	items := make([]Notification, 0)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.ResourceID,
			&n.Category, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan notification: %v", err))
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (r *Repository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, countUnreadQuery, userID).Scan(&count); err != nil {
		return 0, apperr.Internal(fmt.Sprintf("count unread notifications: %v", err))
	}
	return count, nil
}

func (r *Repository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, markReadQuery, id, userID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark notification read: %v", err))
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, markAllReadQuery, userID); err != nil {
		return apperr.Internal(fmt.Sprintf("mark all notifications read: %v", err))
	}
	return nil
}
