// Package repository provides PostgreSQL persistence for users and sessions.
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

// User is a stored account.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const userColumns = `id, email, password_hash, roles, created_at, updated_at`

const createUserQuery = `
	INSERT INTO users (id, email, password_hash, roles)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + userColumns

const getUserByEmailQuery = `
	SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

const getUserByIDQuery = `
	SELECT ` + userColumns + ` FROM users WHERE id = $1`

const setUserRolesQuery = `
	UPDATE users SET roles = $2, updated_at = now() WHERE id = $1`

const createRefreshTokenQuery = `
	INSERT INTO refresh_tokens (token_hash, user_id, expires_at)
	VALUES ($1, $2, $3)`

const getRefreshTokenQuery = `
	SELECT user_id, expires_at FROM refresh_tokens WHERE token_hash = $1`

const revokeRefreshTokenQuery = `
	DELETE FROM refresh_tokens WHERE token_hash = $1`

const revokeAllRefreshTokensQuery = `
	DELETE FROM refresh_tokens WHERE user_id = $1`

// Repository defines user persistence operations.
type Repository interface {
	CreateUser(ctx context.Context, email, passwordHash string, roles []string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	SetUserRoles(ctx context.Context, id uuid.UUID, roles []string) error
	CreateRefreshToken(ctx context.Context, tokenHash string, userID uuid.UUID, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

// Repo implements Repository backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new auth repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func (r *Repo) CreateUser(ctx context.Context, email, passwordHash string, roles []string) (User, error) {
	row := r.pool.QueryRow(ctx, createUserQuery, uuid.New(), email, passwordHash, roles)
	user, err := scanUser(row)
	if err != nil {
		// Unique violation on email surfaces as a conflict for the caller.
		return User{}, apperr.Conflict("email already registered").WithOp("auth.CreateUser")
	}
	return user, nil
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, getUserByEmailQuery, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound("user not found")
		}
		return User{}, apperr.Internal(fmt.Sprintf("get user by email: %v", err))
	}
	return user, nil
}

func (r *Repo) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, getUserByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound("user not found")
		}
		return User{}, apperr.Internal(fmt.Sprintf("get user by id: %v", err))
	}
	return user, nil
}

func (r *Repo) SetUserRoles(ctx context.Context, id uuid.UUID, roles []string) error {
	tag, err := r.pool.Exec(ctx, setUserRolesQuery, id, roles)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("set user roles: %v", err))
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *Repo) CreateRefreshToken(ctx context.Context, tokenHash string, userID uuid.UUID, expiresAt time.Time) error {
	if _, err := r.pool.Exec(ctx, createRefreshTokenQuery, tokenHash, userID, expiresAt); err != nil {
		return apperr.Internal(fmt.Sprintf("create refresh token: %v", err))
	}
	return nil
}

func (r *Repo) GetRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error) {
	var userID uuid.UUID
	var expiresAt time.Time
	if err := r.pool.QueryRow(ctx, getRefreshTokenQuery, tokenHash).Scan(&userID, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, time.Time{}, apperr.Unauthorized("invalid refresh token")
		}
		return uuid.Nil, time.Time{}, apperr.Internal(fmt.Sprintf("get refresh token: %v", err))
	}
	return userID, expiresAt, nil
}

func (r *Repo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	if _, err := r.pool.Exec(ctx, revokeRefreshTokenQuery, tokenHash); err != nil {
		return apperr.Internal(fmt.Sprintf("revoke refresh token: %v", err))
	}
	return nil
}

func (r *Repo) RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, revokeAllRefreshTokensQuery, userID); err != nil {
		return apperr.Internal(fmt.Sprintf("revoke all refresh tokens: %v", err))
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Roles,
		&user.CreatedAt, &user.UpdatedAt)
	return user, err
}
