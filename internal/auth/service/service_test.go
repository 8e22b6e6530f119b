package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"fleetops_backend/internal/auth/repository"
	"fleetops_backend/internal/events"
	"fleetops_backend/platform/apperr"
	"fleetops_backend/platform/logger"
)

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[uuid.UUID]repository.User
	byEmail  map[string]uuid.UUID
	sessions map[string]session
}

type session struct {
	userID    uuid.UUID
	expiresAt time.Time
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[uuid.UUID]repository.User),
		byEmail:  make(map[string]uuid.UUID),
		sessions: make(map[string]session),
	}
}

var _ repository.Repository = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) CreateUser(_ context.Context, email, passwordHash string, roles []string) (repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return repository.User{}, apperr.Conflict("email already registered")
	}

	user := repository.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        roles,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.users[user.ID] = user
	r.byEmail[email] = user.ID
	return user, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return repository.User{}, apperr.NotFound("user not found")
	}
	return r.users[id], nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.User{}, apperr.NotFound("user not found")
	}
	return user, nil
}

func (r *fakeUserRepo) SetUserRoles(_ context.Context, id uuid.UUID, roles []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	user.Roles = roles
	r.users[id] = user
	return nil
}

func (r *fakeUserRepo) CreateRefreshToken(_ context.Context, tokenHash string, userID uuid.UUID, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[tokenHash] = session{userID: userID, expiresAt: expiresAt}
	return nil
}

func (r *fakeUserRepo) GetRefreshToken(_ context.Context, tokenHash string) (uuid.UUID, time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[tokenHash]
	if !ok {
		return uuid.Nil, time.Time{}, apperr.Unauthorized("invalid refresh token")
	}
	return s.userID, s.expiresAt, nil
}

func (r *fakeUserRepo) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, tokenHash)
	return nil
}

func (r *fakeUserRepo) RevokeAllRefreshTokens(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, s := range r.sessions {
		if s.userID == userID {
			delete(r.sessions, hash)
		}
	}
	return nil
}

func (r *fakeUserRepo) sessionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type testAuthConfig struct{}

func (testAuthConfig) GetJWTAccessSecret() string        { return "test-access-secret" }
func (testAuthConfig) GetJWTRefreshSecret() string       { return "test-refresh-secret" }
func (testAuthConfig) GetAccessTokenTTL() time.Duration  { return 15 * time.Minute }
func (testAuthConfig) GetRefreshTokenTTL() time.Duration { return 24 * time.Hour }

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(_ context.Context, event events.Event) error {
	b.Publish(context.Background(), event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func newTestAuthService(repo *fakeUserRepo, bus events.Bus) *Service {
	return New(repo, testAuthConfig{}, bus, logger.New("development"))
}

func TestSignUpAssignsCustomerRoleAndPublishes(t *testing.T) {
	repo := newFakeUserRepo()
	bus := &recordingBus{}
	svc := newTestAuthService(repo, bus)

	if err := svc.SignUp(context.Background(), "jo@example.com", "correct-horse"); err != nil {
		t.Fatalf("expected sign-up to succeed: %v", err)
	}

	user, err := repo.GetUserByEmail(context.Background(), "jo@example.com")
	if err != nil {
		t.Fatalf("expected user to be stored: %v", err)
	}
	if len(user.Roles) != 1 || user.Roles[0] != "CUSTOMER" {
		t.Fatalf("new accounts must start as CUSTOMER, got %v", user.Roles)
	}
	if user.PasswordHash == "correct-horse" {
		t.Fatal("password must be stored hashed")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()
	if len(bus.events) != 1 {
		t.Fatalf("expected one signed-up event, got %d", len(bus.events))
	}
	if _, ok := bus.events[0].(events.UserSignedUp); !ok {
		t.Fatalf("expected UserSignedUp event, got %T", bus.events[0])
	}
}

func TestSignInRejectsWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo, &recordingBus{})

	if err := svc.SignUp(context.Background(), "jo@example.com", "correct-horse"); err != nil {
		t.Fatalf("sign-up failed: %v", err)
	}

	if _, err := svc.SignIn(context.Background(), "jo@example.com", "wrong"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for wrong password, got %v", err)
	}
	if _, err := svc.SignIn(context.Background(), "nobody@example.com", "whatever"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo, &recordingBus{})

	if err := svc.SignUp(context.Background(), "jo@example.com", "correct-horse"); err != nil {
		t.Fatalf("sign-up failed: %v", err)
	}

	signedIn, err := svc.SignIn(context.Background(), "jo@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), signedIn.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.RefreshToken == signedIn.RefreshToken {
		t.Fatal("refresh must rotate the refresh token")
	}

	// The old token was revoked on rotation.
	if _, err := svc.Refresh(context.Background(), signedIn.RefreshToken); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for a rotated-out token, got %v", err)
	}
}

func TestSetUserRolesRevokesSessions(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo, &recordingBus{})

	if err := svc.SignUp(context.Background(), "jo@example.com", "correct-horse"); err != nil {
		t.Fatalf("sign-up failed: %v", err)
	}
	if _, err := svc.SignIn(context.Background(), "jo@example.com", "correct-horse"); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	if repo.sessionCount() != 1 {
		t.Fatalf("expected one active session, got %d", repo.sessionCount())
	}

	user, _ := repo.GetUserByEmail(context.Background(), "jo@example.com")
	if err := svc.SetUserRoles(context.Background(), user.ID, []string{"TECH"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}

	if repo.sessionCount() != 0 {
		t.Fatal("role changes must revoke existing sessions")
	}
}
