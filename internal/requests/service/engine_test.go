package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"fleetops_backend/internal/requests/domain"
	"fleetops_backend/internal/requests/repository"
	"fleetops_backend/internal/requests/transport"
	"fleetops_backend/platform/apperr"
	"fleetops_backend/platform/logger"
)

// fakeRepo is an in-memory Repository with the same compare-and-swap
// semantics as the PostgreSQL implementation. beforeUpdate, when set, runs
// once before the next conditioned write to simulate a concurrent actor
// interleaving between load and commit.
type fakeRepo struct {
	mu           sync.Mutex
	requests     map[uuid.UUID]domain.ServiceRequest
	audits       []domain.TransitionRecord
	beforeUpdate func(r *fakeRepo)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{requests: make(map[uuid.UUID]domain.ServiceRequest)}
}

var _ repository.Repository = (*fakeRepo)(nil)

func (r *fakeRepo) Create(_ context.Context, params repository.CreateParams) (domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	req := domain.ServiceRequest{
		ID:          uuid.New(),
		CustomerID:  params.CustomerID,
		VehicleID:   params.VehicleID,
		ServiceType: params.ServiceType,
		Description: params.Description,
		Status:      domain.StatusNew,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.requests[req.ID] = req
	return req, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return domain.ServiceRequest{}, apperr.NotFound("service request not found")
	}
	return req, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, params repository.UpdateStatusParams) (domain.ServiceRequest, error) {
	r.mu.Lock()
	if hook := r.beforeUpdate; hook != nil {
		r.beforeUpdate = nil
		r.mu.Unlock()
		hook(r)
		r.mu.Lock()
	}
	defer r.mu.Unlock()

	req, ok := r.requests[params.ID]
	if !ok {
		return domain.ServiceRequest{}, apperr.NotFound("service request not found")
	}
	if req.Version != params.ExpectedVersion {
		return domain.ServiceRequest{}, apperr.Conflict("service request was modified concurrently")
	}

	req.Status = params.ToStatus
	req.Version++
	if params.TouchTechnician {
		req.TechnicianID = params.TechnicianID
	}
	if params.ScheduledAt != nil {
		req.ScheduledAt = params.ScheduledAt
	}
	if params.StartedAt != nil {
		req.StartedAt = params.StartedAt
	}
	if params.WaitingForPartsAt != nil {
		req.WaitingForPartsAt = params.WaitingForPartsAt
	}
	if params.WaitingForApprovalAt != nil {
		req.WaitingForApprovalAt = params.WaitingForApprovalAt
	}
	if params.CompletedAt != nil {
		req.CompletedAt = params.CompletedAt
	}
	if params.CompletionNotes != nil {
		req.CompletionNotes = params.CompletionNotes
	}
	if params.Mileage != nil {
		req.Mileage = params.Mileage
	}
	req.UpdatedAt = time.Now().UTC()
	r.requests[params.ID] = req
	return req, nil
}

func (r *fakeRepo) List(_ context.Context, params repository.ListParams) ([]domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]domain.ServiceRequest, 0)
	for _, req := range r.requests {
		if len(params.Statuses) > 0 && !statusIn(params.Statuses, req.Status) {
			continue
		}
		if params.TechnicianID != nil && !req.AssignedTo(*params.TechnicianID) {
			continue
		}
		if params.CustomerID != nil && req.CustomerID != *params.CustomerID {
			continue
		}
		items = append(items, req)
	}
	return items, nil
}

func (r *fakeRepo) InsertTransition(_ context.Context, record domain.TransitionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.ID = uuid.New()
	record.CreatedAt = time.Now().UTC()
	r.audits = append(r.audits, record)
	return nil
}

func (r *fakeRepo) ListTransitions(_ context.Context, requestID uuid.UUID) ([]domain.TransitionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]domain.TransitionRecord, 0)
	for _, record := range r.audits {
		if record.RequestID == requestID {
			items = append(items, record)
		}
	}
	return items, nil
}

func (r *fakeRepo) auditCount(requestID uuid.UUID) int {
	records, _ := r.ListTransitions(context.Background(), requestID)
	return len(records)
}

func (r *fakeRepo) seed(req domain.ServiceRequest) domain.ServiceRequest {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Version == 0 {
		req.Version = 1
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	r.requests[req.ID] = req
	return req
}

func statusIn(statuses []domain.Status, status domain.Status) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// fakeConflictChecker reports a fixed overlap answer.
type fakeConflictChecker struct {
	overlap bool
}

func (c *fakeConflictChecker) HasOverlap(context.Context, uuid.UUID, time.Time, time.Time) (bool, error) {
	return c.overlap, nil
}

func newTestService(repo *fakeRepo, overlap bool) *Service {
	svc := New(repo, nil, logger.New("development"))
	svc.SetConflictChecker(&fakeConflictChecker{overlap: overlap})
	return svc
}

func dispatcher() domain.Actor {
	return domain.Actor{ID: uuid.New(), Role: domain.RoleDispatch}
}

func testCreateRequest() transport.CreateServiceRequestRequest {
	return transport.CreateServiceRequestRequest{
		VehicleID:   uuid.New(),
		ServiceType: "brake_service",
	}
}

func schedulePayload(techID uuid.UUID, at time.Time) domain.TransitionPayload {
	return domain.TransitionPayload{TechnicianID: &techID, ScheduledAt: &at}
}

func TestScheduleTransitionApplies(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, false)

	seeded := repo.seed(domain.ServiceRequest{
		CustomerID:  uuid.New(),
		VehicleID:   uuid.New(),
		ServiceType: "brake_service",
		Status:      domain.StatusReadyToSchedule,
		Version:     3,
	})

	techID := uuid.New()
	when := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	result, err := svc.ApplyTransition(context.Background(), seeded.ID, dispatcher(), domain.StatusScheduled, schedulePayload(techID, when))
	if err != nil {
		t.Fatalf("expected schedule transition to apply: %v", err)
	}

	if result.Status != string(domain.StatusScheduled) {
		t.Fatalf("expected status SCHEDULED, got %s", result.Status)
	}
	if result.TechnicianID == nil || *result.TechnicianID != techID {
		t.Fatal("expected technician to be assigned")
	}
	if result.Version != 4 {
		t.Fatalf("expected version 4, got %d", result.Version)
	}
	if result.ScheduledAt == nil {
		t.Fatal("expected scheduled_at to be stamped")
	}
	if got := repo.auditCount(seeded.ID); got != 1 {
		t.Fatalf("expected exactly one audit record, got %d", got)
	}
}

func TestConcurrentScheduleLoserGetsConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, false)

	seeded := repo.seed(domain.ServiceRequest{
		CustomerID:  uuid.New(),
		VehicleID:   uuid.New(),
		ServiceType: "brake_service",
		Status:      domain.StatusReadyToSchedule,
		Version:     3,
	})

	winnerTech := uuid.New()
	when := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	// The competing dispatcher commits between this caller's load and write.
	repo.beforeUpdate = func(r *fakeRepo) {
		r.mu.Lock()
		defer r.mu.Unlock()
		req := r.requests[seeded.ID]
		req.Status = domain.StatusScheduled
		req.TechnicianID = &winnerTech
		req.ScheduledAt = &when
		req.Version++
		r.requests[seeded.ID] = req
	}

	loserTech := uuid.New()
	_, err := svc.ApplyTransition(context.Background(), seeded.ID, dispatcher(), domain.StatusScheduled, schedulePayload(loserTech, when))
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected CONFLICT for the losing dispatcher, got %v", err)
	}

	final, _ := repo.GetByID(context.Background(), seeded.ID)
	if final.TechnicianID == nil || *final.TechnicianID != winnerTech {
		t.Fatal("the winning dispatcher's assignment must stand")
	}
	if final.Version != 4 {
		t.Fatalf("expected exactly one applied write (version 4), got %d", final.Version)
	}
	if got := repo.auditCount(seeded.ID); got != 1 {
		t.Fatalf("expected exactly one audit record for the rejected call, got %d", got)
	}
}

func TestVersionRaceRetriesWhenStillLegal(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, false)

	seeded := repo.seed(domain.ServiceRequest{
		CustomerID:  uuid.New(),
		VehicleID:   uuid.New(),
		ServiceType: "brake_service",
		Status:      domain.StatusReadyToSchedule,
		Version:     3,
	})

	// A concurrent write bumps the version without leaving READY_TO_SCHEDULE;
	// the engine must reload and apply on the second attempt.
	repo.beforeUpdate = func(r *fakeRepo) {
		r.mu.Lock()
		defer r.mu.Unlock()
		req := r.requests[seeded.ID]
		req.Version++
		r.requests[seeded.ID] = req
	}

	techID := uuid.New()
	when := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	result, err := svc.ApplyTransition(context.Background(), seeded.ID, dispatcher(), domain.StatusScheduled, schedulePayload(techID, when))
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if result.Version != 5 {
		t.Fatalf("expected version 5 after bump plus applied write, got %d", result.Version)
	}
	if got := repo.auditCount(seeded.ID); got != 1 {
		t.Fatalf("internal retries must not produce extra audit records, got %d", got)
	}
}

func TestDoubleBookedTechnicianIsDenied(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, true)

	seeded := repo.seed(domain.ServiceRequest{
		CustomerID:  uuid.New(),
		VehicleID:   uuid.New(),
		ServiceType: "brake_service",
		Status:      domain.StatusReadyToSchedule,
	})

	_, err := svc.ApplyTransition(context.Background(), seeded.ID, dispatcher(), domain.StatusScheduled,
		schedulePayload(uuid.New(), time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)))
	if !apperr.Is(err, apperr.KindUnprocessable) {
		t.Fatalf("expected guard denial for a double-booked technician, got %v", err)
	}

	records, _ := repo.ListTransitions(context.Background(), seeded.ID)
	if len(records) != 1 || records[0].Outcome != domain.OutcomeRejected {
		t.Fatal("denied schedule attempt must be audited as REJECTED")
	}
}

func TestUnassignedTechnicianCannotStart(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, false)

	assigned := uuid.New()
	seeded := repo.seed(domain.ServiceRequest{
		CustomerID:   uuid.New(),
		VehicleID:    uuid.New(),
		ServiceType:  "brake_service",
		Status:       domain.StatusScheduled,
		TechnicianID: &assigned,
	})

	otherTech := domain.Actor{ID: uuid.New(), Role: domain.RoleTech}
	_, err := svc.ApplyTransition(context.Background(), seeded.ID, otherTech, domain.StatusInProgress, domain.TransitionPayload{})
	if !apperr.Is(err, apperr.KindUnprocessable) {
		t.Fatalf("expected GUARD_DENIED for unassigned technician, got %v", err)
	}

	final, _ := repo.GetByID(context.Background(), seeded.ID)
	if final.Status != domain.StatusScheduled {
		t.Fatal("rejected transition must not change state")
	}
	if final.Version != 1 {
		t.Fatal("rejected transition must not bump the version")
	}
}

func TestTerminalRequestRejectsAllTransitions(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, false)

	seeded := repo.seed(domain.ServiceRequest{
		CustomerID:  uuid.New(),
		VehicleID:   uuid.New(),
		ServiceType: "brake_service",
		Status:      domain.StatusCompleted,
	})

	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	_, err := svc.ApplyTransition(context.Background(), seeded.ID, admin, domain.StatusInProgress, domain.TransitionPayload{})
	if !apperr.Is(err, apperr.KindUnprocessable) {
		t.Fatalf("expected ILLEGAL_TRANSITION from COMPLETED, got %v", err)
	}

	records, _ := repo.ListTransitions(context.Background(), seeded.ID)
	if len(records) != 1 {
		t.Fatalf("rejected attempt on a terminal request must still be audited, got %d records", len(records))
	}
	if records[0].Reason == nil || *records[0].Reason != domain.ReasonIllegalTransition {
		t.Fatal("audit record must carry the ILLEGAL_TRANSITION reason")
	}

	final, _ := repo.GetByID(context.Background(), seeded.ID)
	if final.Status != domain.StatusCompleted || final.Version != 1 {
		t.Fatal("terminal request must remain unchanged")
	}
}

func TestSendBackClearsTechnicianAndKeepsStartedAt(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, false)

	assigned := uuid.New()
	started := time.Date(2025, 3, 1, 10, 15, 0, 0, time.UTC)
	seeded := repo.seed(domain.ServiceRequest{
		CustomerID:   uuid.New(),
		VehicleID:    uuid.New(),
		ServiceType:  "brake_service",
		Status:       domain.StatusInProgress,
		TechnicianID: &assigned,
		StartedAt:    &started,
	})

	reason := "wrong part"
	tech := domain.Actor{ID: assigned, Role: domain.RoleTech}
	result, err := svc.ApplyTransition(context.Background(), seeded.ID, tech, domain.StatusReadyToSchedule, domain.TransitionPayload{Reason: &reason})
	if err != nil {
		t.Fatalf("expected send-back to apply: %v", err)
	}

	if result.Status != string(domain.StatusReadyToSchedule) {
		t.Fatalf("expected READY_TO_SCHEDULE, got %s", result.Status)
	}
	if result.TechnicianID != nil {
		t.Fatal("send-back must clear the technician assignment")
	}
	if result.StartedAt == nil {
		t.Fatal("send-back must not reset started_at")
	}

	records, _ := repo.ListTransitions(context.Background(), seeded.ID)
	if len(records) != 1 {
		t.Fatalf("expected one audit record, got %d", len(records))
	}
	if records[0].Outcome != domain.OutcomeApplied {
		t.Fatal("send-back audit record must be APPLIED")
	}
}

func TestCompletionStampsTimestampAndPayload(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, false)

	assigned := uuid.New()
	seeded := repo.seed(domain.ServiceRequest{
		CustomerID:   uuid.New(),
		VehicleID:    uuid.New(),
		ServiceType:  "brake_service",
		Status:       domain.StatusInProgress,
		TechnicianID: &assigned,
	})

	mileage := int64(84211)
	notes := "replaced pads and rotors"
	tech := domain.Actor{ID: assigned, Role: domain.RoleTech}
	result, err := svc.ApplyTransition(context.Background(), seeded.ID, tech, domain.StatusCompleted,
		domain.TransitionPayload{Notes: &notes, Mileage: &mileage})
	if err != nil {
		t.Fatalf("expected completion to apply: %v", err)
	}

	if result.CompletedAt == nil {
		t.Fatal("expected completed_at to be stamped")
	}
	if result.Mileage == nil || *result.Mileage != mileage {
		t.Fatal("expected mileage to be persisted")
	}
	if result.CompletionNotes == nil || *result.CompletionNotes != notes {
		t.Fatal("expected completion notes to be persisted")
	}
}

func TestUnknownRequestReturnsNotFoundWithoutAudit(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, false)

	_, err := svc.ApplyTransition(context.Background(), uuid.New(), dispatcher(), domain.StatusScheduled,
		schedulePayload(uuid.New(), time.Now()))
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NOT_FOUND for unknown request, got %v", err)
	}
	if len(repo.audits) != 0 {
		t.Fatal("unknown ids produce no audit records")
	}
}

func TestCreateRunsIntakeTransition(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, false)

	customer := domain.Actor{ID: uuid.New(), Role: domain.RoleCustomer}
	result, err := svc.Create(context.Background(), customer, customer.ID, testCreateRequest())
	if err != nil {
		t.Fatalf("expected create to succeed: %v", err)
	}

	if result.Status != string(domain.StatusWaiting) {
		t.Fatalf("expected new request to land in WAITING, got %s", result.Status)
	}
	if result.Version != 2 {
		t.Fatalf("expected version 2 after intake transition, got %d", result.Version)
	}

	records, _ := repo.ListTransitions(context.Background(), result.ID)
	if len(records) != 1 {
		t.Fatalf("expected one audit record for intake, got %d", len(records))
	}
	if records[0].FromStatus != domain.StatusNew || records[0].ToStatus != domain.StatusWaiting {
		t.Fatal("intake audit record must be NEW -> WAITING")
	}
}
