package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func strPtr(v string) *string { return &v }

func int64Ptr(v int64) *int64 { return &v }

func testRequest(status Status, techID *uuid.UUID) ServiceRequest {
	return ServiceRequest{
		ID:           uuid.New(),
		CustomerID:   uuid.New(),
		VehicleID:    uuid.New(),
		TechnicianID: techID,
		ServiceType:  "brake_service",
		Status:       status,
	}
}

func TestIntakeAllowsAnyActor(t *testing.T) {
	req := testRequest(StatusNew, nil)
	for _, role := range []Role{RoleCustomer, RoleSales, RoleOffice} {
		decision := EvaluateGuard(Actor{ID: uuid.New(), Role: role}, req, StatusWaiting, TransitionPayload{})
		if !decision.OK {
			t.Fatalf("intake transition should be allowed for %s: %s", role, decision.Reason)
		}
	}
}

func TestReadyToScheduleRequiresOfficeAndFields(t *testing.T) {
	req := testRequest(StatusWaiting, nil)

	decision := EvaluateGuard(Actor{Role: RoleCustomer}, req, StatusReadyToSchedule, TransitionPayload{})
	if decision.OK {
		t.Fatal("customer must not mark a request ready to schedule")
	}

	decision = EvaluateGuard(Actor{Role: RoleOffice}, req, StatusReadyToSchedule, TransitionPayload{})
	if !decision.OK {
		t.Fatalf("office should pass triage guard: %s", decision.Reason)
	}

	missingType := req
	missingType.ServiceType = ""
	decision = EvaluateGuard(Actor{Role: RoleOffice}, missingType, StatusReadyToSchedule, TransitionPayload{})
	if decision.OK {
		t.Fatal("missing service type must deny triage completion")
	}
}

func TestHoldStatesRequireReason(t *testing.T) {
	req := testRequest(StatusWaiting, nil)

	for _, to := range []Status{StatusWaitingForParts, StatusWaitingForApproval} {
		decision := EvaluateGuard(Actor{Role: RoleOffice}, req, to, TransitionPayload{})
		if decision.OK {
			t.Fatalf("hold transition to %s without a reason must be denied", to)
		}

		decision = EvaluateGuard(Actor{Role: RoleDispatch}, req, to, TransitionPayload{Reason: strPtr("parts on order")})
		if !decision.OK {
			t.Fatalf("dispatch with reason should pass hold guard for %s: %s", to, decision.Reason)
		}

		decision = EvaluateGuard(Actor{Role: RoleTech}, req, to, TransitionPayload{Reason: strPtr("parts on order")})
		if decision.OK {
			t.Fatal("technician must not place a request on hold")
		}
	}
}

func TestScheduleRequiresDispatchTechnicianAndTime(t *testing.T) {
	req := testRequest(StatusReadyToSchedule, nil)
	techID := uuid.New()
	when := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	decision := EvaluateGuard(Actor{Role: RoleOffice}, req, StatusScheduled, TransitionPayload{TechnicianID: &techID, ScheduledAt: &when})
	if decision.OK {
		t.Fatal("office must not schedule directly")
	}

	decision = EvaluateGuard(Actor{Role: RoleDispatch}, req, StatusScheduled, TransitionPayload{ScheduledAt: &when})
	if decision.OK {
		t.Fatal("scheduling without a technician must be denied")
	}

	decision = EvaluateGuard(Actor{Role: RoleDispatch}, req, StatusScheduled, TransitionPayload{TechnicianID: &techID})
	if decision.OK {
		t.Fatal("scheduling without a time must be denied")
	}

	decision = EvaluateGuard(Actor{Role: RoleDispatch}, req, StatusScheduled, TransitionPayload{TechnicianID: &techID, ScheduledAt: &when})
	if !decision.OK {
		t.Fatalf("dispatch with full payload should pass schedule guard: %s", decision.Reason)
	}
}

func TestStartRestrictedToAssignedTechnician(t *testing.T) {
	assigned := uuid.New()
	req := testRequest(StatusScheduled, &assigned)

	decision := EvaluateGuard(Actor{ID: uuid.New(), Role: RoleTech}, req, StatusInProgress, TransitionPayload{})
	if decision.OK {
		t.Fatal("a different technician must not start the request")
	}

	decision = EvaluateGuard(Actor{ID: assigned, Role: RoleTech}, req, StatusInProgress, TransitionPayload{})
	if !decision.OK {
		t.Fatalf("assigned technician should pass start guard: %s", decision.Reason)
	}

	decision = EvaluateGuard(Actor{ID: uuid.New(), Role: RoleAdmin}, req, StatusInProgress, TransitionPayload{})
	if !decision.OK {
		t.Fatalf("admin should pass start guard: %s", decision.Reason)
	}
}

func TestCompletionRequiresPayload(t *testing.T) {
	assigned := uuid.New()
	req := testRequest(StatusInProgress, &assigned)

	decision := EvaluateGuard(Actor{ID: assigned, Role: RoleTech}, req, StatusCompleted, TransitionPayload{})
	if decision.OK {
		t.Fatal("completion without notes or mileage must be denied")
	}

	decision = EvaluateGuard(Actor{ID: assigned, Role: RoleTech}, req, StatusCompleted, TransitionPayload{Mileage: int64Ptr(84211)})
	if !decision.OK {
		t.Fatalf("assigned technician with mileage should pass completion guard: %s", decision.Reason)
	}

	decision = EvaluateGuard(Actor{Role: RoleOffice}, req, StatusCompleted, TransitionPayload{Notes: strPtr("closed out on site")})
	if !decision.OK {
		t.Fatalf("office with notes should pass completion guard: %s", decision.Reason)
	}

	decision = EvaluateGuard(Actor{ID: uuid.New(), Role: RoleTech}, req, StatusCompleted, TransitionPayload{Notes: strPtr("done")})
	if decision.OK {
		t.Fatal("a different technician must not complete the request")
	}
}

func TestSendBackRequiresReasonAndRole(t *testing.T) {
	assigned := uuid.New()
	req := testRequest(StatusInProgress, &assigned)

	decision := EvaluateGuard(Actor{ID: assigned, Role: RoleTech}, req, StatusReadyToSchedule, TransitionPayload{})
	if decision.OK {
		t.Fatal("send-back without a reason must be denied")
	}

	decision = EvaluateGuard(Actor{ID: assigned, Role: RoleTech}, req, StatusReadyToSchedule, TransitionPayload{Reason: strPtr("wrong part")})
	if !decision.OK {
		t.Fatalf("assigned technician with reason should pass send-back guard: %s", decision.Reason)
	}

	decision = EvaluateGuard(Actor{Role: RoleDispatch}, req, StatusReadyToSchedule, TransitionPayload{Reason: strPtr("reassign")})
	if !decision.OK {
		t.Fatalf("dispatch should pass send-back guard: %s", decision.Reason)
	}

	decision = EvaluateGuard(Actor{Role: RoleCustomer}, req, StatusReadyToSchedule, TransitionPayload{Reason: strPtr("changed my mind")})
	if decision.OK {
		t.Fatal("customer must not send a request back")
	}
}

func TestCancelRestrictedToOfficeWithReason(t *testing.T) {
	req := testRequest(StatusWaiting, nil)

	decision := EvaluateGuard(Actor{Role: RoleDispatch}, req, StatusCanceled, TransitionPayload{Reason: strPtr("duplicate")})
	if decision.OK {
		t.Fatal("dispatch must not cancel a request")
	}

	decision = EvaluateGuard(Actor{Role: RoleOffice}, req, StatusCanceled, TransitionPayload{})
	if decision.OK {
		t.Fatal("cancel without a reason must be denied")
	}

	decision = EvaluateGuard(Actor{Role: RoleOffice}, req, StatusCanceled, TransitionPayload{Reason: strPtr("duplicate")})
	if !decision.OK {
		t.Fatalf("office with reason should pass cancel guard: %s", decision.Reason)
	}
}
