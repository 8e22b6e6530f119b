package domain

import "testing"

func TestLegalNextStatesIsStable(t *testing.T) {
	first := LegalNextStates(StatusWaiting)
	first[0] = StatusCanceled

	second := LegalNextStates(StatusWaiting)
	if second[0] != StatusReadyToSchedule {
		t.Fatal("mutating a returned slice must not change the transition table")
	}
}

func TestTerminalStatesHaveNoOutboundEdges(t *testing.T) {
	for _, status := range []Status{StatusCompleted, StatusCanceled} {
		if edges := LegalNextStates(status); len(edges) != 0 {
			t.Fatalf("expected no outbound edges from %s, got %v", status, edges)
		}
		if !status.IsTerminal() {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
}

func TestSelfTransitionIsNeverLegal(t *testing.T) {
	for status := range knownStatuses {
		if CanTransition(status, status) {
			t.Fatalf("self transition must not be legal for %s", status)
		}
	}
}

func TestSendBackEdges(t *testing.T) {
	if !CanTransition(StatusScheduled, StatusReadyToSchedule) {
		t.Fatal("SCHEDULED -> READY_TO_SCHEDULE send-back must be legal")
	}
	if !CanTransition(StatusInProgress, StatusReadyToSchedule) {
		t.Fatal("IN_PROGRESS -> READY_TO_SCHEDULE send-back must be legal")
	}
	if !IsSendBack(StatusInProgress, StatusReadyToSchedule) {
		t.Fatal("expected IN_PROGRESS -> READY_TO_SCHEDULE to be a send-back")
	}
	if IsSendBack(StatusWaiting, StatusReadyToSchedule) {
		t.Fatal("WAITING -> READY_TO_SCHEDULE is triage, not send-back")
	}
}

func TestInProgressCannotBeCanceled(t *testing.T) {
	if CanTransition(StatusInProgress, StatusCanceled) {
		t.Fatal("IN_PROGRESS has no cancel edge; work must be completed or sent back")
	}
}

func TestParseStatusNormalizesAndRejects(t *testing.T) {
	status, ok := ParseStatus(" scheduled ")
	if !ok || status != StatusScheduled {
		t.Fatalf("expected SCHEDULED, got %q ok=%v", status, ok)
	}

	if _, ok := ParseStatus("WAITING_TO_BE_SCHEDULED"); ok {
		t.Fatal("legacy status vocabulary must be rejected at the boundary")
	}
	if _, ok := ParseStatus(""); ok {
		t.Fatal("empty status must be rejected")
	}
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("dispatch")
	if !ok || role != RoleDispatch {
		t.Fatalf("expected DISPATCH, got %q ok=%v", role, ok)
	}
	if _, ok := ParseRole("SUPERUSER"); ok {
		t.Fatal("unknown roles must be rejected")
	}
}
