package outbox

import (
	"strings"
	"testing"
)

func TestDueQuerySelectsOnlyPendingRecords(t *testing.T) {
	query := strings.ToLower(listDueQuery)

	if !strings.Contains(query, "status = 'pending'") {
		t.Fatal("due listing must only consider pending records")
	}
	if !strings.Contains(query, "run_at <= now()") {
		t.Fatal("due listing must only consider records whose run time has passed")
	}
}

func TestFailedAttemptExhaustsBudget(t *testing.T) {
	query := strings.ToLower(markAttemptFailedQuery)

	if !strings.Contains(query, "attempts = attempts + 1") {
		t.Fatal("failed attempts must be counted")
	}
	if !strings.Contains(query, "when attempts + 1 >= $3 then 'failed'") {
		t.Fatal("records must fail permanently once the attempt budget is spent")
	}
}
