package repository

import (
	"strings"
	"testing"
)

// The id columns carry no DEFAULT in the schema, so every insert must bind
// them explicitly or fail with a not-null violation.
func TestInsertQueriesBindTheIDColumn(t *testing.T) {
	if !strings.Contains(strings.ToLower(createRequestQuery), "service_requests (id,") {
		t.Fatal("service request insert must bind the id column")
	}
	if !strings.Contains(strings.ToLower(insertTransitionQuery), "request_transitions (id,") {
		t.Fatal("transition record insert must bind the id column")
	}
}

func TestUpdateStatusQueryIsVersionGuarded(t *testing.T) {
	query := strings.ToLower(updateStatusQuery)

	requiredFragments := []string{
		"where id = $1 and version = $2",
		"version = version + 1",
		"updated_at = now()",
	}

	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected conditioned update fragment %q to be present", fragment)
		}
	}
}

func TestTransitionLogIsAppendOnly(t *testing.T) {
	if !strings.Contains(strings.ToLower(insertTransitionQuery), "insert into request_transitions") {
		t.Fatal("transition records must be written via plain insert")
	}

	for _, query := range []string{insertTransitionQuery, listTransitionsQuery} {
		lowered := strings.ToLower(query)
		if strings.Contains(lowered, "update ") || strings.Contains(lowered, "delete ") {
			t.Fatal("no statement may update or delete transition records")
		}
	}
}

func TestListTransitionsOrderedOldestFirst(t *testing.T) {
	query := strings.ToLower(listTransitionsQuery)
	if !strings.Contains(query, "order by created_at asc, id asc") {
		t.Fatal("transition timeline must be ordered oldest first with a stable tie-break")
	}
}
