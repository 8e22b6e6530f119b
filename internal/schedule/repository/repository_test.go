package repository

import (
	"strings"
	"testing"
)

func TestOverlapQueryUsesHalfOpenWindowComparison(t *testing.T) {
	query := strings.ToLower(hasOverlapQuery)

	requiredFragments := []string{
		"technician_id = $1",
		"starts_at < $3",
		"ends_at > $2",
	}
	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected overlap query fragment %q to be present", fragment)
		}
	}
}

func TestReleaseQueryIsScopedToRequest(t *testing.T) {
	query := strings.ToLower(releaseBlocksQuery)

	if !strings.Contains(query, "where request_id = $1") {
		t.Fatal("release must delete only the request's own blocks")
	}
}

func TestListBlocksOrderedByStart(t *testing.T) {
	query := strings.ToLower(listBlocksQuery)

	if !strings.Contains(query, "order by starts_at asc") {
		t.Fatal("block listing must be ordered by start time")
	}
}
