package main

import (
	"testing"

	"github.com/spec-kit/support-portal/internal/domain"
)

func TestFilterDemoRequests(t *testing.T) {
	reqs := func() []domain.DemoRequest {
		return []domain.DemoRequest{
			{ID: "d1", Status: domain.DemoRequestStatusNew},
			{ID: "d2", Status: domain.DemoRequestStatusScheduled},
			{ID: "d3", Status: domain.DemoRequestStatusNew},
		}
	}

	if got := filterDemoRequests(reqs(), ""); len(got) != 3 {
		t.Fatalf("empty status should keep everything, got %d", len(got))
	}
	got := filterDemoRequests(reqs(), "NEW")
	if len(got) != 2 || got[0].ID != "d1" || got[1].ID != "d3" {
		t.Fatalf("unexpected filter result %+v", got)
	}
	if got := filterDemoRequests(reqs(), "completed"); len(got) != 0 {
		t.Fatalf("expected no completed requests, got %+v", got)
	}
}
