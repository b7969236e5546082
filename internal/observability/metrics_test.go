package observability

import (
	"testing"
	"time"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/tickets", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/tickets", "GET", 200, 30*time.Millisecond)
	m.RecordRequest("/api/auth/login", "POST", 401, time.Millisecond)
	m.RecordError("/api/auth/login", "POST", "INVALID_CREDENTIALS")

	snap := m.Snapshot()
	if len(snap.Requests) != 2 {
		t.Fatalf("expected 2 keys, got %+v", snap.Requests)
	}
	tickets := snap.Requests[1]
	if tickets.Key != "/api/tickets|GET|200" || tickets.Count != 2 || tickets.AvgLatency != 20 {
		t.Fatalf("unexpected stats %+v", tickets)
	}
	if snap.Errors["/api/auth/login|POST|INVALID_CREDENTIALS"] != 1 {
		t.Fatalf("unexpected errors %+v", snap.Errors)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	if snap := m.Snapshot(); len(snap.Requests) != 0 {
		t.Fatalf("expected empty snapshot")
	}
}
