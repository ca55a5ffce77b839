package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSyncCountsActions(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordSync("success", 2, 3, 150*time.Millisecond)
	m.RecordSync("failure", 0, 0, time.Second)

	if got := testutil.ToFloat64(m.syncRuns.WithLabelValues("success")); got != 1 {
		t.Fatalf("expected 1 successful run, got %v", got)
	}
	if got := testutil.ToFloat64(m.syncRecords.WithLabelValues("inserted")); got != 2 {
		t.Fatalf("expected 2 inserted, got %v", got)
	}
	if got := testutil.ToFloat64(m.syncRecords.WithLabelValues("updated")); got != 3 {
		t.Fatalf("expected 3 updated, got %v", got)
	}
}

func TestRecordErrorByCode(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.RecordError("/api/movies", "GET", "TOKEN_NOT_PROVIDED")
	m.RecordError("/api/movies", "GET", "TOKEN_NOT_PROVIDED")

	if got := testutil.ToFloat64(m.failuresTotal.WithLabelValues("GET", "/api/movies", "TOKEN_NOT_PROVIDED")); got != 2 {
		t.Fatalf("expected 2 failures, got %v", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordSync("success", 1, 1, time.Millisecond)
	m.SetBreakerState("swapi", 2)
}

func TestNewRequestIDIsUnique(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	if a == "" || a == b {
		t.Fatalf("expected distinct ids, got %q and %q", a, b)
	}
}
