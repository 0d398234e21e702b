package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRemoteCountsByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	m.ObserveRemote("list", time.Now(), nil)
	m.ObserveRemote("list", time.Now(), errors.New("boom"))
	m.ObserveRemote("list", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(m.remoteRequests.WithLabelValues("list", ResultSuccess)); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(m.remoteRequests.WithLabelValues("list", ResultError)); got != 2 {
		t.Fatalf("expected 2 errors, got %v", got)
	}
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRemote("list", time.Now(), nil)
	m.IncNotification("success")
	m.IncValidationFailure("firstName", "Required")
}
