package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	m.Issue("EVENT", "E1307", "ERROR")
	m.Issue("EVENT", "E1307", "ERROR")
	m.EffectApplied("EVENT", "ASSIGN")
	m.EffectSkipped("ENROLLMENT", "unknown_entity")
	m.ObserveBatch("EVENT", 20*time.Millisecond)

	if got := testutil.ToFloat64(m.issues.WithLabelValues("EVENT", "E1307", "ERROR")); got != 2 {
		t.Errorf("issues = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.effectsApplied.WithLabelValues("EVENT", "ASSIGN")); got != 1 {
		t.Errorf("effects applied = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.effectsSkipped.WithLabelValues("ENROLLMENT", "unknown_entity")); got != 1 {
		t.Errorf("effects skipped = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.batchDur); n != 1 {
		t.Errorf("batch duration series = %d, want 1", n)
	}
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatalf("first NewMetrics: %v", err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Fatal("expected error registering twice on the same registry")
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Issue("EVENT", "E1300", "WARNING")
	m.EffectApplied("EVENT", "SHOW_WARNING")
	m.EffectSkipped("EVENT", "unsupported_action")
	m.ObserveBatch("EVENT", time.Second)
}
