package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Event("message")
	m.Event("message")
	m.Event("callback")
	m.Relayed("to_operator")
	m.Purged(3)
	m.Purged(0)

	if got := testutil.ToFloat64(m.events.WithLabelValues("message")); got != 2 {
		t.Errorf("Expected 2 message events, got %v", got)
	}
	if got := testutil.ToFloat64(m.relayed.WithLabelValues("to_operator")); got != 1 {
		t.Errorf("Expected 1 relayed, got %v", got)
	}
	if got := testutil.ToFloat64(m.purged); got != 3 {
		t.Errorf("Expected 3 purged, got %v", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.Event("message")
	m.ChallengeIssued()
	m.Answer("correct")
	m.Relayed("to_guest")
	m.FraudWarning()
	m.TransportError("send")
	m.Purged(1)
}
