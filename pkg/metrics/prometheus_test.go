package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordSourceResult("fred", true, 0.4, 3, 1)
	r.RecordSourceResult("fred", false, 0.1, 0, 0)
	r.RecordStrength("USD", 61.5)
	r.RecordPower("USD", 2, 58)
	r.RecordEventsStored("sqlite", 7)

	if got := testutil.ToFloat64(r.sourceRuns.WithLabelValues("fred", "true")); got != 1 {
		t.Fatalf("successful runs = %v", got)
	}
	if got := testutil.ToFloat64(r.sourceEvents.WithLabelValues("fred")); got != 3 {
		t.Fatalf("events = %v", got)
	}
	if got := testutil.ToFloat64(r.strengthScore.WithLabelValues("USD")); got != 61.5 {
		t.Fatalf("strength = %v", got)
	}
	if got := testutil.ToFloat64(r.powerRank.WithLabelValues("USD")); got != 2 {
		t.Fatalf("rank = %v", got)
	}
	if got := testutil.ToFloat64(r.eventsStored.WithLabelValues("sqlite")); got != 7 {
		t.Fatalf("stored = %v", got)
	}
}
