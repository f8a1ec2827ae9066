package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry")
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	// Should have go runtime metrics at minimum
	if len(mfs) == 0 {
		t.Error("expected some metrics to be registered")
	}
}

func find(t *testing.T, reg *Registry, name string) *dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func TestRegistry_RecordTicker(t *testing.T) {
	reg := NewRegistry()

	reg.RecordTicker(OutcomeAnalyzed)
	reg.RecordTicker(OutcomeAnalyzed)
	reg.RecordTicker(OutcomeSkipped)

	counts := map[string]float64{}
	for _, m := range find(t, reg, "swingscan_tickers_total").GetMetric() {
		for _, label := range m.GetLabel() {
			if label.GetName() == "outcome" {
				counts[label.GetValue()] = m.GetCounter().GetValue()
			}
		}
	}

	if counts[OutcomeAnalyzed] != 2 || counts[OutcomeSkipped] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestRegistry_RecordRun(t *testing.T) {
	reg := NewRegistry()

	reg.RecordRunStart(400)
	reg.RecordRun(398, 90*time.Second)

	if v := find(t, reg, "swingscan_rows").GetMetric()[0].GetGauge().GetValue(); v != 398 {
		t.Errorf("rows = %v, want 398", v)
	}
	if v := find(t, reg, "swingscan_run_duration_seconds").GetMetric()[0].GetGauge().GetValue(); v != 90 {
		t.Errorf("duration = %v, want 90", v)
	}
	if v := find(t, reg, "swingscan_universe_tickers").GetMetric()[0].GetGauge().GetValue(); v != 400 {
		t.Errorf("universe = %v, want 400", v)
	}
}

func TestRegistry_FetchHistogram(t *testing.T) {
	reg := NewRegistry()

	reg.ObserveFetch(123 * time.Millisecond)

	hist := find(t, reg, "swingscan_fetch_duration_seconds").GetMetric()[0].GetHistogram()
	if hist.GetSampleCount() != 1 {
		t.Errorf("expected sample count 1, got %d", hist.GetSampleCount())
	}
	if hist.GetSampleSum() < 0.12 || hist.GetSampleSum() > 0.13 {
		t.Errorf("expected sample sum ~0.123, got %v", hist.GetSampleSum())
	}
}

func TestRegistry_RecordPublish(t *testing.T) {
	reg := NewRegistry()
	at := time.Unix(1710489600, 0)

	reg.RecordPublish(StatusFailed, at)
	if v := find(t, reg, "swingscan_last_success_timestamp_seconds").GetMetric()[0].GetGauge().GetValue(); v != 0 {
		t.Errorf("failed publish must not set last success, got %v", v)
	}

	reg.RecordPublish(StatusPublished, at)
	if v := find(t, reg, "swingscan_last_success_timestamp_seconds").GetMetric()[0].GetGauge().GetValue(); v != 1710489600 {
		t.Errorf("last success = %v, want 1710489600", v)
	}
}

func TestRegistry_WriteTextfile(t *testing.T) {
	reg := NewRegistry()
	reg.RecordTicker(OutcomeAnalyzed)

	path := filepath.Join(t.TempDir(), "swingscan.prom")
	if err := reg.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `swingscan_tickers_total{outcome="analyzed"} 1`) {
		t.Errorf("textfile missing ticker counter:\n%s", data)
	}
}

// Ensure the registry implements prometheus.Gatherer interface
func TestRegistry_ImplementsGatherer(t *testing.T) {
	reg := NewRegistry()
	var _ prometheus.Gatherer = reg
}
