package extrapolate

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"satbench/internal/differ"
	"satbench/internal/runner"
)

func sampleMetric(delta int64) differ.Metric {
	return differ.Diff(
		runner.RunResult{Elapsed: 10 * time.Second, RowCount: 1000},
		runner.RunResult{Elapsed: 5 * time.Second, RowCount: 1000 - delta},
	)
}

func TestExtrapolate_IdentityAtFullPopulation(t *testing.T) {
	ext, err := New(DefaultFloorPct)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	m := sampleMetric(50)
	est, err := ext.Extrapolate(m, 1000, 1000)
	if err != nil {
		t.Fatalf("Extrapolate failed: %v", err)
	}

	if est.ScaleFactor != 1 {
		t.Errorf("ScaleFactor = %f, want 1", est.ScaleFactor)
	}
	if est.EstimatedFullRowDelta != m.RowCountDelta {
		t.Errorf("EstimatedFullRowDelta = %d, want %d", est.EstimatedFullRowDelta, m.RowCountDelta)
	}
	if !reflect.DeepEqual(est.Metric, m) {
		t.Error("metric must pass through unchanged")
	}
}

func TestExtrapolate_LinearDoubling(t *testing.T) {
	ext, _ := New(DefaultFloorPct)

	m := sampleMetric(50)
	est, err := ext.Extrapolate(m, 1000, 2000)
	if err != nil {
		t.Fatalf("Extrapolate failed: %v", err)
	}

	if est.ScaleFactor != 2 {
		t.Errorf("ScaleFactor = %f, want 2", est.ScaleFactor)
	}
	if est.EstimatedFullRowDelta != 100 {
		t.Errorf("EstimatedFullRowDelta = %d, want 100", est.EstimatedFullRowDelta)
	}
}

func TestExtrapolate_DurationNotRescaled(t *testing.T) {
	ext, _ := New(DefaultFloorPct)

	m := sampleMetric(0)
	est, err := ext.Extrapolate(m, 10, 1_000_000)
	if err != nil {
		t.Fatalf("Extrapolate failed: %v", err)
	}

	if est.Metric.Baseline.Elapsed != m.Baseline.Elapsed {
		t.Error("sample-measured duration must be carried through unchanged")
	}
	if !est.DurationSampleScaleOnly {
		t.Error("DurationSampleScaleOnly must be set")
	}
}

func TestExtrapolate_ReliabilityFloorBoundary(t *testing.T) {
	// Floor at 1% of 100_000 is exactly 1000 rows.
	ext, _ := New(1.0)

	tests := []struct {
		nSample    int64
		unreliable bool
	}{
		{999, true},
		{1000, false}, // floor is inclusive of reliability
		{1001, false},
		{100_000, false},
	}

	for _, tt := range tests {
		est, err := ext.Extrapolate(sampleMetric(0), tt.nSample, 100_000)
		if err != nil {
			t.Fatalf("Extrapolate(%d) failed: %v", tt.nSample, err)
		}
		if est.Unreliable != tt.unreliable {
			t.Errorf("Unreliable(n_sample=%d) = %v, want %v", tt.nSample, est.Unreliable, tt.unreliable)
		}
	}
}

func TestExtrapolate_InvalidSample(t *testing.T) {
	ext, _ := New(DefaultFloorPct)

	for _, nSample := range []int64{0, -5, 2001} {
		_, err := ext.Extrapolate(sampleMetric(0), nSample, 2000)
		var sampleErr *SampleSizeError
		if !errors.As(err, &sampleErr) {
			t.Errorf("Extrapolate(n_sample=%d) err = %v, want SampleSizeError", nSample, err)
		}
	}
}

func TestExtrapolate_Deterministic(t *testing.T) {
	ext, _ := New(DefaultFloorPct)
	m := sampleMetric(37)

	a, err := ext.Extrapolate(m, 500, 50_000)
	if err != nil {
		t.Fatalf("Extrapolate failed: %v", err)
	}
	b, _ := ext.Extrapolate(m, 500, 50_000)

	if !reflect.DeepEqual(a, b) {
		t.Error("same inputs must yield the same estimate")
	}
}

func TestNew_RejectsBadFloor(t *testing.T) {
	for _, pct := range []float64{-1, 101} {
		if _, err := New(pct); err == nil {
			t.Errorf("New(%g) = nil error, want validation failure", pct)
		}
	}
}
