package differ

import (
	"time"

	"satbench/internal/runner"
)

// Fidelity records whether a comparison was computed from row fingerprints
// or from counts alone. Count-only metrics are strictly less trustworthy and
// downstream consumers must widen their risk bands accordingly.
type Fidelity int

const (
	RowLevel  Fidelity = 0
	CountOnly Fidelity = 1
)

func (f Fidelity) String() string {
	switch f {
	case CountOnly:
		return "COUNT_ONLY"
	default:
		return "ROW_LEVEL"
	}
}

func (f Fidelity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

// Metric is a matched baseline/optimized pair with derived divergence
// fields. DurationDeltaPct is nil when the baseline duration was zero: the
// delta is undefined and must never surface as +inf or 0.
type Metric struct {
	Baseline  runner.RunResult `json:"baseline"`
	Optimized runner.RunResult `json:"optimized"`

	Fidelity Fidelity `json:"fidelity"`

	// Positive means the optimized variant is faster.
	DurationDeltaPct *float64 `json:"duration_delta_pct"`

	RowCountDelta    int64   `json:"row_count_delta"`
	RowCountDeltaPct float64 `json:"row_count_delta_pct"`

	OnlyInBaseline  int64 `json:"only_in_baseline"`
	OnlyInOptimized int64 `json:"only_in_optimized"`

	// DataDiffPct is the divergence fed to the risk classifier: the
	// two-sided fingerprint difference relative to the baseline row count
	// at row level, or the absolute count delta at count-only fidelity.
	DataDiffPct float64 `json:"data_diff_pct"`
}

// Diff compares one baseline run against one optimized run. Fidelity is
// ROW_LEVEL only when both results carry fingerprints.
func Diff(baseline, optimized runner.RunResult) Metric {
	m := Metric{
		Baseline:         baseline,
		Optimized:        optimized,
		Fidelity:         CountOnly,
		DurationDeltaPct: durationDelta(baseline.Elapsed, optimized.Elapsed),
		RowCountDelta:    baseline.RowCount - optimized.RowCount,
	}
	m.RowCountDeltaPct = pctOf(abs64(m.RowCountDelta), baseline.RowCount)
	m.DataDiffPct = m.RowCountDeltaPct

	if baseline.Fingerprints != nil && optimized.Fingerprints != nil {
		m.Fidelity = RowLevel
		m.OnlyInBaseline, m.OnlyInOptimized = setDifference(baseline.Fingerprints, optimized.Fingerprints)
		m.DataDiffPct = pctOf(m.OnlyInBaseline+m.OnlyInOptimized, baseline.RowCount)
	}

	return m
}

// Aggregate folds the pair-phase metrics of a deep profile into one overall
// metric: durations sum, the data difference is the worst case across
// phases, and fidelity degrades to COUNT_ONLY if any input was count-only.
func Aggregate(metrics ...Metric) Metric {
	agg := Metric{Fidelity: RowLevel}

	var baseTotal, optTotal time.Duration
	for _, m := range metrics {
		baseTotal += m.Baseline.Elapsed
		optTotal += m.Optimized.Elapsed

		if m.Fidelity == CountOnly {
			agg.Fidelity = CountOnly
		}
		if m.DataDiffPct >= agg.DataDiffPct {
			agg.DataDiffPct = m.DataDiffPct
			agg.RowCountDelta = m.RowCountDelta
			agg.RowCountDeltaPct = m.RowCountDeltaPct
		}
		agg.OnlyInBaseline += m.OnlyInBaseline
		agg.OnlyInOptimized += m.OnlyInOptimized
		agg.Baseline.RowCount = max(agg.Baseline.RowCount, m.Baseline.RowCount)
		agg.Optimized.RowCount = max(agg.Optimized.RowCount, m.Optimized.RowCount)
	}

	agg.Baseline.Variant = "aggregate-baseline"
	agg.Optimized.Variant = "aggregate-optimized"
	agg.Baseline.Elapsed = baseTotal
	agg.Optimized.Elapsed = optTotal
	agg.DurationDeltaPct = durationDelta(baseTotal, optTotal)

	return agg
}

func durationDelta(baseline, optimized time.Duration) *float64 {
	if baseline == 0 {
		return nil
	}
	pct := float64(baseline-optimized) / float64(baseline) * 100
	return &pct
}

// setDifference counts fingerprints present on one side but not the other,
// multiset-aware so duplicate rows are not silently collapsed.
func setDifference(a, b []uint64) (onlyA, onlyB int64) {
	counts := make(map[uint64]int64, len(a))
	for _, fp := range a {
		counts[fp]++
	}
	for _, fp := range b {
		counts[fp]--
	}
	for _, n := range counts {
		if n > 0 {
			onlyA += n
		} else {
			onlyB -= n
		}
	}
	return onlyA, onlyB
}

func pctOf(part, whole int64) float64 {
	if whole == 0 {
		if part == 0 {
			return 0
		}
		return 100
	}
	return float64(part) / float64(whole) * 100
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
