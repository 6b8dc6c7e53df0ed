package extrapolate

import (
	"fmt"
	"math"

	"satbench/internal/differ"
)

// DefaultFloorPct flags extrapolations where the sample is below 1% of the
// full population: linear scaling from tiny samples is unreliable.
const DefaultFloorPct = 1.0

// SampleSizeError reports a sample that cannot be extrapolated at all.
type SampleSizeError struct {
	NSample int64
	NFull   int64
}

func (e *SampleSizeError) Error() string {
	return fmt.Sprintf("cannot extrapolate from sample of %d to population of %d", e.NSample, e.NFull)
}

// Estimate projects a sample-scale metric to full-population scale. Row
// deltas scale linearly; durations are deliberately NOT rescaled, because
// query latency does not scale linearly with data volume — the measured
// duration delta is carried through unchanged and flagged sample-scale only.
type Estimate struct {
	Metric differ.Metric `json:"metric"`

	NSample     int64   `json:"n_sample"`
	NFull       int64   `json:"n_full"`
	ScaleFactor float64 `json:"scale_factor"`

	EstimatedFullRowDelta int64 `json:"estimated_full_row_delta"`

	// Unreliable is set when the sample is below the reliability floor.
	// Flagged estimates are still returned; consumers must carry the flag
	// through to every summary.
	Unreliable bool `json:"unreliable"`

	// DurationSampleScaleOnly is always true; latency extrapolation would
	// fabricate false precision.
	DurationSampleScaleOnly bool `json:"duration_sample_scale_only"`
}

// Extrapolator scales sample measurements using a linear model. Pure: the
// same metric and sizes always produce the same estimate.
type Extrapolator struct {
	// FloorPct is the reliability floor as a percentage of the full
	// population. The floor row count itself is reliable (not flagged).
	FloorPct float64
}

func New(floorPct float64) (Extrapolator, error) {
	if floorPct < 0 || floorPct > 100 {
		return Extrapolator{}, fmt.Errorf("reliability floor must be between 0 and 100 percent, got %g", floorPct)
	}
	return Extrapolator{FloorPct: floorPct}, nil
}

func (e Extrapolator) Extrapolate(m differ.Metric, nSample, nFull int64) (Estimate, error) {
	if nSample <= 0 || nSample > nFull {
		return Estimate{}, &SampleSizeError{NSample: nSample, NFull: nFull}
	}

	scale := float64(nFull) / float64(nSample)
	floor := int64(math.Ceil(e.FloorPct / 100 * float64(nFull)))

	return Estimate{
		Metric:                  m,
		NSample:                 nSample,
		NFull:                   nFull,
		ScaleFactor:             scale,
		EstimatedFullRowDelta:   int64(math.Round(float64(m.RowCountDelta) * scale)),
		Unreliable:              nSample < floor,
		DurationSampleScaleOnly: true,
	}, nil
}
