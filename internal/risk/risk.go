package risk

import (
	"satbench/internal/differ"
	"satbench/internal/extrapolate"
)

// Verdict is the terminal recommendation, ordered least to most favorable.
type Verdict int

const (
	DoNotImplement    Verdict = 0
	Review            Verdict = 1
	Recommend         Verdict = 2
	StronglyRecommend Verdict = 3
)

func (v Verdict) String() string {
	switch v {
	case StronglyRecommend:
		return "STRONGLY_RECOMMEND"
	case Recommend:
		return "RECOMMEND"
	case Review:
		return "REVIEW"
	default:
		return "DO_NOT_IMPLEMENT"
	}
}

func (v Verdict) MarshalJSON() ([]byte, error) {
	return []byte(`"` + v.String() + `"`), nil
}

// Thresholds drives classification. Zero value is not usable; start from
// Defaults and override from configuration.
type Thresholds struct {
	// Duration improvement bands, percent.
	StrongMinImprovementPct float64 `yaml:"strong_min_improvement_pct" json:"strong_min_improvement_pct"`
	MinImprovementPct       float64 `yaml:"min_improvement_pct" json:"min_improvement_pct"`

	// Acceptable data difference bands, percent.
	StrongMaxDataDiffPct float64 `yaml:"strong_max_data_diff_pct" json:"strong_max_data_diff_pct"`
	MaxDataDiffPct       float64 `yaml:"max_data_diff_pct" json:"max_data_diff_pct"`

	// CountOnlyMargin scales the data bands down for COUNT_ONLY metrics,
	// so a less trustworthy measurement can never classify more favorably
	// than a row-level one with the same numbers.
	CountOnlyMargin float64 `yaml:"count_only_margin" json:"count_only_margin"`
}

func Defaults() Thresholds {
	return Thresholds{
		StrongMinImprovementPct: 50,
		MinImprovementPct:       20,
		StrongMaxDataDiffPct:    5,
		MaxDataDiffPct:          10,
		CountOnlyMargin:         0.5,
	}
}

// Classify maps an extrapolated estimate onto a verdict. Pure threshold
// lookup; an undefined duration delta classifies as "no confirmed
// improvement" rather than guessing.
func Classify(est extrapolate.Estimate, t Thresholds) Verdict {
	strongData := t.StrongMaxDataDiffPct
	maxData := t.MaxDataDiffPct
	if est.Metric.Fidelity == differ.CountOnly {
		strongData *= t.CountOnlyMargin
		maxData *= t.CountOnlyMargin
	}

	data := est.Metric.DataDiffPct
	if data > maxData {
		return DoNotImplement
	}

	delta := est.Metric.DurationDeltaPct
	if delta == nil || *delta < t.MinImprovementPct {
		return DoNotImplement
	}

	if data < strongData {
		if *delta > t.StrongMinImprovementPct {
			return StronglyRecommend
		}
		return Recommend
	}

	return Review
}
