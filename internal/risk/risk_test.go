package risk

import (
	"testing"

	"satbench/internal/differ"
	"satbench/internal/extrapolate"
)

func estimate(durPct *float64, dataPct float64, f differ.Fidelity) extrapolate.Estimate {
	return extrapolate.Estimate{
		Metric: differ.Metric{
			Fidelity:         f,
			DurationDeltaPct: durPct,
			DataDiffPct:      dataPct,
		},
	}
}

func pct(v float64) *float64 { return &v }

func TestClassify_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		durPct  *float64
		dataPct float64
		want    Verdict
	}{
		// 75% improvement, 2% difference: strong gain, low risk.
		{"scenario A", pct(75), 2, StronglyRecommend},
		// 15% improvement: below the minimum band regardless of data.
		{"scenario B", pct(15), 1, DoNotImplement},
		// 40% improvement, 7% difference: real gain, review the data impact.
		{"scenario C", pct(40), 7, Review},
		{"big gain big diff", pct(80), 12, DoNotImplement},
		{"big gain moderate diff", pct(80), 7, Review},
		{"moderate gain low diff", pct(30), 2, Recommend},
		{"boundary strong improvement not exceeded", pct(50), 2, Recommend},
		{"boundary max data diff", pct(40), 10, Review},
		{"just over max data diff", pct(40), 10.01, DoNotImplement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(estimate(tt.durPct, tt.dataPct, differ.RowLevel), Defaults())
			if got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_UndefinedDurationIsConservative(t *testing.T) {
	got := Classify(estimate(nil, 0, differ.RowLevel), Defaults())
	if got != DoNotImplement {
		t.Errorf("Classify(N/A duration) = %v, want DoNotImplement", got)
	}
}

func TestClassify_Monotonicity(t *testing.T) {
	// Holding data difference at 2%, more improvement never classifies worse.
	prev := DoNotImplement
	for _, imp := range []float64{10, 30, 60} {
		got := Classify(estimate(pct(imp), 2, differ.RowLevel), Defaults())
		if got < prev {
			t.Fatalf("verdict regressed from %v to %v at %.0f%% improvement", prev, got, imp)
		}
		prev = got
	}
}

func TestClassify_CountOnlyNeverMoreFavorable(t *testing.T) {
	for _, durPct := range []float64{10, 25, 60} {
		for _, dataPct := range []float64{0, 2, 4, 6, 9, 11} {
			rowLevel := Classify(estimate(pct(durPct), dataPct, differ.RowLevel), Defaults())
			countOnly := Classify(estimate(pct(durPct), dataPct, differ.CountOnly), Defaults())
			if countOnly > rowLevel {
				t.Errorf("COUNT_ONLY verdict %v beats ROW_LEVEL %v at (%.0f%%, %.0f%%)",
					countOnly, rowLevel, durPct, dataPct)
			}
		}
	}
}

func TestClassify_CountOnlyNarrowsBands(t *testing.T) {
	// 3% difference is low risk at row level but exceeds the halved 2.5%
	// strong band at count-only fidelity.
	est := estimate(pct(60), 3, differ.CountOnly)
	if got := Classify(est, Defaults()); got != Review {
		t.Errorf("Classify = %v, want Review", got)
	}

	// 6% exceeds the halved 5% max band entirely.
	est = estimate(pct(60), 6, differ.CountOnly)
	if got := Classify(est, Defaults()); got != DoNotImplement {
		t.Errorf("Classify = %v, want DoNotImplement", got)
	}
}

func TestVerdict_String(t *testing.T) {
	tests := []struct {
		v    Verdict
		want string
	}{
		{StronglyRecommend, "STRONGLY_RECOMMEND"},
		{Recommend, "RECOMMEND"},
		{Review, "REVIEW"},
		{DoNotImplement, "DO_NOT_IMPLEMENT"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
