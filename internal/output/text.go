package output

import (
	"fmt"
	"io"
	"time"

	"satbench/internal/differ"
	"satbench/internal/extrapolate"
	"satbench/internal/orchestrator"
	"satbench/internal/risk"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

// RenderReportText writes the human-readable report.
func RenderReportText(w io.Writer, rep *orchestrator.Report) error {
	tw := &textWriter{w: w}

	tw.printf("%s%sSatellite Optimization Test Report%s\n\n", colorBold, colorCyan, colorReset)
	tw.printf("  Profile:  %s\n", rep.Mode)
	tw.printf("  Status:   %s\n", statusText(rep.Status))
	tw.printf("  Duration: %s\n", formatDuration(rep.FinishedAt.Sub(rep.StartedAt)))
	if rep.NFull > 0 {
		tw.printf("  Staging:  %d rows", rep.NFull)
		if rep.DistinctHubKeys > 0 {
			tw.printf(" (%d distinct hub keys)", rep.DistinctHubKeys)
		}
		tw.printf("\n")
	}
	tw.printf("\n")

	tw.printf("%s%sPhases%s\n\n", colorBold, colorCyan, colorReset)
	for _, p := range rep.Phases {
		tw.renderPhase(p)
	}

	if rep.Aggregate != nil {
		tw.printf("\n%s%sOverall%s\n\n", colorBold, colorCyan, colorReset)
		tw.renderEstimate(*rep.Aggregate, "  ")
	}

	if rep.Verdict != nil {
		v := *rep.Verdict
		tw.printf("\n%s%sVerdict: %s%s\n", colorBold, verdictColor(v), v, colorReset)
		tw.printf("  %s%s%s\n", colorDim, verdictText(v), colorReset)
	} else {
		tw.printf("\n%sNo verdict: the run did not produce a classifiable result.%s\n", colorDim, colorReset)
	}

	if len(rep.Caveats) > 0 {
		tw.printf("\n%s%sCaveats%s\n", colorBold, colorYellow, colorReset)
		for _, c := range rep.Caveats {
			tw.printf("  - %s\n", c)
		}
	}

	return tw.err
}

func (tw *textWriter) renderPhase(p orchestrator.PhaseResult) {
	if p.Error != "" {
		tw.printf("  %s%-18s%s %sFAILED%s %s\n", colorBold, p.Name, colorReset, colorRed, colorReset, p.Error)
		return
	}

	if p.Metric == nil {
		tw.printf("  %s%-18s%s %d rows in %s\n", colorBold, p.Name, colorReset, p.Rows, formatDuration(p.Elapsed))
		return
	}

	m := p.Metric
	tw.printf("  %s%-18s%s baseline %s → optimized %s (%s)\n",
		colorBold, p.Name, colorReset,
		formatDuration(m.Baseline.Elapsed), formatDuration(m.Optimized.Elapsed),
		improvementText(m.DurationDeltaPct))
	tw.printf("  %-18s rows %d → %d, data diff %.2f%% [%s]\n",
		"", m.Baseline.RowCount, m.Optimized.RowCount, m.DataDiffPct, m.Fidelity)
	if m.Fidelity == differ.RowLevel {
		tw.printf("  %-18s only in baseline %d, only in optimized %d\n",
			"", m.OnlyInBaseline, m.OnlyInOptimized)
	}
	if p.Estimate != nil && p.Estimate.Unreliable {
		tw.printf("  %-18s %ssample below reliability floor; extrapolation unreliable%s\n", "", colorYellow, colorReset)
	}
}

func (tw *textWriter) renderEstimate(est extrapolate.Estimate, indent string) {
	m := est.Metric
	tw.printf("%sDuration:       baseline %s → optimized %s (%s, sample scale)\n",
		indent, formatDuration(m.Baseline.Elapsed), formatDuration(m.Optimized.Elapsed),
		improvementText(m.DurationDeltaPct))
	if m.Baseline.Elapsed > 0 && m.Optimized.Elapsed > 0 {
		saved := m.Baseline.Elapsed - m.Optimized.Elapsed
		tw.printf("%sSpeedup:        %.2fx, %s saved per run (sample scale)\n",
			indent, float64(m.Baseline.Elapsed)/float64(m.Optimized.Elapsed), formatDuration(saved))
	}
	tw.printf("%sData diff:      %.2f%% [%s]\n", indent, m.DataDiffPct, m.Fidelity)
	tw.printf("%sScale factor:   %.1fx (%d of %d rows sampled)\n", indent, est.ScaleFactor, est.NSample, est.NFull)
	tw.printf("%sEst. row delta: %d at full population\n", indent, est.EstimatedFullRowDelta)
	if est.Unreliable {
		tw.printf("%s%sUnreliable: sample below reliability floor%s\n", indent, colorYellow, colorReset)
	}
}

func improvementText(pct *float64) string {
	if pct == nil {
		return "improvement N/A"
	}
	if *pct < 0 {
		return fmt.Sprintf("%.1f%% slower", -*pct)
	}
	return fmt.Sprintf("%.1f%% faster", *pct)
}

func formatDuration(d time.Duration) string {
	if d >= time.Minute {
		return d.Round(time.Second).String()
	}
	return d.Round(time.Millisecond).String()
}

func statusText(s orchestrator.Status) string {
	switch s {
	case orchestrator.Complete:
		return colorGreen + s.String() + colorReset
	case orchestrator.Degraded:
		return colorYellow + s.String() + colorReset
	default:
		return colorRed + s.String() + colorReset
	}
}

func verdictColor(v risk.Verdict) string {
	switch v {
	case risk.StronglyRecommend, risk.Recommend:
		return colorGreen
	case risk.Review:
		return colorYellow
	default:
		return colorRed
	}
}

func verdictText(v risk.Verdict) string {
	switch v {
	case risk.StronglyRecommend:
		return "High performance gain, low data risk."
	case risk.Recommend:
		return "Good performance gain, acceptable data risk."
	case risk.Review:
		return "Performance gain is real but the data difference needs review."
	default:
		return "Insufficient performance gain or unacceptable data difference."
	}
}
