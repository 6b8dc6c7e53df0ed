package orchestrator

import (
	"time"

	"satbench/internal/differ"
	"satbench/internal/extrapolate"
	"satbench/internal/risk"
)

// Mode selects the phase sequence: one sampled row-level pass, or the full
// multi-phase profile.
type Mode int

const (
	Fast Mode = 0
	Deep Mode = 1
)

func (m Mode) String() string {
	if m == Deep {
		return "DEEP"
	}
	return "FAST"
}

func (m Mode) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// Status labels how much of the profile actually ran. A partial result is
// never presented as complete.
type Status int

const (
	Complete Status = 0
	Degraded Status = 1
	Failed   Status = 2
)

func (s Status) String() string {
	switch s {
	case Degraded:
		return "DEGRADED"
	case Failed:
		return "FAILED"
	default:
		return "COMPLETE"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// PhaseResult is one entry in the report's phase sequence. Pair phases carry
// a metric and an estimate; the volume phase carries only its count. A failed
// phase records the backend's error text instead.
type PhaseResult struct {
	Name    string        `json:"name"`
	Elapsed time.Duration `json:"elapsed"`

	Rows int64 `json:"rows,omitempty"`

	Metric   *differ.Metric        `json:"metric,omitempty"`
	Estimate *extrapolate.Estimate `json:"estimate,omitempty"`

	Error string `json:"error,omitempty"`
}

// Report is the sole output artifact of a run. Owned by the orchestrator for
// the run's duration; nothing here is persisted by the core.
type Report struct {
	Mode       Mode      `json:"mode"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Full staging population, from the volume-characterization phase.
	NFull           int64 `json:"n_full"`
	DistinctHubKeys int64 `json:"distinct_hub_keys,omitempty"`

	Phases []PhaseResult `json:"phases"`

	Aggregate *extrapolate.Estimate `json:"aggregate,omitempty"`

	// Verdict is absent (null) when the run failed: a default value here
	// would be indistinguishable from a real recommendation.
	Verdict    *risk.Verdict   `json:"verdict"`
	Thresholds risk.Thresholds `json:"thresholds"`

	Caveats []string `json:"caveats,omitempty"`
	Status  Status   `json:"status"`
}

func (r *Report) addCaveat(c string) {
	r.Caveats = append(r.Caveats, c)
}

func (r *Report) failedPhases() int {
	n := 0
	for _, p := range r.Phases {
		if p.Error != "" {
			n++
		}
	}
	return n
}
