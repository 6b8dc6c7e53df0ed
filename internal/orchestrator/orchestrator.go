package orchestrator

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"satbench/internal/backend"
	"satbench/internal/config"
	"satbench/internal/differ"
	"satbench/internal/extrapolate"
	"satbench/internal/risk"
	"satbench/internal/runner"
	"satbench/internal/variant"
)

type pair struct {
	baseline  variant.Variant
	optimized variant.Variant
}

// volume is rendered once per mode so an override template referencing
// {{.SampleSize}} sees the active profile's sample size.
type querySet struct {
	volumeFast    variant.Variant
	volumeDeep    variant.Variant
	distinctKeys  variant.Variant
	currentRows   pair
	candidates    pair
	candidateRows pair
}

// Orchestrator sequences one profile run: phases execute strictly one after
// another, and each run owns its report exclusively — no state is shared
// between runs.
type Orchestrator struct {
	cfg     *config.Config
	backend backend.Backend
	runner  *runner.Runner
	ext     extrapolate.Extrapolator
	queries querySet
	log     zerolog.Logger
}

// New validates the configuration and constructs every query variant up
// front, so configuration and statement errors abort before the backend is
// ever touched.
func New(cfg *config.Config, b backend.Backend, log zerolog.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ext, err := extrapolate.New(cfg.ReliabilityFloorPct)
	if err != nil {
		return nil, err
	}

	queries, err := buildQueries(cfg)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		cfg:     cfg,
		backend: b,
		runner:  &runner.Runner{Backend: b},
		ext:     ext,
		queries: queries,
		log:     log,
	}, nil
}

func buildQueries(cfg *config.Config) (querySet, error) {
	s := cfg.Schema()
	deep := variant.Params{WindowDays: cfg.WindowDays, SampleSize: cfg.DeepSampleSize}
	fast := variant.Params{WindowDays: cfg.WindowDays, SampleSize: cfg.FastSampleSize}

	pick := func(override, generated string) string {
		if override != "" {
			return override
		}
		return generated
	}

	var (
		qs  querySet
		err error
	)

	build := func(name, tmpl string, p variant.Params) variant.Variant {
		if err != nil {
			return variant.Variant{}
		}
		var v variant.Variant
		v, err = variant.New(name, tmpl, p)
		return v
	}

	qs.volumeFast = build("staging-volume", pick(cfg.Queries.StagingVolume, variant.StagingVolume(s)), fast)
	qs.volumeDeep = build("staging-volume", pick(cfg.Queries.StagingVolume, variant.StagingVolume(s)), deep)
	qs.distinctKeys = build("staging-distinct-keys", variant.StagingDistinctKeys(s), deep)
	qs.currentRows = pair{
		baseline:  build("baseline-current-rows", pick(cfg.Queries.BaselineCurrentRows, variant.CurrentRowsCount(s, false)), deep),
		optimized: build("optimized-current-rows", pick(cfg.Queries.OptimizedCurrentRows, variant.CurrentRowsCount(s, true)), deep),
	}
	qs.candidates = pair{
		baseline:  build("baseline-candidates", pick(cfg.Queries.BaselineCandidates, variant.InsertCandidatesCount(s, false)), deep),
		optimized: build("optimized-candidates", pick(cfg.Queries.OptimizedCandidates, variant.InsertCandidatesCount(s, true)), deep),
	}
	qs.candidateRows = pair{
		baseline:  build("baseline-candidate-rows", pick(cfg.Queries.BaselineCandidateRows, variant.InsertCandidateRows(s, false)), fast),
		optimized: build("optimized-candidate-rows", pick(cfg.Queries.OptimizedCandidateRows, variant.InsertCandidateRows(s, true)), fast),
	}

	return qs, err
}

// Run executes the selected profile and returns its report. Phase failures
// are recorded in the report, not returned; the error is non-nil only for
// cancellation between phases.
func (o *Orchestrator) Run(ctx context.Context, mode Mode) (*Report, error) {
	rep := &Report{
		Mode:       mode,
		StartedAt:  time.Now(),
		Thresholds: o.cfg.Thresholds,
	}
	defer func() { rep.FinishedAt = time.Now() }()

	if !o.backend.SnapshotConsistent() {
		rep.addCaveat("backend does not guarantee snapshot isolation; baseline and optimized reads are best-effort consistent")
	}

	o.log.Info().Str("mode", mode.String()).Msg("starting profile run")

	var err error
	if mode == Deep {
		err = o.runDeep(ctx, rep)
	} else {
		err = o.runFast(ctx, rep)
	}

	o.log.Info().Str("status", rep.Status.String()).Msg("profile run finished")
	return rep, err
}

// runFast is the single-pass profile: characterize volume, then one sampled
// row-level comparison. Both steps are required.
func (o *Orchestrator) runFast(ctx context.Context, rep *Report) error {
	nFull, ok := o.runVolume(ctx, rep, o.queries.volumeFast)
	if !ok {
		rep.Status = Failed
		return nil
	}

	if err := o.checkpoint(ctx, rep); err != nil {
		return err
	}

	eff := min(o.cfg.FastSampleSize, nFull)
	est, ok := o.runPair(ctx, rep, "candidate-sample", o.queries.candidateRows, true, eff, nFull)
	if !ok {
		rep.Status = Failed
		return nil
	}

	rep.Aggregate = est
	v := risk.Classify(*est, o.cfg.Thresholds)
	rep.Verdict = &v
	rep.Status = Complete
	return nil
}

// runDeep is the multi-phase profile. Volume characterization is run-fatal
// because every extrapolation depends on it; the pair phases degrade the
// report on failure instead of aborting it.
func (o *Orchestrator) runDeep(ctx context.Context, rep *Report) error {
	nFull, ok := o.runVolume(ctx, rep, o.queries.volumeDeep)
	if !ok {
		rep.Status = Failed
		return nil
	}

	if n, _, err := o.backend.Count(ctx, o.queries.distinctKeys.SQL); err != nil {
		rep.addCaveat("staging distinct hub key count unavailable: " + err.Error())
	} else {
		rep.DistinctHubKeys = n
	}

	if err := o.checkpoint(ctx, rep); err != nil {
		return err
	}

	var metrics []differ.Metric

	if est, ok := o.runPair(ctx, rep, "current-rows", o.queries.currentRows, false, nFull, nFull); ok {
		metrics = append(metrics, est.Metric)
	}

	if err := o.checkpoint(ctx, rep); err != nil {
		return err
	}

	eff := min(o.cfg.DeepSampleSize, nFull)
	candOK := false
	if est, ok := o.runPair(ctx, rep, "insert-candidates", o.queries.candidates, false, eff, nFull); ok {
		metrics = append(metrics, est.Metric)
		candOK = true
	}

	if len(metrics) == 0 {
		rep.Status = Degraded
		return nil
	}

	// Worst case across phases, classified once.
	aggSample := nFull
	if candOK {
		aggSample = eff
	}
	agg, err := o.ext.Extrapolate(differ.Aggregate(metrics...), aggSample, nFull)
	if err != nil {
		rep.addCaveat("aggregate extrapolation unavailable: " + err.Error())
		rep.Status = Degraded
		return nil
	}

	rep.Aggregate = &agg
	v := risk.Classify(agg, o.cfg.Thresholds)
	rep.Verdict = &v

	if rep.failedPhases() > 0 {
		rep.Status = Degraded
	} else {
		rep.Status = Complete
	}
	return nil
}

func (o *Orchestrator) runVolume(ctx context.Context, rep *Report, v variant.Variant) (int64, bool) {
	n, elapsed, err := o.backend.Count(ctx, v.SQL)
	if err != nil {
		o.log.Error().Err(err).Msg("volume characterization failed")
		rep.Phases = append(rep.Phases, PhaseResult{Name: "volume", Error: err.Error()})
		return 0, false
	}

	o.log.Info().Int64("n_full", n).Dur("elapsed", elapsed).Msg("volume characterized")
	rep.NFull = n
	rep.Phases = append(rep.Phases, PhaseResult{Name: "volume", Elapsed: elapsed, Rows: n})
	return n, true
}

func (o *Orchestrator) runPair(ctx context.Context, rep *Report, name string, p pair, rowLevel bool, nSample, nFull int64) (*extrapolate.Estimate, bool) {
	base, opt, err := o.runner.ExecutePair(ctx, p.baseline, p.optimized, rowLevel)
	if err != nil {
		o.log.Error().Err(err).Str("phase", name).Msg("phase failed")
		rep.Phases = append(rep.Phases, PhaseResult{Name: name, Error: err.Error()})
		return nil, false
	}

	m := differ.Diff(base, opt)
	est, err := o.ext.Extrapolate(m, nSample, nFull)
	if err != nil {
		o.log.Error().Err(err).Str("phase", name).Msg("extrapolation failed")
		rep.Phases = append(rep.Phases, PhaseResult{Name: name, Error: err.Error()})
		return nil, false
	}

	o.log.Info().
		Str("phase", name).
		Dur("baseline", base.Elapsed).
		Dur("optimized", opt.Elapsed).
		Int64("baseline_rows", base.RowCount).
		Int64("optimized_rows", opt.RowCount).
		Str("fidelity", m.Fidelity.String()).
		Msg("phase complete")

	rep.Phases = append(rep.Phases, PhaseResult{
		Name:     name,
		Elapsed:  base.Elapsed + opt.Elapsed,
		Metric:   &m,
		Estimate: &est,
	})
	return &est, true
}

// checkpoint is the cooperative cancellation point between phases. Queries
// already in flight are never cancelled mid-execution.
func (o *Orchestrator) checkpoint(ctx context.Context, rep *Report) error {
	if err := ctx.Err(); err != nil {
		rep.addCaveat("run cancelled before next phase")
		rep.Status = Degraded
		o.log.Warn().Msg("cancelled between phases")
		return err
	}
	return nil
}
