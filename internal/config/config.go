package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"satbench/internal/risk"
	"satbench/internal/variant"
)

// TableRef names one warehouse relation.
type TableRef struct {
	Schema string `yaml:"schema"`
	Name   string `yaml:"name"`
}

// Qualified returns the quoted, fully qualified relation name.
func (t TableRef) Qualified() string {
	return fmt.Sprintf("%q.%q", t.Schema, t.Name)
}

// Columns maps the Data Vault roles onto the schema under test.
type Columns struct {
	HubKey      string `yaml:"hub_key"`
	ChangeHash  string `yaml:"change_hash"`
	LoadDate    string `yaml:"load_date"`
	StagingHash string `yaml:"staging_hash"`
}

// Queries optionally overrides the generated SQL. Templates may reference
// {{.WindowDays}} and {{.SampleSize}} and are still subject to the read-only
// guard at variant construction.
type Queries struct {
	StagingVolume          string `yaml:"staging_volume,omitempty"`
	BaselineCurrentRows    string `yaml:"baseline_current_rows,omitempty"`
	OptimizedCurrentRows   string `yaml:"optimized_current_rows,omitempty"`
	BaselineCandidates     string `yaml:"baseline_candidates,omitempty"`
	OptimizedCandidates    string `yaml:"optimized_candidates,omitempty"`
	BaselineCandidateRows  string `yaml:"baseline_candidate_rows,omitempty"`
	OptimizedCandidateRows string `yaml:"optimized_candidate_rows,omitempty"`
}

// Config is the immutable configuration object handed to the orchestrator at
// construction time. No ambient state: everything the run needs is here.
type Config struct {
	Satellite TableRef `yaml:"satellite"`
	Staging   TableRef `yaml:"staging"`
	Columns   Columns  `yaml:"columns"`

	WindowDays     int   `yaml:"window_days"`
	FastSampleSize int64 `yaml:"fast_sample_size"`
	DeepSampleSize int64 `yaml:"deep_sample_size"`

	ReliabilityFloorPct float64 `yaml:"reliability_floor_pct"`

	// Snapshot pins a repeatable-read transaction for the whole run so
	// both variants observe the same data. When off, the report carries a
	// best-effort-consistency caveat.
	Snapshot bool `yaml:"snapshot"`

	Thresholds risk.Thresholds `yaml:"thresholds"`
	Queries    Queries         `yaml:"queries"`
}

// ValidationError lists every configuration problem found, so a malformed
// file is reported in one pass.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Problems, "; "))
}

// Defaults mirror the conservative starting points of the original test
// plans: a 60-day window, a small fast sample and a larger deep sample.
func Defaults() *Config {
	return &Config{
		WindowDays:          60,
		FastSampleSize:      50_000,
		DeepSampleSize:      1_000_000,
		ReliabilityFloorPct: 1.0,
		Snapshot:            true,
		Thresholds:          risk.Defaults(),
	}
}

// Load reads a YAML config file over the defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

func (c *Config) Validate() error {
	var problems []string

	check := func(field, value string) {
		if value == "" {
			problems = append(problems, field+" is required")
		} else if !identifierRe.MatchString(value) {
			problems = append(problems, fmt.Sprintf("%s: %q is not a valid identifier", field, value))
		}
	}

	check("satellite.schema", c.Satellite.Schema)
	check("satellite.name", c.Satellite.Name)
	check("staging.schema", c.Staging.Schema)
	check("staging.name", c.Staging.Name)
	check("columns.hub_key", c.Columns.HubKey)
	check("columns.change_hash", c.Columns.ChangeHash)
	check("columns.load_date", c.Columns.LoadDate)
	check("columns.staging_hash", c.Columns.StagingHash)

	if c.WindowDays <= 0 {
		problems = append(problems, "window_days must be positive")
	}
	if c.FastSampleSize <= 0 {
		problems = append(problems, "fast_sample_size must be positive")
	}
	if c.DeepSampleSize <= 0 {
		problems = append(problems, "deep_sample_size must be positive")
	}
	if c.ReliabilityFloorPct < 0 || c.ReliabilityFloorPct > 100 {
		problems = append(problems, "reliability_floor_pct must be between 0 and 100")
	}
	if c.Thresholds.MinImprovementPct > c.Thresholds.StrongMinImprovementPct {
		problems = append(problems, "thresholds: min_improvement_pct exceeds strong_min_improvement_pct")
	}
	if c.Thresholds.StrongMaxDataDiffPct > c.Thresholds.MaxDataDiffPct {
		problems = append(problems, "thresholds: strong_max_data_diff_pct exceeds max_data_diff_pct")
	}
	if c.Thresholds.CountOnlyMargin <= 0 || c.Thresholds.CountOnlyMargin > 1 {
		problems = append(problems, "thresholds: count_only_margin must be in (0, 1]")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Schema builds the identifier set the default query templates render from.
func (c *Config) Schema() variant.Schema {
	return variant.Schema{
		Satellite:   c.Satellite.Qualified(),
		Staging:     c.Staging.Qualified(),
		HubKey:      quoteIdent(c.Columns.HubKey),
		ChangeHash:  quoteIdent(c.Columns.ChangeHash),
		LoadDate:    quoteIdent(c.Columns.LoadDate),
		StagingHash: quoteIdent(c.Columns.StagingHash),
	}
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
