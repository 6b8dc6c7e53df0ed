package config

// Example is the commented starter config written by "satbench init".
const Example = `# satbench run configuration.
#
# satbench compares a baseline satellite query (full history) against an
# optimized one (recent date window) and reports whether the optimization is
# safe to adopt. All queries are strictly read-only.

satellite:
  schema: rawvault
  name: s_customer_details

staging:
  schema: stage
  name: stage_customer_data

columns:
  hub_key: hk_h_customer
  change_hash: dss_change_hash
  load_date: dss_load_date
  staging_hash: dss_change_hash_customer_details

# Days of satellite history the optimized variant keeps.
window_days: 60

# Staging rows sampled by each profile.
fast_sample_size: 50000
deep_sample_size: 1000000

# Extrapolations from samples below this share of the full population are
# flagged unreliable (percent).
reliability_floor_pct: 1.0

# Pin one repeatable-read transaction for the whole run so both variants see
# the same data. Disable if your warehouse role cannot hold transactions.
snapshot: true

# Verdict thresholds (percent).
thresholds:
  strong_min_improvement_pct: 50
  min_improvement_pct: 20
  strong_max_data_diff_pct: 5
  max_data_diff_pct: 10
  count_only_margin: 0.5

# Optional SQL overrides. Templates may reference {{.WindowDays}} and
# {{.SampleSize}}; mutating statements are rejected.
# queries:
#   baseline_current_rows: |
#     WITH sat_current AS (...) SELECT count(*) FROM sat_current
`
