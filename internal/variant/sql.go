package variant

import "fmt"

// Schema carries the already-validated, quote-ready identifiers the default
// query templates are built from.
type Schema struct {
	Satellite   string // fully qualified satellite table
	Staging     string // fully qualified staging table
	HubKey      string
	ChangeHash  string
	LoadDate    string
	StagingHash string
}

// currentRowsCTE selects the latest satellite row per hub key. The optimized
// form restricts history to the recent date window before picking the latest
// row, which is the optimization under test.
func currentRowsCTE(s Schema, windowed bool) string {
	where := ""
	if windowed {
		where = fmt.Sprintf("\n    WHERE %s >= current_date - {{.WindowDays}}", s.LoadDate)
	}
	return fmt.Sprintf(`sat_current AS (
    SELECT DISTINCT ON (%[1]s) %[1]s, %[2]s
    FROM %[3]s%[4]s
    ORDER BY %[1]s, %[5]s DESC
)`, s.HubKey, s.ChangeHash, s.Satellite, where, s.LoadDate)
}

// CurrentRowsCount isolates the satellite-side comparison: how many current
// rows each approach produces, and at what cost.
func CurrentRowsCount(s Schema, windowed bool) string {
	return fmt.Sprintf(`WITH %s
SELECT count(*) FROM sat_current`, currentRowsCTE(s, windowed))
}

func candidateBody(s Schema) string {
	return fmt.Sprintf(`staging_sample AS (
    SELECT * FROM %[1]s LIMIT {{.SampleSize}}
)
%%s
FROM staging_sample s
WHERE NOT EXISTS (
    SELECT 1 FROM sat_current sc
    WHERE s.%[2]s = sc.%[2]s
      AND s.%[3]s = sc.%[4]s
)`, s.Staging, s.HubKey, s.StagingHash, s.ChangeHash)
}

// InsertCandidatesCount is the business query: how many staging rows would
// actually be inserted under each approach.
func InsertCandidatesCount(s Schema, windowed bool) string {
	body := fmt.Sprintf(candidateBody(s), "SELECT count(*)")
	return fmt.Sprintf("WITH %s,\n%s", currentRowsCTE(s, windowed), body)
}

// InsertCandidateRows returns the candidate rows themselves (hub key plus
// change hash), for fingerprint-level comparison on a bounded sample.
func InsertCandidateRows(s Schema, windowed bool) string {
	sel := fmt.Sprintf("SELECT s.%s, s.%s", s.HubKey, s.StagingHash)
	body := fmt.Sprintf(candidateBody(s), sel)
	return fmt.Sprintf("WITH %s,\n%s\nORDER BY s.%s", currentRowsCTE(s, windowed), body, s.HubKey)
}

// StagingVolume characterizes the full staging population.
func StagingVolume(s Schema) string {
	return fmt.Sprintf("SELECT count(*) FROM %s", s.Staging)
}

// StagingDistinctKeys counts distinct hub keys landing in staging.
func StagingDistinctKeys(s Schema) string {
	return fmt.Sprintf("SELECT count(DISTINCT %s) FROM %s", s.HubKey, s.Staging)
}
