package variant

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

// Params are the free parameters a query template may reference.
type Params struct {
	WindowDays int
	SampleSize int64
}

// Variant is a named query with its parameters already rendered. Immutable
// once constructed; construction fails if the query could modify data.
type Variant struct {
	Name string
	SQL  string
}

// StatementError reports a template whose rendered form contains a mutating
// statement. Raised at construction, before any execution.
type StatementError struct {
	Variant string
	Verb    string
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("variant %q contains mutating statement %s: only read-only queries are allowed", e.Variant, e.Verb)
}

var (
	stringLiteralRe = regexp.MustCompile(`'(?:[^']|'')*'`)
	lineCommentRe   = regexp.MustCompile(`--[^\n]*`)
	blockCommentRe  = regexp.MustCompile(`(?s)/\*.*?\*/`)

	mutatingVerbRe = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|MERGE|TRUNCATE|DROP|CREATE|ALTER|GRANT|REVOKE|COPY|VACUUM|CALL)\b`)
)

// New renders tmpl with p and validates the result.
func New(name, tmpl string, p Params) (Variant, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return Variant{}, fmt.Errorf("parsing query template %q: %w", name, err)
	}

	var sb strings.Builder
	if err := t.Execute(&sb, p); err != nil {
		return Variant{}, fmt.Errorf("rendering query template %q: %w", name, err)
	}

	sql := strings.TrimSpace(sb.String())
	if sql == "" {
		return Variant{}, fmt.Errorf("query template %q rendered empty", name)
	}

	if verb := mutatingVerb(sql); verb != "" {
		return Variant{}, &StatementError{Variant: name, Verb: verb}
	}

	return Variant{Name: name, SQL: sql}, nil
}

// mutatingVerb returns the first DML/DDL verb found in the normalized query,
// or "" when the query is read-only. Literals and comments are stripped first
// so a value like 'drop zone' does not trip the guard.
func mutatingVerb(sql string) string {
	normalized := stringLiteralRe.ReplaceAllString(sql, "''")
	normalized = lineCommentRe.ReplaceAllString(normalized, "")
	normalized = blockCommentRe.ReplaceAllString(normalized, "")

	m := mutatingVerbRe.FindString(normalized)
	return strings.ToUpper(m)
}
