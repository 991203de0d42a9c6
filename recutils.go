// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package recutils

import (
	"fmt"
	"io"
	"strings"

	"github.com/hkhanna/recutils/rec"
	"github.com/hkhanna/recutils/recsel"
	"github.com/hkhanna/recutils/sex"
)

// Expr is a compiled selection expression, ready to be evaluated against
// records or used in a QuerySpec.
type Expr = sex.Expr

// Value is the typed result of evaluating an Expr (spec §3).
type Value = sex.Value

// QuerySpec and QueryResult are the recsel query driver's interface
// types (spec §6).
type QuerySpec = recsel.QuerySpec
type QueryResult = recsel.QueryResult

// ParseError and SexError are the two fatal-error taxonomies of spec §7,
// re-exported here so callers of the top-level façade never need to
// import rec or sex directly just to do a type switch on an error.
type ParseError = rec.ParseError
type SexError = sex.SexError

// Violation is a descriptor constraint failure (spec §7).
type Violation = rec.Violation

// Parse reads a complete recfile from text and returns its RecordSet, or
// a *rec.ParseError on the first fatal error (spec §6's `parse`).
func Parse(text string) (*rec.RecordSet, error) {
	return rec.Parse(strings.NewReader(text))
}

// ParseStream is the streaming form of Parse: r is consumed incrementally
// and at most one line of lookahead is held in memory (spec §5, §6's
// `parse_stream`).
func ParseStream(r io.Reader) (*rec.RecordSet, error) {
	return rec.Parse(r)
}

// Compile parses a SEX expression string into an *Expr, using the
// process-wide compiled-expression cache so repeated calls with the same
// source text reuse the parse (spec §6's `compile`).
func Compile(src string) (*Expr, error) {
	return sharedExprCache.compile(src)
}

// Evaluate evaluates expr against r using d to decide field-reference
// type coercion (spec §6's `evaluate`). caseInsensitive controls string
// equality folding per spec §4.6.
func Evaluate(expr *Expr, r *rec.Record, d *rec.Descriptor, caseInsensitive bool) Value {
	ev := &sex.Evaluator{CaseInsensitive: caseInsensitive}
	return ev.Eval(expr, r, d)
}

// Query runs the ten-step query pipeline of spec §4.7 over rs (spec §6's
// `query`). Each call builds a fresh recsel.Driver; callers running many
// queries against the same RecordSet should construct a recsel.Driver
// directly to share its expression cache across calls.
func Query(rs *rec.RecordSet, spec QuerySpec) (*QueryResult, error) {
	return recsel.NewDriver(rs).Query(spec)
}

// FormatDefault renders a QueryResult in default rec format (spec §6's
// `format_default`).
func FormatDefault(result *QueryResult) string {
	return recsel.FormatDefault(result, QuerySpec{})
}

// sexConstraintEvaluator adapts the sex package's Evaluate to rec's
// ConstraintEvaluator interface, so %constraint descriptor fields
// (SPEC_FULL.md §3) can be checked without rec importing sex directly
// (spec §2's component independence between C3 and C4-C6).
type sexConstraintEvaluator struct {
	CaseInsensitive bool
}

// NewConstraintEvaluator returns a rec.ConstraintEvaluator backed by the
// SEX compiler and evaluator, for use with rec.Descriptor.Validate,
// ValidateSet, and ValidateStrict.
func NewConstraintEvaluator(caseInsensitive bool) rec.ConstraintEvaluator {
	return &sexConstraintEvaluator{CaseInsensitive: caseInsensitive}
}

func (ce *sexConstraintEvaluator) EvalConstraint(expr string, r *rec.Record, d *rec.Descriptor) (bool, error) {
	compiled, err := sharedExprCache.compile(expr)
	if err != nil {
		return false, fmt.Errorf("compiling %%constraint %q: %w", expr, err)
	}
	ev := &sex.Evaluator{CaseInsensitive: ce.CaseInsensitive}
	v := ev.Eval(compiled, r, d)
	pass, diag := sex.Truthy(v)
	if diag != nil {
		return false, diag
	}
	return pass, nil
}
