// Package recsel implements the query driver (C7): it assembles type,
// index, quick-search, SEX, and sampling filters over a rec.RecordSet
// and performs projection, sorting, grouping, uniquing, and formatted
// output (spec §4.7, §6).
package recsel

import (
	"github.com/hkhanna/recutils/rec"
	"github.com/hkhanna/recutils/sex"
)

// QuerySpec is the language-agnostic query options table of spec §6,
// every field optional. A zero-value QuerySpec matches every record and
// emits it in default rec format.
type QuerySpec struct {
	RecordType string

	Indexes string

	Expression string

	Quick string

	RandomCount int

	PrintFields []string
	PrintValues []string
	PrintRow    []string

	Count bool

	IncludeDescriptors bool
	Collapse           bool
	CaseInsensitive    bool

	Sort    []string
	GroupBy []string
	Uniq    []string
}

// QueryResult is the output of Query: either a count or a slice of
// surviving records (already sorted/grouped/uniqued), plus whatever
// evaluation diagnostics were collected along the way.
type QueryResult struct {
	Records     []*rec.Record
	Groups      [][]*rec.Record
	Count       int
	HasCount    bool
	Diagnostics []Diagnostic
}

// Diagnostic records one non-fatal SEX evaluation error encountered
// while filtering (spec §7: such errors "do not abort the query").
type Diagnostic struct {
	Record *rec.Record
	Err    error
}

// Driver runs queries against a single RecordSet. It owns the compiled
// expression cache, so repeated queries against the same RecordSet reuse
// compiled expressions; each Query builds its own sex.Evaluator from the
// QuerySpec's CaseInsensitive flag.
type Driver struct {
	RS *rec.RecordSet

	// ConstraintEval is not read by the Driver: Query never validates
	// records. It holds an evaluator that callers building a recfix-style
	// tool on top of this driver can pass to rec.Descriptor.Validate for
	// %constraint enforcement.
	ConstraintEval rec.ConstraintEvaluator

	exprCache *exprCache
}

// NewDriver returns a Driver over rs with its own bounded expression
// cache.
func NewDriver(rs *rec.RecordSet) *Driver {
	return &Driver{RS: rs, exprCache: newExprCache(128)}
}

func (d *Driver) compile(src string) (*sex.Expr, error) {
	return d.exprCache.compile(src)
}
