package recsel

import "github.com/hkhanna/recutils/rec"

// diagnosticSink collects evaluation errors surfaced by the SEX filter
// stage without aborting the query (spec §7).
type diagnosticSink struct {
	diags []Diagnostic
}

func (s *diagnosticSink) record(r *rec.Record, err error) {
	s.diags = append(s.diags, Diagnostic{Record: r, Err: err})
}
