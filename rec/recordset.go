package rec

import (
	"errors"
	"io"
)

// RecordSet is an ordered collection of Records plus the Descriptors
// declared within it, keyed by record type (spec §3). Once built, a
// RecordSet is never mutated, so it is safe to share across goroutines.
type RecordSet struct {
	Records     []*Record
	Descriptors map[string]*Descriptor
}

// ByType returns every record whose Descriptor.Type equals typeName, in
// record order. Anonymous records (Descriptor == nil) are never
// returned.
func (rs *RecordSet) ByType(typeName string) []*Record {
	var out []*Record
	for _, r := range rs.Records {
		if r.Descriptor != nil && r.Descriptor.Type == typeName {
			out = append(out, r)
		}
	}
	return out
}

// Types returns the record types of the records in this RecordSet, in
// the order of each type's first record. A type whose descriptor has no
// records attached to it is not included.
func (rs *RecordSet) Types() []string {
	out := make([]string, 0, len(rs.Descriptors))
	seen := map[string]bool{}
	for _, r := range rs.Records {
		if r.Descriptor != nil && !seen[r.Descriptor.Type] {
			seen[r.Descriptor.Type] = true
			out = append(out, r.Descriptor.Type)
		}
	}
	return out
}

// Builder assembles a RecordSet from a stream of LogicalLines, one at a
// time. It maintains the current field buffer and the descriptor that is
// currently in scope, attaching that descriptor to every plain record
// built while it is active (spec §9: "descriptor scoping is a
// per-record-type map, not a stack" — only one descriptor is ever active
// for ordinary records at a time, but the map lets later components look
// any declared type up by name regardless of where it appears).
type Builder struct {
	rs         *RecordSet
	cur        []Field
	curLine    int
	activeDesc *Descriptor
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		rs: &RecordSet{Descriptors: map[string]*Descriptor{}},
	}
}

// Feed consumes one LogicalLine. Blank lines flush the current record (if
// any); field lines accumulate into it; comment lines are no-ops.
func (b *Builder) Feed(ll LogicalLine) error {
	switch ll.Kind {
	case CommentLine:
		return nil
	case Blank:
		return b.flush()
	case FieldLine:
		if len(b.cur) == 0 {
			b.curLine = ll.Line
		}
		b.cur = append(b.cur, Field{Name: ll.Name, Value: ll.Value})
		return nil
	default:
		return nil
	}
}

// Finish flushes any pending record and returns the completed RecordSet.
func (b *Builder) Finish() (*RecordSet, error) {
	if err := b.flush(); err != nil {
		return nil, err
	}
	return b.rs, nil
}

func (b *Builder) flush() error {
	if len(b.cur) == 0 {
		return nil
	}
	fields := b.cur
	line := b.curLine
	b.cur = nil

	r := &Record{Fields: fields}

	if isDescriptorRecord(fields) {
		d, err := buildDescriptor(r)
		if err != nil {
			return classifyDescriptorError(line, err)
		}
		if _, exists := b.rs.Descriptors[d.Type]; exists {
			return newParseError(line, DuplicateDescriptor, d.Type)
		}
		b.rs.Descriptors[d.Type] = d
		b.activeDesc = d
		return nil
	}

	r.Descriptor = b.activeDesc
	b.rs.Records = append(b.rs.Records, r)
	return nil
}

func classifyDescriptorError(line int, err error) error {
	switch {
	case errors.Is(err, errMissingRecField):
		return newParseError(line, MissingRecField, err.Error())
	default:
		return newParseError(line, BadDescriptorSyntax, err.Error())
	}
}

// Parse reads a complete recfile from r and returns its RecordSet. It
// streams: at most one physical line of lookahead is held in memory at
// once (spec §5).
func Parse(r io.Reader) (*RecordSet, error) {
	s := NewScanner(r)
	b := NewBuilder()
	for {
		ll, err := s.Next()
		if err == io.EOF {
			return b.Finish()
		}
		if err != nil {
			return nil, err
		}
		if err := b.Feed(ll); err != nil {
			return nil, err
		}
	}
}
