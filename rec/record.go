package rec

import "strings"

// Field is a single (name, value) pair. Names are never unique within a
// Record: fields are an ordered multiset (spec §3).
type Field struct {
	Name  string
	Value string
}

// String renders a Field in rec format, folding embedded newlines into
// '+'-continuation lines the way the default formatter does.
func (f Field) String() string {
	if !strings.Contains(f.Value, "\n") {
		return f.Name + ": " + f.Value
	}
	lines := strings.Split(f.Value, "\n")
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteString(": ")
	b.WriteString(lines[0])
	for _, l := range lines[1:] {
		b.WriteString("\n+ ")
		b.WriteString(l)
	}
	return b.String()
}

// Record is an ordered sequence of Fields plus a reference to the
// Descriptor in scope when it was built, if any (spec §3).
type Record struct {
	Fields     []Field
	Descriptor *Descriptor
}

// String renders a Record in rec format: one field per line, no
// trailing blank line.
func (r *Record) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, "\n")
}

// GetField returns the value of the first field with the given name and
// whether it was found.
func (r *Record) GetField(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// GetFields returns the values of every occurrence of name, in record
// order.
func (r *Record) GetFields(name string) []string {
	var out []string
	for _, f := range r.Fields {
		if f.Name == name {
			out = append(out, f.Value)
		}
	}
	return out
}

// FieldAt returns the k-th (zero-based) occurrence of name.
func (r *Record) FieldAt(name string, k int) (string, bool) {
	n := 0
	for _, f := range r.Fields {
		if f.Name == name {
			if n == k {
				return f.Value, true
			}
			n++
		}
	}
	return "", false
}

// FieldCount returns the number of occurrences of name. It is always
// defined: an absent field counts as zero (spec §4.6).
func (r *Record) FieldCount(name string) int {
	n := 0
	for _, f := range r.Fields {
		if f.Name == name {
			n++
		}
	}
	return n
}

// HasField reports whether name occurs at least once.
func (r *Record) HasField(name string) bool {
	_, ok := r.GetField(name)
	return ok
}

// isDescriptorRecord reports whether the record's first field is a
// %-prefixed meta-field, i.e. whether this Record is itself a Descriptor
// (spec §4.2). buildDescriptor then requires that first field to be %rec.
func isDescriptorRecord(fields []Field) bool {
	return len(fields) > 0 && strings.HasPrefix(fields[0].Name, "%")
}
