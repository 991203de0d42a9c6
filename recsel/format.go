package recsel

import (
	"strings"

	"github.com/hkhanna/recutils/rec"
)

// Format renders a QueryResult as text according to spec's projection
// priority: print_fields, else print_values, else print_row, else the
// default rec-format rendering (spec §4.7 step 9, §9's resolved
// priority-order open question).
func Format(result *QueryResult, spec QuerySpec) string {
	switch {
	case len(spec.PrintFields) > 0:
		return formatFields(result.Records, spec.PrintFields, spec.Collapse)
	case len(spec.PrintValues) > 0:
		return formatValues(result.Records, spec.PrintValues, spec.Collapse)
	case len(spec.PrintRow) > 0:
		return formatRow(result.Records, spec.PrintRow)
	default:
		return FormatDefault(result, spec)
	}
}

// FormatDefault renders records in rec format, one blank line between
// records, with descriptors interleaved before the first record of each
// type when IncludeDescriptors is set (spec §4.7 formatting rules).
func FormatDefault(result *QueryResult, spec QuerySpec) string {
	var b strings.Builder
	emittedDescriptor := map[string]bool{}
	first := true

	writeSep := func() {
		if first {
			first = false
			return
		}
		b.WriteString("\n")
		if !spec.Collapse {
			b.WriteString("\n")
		}
	}

	for _, r := range result.Records {
		if spec.IncludeDescriptors && r.Descriptor != nil && !emittedDescriptor[r.Descriptor.Type] {
			writeSep()
			b.WriteString(descriptorString(r.Descriptor))
			emittedDescriptor[r.Descriptor.Type] = true
		}
		writeSep()
		b.WriteString(r.String())
	}
	return b.String()
}

func descriptorString(d *rec.Descriptor) string {
	fields := []rec.Field{{Name: "%rec", Value: d.Type}}
	for name := range d.Mandatory {
		fields = append(fields, rec.Field{Name: "%mandatory", Value: name})
	}
	if d.Key != "" {
		fields = append(fields, rec.Field{Name: "%key", Value: d.Key})
	}
	for name, spec := range d.Types {
		fields = append(fields, rec.Field{Name: "%type", Value: name + " " + spec.Raw})
	}
	r := &rec.Record{Fields: fields}
	return r.String()
}

func formatFields(records []*rec.Record, names []string, collapse bool) string {
	wanted := map[string]bool{}
	for _, n := range names {
		wanted[n] = true
	}
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteString("\n")
			if !collapse {
				b.WriteString("\n")
			}
		}
		var lines []string
		for _, f := range r.Fields {
			if wanted[f.Name] {
				lines = append(lines, f.String())
			}
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	return b.String()
}

func formatValues(records []*rec.Record, names []string, collapse bool) string {
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteString("\n")
			if !collapse {
				b.WriteString("\n")
			}
		}
		var lines []string
		for _, name := range names {
			for _, v := range r.GetFields(name) {
				lines = append(lines, v)
			}
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	return b.String()
}

func formatRow(records []*rec.Record, names []string) string {
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		var vals []string
		for _, name := range names {
			vals = append(vals, r.GetFields(name)...)
		}
		b.WriteString(strings.Join(vals, " "))
	}
	return b.String()
}
