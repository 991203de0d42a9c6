package recsel

import (
	"math/rand"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/hkhanna/recutils/rec"
	"github.com/hkhanna/recutils/sex"
)

var quickFolder = cases.Fold()

// Query runs the ten-step pipeline of spec §4.7 against d.RS.
func (d *Driver) Query(spec QuerySpec) (*QueryResult, error) {
	records := d.filterByType(spec.RecordType)

	if spec.Indexes != "" {
		kept, err := d.filterByIndex(records, spec.Indexes)
		if err != nil {
			return nil, err
		}
		records = kept
	}

	if spec.Quick != "" {
		records = filterByQuick(records, spec.Quick, spec.CaseInsensitive)
	}

	sink := &diagnosticSink{}
	if spec.Expression != "" {
		kept, err := d.filterBySex(records, spec.Expression, spec.CaseInsensitive, sink)
		if err != nil {
			return nil, err
		}
		records = kept
	}

	if spec.RandomCount > 0 {
		records = randomSample(records, spec.RandomCount)
	}

	if len(spec.Sort) > 0 {
		sortRecords(records, spec.Sort)
	}

	var groups [][]*rec.Record
	if len(spec.GroupBy) > 0 {
		groups = groupContiguous(records, spec.GroupBy)
	}

	if len(spec.Uniq) > 0 {
		records = uniqAdjacent(records, spec.Uniq)
	}

	result := &QueryResult{Diagnostics: sink.diags}

	if spec.Count {
		result.Count = len(records)
		result.HasCount = true
		return result, nil
	}

	result.Records = records
	result.Groups = groups
	return result, nil
}

func (d *Driver) filterByType(recordType string) []*rec.Record {
	if recordType == "" {
		return append([]*rec.Record{}, d.RS.Records...)
	}
	return d.RS.ByType(recordType)
}

func (d *Driver) filterByIndex(records []*rec.Record, spec string) ([]*rec.Record, error) {
	idxSet, err := parseIndexSpec(spec)
	if err != nil {
		return nil, err
	}
	var out []*rec.Record
	for i, r := range records {
		if idxSet[i] {
			out = append(out, r)
		}
	}
	return out, nil
}

func filterByQuick(records []*rec.Record, needle string, caseInsensitive bool) []*rec.Record {
	if caseInsensitive {
		needle = quickFolder.String(needle)
	}
	var out []*rec.Record
	for _, r := range records {
		for _, f := range r.Fields {
			v := f.Value
			if caseInsensitive {
				v = quickFolder.String(v)
			}
			if strings.Contains(v, needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func (d *Driver) filterBySex(records []*rec.Record, expression string, caseInsensitive bool, sink *diagnosticSink) ([]*rec.Record, error) {
	expr, err := d.compile(expression)
	if err != nil {
		return nil, err
	}
	ev := &sex.Evaluator{CaseInsensitive: caseInsensitive}
	var out []*rec.Record
	for _, r := range records {
		v := ev.Eval(expr, r, r.Descriptor)
		pass, diag := sex.Truthy(v)
		if diag != nil {
			sink.record(r, diag)
			continue
		}
		if pass {
			out = append(out, r)
		}
	}
	return out, nil
}

// randomSample returns a uniform sample of size min(m, len(records))
// without replacement, restoring input order (spec §4.7 step 5; §8
// boundary: m >= |RS| returns all records in input order).
func randomSample(records []*rec.Record, m int) []*rec.Record {
	if m >= len(records) {
		return append([]*rec.Record{}, records...)
	}
	idx := rand.Perm(len(records))[:m]
	sort.Ints(idx)
	out := make([]*rec.Record, len(idx))
	for i, ix := range idx {
		out[i] = records[ix]
	}
	return out
}

func projectionKey(r *rec.Record, keys []string) string {
	var parts []string
	for _, k := range keys {
		parts = append(parts, k+"=", strings.Join(r.GetFields(k), "\x1f"))
	}
	return strings.Join(parts, "\x00")
}

// groupContiguous partitions records into contiguous runs of equal
// projectionKey (spec §4.7 step 7, §9's resolved "contiguous, not full
// grouping" open question).
func groupContiguous(records []*rec.Record, keys []string) [][]*rec.Record {
	if len(records) == 0 {
		return nil
	}
	var groups [][]*rec.Record
	cur := []*rec.Record{records[0]}
	curKey := projectionKey(records[0], keys)
	for _, r := range records[1:] {
		k := projectionKey(r, keys)
		if k == curKey {
			cur = append(cur, r)
			continue
		}
		groups = append(groups, cur)
		cur = []*rec.Record{r}
		curKey = k
	}
	groups = append(groups, cur)
	return groups
}

// uniqAdjacent removes adjacent records sharing the same projected field
// set (spec §4.7 step 8).
func uniqAdjacent(records []*rec.Record, keys []string) []*rec.Record {
	if len(records) == 0 {
		return records
	}
	out := []*rec.Record{records[0]}
	prevKey := projectionKey(records[0], keys)
	for _, r := range records[1:] {
		k := projectionKey(r, keys)
		if k == prevKey {
			continue
		}
		out = append(out, r)
		prevKey = k
	}
	return out
}
