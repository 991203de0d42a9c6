package recsel

import (
	"sort"
	"strconv"

	"github.com/araddon/dateparse"

	"github.com/hkhanna/recutils/rec"
)

// sortRecords stably sorts records by the listed field names in order
// (spec §4.7 step 6): missing fields sort before present ones; fields
// typed date sort chronologically (a supplement — see SPEC_FULL.md §3);
// fields typed numeric sort numerically; everything else falls back to
// the same numeric-coerce-else-lexicographic rule the SEX evaluator uses
// for comparison (spec §4.6), since there is no descriptor to consult
// for an anonymous record.
func sortRecords(records []*rec.Record, keys []string) {
	sort.SliceStable(records, func(i, j int) bool {
		for _, key := range keys {
			c := compareByKey(records[i], records[j], key)
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
}

func compareByKey(a, b *rec.Record, key string) int {
	av, aok := a.GetField(key)
	bv, bok := b.GetField(key)
	if !aok && !bok {
		return 0
	}
	if !aok {
		return -1
	}
	if !bok {
		return 1
	}

	if kind, ok := fieldTypeKind(a, key); ok && kind == rec.TypeDate {
		return compareDate(av, bv)
	}
	if kind, ok := fieldTypeKind(b, key); ok && kind == rec.TypeDate {
		return compareDate(av, bv)
	}
	return compareCoerced(av, bv)
}

func fieldTypeKind(r *rec.Record, name string) (rec.TypeSpecKind, bool) {
	if r.Descriptor == nil {
		return 0, false
	}
	spec, ok := r.Descriptor.Types[name]
	if !ok {
		return 0, false
	}
	return spec.Kind, true
}

func compareDate(a, b string) int {
	ta, errA := dateparse.ParseAny(a)
	tb, errB := dateparse.ParseAny(b)
	if errA != nil || errB != nil {
		return compareCoerced(a, b)
	}
	switch {
	case ta.Before(tb):
		return -1
	case ta.After(tb):
		return 1
	default:
		return 0
	}
}

// compareCoerced mirrors sex's own comparison coercion rule: numeric if
// both sides parse, otherwise lexicographic on the raw strings.
func compareCoerced(a, b string) int {
	af, aerr := strconv.ParseFloat(a, 64)
	bf, berr := strconv.ParseFloat(b, 64)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
