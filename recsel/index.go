package recsel

import (
	"fmt"
	"strconv"
	"strings"
)

// parseIndexSpec parses the grammar of spec §4.7 step 2: a comma-
// separated list of single non-negative integers or inclusive ranges
// "a-b". It returns the set of indexes selected, as a membership map
// (callers only ever need "is index k selected").
func parseIndexSpec(spec string) (map[int]bool, error) {
	out := map[int]bool{}
	if strings.TrimSpace(spec) == "" {
		return out, nil
	}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i := strings.IndexByte(part, '-'); i > 0 {
			lo, err := strconv.Atoi(strings.TrimSpace(part[:i]))
			if err != nil {
				return nil, fmt.Errorf("invalid index range %q: %w", part, err)
			}
			hi, err := strconv.Atoi(strings.TrimSpace(part[i+1:]))
			if err != nil {
				return nil, fmt.Errorf("invalid index range %q: %w", part, err)
			}
			if hi < lo {
				lo, hi = hi, lo
			}
			for k := lo; k <= hi; k++ {
				out[k] = true
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: %w", part, err)
		}
		out[n] = true
	}
	return out, nil
}
