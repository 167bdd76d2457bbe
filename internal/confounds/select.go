package confounds

import "strings"

// Selection is the resolved set of column names to retain, split into the
// motion and non-motion subsets. The subsets are disjoint and each preserves
// first-seen order: requests are resolved in the order given, and a strategy
// adds its matches in raw-table column order.
type Selection struct {
	Motion    []string
	NonMotion []string
}

// Columns returns the full selection, non-motion first.
func (s Selection) Columns() []string {
	out := make([]string, 0, len(s.NonMotion)+len(s.Motion))
	out = append(out, s.NonMotion...)
	out = append(out, s.Motion...)
	return out
}

// SelectColumns resolves a list of requests against the raw table's column
// names. A request that is a known strategy adds every raw column matching
// one of its patterns; anything else is a literal column name, added as-is
// whether or not the table has it (absence surfaces later, when the column
// is sliced). Duplicates collapse to the first occurrence.
func SelectColumns(rawColumns []string, requests []string) Selection {
	var sel Selection
	seen := make(map[string]bool)

	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		if IsMotionColumn(name) {
			sel.Motion = append(sel.Motion, name)
		} else {
			sel.NonMotion = append(sel.NonMotion, name)
		}
	}

	for _, req := range requests {
		patterns, ok := Patterns(Strategy(req))
		if !ok {
			add(req)
			continue
		}
		for _, col := range rawColumns {
			if matchesAny(col, patterns) {
				add(col)
			}
		}
	}

	return sel
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}
