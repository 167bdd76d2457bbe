// Package confounds selects nuisance-regressor columns from fmriprep
// confound tables by named strategy and optionally compresses the
// motion-related columns with a principal-component reduction.
package confounds

import "strings"

// Strategy names a fixed bundle of substring patterns that pick confound
// columns out of a raw table. Any other string handed to the selector is
// treated as a literal column name.
type Strategy string

// Strategy constants
const (
	StrategyMotion         Strategy = "motion"
	StrategyMatter         Strategy = "matter"
	StrategyHighPassFilter Strategy = "high_pass_filter"
	StrategyCompCor        Strategy = "compcor"
	StrategyMinimal        Strategy = "minimal"
)

// ValidStrategies contains all valid strategy names
var ValidStrategies = []Strategy{
	StrategyMotion,
	StrategyMatter,
	StrategyHighPassFilter,
	StrategyCompCor,
	StrategyMinimal,
}

// strategyPatterns maps each base strategy to the substrings that identify
// its columns. Matching is plain case-sensitive containment, deliberately
// permissive: "rot" also picks up a column named "rotation_outlier".
var strategyPatterns = map[Strategy][]string{
	StrategyMotion:         {"trans", "rot"},
	StrategyMatter:         {"csf", "white_matter"},
	StrategyHighPassFilter: {"cosine"},
	StrategyCompCor:        {"comp_cor"},
}

// IsValidStrategy checks if the given name is in the list of valid strategies
func IsValidStrategy(name string) bool {
	for _, s := range ValidStrategies {
		if name == string(s) {
			return true
		}
	}
	return false
}

// GetValidStrategiesString returns a comma-separated string of valid strategies for error messages
func GetValidStrategiesString() string {
	return "motion, matter, high_pass_filter, compcor, minimal"
}

// Patterns returns the substring patterns for a strategy. The minimal
// strategy is the union of motion, high_pass_filter and matter, in that
// order. Unknown names return false so callers fall through to
// literal-column semantics instead of matching nothing.
func Patterns(s Strategy) ([]string, bool) {
	if s == StrategyMinimal {
		var out []string
		out = append(out, strategyPatterns[StrategyMotion]...)
		out = append(out, strategyPatterns[StrategyHighPassFilter]...)
		out = append(out, strategyPatterns[StrategyMatter]...)
		return out, true
	}
	p, ok := strategyPatterns[s]
	if !ok {
		return nil, false
	}
	return append([]string(nil), p...), true
}

// IsMotionColumn checks if a column name denotes a motion confound. A column
// is motion iff its name contains "rot" or "trans" as a substring.
func IsMotionColumn(name string) bool {
	return strings.Contains(name, "rot") || strings.Contains(name, "trans")
}
