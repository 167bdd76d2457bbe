package confounds

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/llevitis/fmriprep-load-confounds/internal/frame"
)

// ReductionSpec is the motion-compression target: pass columns through
// unreduced, keep a fixed number of principal components, or keep the
// minimum number whose cumulative explained variance reaches a proportion.
// The zero value means no reduction.
type ReductionSpec struct {
	kind       reductionKind
	proportion float64
	count      int
}

type reductionKind int

const (
	reductionNone reductionKind = iota
	reductionVariance
	reductionCount
)

// NoReduction passes the raw motion columns through unchanged.
func NoReduction() ReductionSpec {
	return ReductionSpec{}
}

// VarianceTarget keeps the minimum number of components whose cumulative
// explained variance is at least p, with 0 < p < 1.
func VarianceTarget(p float64) ReductionSpec {
	return ReductionSpec{kind: reductionVariance, proportion: p}
}

// ComponentCount keeps exactly k components, with k >= 1.
func ComponentCount(k int) ReductionSpec {
	return ReductionSpec{kind: reductionCount, count: k}
}

// ParseReductionSpec converts the numeric n-components convention into a
// ReductionSpec: 0 means no reduction, a value in (0,1) is a variance
// target, and an integer >= 1 is a fixed component count.
func ParseReductionSpec(v float64) (ReductionSpec, error) {
	switch {
	case v == 0:
		return NoReduction(), nil
	case v > 0 && v < 1:
		return VarianceTarget(v), nil
	case v >= 1 && v == math.Trunc(v):
		return ComponentCount(int(v)), nil
	default:
		return ReductionSpec{}, fmt.Errorf("invalid n-components value %g: want 0, a proportion in (0,1), or an integer >= 1", v)
	}
}

func (s ReductionSpec) validate() error {
	switch s.kind {
	case reductionNone:
		return nil
	case reductionVariance:
		if s.proportion <= 0 || s.proportion >= 1 {
			return fmt.Errorf("variance target %g out of range (0,1)", s.proportion)
		}
		return nil
	case reductionCount:
		if s.count < 1 {
			return fmt.Errorf("component count %d must be >= 1", s.count)
		}
		return nil
	default:
		return fmt.Errorf("unknown reduction kind %d", s.kind)
	}
}

// IsNone reports whether the spec requests no reduction.
func (s ReductionSpec) IsNone() bool {
	return s.kind == reductionNone
}

func (s ReductionSpec) String() string {
	switch s.kind {
	case reductionVariance:
		return fmt.Sprintf("variance=%g", s.proportion)
	case reductionCount:
		return fmt.Sprintf("components=%d", s.count)
	default:
		return "none"
	}
}

// ReductionInfo records what the motion-reduction step did to an output
// table, so callers can account for dropped rows and retained variance.
type ReductionInfo struct {
	// Applied is true when principal components replaced the raw motion
	// columns. False means the motion columns passed through unreduced or
	// no motion block was produced at all.
	Applied bool

	// SourceColumns are the motion columns sourced from the raw table, in
	// output order.
	SourceColumns []string

	// Components is the number of motion_pca_* columns produced.
	Components int

	// RowsDropped is how many rows were removed by complete-case filtering
	// before the decomposition. The drop applies to the whole output table.
	RowsDropped int

	// ExplainedVariance holds the per-component proportion of total motion
	// variance, in descending order, one entry per retained component.
	ExplainedVariance []float64
}

// pcaMotion decomposes the complete-case motion table into principal
// component scores. Components come out in descending explained-variance
// order and are named motion_pca_1, motion_pca_2, ...
func pcaMotion(motion *frame.Frame, spec ReductionSpec) (*frame.Frame, []float64, error) {
	n := motion.NumRows()
	d := motion.NumColumns()
	if n < 2 {
		return nil, nil, &InsufficientDataError{
			CompleteRows: n,
			Reason:       fmt.Sprintf("%d complete rows left after removing missing values, need at least 2", n),
		}
	}

	centered := mat.NewDense(n, d, nil)
	for j, name := range motion.Columns() {
		col, _ := motion.Column(name)
		mean := stat.Mean(col, nil)
		for i, v := range col {
			centered.Set(i, j, v-mean)
		}
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(centered, nil); !ok {
		return nil, nil, &InsufficientDataError{
			CompleteRows: n,
			Reason:       "principal component factorization failed",
		}
	}
	vars := pc.VarsTo(nil)
	total := floats.Sum(vars)

	k, err := resolveComponents(spec, vars, total, n, d)
	if err != nil {
		return nil, nil, err
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	var scores mat.Dense
	scores.Mul(centered, vecs.Slice(0, d, 0, k))

	names := make([]string, k)
	cols := make([][]float64, k)
	explained := make([]float64, k)
	for j := 0; j < k; j++ {
		names[j] = fmt.Sprintf("motion_pca_%d", j+1)
		cols[j] = mat.Col(nil, j, &scores)
		if total > 0 {
			explained[j] = vars[j] / total
		}
	}

	out, err := frame.New(names, cols)
	if err != nil {
		return nil, nil, err
	}
	return out, explained, nil
}

// resolveComponents turns the spec into a concrete component count. vars are
// the per-component variances in descending order; their length is the rank
// bound min(rows, columns).
func resolveComponents(spec ReductionSpec, vars []float64, total float64, n, d int) (int, error) {
	maxK := len(vars)

	switch spec.kind {
	case reductionCount:
		if spec.count > maxK {
			return 0, &InsufficientDataError{
				CompleteRows: n,
				Reason: fmt.Sprintf("%d components requested but at most %d supported by %d complete rows and %d motion columns",
					spec.count, maxK, n, d),
			}
		}
		return spec.count, nil

	case reductionVariance:
		if !(total > 0) {
			return 0, &InsufficientDataError{
				CompleteRows: n,
				Reason:       fmt.Sprintf("variance target %g unreachable: motion columns have zero total variance", spec.proportion),
			}
		}
		cum := 0.0
		for i, v := range vars {
			cum += v
			if cum/total >= spec.proportion {
				return i + 1, nil
			}
		}
		// Rounding can leave the cumulative ratio a hair under 1; every
		// component together is the closest the data gets to the target.
		return maxK, nil

	default:
		return 0, fmt.Errorf("reduction spec %v cannot be resolved to a component count", spec)
	}
}
