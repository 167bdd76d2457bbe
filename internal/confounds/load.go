package confounds

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/llevitis/fmriprep-load-confounds/internal/bids"
	"github.com/llevitis/fmriprep-load-confounds/internal/frame"
	"github.com/llevitis/fmriprep-load-confounds/internal/fsutil"
	"github.com/llevitis/fmriprep-load-confounds/internal/monitoring"
)

// Options control a confound load.
type Options struct {
	// Strategies is the list of strategy names and literal column names to
	// resolve, in request order. Empty means the minimal strategy.
	Strategies []string

	// MotionModel picks which motion column variants are sourced for
	// reduction. Empty means Model6Params.
	MotionModel MotionModel

	// Reduction is the motion-compression target. The zero value passes the
	// raw motion columns through unreduced.
	Reduction ReductionSpec

	// UniformFullModel makes the full model expand like the other models,
	// base axes plus its own variants, instead of the historical
	// all-variant expansion.
	UniformFullModel bool

	// Workers bounds batch parallelism. Zero or negative means one worker
	// per CPU.
	Workers int
}

// DefaultOptions returns the historical defaults: minimal strategy, 6params
// motion model, 95% variance target.
func DefaultOptions() Options {
	return Options{
		Strategies:  []string{string(StrategyMinimal)},
		MotionModel: Model6Params,
		Reduction:   VarianceTarget(0.95),
	}
}

// Result is one processed confounds table together with its selection and
// reduction bookkeeping.
type Result struct {
	// Path is the confounds file the table was loaded from; empty for
	// in-memory frames.
	Path string

	// Frame is the assembled output: selected non-motion columns first,
	// then the raw or reduced motion columns.
	Frame *frame.Frame

	// Selection is the resolved column partition.
	Selection Selection

	// Reduction describes what happened to the motion columns.
	Reduction ReductionInfo

	// Elapsed is the wall time spent loading and processing the file; zero
	// for in-memory frames.
	Elapsed time.Duration
}

// LoadFrame runs confound selection and motion reduction on an in-memory
// table.
//
// The motion block is produced only when the selection contains at least one
// of the six base motion parameters; motion-variant columns selected without
// any base parameter are dropped. When reduction is active, rows with
// missing motion values are removed from the whole output table so the
// non-motion columns stay aligned with the component scores; the drop count
// is reported in Result.Reduction.
func LoadFrame(raw *frame.Frame, opts Options) (*Result, error) {
	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies = []string{string(StrategyMinimal)}
	}
	model := opts.MotionModel
	if model == "" {
		model = Model6Params
	}
	if !IsValidMotionModel(string(model)) {
		return nil, fmt.Errorf("unknown motion model %q: valid models are %s", model, GetValidMotionModelsString())
	}
	if err := opts.Reduction.validate(); err != nil {
		return nil, fmt.Errorf("invalid reduction spec: %w", err)
	}

	sel := SelectColumns(raw.Columns(), strategies)

	nonMotion, err := raw.Select(sel.NonMotion...)
	if err != nil {
		return nil, err
	}

	res := &Result{Selection: sel}

	if !selectionHasMotionParams(sel) {
		res.Frame = nonMotion
		return res, nil
	}

	expansion, err := ExpandMotionModel(model, opts.UniformFullModel)
	if err != nil {
		return nil, err
	}
	source := presentColumns(raw, expansion)
	if len(source) == 0 {
		res.Frame = nonMotion
		return res, nil
	}
	res.Reduction.SourceColumns = source

	motion, err := raw.Select(source...)
	if err != nil {
		return nil, err
	}

	if opts.Reduction.IsNone() {
		out, err := concatFrames(nonMotion, motion)
		if err != nil {
			return nil, err
		}
		res.Frame = out
		return res, nil
	}

	complete, err := motion.CompleteRows(source)
	if err != nil {
		return nil, err
	}
	res.Reduction.RowsDropped = raw.NumRows() - len(complete)

	motionComplete, err := motion.FilterRows(complete)
	if err != nil {
		return nil, err
	}

	scores, explained, err := pcaMotion(motionComplete, opts.Reduction)
	if err != nil {
		return nil, err
	}

	nonMotionAligned := nonMotion
	if nonMotion.NumColumns() > 0 {
		nonMotionAligned, err = nonMotion.FilterRows(complete)
		if err != nil {
			return nil, err
		}
	}

	out, err := concatFrames(nonMotionAligned, scores)
	if err != nil {
		return nil, err
	}
	res.Frame = out
	res.Reduction.Applied = true
	res.Reduction.Components = scores.NumColumns()
	res.Reduction.ExplainedVariance = explained
	return res, nil
}

// LoadFile loads the confounds table referenced by path and processes it.
// Preprocessed-image paths are rewritten to their confounds siblings first.
func LoadFile(fsys fsutil.FileSystem, path string, opts Options) (*Result, error) {
	start := time.Now()
	resolved := bids.ConfoundsPath(path)
	raw, err := frame.ReadFile(fsys, resolved)
	if err != nil {
		return nil, err
	}
	res, err := LoadFrame(raw, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resolved, err)
	}
	res.Path = resolved
	res.Elapsed = time.Since(start)
	return res, nil
}

// LoadFiles processes a batch of file references in parallel, preserving
// input order in the returned slice. The first failing element aborts the
// whole batch; LoadFilesEach is the per-element alternative.
func LoadFiles(ctx context.Context, fsys fsutil.FileSystem, paths []string, opts Options) ([]*Result, error) {
	if len(paths) == 0 {
		return []*Result{}, nil
	}

	results := make([]*Result, len(paths))
	errs := make([]error, len(paths))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workerCount(opts.Workers, len(paths)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				res, err := LoadFile(fsys, paths[i], opts)
				if err != nil {
					errs[i] = err
					cancel()
					continue
				}
				results[i] = res
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Prefer the real failure over the cancellations it triggered on the
	// elements that never ran.
	var firstErr error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if firstErr == nil {
			firstErr = err
		}
		if !errors.Is(err, context.Canceled) {
			return nil, err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// FileResult pairs one batch element with its outcome.
type FileResult struct {
	Path   string
	Result *Result
	Err    error
}

// LoadFilesEach processes a batch like LoadFiles but collects one outcome
// per element instead of aborting on the first failure. Only cancellation
// of ctx stops the batch early; elements skipped by cancellation carry the
// context error.
func LoadFilesEach(ctx context.Context, fsys fsutil.FileSystem, paths []string, opts Options) []FileResult {
	out := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return out
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workerCount(opts.Workers, len(paths)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i].Path = paths[i]
				if err := ctx.Err(); err != nil {
					out[i].Err = err
					continue
				}
				res, err := LoadFile(fsys, paths[i], opts)
				if err != nil {
					monitoring.Logf("confounds: %s: %v", paths[i], err)
					out[i].Err = err
					continue
				}
				out[i].Result = res
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}

// Load mirrors the permissive historical entry point: source may be an
// in-memory *frame.Frame, a path string, or a []string batch. Any other
// shape fails with ErrInvalidInput. Results always come back as a slice,
// length 1 for single sources.
func Load(ctx context.Context, fsys fsutil.FileSystem, source interface{}, opts Options) ([]*Result, error) {
	switch src := source.(type) {
	case *frame.Frame:
		res, err := LoadFrame(src, opts)
		if err != nil {
			return nil, err
		}
		return []*Result{res}, nil
	case string:
		res, err := LoadFile(fsys, src, opts)
		if err != nil {
			return nil, err
		}
		return []*Result{res}, nil
	case []string:
		return LoadFiles(ctx, fsys, src, opts)
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidInput, source)
	}
}

func selectionHasMotionParams(sel Selection) bool {
	for _, p := range MotionParams {
		for _, m := range sel.Motion {
			if p == m {
				return true
			}
		}
	}
	return false
}

func presentColumns(f *frame.Frame, names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if f.HasColumn(name) {
			out = append(out, name)
		}
	}
	return out
}

func concatFrames(a, b *frame.Frame) (*frame.Frame, error) {
	names := make([]string, 0, a.NumColumns()+b.NumColumns())
	cols := make([][]float64, 0, a.NumColumns()+b.NumColumns())
	for _, f := range []*frame.Frame{a, b} {
		for _, name := range f.Columns() {
			col, _ := f.Column(name)
			names = append(names, name)
			cols = append(cols, col)
		}
	}
	return frame.New(names, cols)
}

func workerCount(requested, jobs int) int {
	n := requested
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n > jobs {
		n = jobs
	}
	if n < 1 {
		n = 1
	}
	return n
}
