// Package frame provides the named-column numeric table that confound
// selection operates on, along with its tab-separated codec. Columns are
// float64 series of equal length; one row per time point. Column order is
// insertion order and is preserved by every operation.
package frame

import (
	"fmt"
	"math"
)

// Frame is an ordered collection of named float64 columns of equal length.
// Frames are immutable once constructed; operations return new frames.
type Frame struct {
	names []string
	index map[string]int
	cols  [][]float64
	rows  int
}

// MissingColumnError reports a requested column absent from the table. It is
// returned at slicing time so explicit column requests fail fast instead of
// being silently dropped.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found in confounds table", e.Column)
}

// New builds a Frame from parallel name and column slices. Names must be
// unique and non-empty, and all columns must have the same length. The column
// data is copied so later mutation by the caller cannot alter the frame.
func New(names []string, cols [][]float64) (*Frame, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("frame: %d names for %d columns", len(names), len(cols))
	}

	f := &Frame{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
		cols:  make([][]float64, len(cols)),
	}

	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("frame: empty column name at position %d", i)
		}
		if _, dup := f.index[name]; dup {
			return nil, fmt.Errorf("frame: duplicate column name %q", name)
		}
		if i == 0 {
			f.rows = len(cols[i])
		} else if len(cols[i]) != f.rows {
			return nil, fmt.Errorf("frame: column %q has %d rows, want %d", name, len(cols[i]), f.rows)
		}
		f.names[i] = name
		f.index[name] = i
		f.cols[i] = append([]float64(nil), cols[i]...)
	}

	return f, nil
}

// NumRows returns the number of rows (time points).
func (f *Frame) NumRows() int {
	return f.rows
}

// NumColumns returns the number of columns.
func (f *Frame) NumColumns() int {
	return len(f.names)
}

// Columns returns the column names in table order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.names...)
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns a copy of the named column's values.
func (f *Frame) Column(name string) ([]float64, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), f.cols[i]...), true
}

// Select returns a new frame holding the named columns in the given order.
// A name absent from the frame fails with MissingColumnError.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([][]float64, len(names))
	for i, name := range names {
		j, ok := f.index[name]
		if !ok {
			return nil, &MissingColumnError{Column: name}
		}
		cols[i] = f.cols[j]
	}
	return New(names, cols)
}

// FilterRows returns a new frame containing only the rows at the given
// indices, in the given order.
func (f *Frame) FilterRows(keep []int) (*Frame, error) {
	for _, r := range keep {
		if r < 0 || r >= f.rows {
			return nil, fmt.Errorf("frame: row index %d out of range [0,%d)", r, f.rows)
		}
	}

	cols := make([][]float64, len(f.cols))
	for i, col := range f.cols {
		filtered := make([]float64, len(keep))
		for j, r := range keep {
			filtered[j] = col[r]
		}
		cols[i] = filtered
	}

	out, err := New(f.Columns(), cols)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CompleteRows returns the indices of rows with no missing value (NaN) in
// any of the named columns, in ascending order. A name absent from the frame
// fails with MissingColumnError.
func (f *Frame) CompleteRows(names []string) ([]int, error) {
	idx := make([]int, 0, len(names))
	for _, name := range names {
		j, ok := f.index[name]
		if !ok {
			return nil, &MissingColumnError{Column: name}
		}
		idx = append(idx, j)
	}

	keep := make([]int, 0, f.rows)
rows:
	for r := 0; r < f.rows; r++ {
		for _, j := range idx {
			if math.IsNaN(f.cols[j][r]) {
				continue rows
			}
		}
		keep = append(keep, r)
	}
	return keep, nil
}

// Row returns the values of row r in column order.
func (f *Frame) Row(r int) ([]float64, error) {
	if r < 0 || r >= f.rows {
		return nil, fmt.Errorf("frame: row index %d out of range [0,%d)", r, f.rows)
	}
	row := make([]float64, len(f.cols))
	for i, col := range f.cols {
		row[i] = col[r]
	}
	return row, nil
}
