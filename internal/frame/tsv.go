package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/llevitis/fmriprep-load-confounds/internal/fsutil"
)

// missingTokens are the cell values read as a missing measurement. fmriprep
// writes "n/a" for the first row of derivative columns; the other spellings
// show up in hand-edited tables.
var missingTokens = map[string]bool{
	"":    true,
	"n/a": true,
	"N/A": true,
	"NA":  true,
	"NaN": true,
	"nan": true,
}

// ParseError reports a malformed confounds table, locating the problem by
// line number (1-based, header is line 1) and path when known.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s: line %d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ReadTSV parses a tab-separated confounds table. The first line is the
// header; every later line is one row of float64 values, with the tokens in
// missingTokens read as NaN. Ragged rows, duplicate header names and
// non-numeric cells fail with ParseError.
func ReadTSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ParseError{Line: 1, Err: fmt.Errorf("empty table: missing header row")}
	}
	if err != nil {
		return nil, &ParseError{Line: 1, Err: err}
	}

	cols := make([][]float64, len(header))
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		for i, cell := range record {
			v, err := parseCell(cell)
			if err != nil {
				return nil, &ParseError{Line: line, Err: fmt.Errorf("column %q: %v", header[i], err)}
			}
			cols[i] = append(cols[i], v)
		}
	}

	f, err := New(header, cols)
	if err != nil {
		return nil, &ParseError{Line: 1, Err: err}
	}
	return f, nil
}

func parseCell(cell string) (float64, error) {
	if missingTokens[cell] {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", cell)
	}
	return v, nil
}

// ReadFile reads and parses the confounds table at path. Filesystem errors
// (missing file included) are returned unchanged; parse failures carry the
// path in their ParseError.
func ReadFile(fsys fsutil.FileSystem, path string) (*Frame, error) {
	r, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	f, err := ReadTSV(r)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, err
	}
	return f, nil
}

// WriteTSV writes the frame as a tab-separated table, header first. Missing
// values (NaN) are written as "n/a", matching the fmriprep convention.
func WriteTSV(w io.Writer, f *Frame) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(f.names); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(f.cols))
	for r := 0; r < f.rows; r++ {
		for i, col := range f.cols {
			record[i] = formatCell(col[r])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", r, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteFile writes the frame as a tab-separated table at path.
func WriteFile(fsys fsutil.FileSystem, path string, f *Frame) error {
	w, err := fsys.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTSV(w, f); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
