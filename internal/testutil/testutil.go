// Package testutil provides shared test helpers and fixtures for the
// confound-processing packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// WriteTempFile writes content to name under a fresh temp directory and
// returns the full path.
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

// SampleConfoundsTSV is a small fmriprep-style confounds table used across
// package tests: six motion parameters, matter and cosine regressors, one
// CompCor component, and an n/a cell in the first derivative row.
const SampleConfoundsTSV = "trans_x\ttrans_y\ttrans_z\trot_x\trot_y\trot_z\ttrans_x_derivative1\tcsf\twhite_matter\tcosine00\tt_comp_cor_00\n" +
	"0.01\t0.02\t0.03\t0.001\t0.002\t0.003\tn/a\t110.5\t95.2\t0.12\t0.41\n" +
	"0.02\t0.01\t0.04\t0.002\t0.001\t0.004\t0.01\t111.0\t95.0\t0.11\t0.40\n" +
	"0.03\t0.03\t0.02\t0.003\t0.003\t0.002\t0.01\t110.8\t95.4\t0.10\t0.42\n" +
	"0.01\t0.04\t0.05\t0.001\t0.004\t0.005\t-0.02\t110.2\t95.1\t0.09\t0.39\n" +
	"0.05\t0.02\t0.01\t0.005\t0.002\t0.001\t0.04\t110.9\t95.3\t0.08\t0.43\n"
