package runlog

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llevitis/fmriprep-load-confounds/internal/timeutil"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.MigrateUp())
	return db
}

func testStore(t *testing.T) (*Store, *timeutil.MockClock) {
	t.Helper()
	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := NewStore(openTestDB(t))
	s.clock = clock
	return s, clock
}

func TestInsertFillsIDAndTimestamp(t *testing.T) {
	s, clock := testStore(t)

	run := &Run{
		BatchID:     "batch-1",
		SourcePath:  "a.tsv",
		Strategies:  "minimal",
		MotionModel: "6params",
		Reduction:   "variance=0.95",
		Status:      StatusOK,
	}
	require.NoError(t, s.Insert(run))

	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, clock.Now().UnixNano(), run.CreatedAt)
}

func TestListByBatch(t *testing.T) {
	s, clock := testStore(t)

	for _, src := range []string{"a.tsv", "b.tsv"} {
		require.NoError(t, s.Insert(&Run{
			BatchID:     "batch-1",
			SourcePath:  src,
			Strategies:  "minimal",
			MotionModel: "6params",
			Reduction:   "none",
			Status:      StatusOK,
		}))
		clock.Advance(time.Second)
	}
	require.NoError(t, s.Insert(&Run{
		BatchID:     "batch-2",
		SourcePath:  "c.tsv",
		Strategies:  "motion",
		MotionModel: "full",
		Reduction:   "components=3",
		Status:      StatusError,
		Error:       "column \"x\" not found in confounds table",
	}))

	runs, err := s.ListByBatch("batch-1")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "a.tsv", runs[0].SourcePath)
	assert.Equal(t, "b.tsv", runs[1].SourcePath)

	other, err := s.ListByBatch("batch-2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, StatusError, other[0].Status)
	assert.Contains(t, other[0].Error, "not found")
}

func TestRecentNewestFirst(t *testing.T) {
	s, clock := testStore(t)

	for _, src := range []string{"a.tsv", "b.tsv", "c.tsv"} {
		require.NoError(t, s.Insert(&Run{
			BatchID:     "batch-1",
			SourcePath:  src,
			Strategies:  "minimal",
			MotionModel: "6params",
			Reduction:   "none",
			Status:      StatusOK,
		}))
		clock.Advance(time.Minute)
	}

	runs, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c.tsv", runs[0].SourcePath)
	assert.Equal(t, "b.tsv", runs[1].SourcePath)
}

func TestRunRoundTripFields(t *testing.T) {
	s, _ := testStore(t)

	in := &Run{
		BatchID:     "batch-1",
		SourcePath:  "sub-01_desc-confounds_regressors.tsv",
		OutputPath:  "out/sub-01_confounds.tsv",
		Strategies:  "minimal,compcor",
		MotionModel: "derivatives",
		Reduction:   "variance=0.95",
		Columns:     7,
		Rows:        146,
		RowsDropped: 1,
		Components:  4,
		Explained:   0.9613,
		Status:      StatusOK,
		DurationMS:  12,
	}
	require.NoError(t, s.Insert(in))

	runs, err := s.ListByBatch("batch-1")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, in, runs[0])
}

func TestIsSQLiteBusy(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "database is locked", err: errors.New("database is locked (5) (SQLITE_BUSY)"), expected: true},
		{name: "SQLITE_BUSY", err: errors.New("SQLITE_BUSY"), expected: true},
		{name: "other error", err: errors.New("some other error"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSQLiteBusy(tt.err); got != tt.expected {
				t.Errorf("isSQLiteBusy(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRetryOnBusy(t *testing.T) {
	t.Run("success on first try", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error {
			calls++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("success after retry", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error {
			calls++
			if calls < 3 {
				return errors.New("database is locked (5) (SQLITE_BUSY)")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-busy error fails immediately", func(t *testing.T) {
		calls := 0
		want := errors.New("some other error")
		err := retryOnBusy(func() error {
			calls++
			return want
		})
		assert.Equal(t, want, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("max retries exceeded", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error {
			calls++
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		})
		assert.Error(t, err)
		assert.Equal(t, busyMaxAttempts, calls)
	})
}
