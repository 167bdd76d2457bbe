package frame

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	t.Run("mismatched names and columns", func(t *testing.T) {
		_, err := New([]string{"a", "b"}, [][]float64{{1}})
		assert.Error(t, err)
	})

	t.Run("duplicate column name", func(t *testing.T) {
		_, err := New([]string{"a", "a"}, [][]float64{{1}, {2}})
		assert.Error(t, err)
	})

	t.Run("empty column name", func(t *testing.T) {
		_, err := New([]string{"a", ""}, [][]float64{{1}, {2}})
		assert.Error(t, err)
	})

	t.Run("ragged columns", func(t *testing.T) {
		_, err := New([]string{"a", "b"}, [][]float64{{1, 2}, {3}})
		assert.Error(t, err)
	})

	t.Run("no columns", func(t *testing.T) {
		f, err := New(nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, f.NumColumns())
		assert.Equal(t, 0, f.NumRows())
	})
}

func TestNewCopiesData(t *testing.T) {
	col := []float64{1, 2, 3}
	f, err := New([]string{"a"}, [][]float64{col})
	require.NoError(t, err)

	col[0] = 99
	got, ok := f.Column("a")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, got)
}

func TestColumnsPreserveOrder(t *testing.T) {
	names := []string{"rot_z", "trans_x", "csf", "cosine00"}
	f, err := New(names, [][]float64{{1}, {2}, {3}, {4}})
	require.NoError(t, err)

	if diff := cmp.Diff(names, f.Columns()); diff != "" {
		t.Errorf("column order mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect(t *testing.T) {
	f, err := New([]string{"a", "b", "c"}, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)

	t.Run("reorders columns", func(t *testing.T) {
		sub, err := f.Select("c", "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a"}, sub.Columns())

		got, ok := sub.Column("c")
		require.True(t, ok)
		assert.Equal(t, []float64{5, 6}, got)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := f.Select("a", "nope")
		var mce *MissingColumnError
		require.True(t, errors.As(err, &mce))
		assert.Equal(t, "nope", mce.Column)
	})

	t.Run("empty selection", func(t *testing.T) {
		sub, err := f.Select()
		require.NoError(t, err)
		assert.Equal(t, 0, sub.NumColumns())
	})
}

func TestCompleteRows(t *testing.T) {
	nan := math.NaN()
	f, err := New(
		[]string{"a", "b", "c"},
		[][]float64{
			{nan, 1, 2, 3},
			{10, 11, nan, 13},
			{nan, nan, nan, nan},
		},
	)
	require.NoError(t, err)

	t.Run("single column", func(t *testing.T) {
		rows, err := f.CompleteRows([]string{"a"})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, rows)
	})

	t.Run("multiple columns intersect", func(t *testing.T) {
		rows, err := f.CompleteRows([]string{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3}, rows)
	})

	t.Run("all missing", func(t *testing.T) {
		rows, err := f.CompleteRows([]string{"c"})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := f.CompleteRows([]string{"nope"})
		var mce *MissingColumnError
		assert.True(t, errors.As(err, &mce))
	})
}

func TestFilterRows(t *testing.T) {
	f, err := New([]string{"a", "b"}, [][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	t.Run("keeps listed rows in order", func(t *testing.T) {
		sub, err := f.FilterRows([]int{2, 0})
		require.NoError(t, err)
		assert.Equal(t, 2, sub.NumRows())

		got, ok := sub.Column("a")
		require.True(t, ok)
		assert.Equal(t, []float64{3, 1}, got)
	})

	t.Run("empty keep", func(t *testing.T) {
		sub, err := f.FilterRows(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, sub.NumRows())
		assert.Equal(t, []string{"a", "b"}, sub.Columns())
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := f.FilterRows([]int{3})
		assert.Error(t, err)
	})
}

func TestRow(t *testing.T) {
	f, err := New([]string{"a", "b"}, [][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	row, err := f.Row(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, row)

	_, err = f.Row(2)
	assert.Error(t, err)
}
