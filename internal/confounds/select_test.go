package confounds

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSelectColumnsMinimal(t *testing.T) {
	raw := []string{"trans_x", "rot_y", "csf", "cosine00", "t_comp_cor_00"}

	sel := SelectColumns(raw, []string{"minimal"})

	assert.Equal(t, []string{"trans_x", "rot_y"}, sel.Motion)
	assert.Equal(t, []string{"csf", "cosine00"}, sel.NonMotion)
}

func TestSelectColumnsIdempotent(t *testing.T) {
	raw := []string{"trans_x", "rot_y", "csf", "cosine00"}

	once := SelectColumns(raw, []string{"minimal"})
	twice := SelectColumns(raw, []string{"minimal", "minimal"})

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("duplicate strategy changed the selection (-once +twice):\n%s", diff)
	}
}

func TestSelectColumnsLiteral(t *testing.T) {
	raw := []string{"csf", "white_matter", "framewise_displacement", "trans_x"}

	sel := SelectColumns(raw, []string{"matter", "framewise_displacement"})

	assert.Equal(t, []string{"csf", "white_matter", "framewise_displacement"}, sel.NonMotion)
	assert.Empty(t, sel.Motion)
}

func TestSelectColumnsLiteralAbsentStillSelected(t *testing.T) {
	// Absence is enforced at slicing time, not here.
	sel := SelectColumns([]string{"csf"}, []string{"global_signal"})
	assert.Equal(t, []string{"global_signal"}, sel.NonMotion)
}

func TestSelectColumnsRequestOrder(t *testing.T) {
	raw := []string{"csf", "t_comp_cor_00"}

	sel := SelectColumns(raw, []string{"compcor", "matter"})
	assert.Equal(t, []string{"t_comp_cor_00", "csf"}, sel.NonMotion)

	sel = SelectColumns(raw, []string{"matter", "compcor"})
	assert.Equal(t, []string{"csf", "t_comp_cor_00"}, sel.NonMotion)
}

func TestSelectColumnsPermissiveSubstring(t *testing.T) {
	raw := []string{"rotation_outlier", "transit_artifact", "csf"}

	sel := SelectColumns(raw, []string{"motion"})
	assert.Equal(t, []string{"rotation_outlier", "transit_artifact"}, sel.Motion)
	assert.Empty(t, sel.NonMotion)
}

func TestSelectColumnsPartitionDisjoint(t *testing.T) {
	raw := []string{"trans_x", "rot_y", "csf", "cosine00", "white_matter"}

	sel := SelectColumns(raw, []string{"minimal", "compcor", "trans_x"})

	seen := make(map[string]bool)
	for _, name := range sel.Columns() {
		assert.False(t, seen[name], "column %q appears twice", name)
		seen[name] = true
	}
	for _, name := range sel.Motion {
		assert.True(t, IsMotionColumn(name))
	}
	for _, name := range sel.NonMotion {
		assert.False(t, IsMotionColumn(name))
	}
}

func TestSelectionColumnsNonMotionFirst(t *testing.T) {
	sel := Selection{
		Motion:    []string{"trans_x"},
		NonMotion: []string{"csf", "cosine00"},
	}
	assert.Equal(t, []string{"csf", "cosine00", "trans_x"}, sel.Columns())
}
