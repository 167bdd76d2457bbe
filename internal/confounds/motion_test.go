package confounds

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandMotionModel6Params(t *testing.T) {
	t.Parallel()

	got, err := ExpandMotionModel(Model6Params, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"trans_x", "trans_y", "trans_z", "rot_x", "rot_y", "rot_z"}, got)
}

func TestExpandMotionModelDerivatives(t *testing.T) {
	t.Parallel()

	got, err := ExpandMotionModel(ModelDerivatives, false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"trans_x", "trans_y", "trans_z", "rot_x", "rot_y", "rot_z",
		"trans_x_derivative1", "trans_y_derivative1", "trans_z_derivative1",
		"rot_x_derivative1", "rot_y_derivative1", "rot_z_derivative1",
	}, got)
}

func TestExpandMotionModelSquare(t *testing.T) {
	t.Parallel()

	got, err := ExpandMotionModel(ModelSquare, false)
	require.NoError(t, err)
	require.Len(t, got, 12)
	assert.Contains(t, got, "trans_y_power2")
	assert.Contains(t, got, "rot_z_power2")
	assert.NotContains(t, got, "trans_y_derivative1")
}

// The full model historically expands to every variant of every model, all
// 24 names, not just base plus its own suffix.
func TestExpandMotionModelFullEmitsAllVariants(t *testing.T) {
	t.Parallel()

	got, err := ExpandMotionModel(ModelFull, false)
	require.NoError(t, err)
	require.Len(t, got, 24)

	for _, axis := range MotionParams {
		for _, sfx := range []string{"", "_derivative1", "_power2", "_derivative1_power2"} {
			assert.Contains(t, got, axis+sfx)
		}
	}
}

func TestExpandMotionModelFullUniform(t *testing.T) {
	t.Parallel()

	got, err := ExpandMotionModel(ModelFull, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"trans_x", "trans_y", "trans_z", "rot_x", "rot_y", "rot_z",
		"trans_x_derivative1_power2", "trans_y_derivative1_power2", "trans_z_derivative1_power2",
		"rot_x_derivative1_power2", "rot_y_derivative1_power2", "rot_z_derivative1_power2",
	}, got)
}

func TestExpandMotionModelUnknown(t *testing.T) {
	t.Parallel()

	_, err := ExpandMotionModel(MotionModel("12params"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid models are")
}

func TestExpandMotionModelDeterministic(t *testing.T) {
	t.Parallel()

	for _, model := range ValidMotionModels {
		a, err := ExpandMotionModel(model, false)
		require.NoError(t, err)
		b, err := ExpandMotionModel(model, false)
		require.NoError(t, err)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("expansion of %s not deterministic (-first +second):\n%s", model, diff)
		}
	}
}

func TestIsValidMotionModel(t *testing.T) {
	t.Parallel()

	for _, m := range ValidMotionModels {
		assert.True(t, IsValidMotionModel(string(m)))
	}
	assert.False(t, IsValidMotionModel("24params"))
	assert.False(t, IsValidMotionModel(""))
}
