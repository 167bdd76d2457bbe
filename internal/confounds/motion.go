package confounds

import "fmt"

// MotionModel selects which transformations of the six rigid-body motion
// parameters are included when motion columns are sourced for reduction.
type MotionModel string

// Motion model constants
const (
	Model6Params     MotionModel = "6params"
	ModelDerivatives MotionModel = "derivatives"
	ModelSquare      MotionModel = "square"
	ModelFull        MotionModel = "full"
)

// ValidMotionModels contains all valid motion model names
var ValidMotionModels = []MotionModel{
	Model6Params,
	ModelDerivatives,
	ModelSquare,
	ModelFull,
}

// MotionParams are the six rigid-body axes estimated by realignment.
var MotionParams = []string{"trans_x", "trans_y", "trans_z", "rot_x", "rot_y", "rot_z"}

// motionSuffixes maps each model to the name suffix of its variant columns.
// Order matters for the full expansion, so the suffixes are also kept as an
// ordered list below.
var motionSuffixes = map[MotionModel]string{
	Model6Params:     "",
	ModelDerivatives: "_derivative1",
	ModelSquare:      "_power2",
	ModelFull:        "_derivative1_power2",
}

var allSuffixes = []string{"", "_derivative1", "_power2", "_derivative1_power2"}

// IsValidMotionModel checks if the given name is in the list of valid motion models
func IsValidMotionModel(name string) bool {
	for _, m := range ValidMotionModels {
		if name == string(m) {
			return true
		}
	}
	return false
}

// GetValidMotionModelsString returns a comma-separated string of valid motion models for error messages
func GetValidMotionModelsString() string {
	return "6params, derivatives, square, full"
}

// ExpandMotionModel returns the motion column names covered by a model, in a
// fixed order: base axes first, then each variant suffix applied to the axes.
//
// Historically "full" expands to every variant of every model, 24 names
// in all, rather than just base + its own suffix. That behavior is kept as
// the default; uniformFull switches to the regular base-plus-own-suffix
// expansion (12 names).
func ExpandMotionModel(model MotionModel, uniformFull bool) ([]string, error) {
	suffix, ok := motionSuffixes[model]
	if !ok {
		return nil, fmt.Errorf("unknown motion model %q: valid models are %s", model, GetValidMotionModelsString())
	}

	if model == ModelFull && !uniformFull {
		out := make([]string, 0, len(allSuffixes)*len(MotionParams))
		for _, sfx := range allSuffixes {
			for _, axis := range MotionParams {
				out = append(out, axis+sfx)
			}
		}
		return out, nil
	}

	out := append([]string(nil), MotionParams...)
	if suffix != "" {
		for _, axis := range MotionParams {
			out = append(out, axis+suffix)
		}
	}
	return out, nil
}
