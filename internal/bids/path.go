// Package bids maps preprocessed-image paths to the confounds tables that
// sit next to them in an fmriprep derivatives tree.
package bids

import (
	"path/filepath"
	"strings"
)

const (
	preprocImageSuffix = "_space-MNI152NLin2009cAsym_desc-preproc_bold.nii.gz"
	confoundsSuffix    = "_desc-confounds_regressors.tsv"
)

// IsImagePath reports whether path names a NIfTI image rather than a
// confounds table. The check looks for "nii" within the last six characters
// so both ".nii" and ".nii.gz" endings match.
func IsImagePath(path string) bool {
	tail := path
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return strings.Contains(tail, "nii")
}

// ConfoundsPath returns the confounds-table path for a preprocessed-image
// path by swapping the standard MNI preproc suffix. Paths that are not image
// paths come back unchanged, as do image paths without the exact suffix.
func ConfoundsPath(path string) string {
	if !IsImagePath(path) {
		return path
	}
	return strings.ReplaceAll(path, preprocImageSuffix, confoundsSuffix)
}

// OutputName derives a filename for a processed confounds table. The standard
// confounds suffix is stripped when present so outputs keep the BIDS entity
// stem, e.g. sub-01_task-rest_confounds.tsv.
func OutputName(path, suffix string) string {
	base := filepath.Base(path)
	if stem, ok := strings.CutSuffix(base, confoundsSuffix); ok {
		return stem + suffix
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + suffix
}
