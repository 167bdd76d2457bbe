package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llevitis/fmriprep-load-confounds/internal/confounds"
	"github.com/llevitis/fmriprep-load-confounds/internal/frame"
	"github.com/llevitis/fmriprep-load-confounds/internal/testutil"
)

func reducedResult(t *testing.T) *confounds.Result {
	t.Helper()
	raw, err := frame.ReadTSV(strings.NewReader(testutil.SampleConfoundsTSV))
	require.NoError(t, err)

	res, err := confounds.LoadFrame(raw, confounds.Options{
		Strategies: []string{"minimal"},
		Reduction:  confounds.ComponentCount(2),
	})
	require.NoError(t, err)
	require.True(t, res.Reduction.Applied)
	return res
}

func TestWriteHTMLReport(t *testing.T) {
	res := reducedResult(t)
	res.Path = "sub-01_desc-confounds_regressors.tsv"

	var buf bytes.Buffer
	require.NoError(t, WriteHTMLReport(&buf, []*confounds.Result{res}))

	html := buf.String()
	assert.Contains(t, html, "Output confound series")
	assert.Contains(t, html, "Explained variance")
	assert.Contains(t, html, "Component scores")
	assert.Contains(t, html, "motion_pca_1")
	assert.Contains(t, html, "sub-01_desc-confounds_regressors.tsv")
	assert.Contains(t, html, "echarts")
}

func TestWriteHTMLReportSkipsUnreduced(t *testing.T) {
	raw, err := frame.ReadTSV(strings.NewReader(testutil.SampleConfoundsTSV))
	require.NoError(t, err)
	unreduced, err := confounds.LoadFrame(raw, confounds.Options{
		Strategies: []string{"minimal"},
		Reduction:  confounds.NoReduction(),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = WriteHTMLReport(&buf, []*confounds.Result{unreduced})
	assert.Error(t, err, "a batch with no reduced tables has nothing to chart")

	buf.Reset()
	require.NoError(t, WriteHTMLReport(&buf, []*confounds.Result{unreduced, reducedResult(t)}))
	assert.Contains(t, buf.String(), "Explained variance")
}

func TestPlotMotionTraces(t *testing.T) {
	raw, err := frame.ReadTSV(strings.NewReader(testutil.SampleConfoundsTSV))
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "traces.png")
	// trans_x_derivative1 has an n/a cell and rot_q is absent; both should
	// be tolerated.
	cols := []string{"trans_x", "trans_y", "rot_x", "trans_x_derivative1", "rot_q"}
	require.NoError(t, PlotMotionTraces(raw, cols, file))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPlotExplainedVariance(t *testing.T) {
	file := filepath.Join(t.TempDir(), "scree.png")
	require.NoError(t, PlotExplainedVariance([]float64{0.7, 0.2, 0.07, 0.03}, file))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
