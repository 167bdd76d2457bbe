// Package report renders static PNG plots and an interactive HTML summary
// for processed confound tables.
package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/llevitis/fmriprep-load-confounds/internal/frame"
)

var tracePalette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 140, G: 86, B: 75, A: 255},
}

// PlotMotionTraces writes a PNG of the named columns' time courses, one line
// per column. Missing values and absent columns are skipped rather than
// plotted.
func PlotMotionTraces(f *frame.Frame, columns []string, file string) error {
	p := plot.New()
	p.Title.Text = "Motion parameter traces"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Value"

	for i, name := range columns {
		col, ok := f.Column(name)
		if !ok {
			continue
		}

		pts := make(plotter.XYs, 0, len(col))
		for j, v := range col {
			if math.IsNaN(v) {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(j), Y: v})
		}
		if len(pts) == 0 {
			continue
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = tracePalette[i%len(tracePalette)]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(name, line)
	}

	p.Legend.Top = true
	if err := p.Save(14*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("failed to save motion trace plot: %w", err)
	}
	return nil
}

// PlotExplainedVariance writes a PNG scree plot: per-component explained
// variance alongside the cumulative total.
func PlotExplainedVariance(explained []float64, file string) error {
	p := plot.New()
	p.Title.Text = "Motion component explained variance"
	p.X.Label.Text = "Component"
	p.Y.Label.Text = "Proportion of variance"

	perComp := make(plotter.XYs, len(explained))
	cumulative := make(plotter.XYs, len(explained))
	sum := 0.0
	for i, v := range explained {
		sum += v
		perComp[i] = plotter.XY{X: float64(i + 1), Y: v}
		cumulative[i] = plotter.XY{X: float64(i + 1), Y: sum}
	}

	compLine, err := plotter.NewLine(perComp)
	if err != nil {
		return err
	}
	compLine.Color = tracePalette[0]
	compLine.Width = vg.Points(1)
	p.Add(compLine)
	p.Legend.Add("per component", compLine)

	cumLine, err := plotter.NewLine(cumulative)
	if err != nil {
		return err
	}
	cumLine.Color = tracePalette[1]
	cumLine.Width = vg.Points(1)
	p.Add(cumLine)
	p.Legend.Add("cumulative", cumLine)

	p.Legend.Top = true
	p.Y.Min = 0
	if err := p.Save(8*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("failed to save variance plot: %w", err)
	}
	return nil
}
