package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/llevitis/fmriprep-load-confounds/internal/confounds"
)

// WriteHTMLReport renders an interactive summary page for a batch of
// processed tables: per reduced table, a line chart of the output confound
// series, an explained-variance bar chart, and a score scatter of the first
// two components where available.
func WriteHTMLReport(w io.Writer, results []*confounds.Result) error {
	page := components.NewPage()
	page.PageTitle = "Confound reduction report"

	added := 0
	for _, res := range results {
		if res == nil || !res.Reduction.Applied {
			continue
		}
		page.AddCharts(seriesChart(res), varianceChart(res))
		if sc := scoreScatter(res); sc != nil {
			page.AddCharts(sc)
		}
		added++
	}
	if added == 0 {
		return fmt.Errorf("no reduced tables to report on")
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render report page: %w", err)
	}
	return nil
}

func sourceLabel(res *confounds.Result) string {
	if res.Path != "" {
		return res.Path
	}
	return "in-memory table"
}

// seriesChart plots every output column over the row index.
func seriesChart(res *confounds.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Output confound series",
			Subtitle: fmt.Sprintf("%s: %d columns", sourceLabel(res), res.Frame.NumColumns()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "row"}),
	)

	x := make([]string, res.Frame.NumRows())
	for i := range x {
		x[i] = fmt.Sprintf("%d", i)
	}
	line.SetXAxis(x)
	for _, name := range res.Frame.Columns() {
		col, _ := res.Frame.Column(name)
		data := make([]opts.LineData, len(col))
		for i, v := range col {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(name, data)
	}
	return line
}

func varianceChart(res *confounds.Result) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{
			Title: "Explained variance",
			Subtitle: fmt.Sprintf("%s: %d components, %d rows dropped",
				sourceLabel(res), res.Reduction.Components, res.Reduction.RowsDropped),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	x := make([]string, len(res.Reduction.ExplainedVariance))
	per := make([]opts.BarData, len(res.Reduction.ExplainedVariance))
	cum := make([]opts.BarData, len(res.Reduction.ExplainedVariance))
	sum := 0.0
	for i, v := range res.Reduction.ExplainedVariance {
		sum += v
		x[i] = fmt.Sprintf("pca_%d", i+1)
		per[i] = opts.BarData{Value: v}
		cum[i] = opts.BarData{Value: sum}
	}

	bar.SetXAxis(x).
		AddSeries("per component", per,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		).
		AddSeries("cumulative", cum)
	return bar
}

// scoreScatter plots the first two component scores against each other.
// Returns nil when fewer than two components were retained.
func scoreScatter(res *confounds.Result) *charts.Scatter {
	first, ok := res.Frame.Column("motion_pca_1")
	if !ok {
		return nil
	}
	second, ok := res.Frame.Column("motion_pca_2")
	if !ok {
		return nil
	}

	data := make([]opts.ScatterData, len(first))
	for i := range first {
		data[i] = opts.ScatterData{Value: []interface{}{first[i], second[i]}}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "600px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Component scores",
			Subtitle: sourceLabel(res),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "motion_pca_1"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "motion_pca_2"}),
	)
	scatter.AddSeries("scores", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	return scatter
}
