package report

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Series is one named residual history, e.g. Stats.MaxResiduals of a run.
type Series struct {
	Name      string
	Residuals []float64
}

// RenderResiduals writes an HTML page with one line chart plotting every
// series against the iteration (or trial) number. The x axis spans the
// longest series; shorter ones simply end early.
func RenderResiduals(w io.Writer, title string, series ...Series) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "max residual per iteration",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "residual",
			Type: "log",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "iteration",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{}),
	)

	longest := 0
	for _, s := range series {
		longest = max(longest, len(s.Residuals))
	}
	steps := make([]string, longest)
	for i := range steps {
		steps[i] = strconv.Itoa(i + 1)
	}
	line.SetXAxis(steps)

	for _, s := range series {
		items := make([]opts.LineData, 0, len(s.Residuals))
		for _, r := range s.Residuals {
			items = append(items, opts.LineData{Value: r})
		}
		line.AddSeries(s.Name, items)
	}

	page := components.NewPage()
	page.AddCharts(line)
	return page.Render(w)
}
