package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/hexapod.report/internal/kinematics"
)

// WriteChart renders an interactive HTML top view of scene to w.
func WriteChart(w io.Writer, scene Scene) error {
	title := scene.Title
	if title == "" {
		title = "Hexapod top view"
	}
	pad := scene.extent()
	active := 0
	for _, leg := range scene.Snapshot.Legs {
		if leg.Telemetry != nil {
			active++
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("legs reporting=%d/%d taken=%s",
			active, kinematics.LegCount, scene.Snapshot.Taken.Format("15:04:05.000"))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)

	scatter.AddSeries("body", scatterData(scene.Body.outline()[:4]),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	if att := scene.attachments(); len(att) > 0 {
		scatter.AddSeries("attachment", scatterData(att),
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	}
	colors := legColors(kinematics.LegCount)
	for _, leg := range scene.Snapshot.Legs {
		if leg.Chain == nil {
			continue
		}
		scatter.AddSeries(fmt.Sprintf("leg %d", leg.Index), scatterData(leg.Chain.Points()),
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(colors[leg.Index])}))
	}
	if tg := scene.targets(); len(tg) > 0 {
		scatter.AddSeries("target", scatterData(tg),
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func scatterData(vs []r3.Vec) []opts.ScatterData {
	out := make([]opts.ScatterData, 0, len(vs))
	for _, v := range vs {
		out = append(out, opts.ScatterData{Value: []interface{}{v.X, v.Y}})
	}
	return out
}
