package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/hexapod.report/internal/kinematics"
)

// WritePlot draws a top view of scene and saves it to path. The image
// format follows the file extension (.png, .svg, .pdf, ...).
func WritePlot(scene Scene, path string) error {
	p := plot.New()
	p.Title.Text = scene.Title
	if p.Title.Text == "" {
		p.Title.Text = "Hexapod top view"
	}
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	ext := scene.extent()
	p.X.Min, p.X.Max = -ext, ext
	p.Y.Min, p.Y.Max = -ext, ext
	p.Add(plotter.NewGrid())

	body, err := plotter.NewLine(xys(scene.Body.outline()))
	if err != nil {
		return fmt.Errorf("body outline: %w", err)
	}
	body.Color = color.Gray{Y: 100}
	body.Width = vg.Points(2)
	p.Add(body)
	p.Legend.Add("body", body)

	if att := scene.attachments(); len(att) > 0 {
		s, err := plotter.NewScatter(xys(att))
		if err != nil {
			return fmt.Errorf("attachments: %w", err)
		}
		s.GlyphStyle.Color = color.Black
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		p.Legend.Add("attachment", s)
	}

	colors := legColors(kinematics.LegCount)
	for _, leg := range scene.Snapshot.Legs {
		if leg.Chain == nil {
			continue
		}
		l, pts, err := plotter.NewLinePoints(xys(leg.Chain.Points()))
		if err != nil {
			return fmt.Errorf("leg %d chain: %w", leg.Index, err)
		}
		l.Color = colors[leg.Index]
		l.Width = vg.Points(2)
		pts.GlyphStyle.Color = colors[leg.Index]
		pts.GlyphStyle.Radius = vg.Points(2)
		p.Add(l, pts)
		p.Legend.Add(fmt.Sprintf("leg %d", leg.Index), l, pts)
	}

	if tg := scene.targets(); len(tg) > 0 {
		s, err := plotter.NewScatter(xys(tg))
		if err != nil {
			return fmt.Errorf("targets: %w", err)
		}
		s.GlyphStyle.Shape = draw.CrossGlyph{}
		s.GlyphStyle.Color = color.RGBA{R: 200, A: 255}
		s.GlyphStyle.Radius = vg.Points(4)
		p.Add(s)
		p.Legend.Add("target", s)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

func xys(vs []r3.Vec) plotter.XYs {
	out := make(plotter.XYs, len(vs))
	for i, v := range vs {
		out[i] = plotter.XY{X: v.X, Y: v.Y}
	}
	return out
}
