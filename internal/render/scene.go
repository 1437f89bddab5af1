package render

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/hexapod.report/internal/kinematics"
	"github.com/banshee-data/hexapod.report/internal/robotstate"
)

// Body is the body footprint, centred on the body-frame origin.
type Body struct {
	Length float64 // along X
	Width  float64 // along Y
}

// outline returns the footprint corners, closed back to the first.
func (b Body) outline() []r3.Vec {
	hl, hw := b.Length/2, b.Width/2
	return []r3.Vec{
		{X: hl, Y: hw}, {X: -hl, Y: hw}, {X: -hl, Y: -hw}, {X: hl, Y: -hw}, {X: hl, Y: hw},
	}
}

// Scene is everything drawn for one snapshot.
type Scene struct {
	Title    string
	Body     Body
	Geometry *kinematics.Geometry
	Snapshot robotstate.Snapshot
}

// attachments returns the configured attachment points.
func (s Scene) attachments() []r3.Vec {
	if s.Geometry == nil {
		return nil
	}
	var out []r3.Vec
	for _, leg := range s.Geometry.Legs() {
		out = append(out, leg.Attachment())
	}
	return out
}

// targets returns each leg's latest body-frame foot target.
func (s Scene) targets() []r3.Vec {
	var out []r3.Vec
	for _, leg := range s.Snapshot.Legs {
		if leg.Telemetry != nil {
			out = append(out, leg.Telemetry.Body)
		}
	}
	return out
}

// extent returns a half-width that fits every drawn point with a margin.
func (s Scene) extent() float64 {
	m := 0.1
	grow := func(v r3.Vec) {
		for _, c := range []float64{v.X, v.Y} {
			if c < 0 {
				c = -c
			}
			if c*1.2 > m {
				m = c * 1.2
			}
		}
	}
	for _, v := range s.Body.outline() {
		grow(v)
	}
	for _, v := range s.attachments() {
		grow(v)
	}
	for _, v := range s.targets() {
		grow(v)
	}
	for _, c := range s.Snapshot.Chains() {
		for _, v := range c.Points() {
			grow(v)
		}
	}
	return m
}
