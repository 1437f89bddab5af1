// Package testutil provides shared test fixtures: the stock six-leg
// geometry, controller sample lines and a muted diagnostic logger.
package testutil

import (
	"testing"

	"github.com/banshee-data/hexapod.report/internal/kinematics"
	"github.com/banshee-data/hexapod.report/internal/monitoring"
)

// SampleLine is a real IK line captured from the controller console.
const SampleLine = "I (39868) wbc: (39599638)Leg 0 IK: BodyXYZ(0.106, 0.280, -0.043) -> LegXYZ(0.230, -0.026, -0.043) -> LegAng(-0.112, 0.025, 0.768)"

// LegNames are the stock display names, indexed by leg.
var LegNames = [kinematics.LegCount]string{
	"Left Front", "Left Middle", "Left Back", "Right Front", "Right Middle", "Right Back",
}

var (
	stockYaws      = [kinematics.LegCount]float64{0.7854, 1.5708, 2.3562, -0.7854, -1.5708, -2.3562}
	stockPositions = [kinematics.LegCount][]float64{
		{0.075, 0.075, 0}, {0, 0.085, 0}, {-0.075, 0.075, 0},
		{0.075, -0.075, 0}, {0, -0.085, 0}, {-0.075, -0.075, 0},
	}
)

// StockGeometry returns the default robot layout with the given link
// lengths on every leg. Pass nil links for a geometry without dimensions.
func StockGeometry(t testing.TB, links []float64) *kinematics.Geometry {
	t.Helper()
	legs := make([]kinematics.LegGeometry, kinematics.LegCount)
	for i := range legs {
		g, err := kinematics.NewLegGeometry(kinematics.LegSpec{
			Index:       i,
			Name:        LegNames[i],
			Position:    stockPositions[i],
			Yaw:         stockYaws[i],
			LinkLengths: links,
		})
		if err != nil {
			t.Fatalf("leg %d: %v", i, err)
		}
		legs[i] = g
	}
	geo, err := kinematics.NewGeometry(legs...)
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}
	return geo
}

// MuteLogs silences monitoring output for the duration of the test.
func MuteLogs(t testing.TB) {
	t.Helper()
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(nil) })
}
