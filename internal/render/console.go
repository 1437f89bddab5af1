package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/banshee-data/hexapod.report/internal/kinematics"
	"github.com/banshee-data/hexapod.report/internal/legtelemetry"
	"github.com/banshee-data/hexapod.report/internal/pipeline"
	"github.com/banshee-data/hexapod.report/internal/robotstate"
)

// StatusLine summarises one consumer tick. A leg counts as active when its
// latest sample arrived within window of the snapshot time. rate is the
// merge rate in records per second.
func StatusLine(snap robotstate.Snapshot, stats pipeline.Stats, rate float64, window time.Duration) string {
	return fmt.Sprintf("Hexapod | Active Legs: %d/%d | Rate: %.1f rec/s | Queue: %d/%d | Dropped: %d | Parse errors: %d",
		snap.Active(window, snap.Taken), kinematics.LegCount, rate,
		stats.QueueDepth, stats.QueueCapacity, stats.Dropped, stats.ParseFailures)
}

// RecordLine formats one record for the console, followed by the leg's
// configured attachment when geo knows the leg.
func RecordLine(rec legtelemetry.LegTelemetry, geo *kinematics.Geometry) string {
	leg, ok := geo.Leg(rec.Leg)
	if !ok {
		return legtelemetry.Format(rec, "")
	}
	pos := leg.Attachment()
	return legtelemetry.Format(rec, leg.Name()) +
		fmt.Sprintf(" | Cfg: pos=(%5.3f, %5.3f, %5.3f) rot=%5.3frad (%4.1f°)",
			pos.X, pos.Y, pos.Z, leg.Yaw(), degrees(leg.Yaw()))
}

// GeometrySummary lists the configured legs, one per line.
func GeometrySummary(geo *kinematics.Geometry) string {
	var b strings.Builder
	for _, leg := range geo.Legs() {
		pos := leg.Attachment()
		fmt.Fprintf(&b, "  Leg %d: %-12s pos=(%6.3f, %6.3f, %6.3f) rot=%6.3frad (%5.1f°)",
			leg.Index(), leg.Name(), pos.X, pos.Y, pos.Z, leg.Yaw(), degrees(leg.Yaw()))
		if links, ok := leg.Links(); ok {
			fmt.Fprintf(&b, " links=(%.3f, %.3f, %.3f)", links.Coxa, links.Femur, links.Tibia)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
