package legtelemetry

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/hexapod.report/internal/kinematics"
)

// LegTelemetry is one decoded IK record for a single leg.
type LegTelemetry struct {
	// Leg is the index reported on the wire. It is not range checked here;
	// indices without geometry are dropped later, when chains are derived.
	Leg int

	// Timestamp is microseconds since controller boot. It is monotonic per
	// device and must not be compared with host wall-clock time.
	Timestamp uint64

	// Body is the foot target in the body frame (metres).
	Body r3.Vec

	// Target is the foot target in the leg frame (metres).
	Target r3.Vec

	// Angles are the raw, uncalibrated joint angles (radians).
	Angles kinematics.JointAngles
}
