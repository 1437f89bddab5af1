package legtelemetry

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Format renders a record as one fixed-width console line. name is the leg's
// configured display name and may be empty.
func Format(rec LegTelemetry, name string) string {
	label := ""
	if name != "" {
		label = "(" + name + ")"
	}
	return fmt.Sprintf("Leg %1d %-13s | Time: %8dμs | Body: %s | Leg: %s | Angles: (%6.3f, %6.3f, %6.3f)",
		rec.Leg, label, rec.Timestamp,
		formatVec(rec.Body), formatVec(rec.Target),
		rec.Angles.Coxa, rec.Angles.Femur, rec.Angles.Tibia)
}

func formatVec(v r3.Vec) string {
	return fmt.Sprintf("(%6.3f, %6.3f, %6.3f)", v.X, v.Y, v.Z)
}

// Encode renders rec in the controller's console format. Values are written
// with three decimals, matching the firmware, so Parse(Encode(rec)) returns
// rec rounded to millimetres and milliradians. The leading log tick is the
// timestamp in milliseconds.
func Encode(rec LegTelemetry) string {
	return fmt.Sprintf("I (%d) wbc: (%d)Leg %d IK: BodyXYZ(%.3f, %.3f, %.3f) -> LegXYZ(%.3f, %.3f, %.3f) -> LegAng(%.3f, %.3f, %.3f)",
		rec.Timestamp/1000, rec.Timestamp, rec.Leg,
		rec.Body.X, rec.Body.Y, rec.Body.Z,
		rec.Target.X, rec.Target.Y, rec.Target.Z,
		rec.Angles.Coxa, rec.Angles.Femur, rec.Angles.Tibia)
}
