// Package legtelemetry decodes the per-leg inverse-kinematics log lines that
// the hexapod's whole-body controller prints on its console, e.g.
//
//	I (39868) wbc: (39599638)Leg 0 IK: BodyXYZ(0.106, 0.280, -0.043) -> LegXYZ(0.230, -0.026, -0.043) -> LegAng(-0.112, 0.025, 0.768)
//
// The stream is shared with unrelated controller logging, so lines that do
// not have this shape are skipped silently. Lines that have the shape but
// carry a malformed number are reported with a *ParseError.
package legtelemetry
