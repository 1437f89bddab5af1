package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// JointChain is the body-frame position of each joint of one leg, derived
// from a geometry and a set of joint angles. It is never stored; callers
// recompute it from the latest telemetry.
type JointChain struct {
	Attachment r3.Vec
	CoxaEnd    r3.Vec
	FemurEnd   r3.Vec
	TibiaEnd   r3.Vec
}

// Points returns the chain from attachment to foot.
func (c JointChain) Points() []r3.Vec {
	return []r3.Vec{c.Attachment, c.CoxaEnd, c.FemurEnd, c.TibiaEnd}
}

// Solve places the joints of one leg using a planar-pitch model: the coxa
// swings the leg about the vertical axis, then the femur and tibia pitch in
// the resulting vertical plane. The tibia pitch is cumulative with the femur
// pitch.
//
// Raw angles are calibrated by subtracting the geometry's offsets. Solve has
// no failure path; callers check that both the geometry's link lengths and a
// telemetry sample exist before calling it.
func Solve(g LegGeometry, raw JointAngles) JointChain {
	coxa := raw.Coxa - g.offsets.Coxa
	femur := raw.Femur - g.offsets.Femur
	tibia := raw.Tibia - g.offsets.Tibia

	sinYaw, cosYaw := math.Sincos(g.yaw)
	sinCoxa, cosCoxa := math.Sincos(coxa)
	dir := r3.Vec{
		X: cosYaw*cosCoxa - sinYaw*sinCoxa,
		Y: cosYaw*sinCoxa + sinYaw*cosCoxa,
	}

	chain := JointChain{Attachment: g.attachment}
	chain.CoxaEnd = r3.Add(g.attachment, r3.Scale(g.links.Coxa, dir))
	chain.FemurEnd = r3.Add(chain.CoxaEnd, segment(dir, g.links.Femur, femur))
	chain.TibiaEnd = r3.Add(chain.FemurEnd, segment(dir, g.links.Tibia, femur+tibia))
	return chain
}

// segment returns a link of the given length pitched by pitch radians out of
// the horizontal plane along dir.
func segment(dir r3.Vec, length, pitch float64) r3.Vec {
	sin, cos := math.Sincos(pitch)
	v := r3.Scale(length*cos, dir)
	v.Z += length * sin
	return v
}
