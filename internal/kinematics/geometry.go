package kinematics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// LegCount is the number of legs on the robot. Leg indices run 0..LegCount-1.
const LegCount = 6

// JointAngles holds one value per joint, proximal to distal (radians).
type JointAngles struct {
	Coxa  float64
	Femur float64
	Tibia float64
}

// LinkLengths holds the segment lengths of one leg (metres). A zero Coxa
// means the coxa length is unknown and the segment collapses onto the
// attachment point.
type LinkLengths struct {
	Coxa  float64
	Femur float64
	Tibia float64
}

// NormalizeLinkLengths converts configured link lengths to LinkLengths.
// Three values are taken as coxa, femur, tibia. The legacy two-value form
// [femur, tibia] is accepted with the coxa length forced to zero.
func NormalizeLinkLengths(v []float64) (LinkLengths, error) {
	var l LinkLengths
	switch len(v) {
	case 2:
		l = LinkLengths{Coxa: 0, Femur: v[0], Tibia: v[1]}
	case 3:
		l = LinkLengths{Coxa: v[0], Femur: v[1], Tibia: v[2]}
	default:
		return l, fmt.Errorf("link lengths must have 2 or 3 values, got %d", len(v))
	}
	if !finite(l.Coxa, l.Femur, l.Tibia) {
		return l, errors.New("link lengths must be finite")
	}
	if l.Coxa < 0 {
		return l, fmt.Errorf("coxa length must be non-negative, got %g", l.Coxa)
	}
	if l.Femur <= 0 || l.Tibia <= 0 {
		return l, fmt.Errorf("femur and tibia lengths must be positive, got %g and %g", l.Femur, l.Tibia)
	}
	return l, nil
}

// LegSpec is the unvalidated description of one leg, as read from
// configuration.
type LegSpec struct {
	Index int
	Name  string
	// Position is the attachment point [x, y, z] in the body frame.
	Position []float64
	// Yaw is the attachment's forward direction in the body's horizontal
	// plane, measured from the body X axis.
	Yaw float64
	// LinkLengths is empty when the leg's dimensions are not configured.
	LinkLengths []float64
	// AngleOffsets are the raw joint readings at mechanical zero. Empty
	// means all zero.
	AngleOffsets []float64
}

// LegGeometry is the validated, immutable geometry of one leg.
type LegGeometry struct {
	index      int
	name       string
	attachment r3.Vec
	yaw        float64
	links      LinkLengths
	hasLinks   bool
	offsets    JointAngles
}

// NewLegGeometry validates spec and returns the corresponding geometry.
func NewLegGeometry(spec LegSpec) (LegGeometry, error) {
	var g LegGeometry
	if spec.Index < 0 || spec.Index >= LegCount {
		return g, fmt.Errorf("leg index %d out of range 0-%d", spec.Index, LegCount-1)
	}
	if len(spec.Position) != 3 {
		return g, fmt.Errorf("leg %d: position must have exactly 3 coordinates [x, y, z], got %d", spec.Index, len(spec.Position))
	}
	if !finite(spec.Position...) || !finite(spec.Yaw) {
		return g, fmt.Errorf("leg %d: position and rotation must be finite", spec.Index)
	}

	g = LegGeometry{
		index:      spec.Index,
		name:       spec.Name,
		attachment: r3.Vec{X: spec.Position[0], Y: spec.Position[1], Z: spec.Position[2]},
		yaw:        spec.Yaw,
	}

	if len(spec.LinkLengths) > 0 {
		links, err := NormalizeLinkLengths(spec.LinkLengths)
		if err != nil {
			return LegGeometry{}, fmt.Errorf("leg %d: %w", spec.Index, err)
		}
		g.links = links
		g.hasLinks = true
	}

	switch len(spec.AngleOffsets) {
	case 0:
	case 3:
		if !finite(spec.AngleOffsets...) {
			return LegGeometry{}, fmt.Errorf("leg %d: angle offsets must be finite", spec.Index)
		}
		g.offsets = JointAngles{Coxa: spec.AngleOffsets[0], Femur: spec.AngleOffsets[1], Tibia: spec.AngleOffsets[2]}
	default:
		return LegGeometry{}, fmt.Errorf("leg %d: angle offsets must have exactly 3 values, got %d", spec.Index, len(spec.AngleOffsets))
	}

	return g, nil
}

// Index returns the leg index, 0..LegCount-1.
func (g LegGeometry) Index() int { return g.index }

// Name returns the configured display name, possibly empty.
func (g LegGeometry) Name() string { return g.name }

// Attachment returns the leg's mounting point in the body frame.
func (g LegGeometry) Attachment() r3.Vec { return g.attachment }

// Yaw returns the attachment's rotation about the body Z axis (radians).
func (g LegGeometry) Yaw() float64 { return g.yaw }

// Links returns the link lengths and whether they were configured.
func (g LegGeometry) Links() (LinkLengths, bool) { return g.links, g.hasLinks }

// Offsets returns the joint calibration offsets.
func (g LegGeometry) Offsets() JointAngles { return g.offsets }

// Geometry is the complete, validated set of six leg geometries.
type Geometry struct {
	legs [LegCount]LegGeometry
}

// NewGeometry assembles a Geometry. Exactly one geometry must be supplied
// for each leg index 0..LegCount-1.
func NewGeometry(legs ...LegGeometry) (*Geometry, error) {
	if len(legs) != LegCount {
		return nil, fmt.Errorf("must have exactly %d legs (0-%d), got %d", LegCount, LegCount-1, len(legs))
	}
	var (
		g    Geometry
		seen [LegCount]bool
	)
	for _, leg := range legs {
		// six entries with no duplicate cover every index
		if seen[leg.index] {
			return nil, fmt.Errorf("duplicate leg index %d", leg.index)
		}
		seen[leg.index] = true
		g.legs[leg.index] = leg
	}
	return &g, nil
}

// Leg returns the geometry for index i. ok is false when i is outside
// 0..LegCount-1.
func (g *Geometry) Leg(i int) (leg LegGeometry, ok bool) {
	if g == nil || i < 0 || i >= LegCount {
		return LegGeometry{}, false
	}
	return g.legs[i], true
}

// Legs returns the six leg geometries ordered by index.
func (g *Geometry) Legs() []LegGeometry {
	out := make([]LegGeometry, LegCount)
	copy(out, g.legs[:])
	return out
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
