// Package synthetic generates controller-format telemetry for demos and
// tests when no robot is connected.
package synthetic

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/hexapod.report/internal/kinematics"
	"github.com/banshee-data/hexapod.report/internal/legtelemetry"
	"github.com/banshee-data/hexapod.report/internal/timeutil"
)

// Pattern selects the simulated motion.
type Pattern string

const (
	// Tripod alternates legs {0,2,4} and {1,3,5} between stance and swing.
	Tripod Pattern = "tripod"
	// Wave ripples a vertical and radial sine around the body.
	Wave Pattern = "wave"
)

// ParsePattern returns the pattern named s.
func ParsePattern(s string) (Pattern, error) {
	switch p := Pattern(strings.ToLower(strings.TrimSpace(s))); p {
	case Tripod, Wave:
		return p, nil
	default:
		return "", fmt.Errorf("unknown demo pattern %q: expected %q or %q", s, Tripod, Wave)
	}
}

// legReach is the simplified horizontal foot distance used for the
// synthetic leg-frame target and femur angle.
const legReach = 0.23

// Generator emits one line per leg per frame in the controller's console
// format. It satisfies pipeline.LineSource.
type Generator struct {
	geometry *kinematics.Geometry
	pattern  Pattern
	clock    timeutil.Clock
	start    time.Time
	next     time.Time
	pending  []string

	// Configuration
	FrameRate  float64 // frames per second
	StepHeight float64 // metres a foot lifts during swing
	StepLength float64 // metres a foot travels per stride
	BodyHeight float64 // metres from body to ground
	GaitSpeed  float64 // tripod strides per second

	closeOnce sync.Once
	closed    chan struct{}
}

// NewGenerator returns a generator for pattern over geometry. A nil clock
// uses the wall clock.
func NewGenerator(geometry *kinematics.Geometry, pattern Pattern, clock timeutil.Clock) (*Generator, error) {
	if geometry == nil {
		return nil, errors.New("synthetic: geometry is required")
	}
	pattern, err := ParsePattern(string(pattern))
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	now := clock.Now()
	return &Generator{
		geometry:   geometry,
		pattern:    pattern,
		clock:      clock,
		start:      now,
		next:       now,
		FrameRate:  60,
		StepHeight: 0.05,
		StepLength: 0.08,
		BodyHeight: 0.28,
		GaitSpeed:  2.0,
		closed:     make(chan struct{}),
	}, nil
}

// ReadLine returns the next line, waiting at most one frame interval for the
// next frame to become due. It returns io.EOF after Close.
func (g *Generator) ReadLine() ([]byte, error) {
	select {
	case <-g.closed:
		return nil, io.EOF
	default:
	}

	if len(g.pending) == 0 {
		if wait := g.next.Sub(g.clock.Now()); wait > 0 {
			select {
			case <-g.clock.After(wait):
			case <-g.closed:
				return nil, io.EOF
			}
		}
		for _, rec := range g.Frame(g.next.Sub(g.start)) {
			g.pending = append(g.pending, legtelemetry.Encode(rec))
		}
		g.advance()
	}

	line := g.pending[0]
	g.pending = g.pending[1:]
	return []byte(line), nil
}

// advance schedules the next frame, skipping frames that are already late.
func (g *Generator) advance() {
	interval := time.Duration(float64(time.Second) / g.FrameRate)
	g.next = g.next.Add(interval)
	if now := g.clock.Now(); g.next.Before(now) {
		g.next = now
	}
}

// Close stops the generator; pending and future reads return io.EOF.
func (g *Generator) Close() error {
	g.closeOnce.Do(func() { close(g.closed) })
	return nil
}

// Frame computes one sample per leg at elapsed time since start.
func (g *Generator) Frame(elapsed time.Duration) []legtelemetry.LegTelemetry {
	t := elapsed.Seconds()
	out := make([]legtelemetry.LegTelemetry, 0, kinematics.LegCount)
	for _, leg := range g.geometry.Legs() {
		var radial, lift float64
		switch g.pattern {
		case Wave:
			radial, lift = g.wave(t, leg.Index())
		default:
			radial, lift = g.tripod(t, leg.Index())
		}

		sinRot, cosRot := math.Sincos(leg.Yaw())
		base := leg.Attachment()
		bodyZ := -g.BodyHeight + lift
		out = append(out, legtelemetry.LegTelemetry{
			Leg:       leg.Index(),
			Timestamp: uint64(elapsed.Microseconds()),
			Body:      r3.Vec{X: base.X + radial*cosRot, Y: base.Y + radial*sinRot, Z: bodyZ},
			Target:    r3.Vec{X: legReach, Y: 0, Z: bodyZ},
			Angles: kinematics.JointAngles{
				Coxa:  0,
				Femur: math.Atan2(-bodyZ, legReach),
				Tibia: 0.8,
			},
		})
	}
	return out
}

// tripod returns the foot's offset along the leg direction and its lift for
// a two-group tripod gait. Legs 0, 2 and 4 lead; the others trail by half a
// cycle.
func (g *Generator) tripod(t float64, leg int) (forward, lift float64) {
	phase := math.Mod(t*g.GaitSpeed, 1)
	if leg%2 == 1 {
		phase = math.Mod(phase+0.5, 1)
	}
	if phase < 0.5 {
		// stance: foot on the ground sweeping backwards
		progress := phase / 0.5
		return g.StepLength * (0.5 - progress), 0
	}
	// swing: parabolic lift while moving forwards
	progress := (phase - 0.5) / 0.5
	return g.StepLength * (progress - 0.5), g.StepHeight * 4 * progress * (1 - progress)
}

func (g *Generator) wave(t float64, leg int) (radial, lift float64) {
	phase := t*2 + float64(leg)*math.Pi/3
	lift = g.StepHeight * 0.5 * (1 + math.Sin(phase))
	radial = 0.02 * math.Sin(phase*1.5)
	return radial, lift
}
