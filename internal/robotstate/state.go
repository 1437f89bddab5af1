// Package robotstate keeps the latest telemetry sample per leg and derives
// joint chains from it on demand.
package robotstate

import (
	"sort"
	"time"

	"github.com/banshee-data/hexapod.report/internal/kinematics"
	"github.com/banshee-data/hexapod.report/internal/legtelemetry"
	"github.com/banshee-data/hexapod.report/internal/timeutil"
)

type entry struct {
	rec     legtelemetry.LegTelemetry
	updated time.Time
}

// State is the latest-sample-per-leg store. It is owned by the consumer and
// is not safe for concurrent use.
type State struct {
	geometry *kinematics.Geometry
	clock    timeutil.Clock
	legs     map[int]entry
}

// New returns an empty State. geometry may be nil, in which case snapshots
// carry telemetry but no joint chains. A nil clock uses the wall clock.
func New(geometry *kinematics.Geometry, clock timeutil.Clock) *State {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &State{
		geometry: geometry,
		clock:    clock,
		legs:     make(map[int]entry),
	}
}

// Merge records rec as the latest sample for its leg, replacing any
// earlier one. Indices outside 0-5 are kept but never yield a chain.
func (s *State) Merge(rec legtelemetry.LegTelemetry) {
	s.legs[rec.Leg] = entry{rec: rec, updated: s.clock.Now()}
}

// Len returns the number of distinct leg indices seen.
func (s *State) Len() int { return len(s.legs) }

// Geometry returns the geometry chains are derived from.
func (s *State) Geometry() *kinematics.Geometry { return s.geometry }

// LegSnapshot is the view of one leg slot.
type LegSnapshot struct {
	Index int
	Name  string

	// Telemetry is nil until a sample for the leg has been merged.
	Telemetry   *legtelemetry.LegTelemetry
	LastUpdated time.Time

	// Chain is set when both a sample and link lengths for the leg exist.
	Chain *kinematics.JointChain
}

// Snapshot is a copy of the state at one instant.
type Snapshot struct {
	Taken time.Time
	Legs  [kinematics.LegCount]LegSnapshot

	// Unmapped holds samples whose index is outside 0-5, ordered by index.
	Unmapped []legtelemetry.LegTelemetry
}

// Snapshot copies the current state, solving forward kinematics for every
// leg that has both geometry and a sample.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{Taken: s.clock.Now()}

	for i := range snap.Legs {
		ls := LegSnapshot{Index: i}
		geo, hasGeo := s.geometry.Leg(i)
		if hasGeo {
			ls.Name = geo.Name()
		}
		if e, ok := s.legs[i]; ok {
			rec := e.rec
			ls.Telemetry = &rec
			ls.LastUpdated = e.updated
			if _, hasLinks := geo.Links(); hasGeo && hasLinks {
				chain := kinematics.Solve(geo, rec.Angles)
				ls.Chain = &chain
			}
		}
		snap.Legs[i] = ls
	}

	for idx, e := range s.legs {
		if idx < 0 || idx >= kinematics.LegCount {
			snap.Unmapped = append(snap.Unmapped, e.rec)
		}
	}
	sort.Slice(snap.Unmapped, func(a, b int) bool {
		return snap.Unmapped[a].Leg < snap.Unmapped[b].Leg
	})
	return snap
}

// Active counts legs whose latest sample arrived within window of now.
func (s Snapshot) Active(window time.Duration, now time.Time) int {
	n := 0
	for _, l := range s.Legs {
		if l.Telemetry != nil && now.Sub(l.LastUpdated) <= window {
			n++
		}
	}
	return n
}

// Chains returns the derived joint chains in leg order.
func (s Snapshot) Chains() []kinematics.JointChain {
	var out []kinematics.JointChain
	for _, l := range s.Legs {
		if l.Chain != nil {
			out = append(out, *l.Chain)
		}
	}
	return out
}
