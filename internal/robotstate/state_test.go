package robotstate

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/hexapod.report/internal/kinematics"
	"github.com/banshee-data/hexapod.report/internal/legtelemetry"
	"github.com/banshee-data/hexapod.report/internal/testutil"
	"github.com/banshee-data/hexapod.report/internal/timeutil"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sample(leg int, ts uint64) legtelemetry.LegTelemetry {
	return legtelemetry.LegTelemetry{
		Leg:       leg,
		Timestamp: ts,
		Body:      r3.Vec{X: 0.1, Y: 0.2, Z: -0.05},
		Target:    r3.Vec{X: 0.2, Y: 0, Z: -0.05},
	}
}

func TestState_MergeIdempotent(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	geo := testutil.StockGeometry(t, []float64{0.03, 0.10, 0.15})

	once := New(geo, clock)
	once.Merge(sample(2, 100))

	twice := New(geo, clock)
	twice.Merge(sample(2, 100))
	twice.Merge(sample(2, 100))

	if diff := cmp.Diff(once.Snapshot(), twice.Snapshot()); diff != "" {
		t.Errorf("merging twice differs from once (-once +twice):\n%s", diff)
	}
	assert.Equal(t, 1, twice.Len())
}

func TestState_LastWriteWins(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	s := New(nil, clock)

	s.Merge(sample(1, 100))
	clock.Advance(time.Second)
	s.Merge(sample(1, 50))

	snap := s.Snapshot()
	require.NotNil(t, snap.Legs[1].Telemetry)
	assert.Equal(t, uint64(50), snap.Legs[1].Telemetry.Timestamp, "merge order wins, not device time")
	assert.Equal(t, epoch.Add(time.Second), snap.Legs[1].LastUpdated)
}

func TestState_SnapshotDerivesChains(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	geo := testutil.StockGeometry(t, []float64{0.03, 0.10, 0.15})
	s := New(geo, clock)
	s.Merge(sample(0, 1))
	s.Merge(sample(5, 2))

	snap := s.Snapshot()
	assert.Equal(t, epoch, snap.Taken)
	for i, leg := range snap.Legs {
		assert.Equal(t, i, leg.Index)
		assert.Equal(t, testutil.LegNames[i], leg.Name)
	}

	require.NotNil(t, snap.Legs[0].Chain)
	require.NotNil(t, snap.Legs[5].Chain)
	assert.Nil(t, snap.Legs[3].Telemetry)
	assert.Nil(t, snap.Legs[3].Chain)

	leg0, _ := geo.Leg(0)
	assert.Equal(t, kinematics.Solve(leg0, kinematics.JointAngles{}), *snap.Legs[0].Chain)
	assert.Len(t, snap.Chains(), 2)
}

func TestState_NoLinksNoChain(t *testing.T) {
	s := New(testutil.StockGeometry(t, nil), timeutil.NewMockClock(epoch))
	s.Merge(sample(0, 1))

	snap := s.Snapshot()
	require.NotNil(t, snap.Legs[0].Telemetry)
	assert.Nil(t, snap.Legs[0].Chain)
}

func TestState_OutOfRangeStoredNotSolved(t *testing.T) {
	s := New(testutil.StockGeometry(t, []float64{0.10, 0.15}), timeutil.NewMockClock(epoch))
	s.Merge(sample(9, 1))
	s.Merge(sample(7, 2))
	s.Merge(sample(1, 3))

	assert.Equal(t, 3, s.Len())
	snap := s.Snapshot()
	require.Len(t, snap.Unmapped, 2)
	assert.Equal(t, 7, snap.Unmapped[0].Leg)
	assert.Equal(t, 9, snap.Unmapped[1].Leg)
	assert.Len(t, snap.Chains(), 1)
}

func TestState_SnapshotIsACopy(t *testing.T) {
	s := New(nil, timeutil.NewMockClock(epoch))
	s.Merge(sample(0, 1))

	snap := s.Snapshot()
	snap.Legs[0].Telemetry.Timestamp = 999

	again := s.Snapshot()
	assert.Equal(t, uint64(1), again.Legs[0].Telemetry.Timestamp)
}

func TestSnapshot_Active(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	s := New(nil, clock)
	s.Merge(sample(0, 1))
	clock.Advance(2 * time.Second)
	s.Merge(sample(1, 1))
	s.Merge(sample(2, 1))
	s.Merge(sample(8, 1))

	snap := s.Snapshot()
	now := clock.Now()
	assert.Equal(t, 2, snap.Active(time.Second, now))
	assert.Equal(t, 3, snap.Active(5*time.Second, now))
	assert.Equal(t, 0, snap.Active(time.Second, now.Add(10*time.Second)))
}

func TestNew_NilClockUsesWallClock(t *testing.T) {
	s := New(nil, nil)
	before := time.Now()
	s.Merge(sample(0, 1))
	snap := s.Snapshot()
	assert.False(t, snap.Legs[0].LastUpdated.Before(before))
}
