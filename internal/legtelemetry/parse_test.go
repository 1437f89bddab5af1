package legtelemetry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/hexapod.report/internal/kinematics"
)

const sampleLine = "I (39868) wbc: (39599638)Leg 0 IK: BodyXYZ(0.106, 0.280, -0.043) -> LegXYZ(0.230, -0.026, -0.043) -> LegAng(-0.112, 0.025, 0.768)"

func TestParse_SampleLine(t *testing.T) {
	rec, err := Parse(sampleLine)
	require.NoError(t, err)
	require.NotNil(t, rec)

	want := &LegTelemetry{
		Leg:       0,
		Timestamp: 39599638,
		Body:      r3.Vec{X: 0.106, Y: 0.280, Z: -0.043},
		Target:    r3.Vec{X: 0.230, Y: -0.026, Z: -0.043},
		Angles:    kinematics.JointAngles{Coxa: -0.112, Femur: 0.025, Tibia: 0.768},
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_NoRecord(t *testing.T) {
	for _, line := range []string{
		"",
		"   \t\r\n",
		"garbage",
		"Invalid line format",
		"I (39868) wbc: starting gait engine",
		"I (39868) imu: (39599638)Leg 0 IK: BodyXYZ(0.1, 0.2, 0.3) -> LegXYZ(0.1, 0.2, 0.3) -> LegAng(0.1, 0.2, 0.3)",
		"W (39868) wbc: (39599638)Leg 0 IK: BodyXYZ(0.1, 0.2, 0.3) -> LegXYZ(0.1, 0.2, 0.3) -> LegAng(0.1, 0.2, 0.3)",
		// truncated mid-record, as happens when the port is opened mid-line
		"I (39868) wbc: (39599638)Leg 0 IK: BodyXYZ(0.106, 0.280, -0.043) -> LegXYZ(0.230, -0.026",
		"0.106, 0.280, -0.043) -> LegAng(-0.112, 0.025, 0.768)",
		// only two components
		"I (39868) wbc: (39599638)Leg 0 IK: BodyXYZ(0.106, 0.280) -> LegXYZ(0.230, -0.026, -0.043) -> LegAng(-0.112, 0.025, 0.768)",
	} {
		t.Run(fmt.Sprintf("%.30q", line), func(t *testing.T) {
			rec, err := Parse(line)
			assert.NoError(t, err)
			assert.Nil(t, rec)
		})
	}
}

func TestParse_SurroundingWhitespace(t *testing.T) {
	rec, err := Parse("  " + sampleLine + "\r\n")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, uint64(39599638), rec.Timestamp)
}

func TestParse_TrailingTextIgnored(t *testing.T) {
	rec, err := Parse(sampleLine + " [gait=tripod]")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 0.768, rec.Angles.Tibia)
}

func TestParse_SignsAndForms(t *testing.T) {
	line := "I (1) wbc: (42)Leg 3 IK: BodyXYZ(+1.5, -.25, 2) -> LegXYZ(0, +0, -0.0) -> LegAng(.5, -3, +0.125)"
	rec, err := Parse(line)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, r3.Vec{X: 1.5, Y: -0.25, Z: 2}, rec.Body)
	assert.Equal(t, 0.0, rec.Target.X)
	assert.Equal(t, kinematics.JointAngles{Coxa: 0.5, Femur: -3, Tibia: 0.125}, rec.Angles)
}

func TestParse_LegIndexNotRangeChecked(t *testing.T) {
	for _, leg := range []int{0, 5, 6, 17, 12345} {
		line := strings.Replace(sampleLine, "Leg 0 IK:", "Leg "+strconv.Itoa(leg)+" IK:", 1)
		rec, err := Parse(line)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, leg, rec.Leg)
	}
}

func TestParse_LegIndexBetweenMarkers(t *testing.T) {
	for leg := 0; leg < 6; leg++ {
		line := Encode(LegTelemetry{Leg: leg, Timestamp: uint64(1000 + leg)})
		rec, err := Parse(line)
		require.NoError(t, err)
		require.NotNil(t, rec)

		start := strings.Index(line, "Leg ") + len("Leg ")
		end := strings.Index(line, " IK:")
		between, convErr := strconv.Atoi(line[start:end])
		require.NoError(t, convErr)
		assert.Equal(t, between, rec.Leg)
	}
}

func TestParse_InvalidNumericField(t *testing.T) {
	cases := []struct {
		name  string
		from  string
		to    string
		field string
	}{
		{"word in body", "BodyXYZ(0.106,", "BodyXYZ(abc,", "body x"},
		{"double dot", "-0.026,", "-0.0.26,", "leg y"},
		{"exponent", "0.768)", "7.68e-1)", "tibia angle"},
		{"signed timestamp", "(39599638)", "(-39599638)", "timestamp"},
		{"empty timestamp", "(39599638)", "()", "timestamp"},
		{"fractional leg", "Leg 0 IK", "Leg 0.5 IK", "leg"},
		{"huge timestamp", "(39599638)", "(99999999999999999999999)", "timestamp"},
		{"huge leg", "Leg 0 IK", "Leg 99999999999999999999999 IK", "leg"},
		{"overflowing float", "LegAng(-0.112", "LegAng(" + strings.Repeat("9", 400), "coxa angle"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			line := strings.Replace(sampleLine, tc.from, tc.to, 1)
			require.NotEqual(t, sampleLine, line, "replacement did not apply")

			rec, err := Parse(line)
			assert.Nil(t, rec)
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "want *ParseError, got %T", err)
			assert.Equal(t, tc.field, pe.Field)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestParse_RangeErrorUnwraps(t *testing.T) {
	line := strings.Replace(sampleLine, "(39599638)", "(99999999999999999999999)", 1)
	_, err := Parse(line)
	assert.ErrorIs(t, err, strconv.ErrRange)
}

func TestParse_LegIndexBeyondInt(t *testing.T) {
	line := strings.Replace(sampleLine, "Leg 0 IK:", "Leg 9223372036854775808 IK:", 1)
	rec, err := Parse(line)
	assert.Nil(t, rec)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "leg", perr.Field)
	assert.ErrorIs(t, err, strconv.ErrRange)

	line = strings.Replace(sampleLine, "Leg 0 IK:", "Leg 2147483647 IK:", 1)
	rec, err = Parse(line)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 2147483647, rec.Leg)
}

func TestParse_Deterministic(t *testing.T) {
	a, errA := Parse(sampleLine)
	b, errB := Parse(sampleLine)
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
	assert.NotSame(t, a, b)
}

func TestEncode_RoundTrip(t *testing.T) {
	rec := LegTelemetry{
		Leg:       4,
		Timestamp: 123456789,
		Body:      r3.Vec{X: 0.0123, Y: -0.0856, Z: -0.28},
		Target:    r3.Vec{X: 0.23, Y: 0, Z: -0.28},
		Angles:    kinematics.JointAngles{Coxa: 0, Femur: 0.8832, Tibia: 0.8},
	}

	line := Encode(rec)
	assert.True(t, strings.HasPrefix(line, "I (123456) wbc: (123456789)Leg 4 IK: "))

	got, err := Parse(line)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Leg, got.Leg)
	assert.Equal(t, rec.Timestamp, got.Timestamp)
	assert.InDelta(t, rec.Body.X, got.Body.X, 5e-4)
	assert.InDelta(t, rec.Body.Y, got.Body.Y, 5e-4)
	assert.InDelta(t, rec.Angles.Femur, got.Angles.Femur, 5e-4)
}

func TestFormat(t *testing.T) {
	rec, err := Parse(sampleLine)
	require.NoError(t, err)

	out := Format(*rec, "Left Front")
	assert.True(t, strings.HasPrefix(out, "Leg 0 (Left Front)  | Time: 39599638μs"), out)
	assert.Contains(t, out, "Body: ( 0.106,  0.280, -0.043)")
	assert.Contains(t, out, "Angles: (-0.112,  0.025,  0.768)")

	anon := Format(*rec, "")
	assert.True(t, strings.HasPrefix(anon, "Leg 0               | Time:"), anon)
}
