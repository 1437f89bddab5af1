package legtelemetry

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ikLine captures the record skeleton. Numeric fields are captured loosely so
// that a line with the right shape but a bad number can be reported rather
// than silently skipped.
var ikLine = regexp.MustCompile(
	`^I \(\d+\) wbc: \(([^()]*)\)Leg (\S*) IK: ` +
		`BodyXYZ\(([^,()]*), ([^,()]*), ([^,()]*)\) -> ` +
		`LegXYZ\(([^,()]*), ([^,()]*), ([^,()]*)\) -> ` +
		`LegAng\(([^,()]*), ([^,()]*), ([^,()]*)\)`,
)

var (
	unsignedPattern = regexp.MustCompile(`^\d+$`)
	decimalPattern  = regexp.MustCompile(`^[-+]?\d*\.?\d+$`)
)

// fieldNames labels the capture groups of ikLine, in order.
var fieldNames = [...]string{
	"timestamp", "leg",
	"body x", "body y", "body z",
	"leg x", "leg y", "leg z",
	"coxa angle", "femur angle", "tibia angle",
}

// ParseError reports a structurally valid record with an unusable field.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errNotNumeric = fmt.Errorf("not a decimal number")

// Parse decodes one console line.
//
// It returns (nil, nil) for blank lines and for lines that are not IK
// records. A record whose numeric fields cannot be decoded yields a
// *ParseError; the caller is expected to report it and carry on.
func Parse(line string) (*LegTelemetry, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	m := ikLine.FindStringSubmatch(line)
	if m == nil {
		return nil, nil
	}
	fields := m[1:]

	ts, err := parseUnsigned(fields[0], 64)
	if err != nil {
		return nil, &ParseError{Field: fieldNames[0], Value: fields[0], Err: err}
	}
	// any index that fits an int is accepted; range checks belong to the
	// consumer
	leg, err := parseUnsigned(fields[1], strconv.IntSize-1)
	if err != nil {
		return nil, &ParseError{Field: fieldNames[1], Value: fields[1], Err: err}
	}

	var vals [9]float64
	for i := range vals {
		v, err := parseDecimal(fields[2+i])
		if err != nil {
			return nil, &ParseError{Field: fieldNames[2+i], Value: fields[2+i], Err: err}
		}
		vals[i] = v
	}

	rec := &LegTelemetry{
		Leg:       int(leg),
		Timestamp: ts,
		Body:      r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]},
		Target:    r3.Vec{X: vals[3], Y: vals[4], Z: vals[5]},
	}
	rec.Angles.Coxa, rec.Angles.Femur, rec.Angles.Tibia = vals[6], vals[7], vals[8]
	return rec, nil
}

func parseUnsigned(s string, bits int) (uint64, error) {
	if !unsignedPattern.MatchString(s) {
		return 0, errNotNumeric
	}
	return strconv.ParseUint(s, 10, bits)
}

func parseDecimal(s string) (float64, error) {
	if !decimalPattern.MatchString(s) {
		return 0, errNotNumeric
	}
	return strconv.ParseFloat(s, 64)
}
