// Package serialport provides the live telemetry transports: a serial port
// opened with a read timeout, and replay of a captured console log. Both
// are exposed as a LineReader that satisfies pipeline.LineSource.
package serialport

import (
	"io"
	"time"
)

// SerialPorter defines the minimal interface needed for a telemetry port.
// This abstraction enables unit testing without real serial hardware.
type SerialPorter interface {
	io.Reader
	io.Closer
}

// TimeoutSerialPorter extends SerialPorter with timeout capabilities.
// A port with a read timeout returns (0, nil) from Read when no byte
// arrived in time; LineReader relies on that to hand control back to the
// pipeline so cancellation is observed on an idle line.
type TimeoutSerialPorter interface {
	SerialPorter
	// SetReadTimeout sets the read timeout for the serial port.
	SetReadTimeout(timeout time.Duration) error
}

// SerialPortOpener is a function type for opening serial ports.
// This allows for easier testing by replacing the opener function.
type SerialPortOpener func(path string, opts PortOptions) (TimeoutSerialPorter, error)
