package serialport

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/banshee-data/hexapod.report/internal/monitoring"
	"github.com/banshee-data/hexapod.report/internal/pipeline"
)

// MaxLineLength bounds the bytes buffered while waiting for a newline. The
// controller's IK lines are ~130 bytes; anything far longer is line noise.
const MaxLineLength = 4096

const readChunk = 512

// LineReader splits a port's byte stream into lines. Each ReadLine performs
// at most one Read on the underlying port, so with a read timeout set on the
// port it returns within one timeout period.
type LineReader struct {
	port    SerialPorter
	name    string
	buf     []byte
	scratch []byte
	eof     bool

	closeOnce sync.Once
	closeErr  error
}

// NewLineReader wraps port. name identifies the port in log messages.
func NewLineReader(port SerialPorter, name string) *LineReader {
	return &LineReader{
		port:    port,
		name:    name,
		scratch: make([]byte, readChunk),
	}
}

// ReadLine returns the next complete line without its terminator.
//
// It returns pipeline.ErrNoLine when the read timed out, or returned data,
// without completing a line. io.EOF is returned once the port is exhausted
// and any trailing unterminated line has been delivered. Any other error is
// a transport failure.
func (r *LineReader) ReadLine() ([]byte, error) {
	if line, ok := r.nextBuffered(); ok {
		return line, nil
	}
	if r.eof {
		return r.flushTail()
	}

	n, err := r.port.Read(r.scratch)
	if n > 0 {
		r.buf = append(r.buf, r.scratch[:n]...)
	}
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return nil, err
		}
		r.eof = true
	}

	if line, ok := r.nextBuffered(); ok {
		return line, nil
	}
	if r.eof {
		return r.flushTail()
	}
	if len(r.buf) > MaxLineLength {
		monitoring.Debugf("%s: discarding %d bytes without a line terminator", r.name, len(r.buf))
		r.buf = r.buf[:0]
	}
	return nil, pipeline.ErrNoLine
}

// nextBuffered pops one complete line from the buffer, trimming "\n" or
// "\r\n".
func (r *LineReader) nextBuffered() ([]byte, bool) {
	i := bytes.IndexByte(r.buf, '\n')
	if i < 0 {
		return nil, false
	}
	line := make([]byte, i)
	copy(line, r.buf[:i])
	r.buf = r.buf[:copy(r.buf, r.buf[i+1:])]
	return bytes.TrimSuffix(line, []byte{'\r'}), true
}

func (r *LineReader) flushTail() ([]byte, error) {
	if len(r.buf) == 0 {
		return nil, io.EOF
	}
	line := bytes.TrimSuffix(r.buf, []byte{'\r'})
	r.buf = nil
	return line, nil
}

// Close closes the underlying port. Repeated calls return the first result.
func (r *LineReader) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.port.Close()
	})
	return r.closeErr
}

// String returns the port name.
func (r *LineReader) String() string { return r.name }
