package serialport

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"
)

// ErrPortClosed is returned by TestableSerialPort reads after Close.
var ErrPortClosed = errors.New("serial port closed")

// TestableSerialPort implements TimeoutSerialPorter with scriptable
// behaviour for tests. An empty read buffer behaves like an idle line: Read
// returns (0, nil) as a real port does when its read timeout expires.
type TestableSerialPort struct {
	mu sync.Mutex

	// ReadBuffer holds data to be returned by Read calls
	ReadBuffer *bytes.Buffer

	// ChunkSize caps the bytes returned per Read; 0 means no cap
	ChunkSize int

	// ReadError is returned by the next Read call once the buffer is empty
	ReadError error

	// EOF makes Read return io.EOF once the buffer is empty
	EOF bool

	// CloseError is returned by Close if set
	CloseError error

	// Closed indicates whether Close was called
	Closed bool

	// CloseCalls records the number of Close calls
	CloseCalls int

	// ReadCalls records the number of Read calls
	ReadCalls int

	// ReadTimeout is the current read timeout
	ReadTimeout time.Duration
}

// NewTestableSerialPort creates a new TestableSerialPort for testing.
func NewTestableSerialPort() *TestableSerialPort {
	return &TestableSerialPort{ReadBuffer: bytes.NewBuffer(nil)}
}

// Read returns buffered data, the scripted error, or (0, nil) when idle.
func (t *TestableSerialPort) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadCalls++
	if t.Closed {
		return 0, ErrPortClosed
	}
	if t.ReadBuffer.Len() > 0 {
		if t.ChunkSize > 0 && len(p) > t.ChunkSize {
			p = p[:t.ChunkSize]
		}
		return t.ReadBuffer.Read(p)
	}
	if t.ReadError != nil {
		err := t.ReadError
		t.ReadError = nil
		return 0, err
	}
	if t.EOF {
		return 0, io.EOF
	}
	return 0, nil
}

// Close marks the port closed.
func (t *TestableSerialPort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.CloseCalls++
	t.Closed = true
	return t.CloseError
}

// SetReadTimeout records the timeout.
func (t *TestableSerialPort) SetReadTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ReadTimeout = timeout
	return nil
}

// AddReadData appends data to be returned by subsequent reads.
func (t *TestableSerialPort) AddReadData(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ReadBuffer.Write(data)
}

// SetReadError sets the error returned once the buffer drains.
func (t *TestableSerialPort) SetReadError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ReadError = err
}

// IsClosed reports whether Close was called.
func (t *TestableSerialPort) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Closed
}
