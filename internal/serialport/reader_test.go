package serialport

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/hexapod.report/internal/pipeline"
	"github.com/banshee-data/hexapod.report/internal/testutil"
)

func TestLineReader_CompleteLines(t *testing.T) {
	port := NewTestableSerialPort()
	port.AddReadData([]byte("first\r\nsecond\nthird\n"))
	r := NewLineReader(port, "test")

	for _, want := range []string{"first", "second", "third"} {
		line, err := r.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, want, string(line))
	}
	// buffered lines are served without touching the port again
	assert.Equal(t, 1, port.ReadCalls)

	_, err := r.ReadLine()
	assert.ErrorIs(t, err, pipeline.ErrNoLine)
}

func TestLineReader_PartialLineAcrossReads(t *testing.T) {
	port := NewTestableSerialPort()
	port.ChunkSize = 16
	port.AddReadData([]byte(testutil.SampleLine + "\n"))
	r := NewLineReader(port, "test")

	var (
		line  []byte
		err   error
		polls int
	)
	for polls = 0; polls < 100; polls++ {
		line, err = r.ReadLine()
		if !errors.Is(err, pipeline.ErrNoLine) {
			break
		}
	}
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleLine, string(line))
	assert.Greater(t, polls, 0, "partial reads should report no line")
}

func TestLineReader_IdleReturnsNoLine(t *testing.T) {
	port := NewTestableSerialPort()
	r := NewLineReader(port, "test")

	_, err := r.ReadLine()
	assert.ErrorIs(t, err, pipeline.ErrNoLine)
	assert.Equal(t, 1, port.ReadCalls)
}

func TestLineReader_ReadError(t *testing.T) {
	port := NewTestableSerialPort()
	boom := errors.New("device unplugged")
	port.SetReadError(boom)
	r := NewLineReader(port, "test")

	_, err := r.ReadLine()
	assert.ErrorIs(t, err, boom)
}

func TestLineReader_EOFFlushesTail(t *testing.T) {
	port := NewTestableSerialPort()
	port.EOF = true
	port.AddReadData([]byte("one\ntwo"))
	r := NewLineReader(port, "test")

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "one", string(line))

	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "two", string(line))

	_, err = r.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
	_, err = r.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_OverlongLineDiscarded(t *testing.T) {
	testutil.MuteLogs(t)

	port := NewTestableSerialPort()
	port.AddReadData([]byte(strings.Repeat("x", MaxLineLength+1)))
	r := NewLineReader(port, "test")

	for i := 0; i < 20; i++ {
		_, err := r.ReadLine()
		require.ErrorIs(t, err, pipeline.ErrNoLine)
	}
	assert.Empty(t, r.buf)

	port.AddReadData([]byte("ok\n"))
	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(line))
}

func TestLineReader_CloseOnce(t *testing.T) {
	port := NewTestableSerialPort()
	port.CloseError = errors.New("close failed")
	r := NewLineReader(port, "test")

	err1 := r.Close()
	err2 := r.Close()
	assert.Equal(t, port.CloseError, err1)
	assert.Equal(t, err1, err2)
	assert.Equal(t, 1, port.CloseCalls)
	assert.True(t, port.IsClosed())
}

func TestOpenWith_AppliesReadTimeout(t *testing.T) {
	port := NewTestableSerialPort()
	var gotPath string
	var gotOpts PortOptions
	opener := func(path string, opts PortOptions) (TimeoutSerialPorter, error) {
		gotPath, gotOpts = path, opts
		return port, nil
	}

	r, err := openWith("/dev/ttyUSB0", PortOptions{ReadTimeout: 200 * time.Millisecond}, opener)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", gotPath)
	assert.Equal(t, 115200, gotOpts.BaudRate)
	assert.Equal(t, 200*time.Millisecond, port.ReadTimeout)
	assert.Equal(t, "/dev/ttyUSB0", r.String())
}

func TestOpenWith_Errors(t *testing.T) {
	_, err := openWith("/dev/null", PortOptions{BaudRate: 1}, func(string, PortOptions) (TimeoutSerialPorter, error) {
		t.Fatal("opener should not be called with invalid options")
		return nil, nil
	})
	assert.Error(t, err)

	boom := errors.New("no such device")
	_, err = openWith("/dev/missing", PortOptions{}, func(string, PortOptions) (TimeoutSerialPorter, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "/dev/missing")
}

func TestOpenReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.log")
	require.NoError(t, os.WriteFile(path, []byte("boot banner\n"+testutil.SampleLine+"\n"), 0o644))

	r, err := OpenReplay(path)
	require.NoError(t, err)
	defer r.Close()

	var lines []string
	for {
		line, err := r.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, pipeline.ErrNoLine) {
			continue
		}
		require.NoError(t, err)
		lines = append(lines, string(line))
	}
	assert.Equal(t, []string{"boot banner", testutil.SampleLine}, lines)

	_, err = OpenReplay(filepath.Join(t.TempDir(), "missing.log"))
	assert.Error(t, err)
}
