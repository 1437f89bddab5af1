package serialport

import (
	"fmt"
	"os"

	"go.bug.st/serial"
)

// Open opens the serial device at path with opts and applies the read
// timeout, which the pipeline depends on for prompt shutdown.
func Open(path string, opts PortOptions) (*LineReader, error) {
	return openWith(path, opts, openRealPort)
}

func openWith(path string, opts PortOptions, open SerialPortOpener) (*LineReader, error) {
	normalised, err := opts.Normalise()
	if err != nil {
		return nil, err
	}

	port, err := open(path, normalised)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if err := port.SetReadTimeout(normalised.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", path, err)
	}
	return NewLineReader(port, path), nil
}

func openRealPort(path string, opts PortOptions) (TimeoutSerialPorter, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}
	return serial.Open(path, mode)
}

// OpenReplay opens a captured console log for replay. The reader returns
// io.EOF at the end of the file.
func OpenReplay(path string) (*LineReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay file: %w", err)
	}
	return NewLineReader(f, path), nil
}

// ListPorts returns the serial ports present on the host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
