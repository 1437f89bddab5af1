package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the stock configuration: a 200x150mm body with legs
// at 45° corners and the middle pair square to the body.
func DefaultConfig() *Config {
	links := []float64{0.03, 0.10, 0.15}
	offsets := []float64{0, 0, 0}
	leg := func(name string, x, y, rot float64) LegConfig {
		return LegConfig{
			Name:         name,
			Position:     []float64{x, y, 0},
			Rotation:     rot,
			LinkLengths:  append([]float64(nil), links...),
			AngleOffsets: append([]float64(nil), offsets...),
		}
	}
	return &Config{
		Serial: &SerialConfig{
			Port:     ptrString("/dev/ttyUSB0"),
			BaudRate: ptrInt(115200),
			Timeout:  ptrFloat64(1.0),
		},
		Robot: &RobotConfig{
			Body: BodyConfig{Length: 0.200, Width: 0.150, Height: 0.050},
			Legs: map[int]LegConfig{
				0: leg("Left Front", 0.075, 0.075, 0.7854),
				1: leg("Left Middle", 0.0, 0.085, 1.5708),
				2: leg("Left Back", -0.075, 0.075, 2.3562),
				3: leg("Right Front", 0.075, -0.075, -0.7854),
				4: leg("Right Middle", 0.0, -0.085, -1.5708),
				5: leg("Right Back", -0.075, -0.075, -2.3562),
			},
		},
		Pipeline: &PipelineConfig{
			QueueCapacity: ptrInt(100),
			UpdateRate:    ptrInt(60),
		},
	}
}

// WriteDefault writes DefaultConfig to path. It refuses to replace an
// existing file.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return f.Close()
}
