// Package config loads the hexapod.report YAML configuration: serial link
// settings, robot geometry and pipeline sizing.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/hexapod.report/internal/kinematics"
	"github.com/banshee-data/hexapod.report/internal/monitoring"
	"github.com/banshee-data/hexapod.report/internal/serialport"
)

// DefaultConfigPath is the path to the checked-in default configuration.
const DefaultConfigPath = "config/hexapod.defaults.yaml"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config is the root of the configuration file. Sections and scalar fields
// that may be omitted are pointers; the Get* methods supply defaults.
type Config struct {
	Serial   *SerialConfig   `yaml:"serial,omitempty"`
	Robot    *RobotConfig    `yaml:"robot"`
	Pipeline *PipelineConfig `yaml:"pipeline,omitempty"`

	// Visualization is the section older config files use for the same
	// settings as Pipeline. Pipeline takes precedence field by field.
	Visualization *VisualizationConfig `yaml:"visualization,omitempty"`
}

// SerialConfig describes the controller's console port.
type SerialConfig struct {
	Port     *string  `yaml:"port,omitempty"`
	BaudRate *int     `yaml:"baudrate,omitempty"`
	Timeout  *float64 `yaml:"timeout,omitempty"` // seconds
	DataBits *int     `yaml:"data_bits,omitempty"`
	StopBits *int     `yaml:"stop_bits,omitempty"`
	Parity   *string  `yaml:"parity,omitempty"`
}

// RobotConfig is the physical description of the robot.
type RobotConfig struct {
	Body BodyConfig        `yaml:"body"`
	Legs map[int]LegConfig `yaml:"legs"`
}

// BodyConfig holds the body dimensions in metres.
type BodyConfig struct {
	Length float64 `yaml:"length"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// LegConfig is one leg's entry under robot.legs.
type LegConfig struct {
	Name     string    `yaml:"name"`
	Position []float64 `yaml:"position,flow"`
	Rotation float64   `yaml:"rotation"` // radians from body +X

	// LinkLengths is [coxa, femur, tibia] or the legacy [femur, tibia].
	LinkLengths []float64 `yaml:"link_lengths,omitempty,flow"`
	// AngleOffsets are the raw joint readings at mechanical zero.
	AngleOffsets []float64 `yaml:"angle_offsets,omitempty,flow"`
}

// PipelineConfig sizes the telemetry pipeline.
type PipelineConfig struct {
	QueueCapacity *int `yaml:"queue_capacity,omitempty"`
	UpdateRate    *int `yaml:"update_rate,omitempty"` // consumer ticks per second
}

// VisualizationConfig is the legacy form of PipelineConfig.
type VisualizationConfig struct {
	UpdateRate *int `yaml:"update_rate,omitempty"`
	BufferSize *int `yaml:"buffer_size,omitempty"` // queue capacity
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// Load reads and validates a configuration file. The file must have a
// .yaml or .yml extension and be under 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := strings.ToLower(filepath.Ext(cleanPath)); ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cleanPath, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML configuration data. Keys this package
// does not know are ignored.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.Serial != nil {
		if c.Serial.BaudRate != nil && !slices.Contains(serialport.SupportedBaudRates, *c.Serial.BaudRate) {
			return fmt.Errorf("serial.baudrate must be one of %v, got %d", serialport.SupportedBaudRates, *c.Serial.BaudRate)
		}
		if c.Serial.Timeout != nil && !(*c.Serial.Timeout > 0) {
			return fmt.Errorf("serial.timeout must be positive, got %v", *c.Serial.Timeout)
		}
		if _, err := c.PortOptions().Normalise(); err != nil {
			return fmt.Errorf("serial: %w", err)
		}
	}

	if c.Robot == nil {
		return errors.New("robot section is required")
	}
	body := c.Robot.Body
	if !(body.Length > 0) || !(body.Width > 0) || !(body.Height > 0) {
		return fmt.Errorf("robot.body dimensions must be positive, got length=%v width=%v height=%v",
			body.Length, body.Width, body.Height)
	}
	if err := checkLegIndices(c.Robot.Legs); err != nil {
		return err
	}
	if _, err := c.Geometry(); err != nil {
		return err
	}
	for idx, leg := range c.Robot.Legs {
		if math.Abs(leg.Rotation) > 2*math.Pi {
			monitoring.Logf("config: leg %d rotation %.3f rad (%.1f°) is outside ±2π; consider normalising",
				idx, leg.Rotation, leg.Rotation*180/math.Pi)
		}
	}

	if c.Pipeline != nil {
		if err := checkQueueCapacity("pipeline.queue_capacity", c.Pipeline.QueueCapacity); err != nil {
			return err
		}
		if err := checkUpdateRate("pipeline.update_rate", c.Pipeline.UpdateRate); err != nil {
			return err
		}
	}
	if c.Visualization != nil {
		if err := checkQueueCapacity("visualization.buffer_size", c.Visualization.BufferSize); err != nil {
			return err
		}
		if err := checkUpdateRate("visualization.update_rate", c.Visualization.UpdateRate); err != nil {
			return err
		}
		if c.Pipeline != nil && (c.Pipeline.QueueCapacity != nil && c.Visualization.BufferSize != nil ||
			c.Pipeline.UpdateRate != nil && c.Visualization.UpdateRate != nil) {
			monitoring.Logf("config: both pipeline and visualization set; using pipeline values")
		}
	}

	return nil
}

func checkQueueCapacity(key string, v *int) error {
	if v != nil && (*v < 10 || *v > 1000) {
		return fmt.Errorf("%s must be between 10 and 1000, got %d", key, *v)
	}
	return nil
}

func checkUpdateRate(key string, v *int) error {
	if v != nil && (*v < 1 || *v > 120) {
		return fmt.Errorf("%s must be between 1 and 120, got %d", key, *v)
	}
	return nil
}

func checkLegIndices(legs map[int]LegConfig) error {
	var missing, extra []int
	for i := 0; i < kinematics.LegCount; i++ {
		if _, ok := legs[i]; !ok {
			missing = append(missing, i)
		}
	}
	for idx := range legs {
		if idx < 0 || idx >= kinematics.LegCount {
			extra = append(extra, idx)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	sort.Ints(extra)
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing legs: %v", missing))
	}
	if len(extra) > 0 {
		parts = append(parts, fmt.Sprintf("extra legs: %v", extra))
	}
	return fmt.Errorf("robot.legs must have exactly %d legs (0-%d): %s",
		kinematics.LegCount, kinematics.LegCount-1, strings.Join(parts, ", "))
}

// Geometry builds the validated leg geometry.
func (c *Config) Geometry() (*kinematics.Geometry, error) {
	if c.Robot == nil {
		return nil, errors.New("robot section is required")
	}
	indices := make([]int, 0, len(c.Robot.Legs))
	for idx := range c.Robot.Legs {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	legs := make([]kinematics.LegGeometry, 0, len(indices))
	for _, idx := range indices {
		lc := c.Robot.Legs[idx]
		g, err := kinematics.NewLegGeometry(kinematics.LegSpec{
			Index:        idx,
			Name:         lc.Name,
			Position:     lc.Position,
			Yaw:          lc.Rotation,
			LinkLengths:  lc.LinkLengths,
			AngleOffsets: lc.AngleOffsets,
		})
		if err != nil {
			return nil, fmt.Errorf("robot.legs: %w", err)
		}
		legs = append(legs, g)
	}
	geo, err := kinematics.NewGeometry(legs...)
	if err != nil {
		return nil, fmt.Errorf("robot.legs: %w", err)
	}
	return geo, nil
}

// PortOptions returns the serial settings in the form serialport.Open takes.
func (c *Config) PortOptions() serialport.PortOptions {
	opts := serialport.PortOptions{
		BaudRate:    c.GetBaudRate(),
		ReadTimeout: c.GetTimeout(),
	}
	if c.Serial != nil {
		if c.Serial.DataBits != nil {
			opts.DataBits = *c.Serial.DataBits
		}
		if c.Serial.StopBits != nil {
			opts.StopBits = *c.Serial.StopBits
		}
		if c.Serial.Parity != nil {
			opts.Parity = *c.Serial.Parity
		}
	}
	return opts
}

// GetPort returns serial.port or the default.
func (c *Config) GetPort() string {
	if c.Serial == nil || c.Serial.Port == nil || *c.Serial.Port == "" {
		return "/dev/ttyUSB0"
	}
	return *c.Serial.Port
}

// GetBaudRate returns serial.baudrate or the default.
func (c *Config) GetBaudRate() int {
	if c.Serial == nil || c.Serial.BaudRate == nil {
		return serialport.DefaultBaudRate
	}
	return *c.Serial.BaudRate
}

// GetTimeout returns serial.timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	if c.Serial == nil || c.Serial.Timeout == nil {
		return serialport.DefaultReadTimeout
	}
	return time.Duration(*c.Serial.Timeout * float64(time.Second))
}

// GetQueueCapacity returns pipeline.queue_capacity, then
// visualization.buffer_size, then the default.
func (c *Config) GetQueueCapacity() int {
	if c.Pipeline != nil && c.Pipeline.QueueCapacity != nil {
		return *c.Pipeline.QueueCapacity
	}
	if c.Visualization != nil && c.Visualization.BufferSize != nil {
		return *c.Visualization.BufferSize
	}
	return 100
}

// GetUpdateRate returns pipeline.update_rate, then
// visualization.update_rate, then the default.
func (c *Config) GetUpdateRate() int {
	if c.Pipeline != nil && c.Pipeline.UpdateRate != nil {
		return *c.Pipeline.UpdateRate
	}
	if c.Visualization != nil && c.Visualization.UpdateRate != nil {
		return *c.Visualization.UpdateRate
	}
	return 60
}

// GetUpdateInterval returns the consumer tick period.
func (c *Config) GetUpdateInterval() time.Duration {
	return time.Second / time.Duration(c.GetUpdateRate())
}
