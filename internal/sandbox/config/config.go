package config

import (
	"errors"
	"fmt"
	"math"
)

// Config holds the simulation configuration.
type Config struct {
	Seed         int64   `yaml:"seed" json:"seed"`
	ChunkSize    float64 `yaml:"chunk_size" json:"chunk_size"`
	Segments     int     `yaml:"segments" json:"segments"`
	ViewDistance float64 `yaml:"view_distance" json:"view_distance"`
	NoiseScale   float64 `yaml:"noise_scale" json:"noise_scale"`
	Amplitude    float64 `yaml:"amplitude" json:"amplitude"`
	Neighborhood string  `yaml:"neighborhood" json:"neighborhood"` // "square" or "diamond"

	TickRate   int     `yaml:"tick_rate" json:"tick_rate"` // ticks per second
	Gravity    float64 `yaml:"gravity" json:"gravity"`
	HeapFloats int     `yaml:"heap_floats" json:"heap_floats"` // physics heap capacity (0 = unbounded)

	Water      bool    `yaml:"water" json:"water"`
	WaterLevel float64 `yaml:"water_level" json:"water_level"`

	FlightSpeed    float64 `yaml:"flight_speed" json:"flight_speed"`       // world units per second
	FlightAltitude float64 `yaml:"flight_altitude" json:"flight_altitude"` // above ground

	FeedAddr string `yaml:"feed_addr" json:"feed_addr"` // empty disables the feed
	DataDir  string `yaml:"data_dir" json:"data_dir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Seed:           69420,
		ChunkSize:      30,
		Segments:       2,
		ViewDistance:   200,
		NoiseScale:     600,
		Amplitude:      40,
		Neighborhood:   "square",
		TickRate:       60,
		Gravity:        -10,
		WaterLevel:     -5,
		FlightSpeed:    60,
		FlightAltitude: 50,
		DataDir:        "data",
	}
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["chunk-size"] {
		cfg.ChunkSize = fromFile.ChunkSize
	}
	if !explicitFlags["segments"] {
		cfg.Segments = fromFile.Segments
	}
	if !explicitFlags["view-distance"] {
		cfg.ViewDistance = fromFile.ViewDistance
	}
	if !explicitFlags["noise-scale"] {
		cfg.NoiseScale = fromFile.NoiseScale
	}
	if !explicitFlags["amplitude"] {
		cfg.Amplitude = fromFile.Amplitude
	}
	if !explicitFlags["neighborhood"] {
		cfg.Neighborhood = fromFile.Neighborhood
	}
	if !explicitFlags["tick-rate"] {
		cfg.TickRate = fromFile.TickRate
	}
	if !explicitFlags["gravity"] {
		cfg.Gravity = fromFile.Gravity
	}
	if !explicitFlags["heap-floats"] {
		cfg.HeapFloats = fromFile.HeapFloats
	}
	if !explicitFlags["water"] {
		cfg.Water = fromFile.Water
	}
	if !explicitFlags["water-level"] {
		cfg.WaterLevel = fromFile.WaterLevel
	}
	if !explicitFlags["speed"] {
		cfg.FlightSpeed = fromFile.FlightSpeed
	}
	if !explicitFlags["altitude"] {
		cfg.FlightAltitude = fromFile.FlightAltitude
	}
	if !explicitFlags["feed"] {
		cfg.FeedAddr = fromFile.FeedAddr
	}
	if !explicitFlags["data-dir"] {
		cfg.DataDir = fromFile.DataDir
	}
}

// ChunkRadius returns how many chunks are kept on each side of the centre.
func (c *Config) ChunkRadius() int {
	if c.ChunkSize <= 0 || c.ViewDistance <= 0 {
		return 0
	}
	return int(math.Ceil(c.ViewDistance / c.ChunkSize))
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if !(c.ChunkSize > 0) {
		errs = append(errs, fmt.Errorf("chunk_size must be positive, got %v", c.ChunkSize))
	}
	if c.Segments < 1 {
		errs = append(errs, fmt.Errorf("segments must be at least 1, got %d", c.Segments))
	}
	if c.ViewDistance < 0 {
		errs = append(errs, fmt.Errorf("view_distance must not be negative, got %v", c.ViewDistance))
	}
	if !(c.NoiseScale > 0) {
		errs = append(errs, fmt.Errorf("noise_scale must be positive, got %v", c.NoiseScale))
	}
	switch c.Neighborhood {
	case "", "square", "diamond":
	default:
		errs = append(errs, fmt.Errorf("neighborhood must be square or diamond, got %q", c.Neighborhood))
	}
	if c.TickRate < 1 {
		errs = append(errs, fmt.Errorf("tick_rate must be at least 1, got %d", c.TickRate))
	}
	if c.HeapFloats < 0 {
		errs = append(errs, fmt.Errorf("heap_floats must not be negative, got %d", c.HeapFloats))
	}
	return errors.Join(errs...)
}
