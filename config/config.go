// Package config holds the runtime configuration for the particle simulation.
// Every value that used to be a compile-time constant (particle count, work-group
// size, screen resolution) lives here so the engine can be exercised with small
// particle counts in tests.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidParticleCount is returned when the particle count is not positive.
	ErrInvalidParticleCount = errors.New("config: particle count must be positive")

	// ErrInvalidWorkGroupSize is returned when the work-group size is not positive.
	ErrInvalidWorkGroupSize = errors.New("config: work group size must be positive")

	// ErrIndivisibleParticleCount is returned when the particle count is not a multiple of the work-group size.
	ErrIndivisibleParticleCount = errors.New("config: particle count must be a multiple of the work group size")

	// ErrInvalidScreenSize is returned when either screen dimension is not positive.
	ErrInvalidScreenSize = errors.New("config: screen dimensions must be positive")

	// ErrMissingShaderPath is returned when any of the three shader paths is empty.
	ErrMissingShaderPath = errors.New("config: shader path must be set")
)

// ShaderPaths names the three WGSL files that make up the draw and compute programs.
type ShaderPaths struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
	Compute  string `yaml:"compute"`
}

// Config is the full set of runtime settings for one run of the simulation.
type Config struct {
	// ParticleCount is the number of simulated particles (N).
	ParticleCount int `yaml:"particle_count"`

	// WorkGroupSize is the compute dispatch divisor. It must match @workgroup_size in the compute shader.
	WorkGroupSize int `yaml:"work_group_size"`

	// ScreenWidth and ScreenHeight are the window size in screen coordinates.
	ScreenWidth  int `yaml:"screen_width"`
	ScreenHeight int `yaml:"screen_height"`

	// Title is the window title.
	Title string `yaml:"title"`

	// TimeStep is uploaded once to the time-step buffer and never changed.
	TimeStep float32 `yaml:"time_step"`

	// Seed seeds the initial particle layout. Zero picks a time-based seed.
	Seed int64 `yaml:"seed"`

	// VSync selects FIFO presentation so Present blocks until the next refresh.
	VSync bool `yaml:"vsync"`

	// SoftwareRenderer requests the CPU fallback adapter (lavapipe, SwiftShader) instead of a GPU.
	SoftwareRenderer bool `yaml:"software_renderer"`

	// ClearColor is the RGBA background colour.
	ClearColor [4]float64 `yaml:"clear_color"`

	Shaders ShaderPaths `yaml:"shaders"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Profiling enables the once-per-second FPS and memory log line.
	Profiling bool `yaml:"profiling"`

	// MetricsAddr, when set, serves Prometheus metrics at http://MetricsAddr/metrics.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the reference configuration: 100,000 particles, work groups of 1000,
// a 1920x1080 window and vsync on.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		ParticleCount: 100000,
		WorkGroupSize: 1000,
		ScreenWidth:   1920,
		ScreenHeight:  1080,
		Title:         "particles",
		TimeStep:      0.1,
		VSync:         true,
		ClearColor:    [4]float64{0.05, 0.05, 0.05, 1.0},
		Shaders: ShaderPaths{
			Vertex:   "assets/shaders/particles-vert.wgsl",
			Fragment: "assets/shaders/particles-frag.wgsl",
			Compute:  "assets/shaders/particles-compute.wgsl",
		},
		LogLevel: "info",
	}
}

// Load reads a YAML file and applies its fields on top of Default. Fields absent from
// the file keep their default values. Unknown fields are rejected.
//
// Parameters:
//   - path: the YAML file to read
//
// Returns:
//   - Config: the merged and validated configuration
//   - error: an error if the file cannot be read, decoded, or fails validation
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the invariants the GPU buffers and dispatch rely on.
//
// Returns:
//   - error: the first violated invariant, wrapping one of the exported sentinel errors
func (c Config) Validate() error {
	if c.ParticleCount <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidParticleCount, c.ParticleCount)
	}
	if c.WorkGroupSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkGroupSize, c.WorkGroupSize)
	}
	if c.ParticleCount%c.WorkGroupSize != 0 {
		return fmt.Errorf("%w: %d %% %d = %d", ErrIndivisibleParticleCount, c.ParticleCount, c.WorkGroupSize, c.ParticleCount%c.WorkGroupSize)
	}
	if c.ScreenWidth <= 0 || c.ScreenHeight <= 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidScreenSize, c.ScreenWidth, c.ScreenHeight)
	}
	if c.Shaders.Vertex == "" || c.Shaders.Fragment == "" || c.Shaders.Compute == "" {
		return ErrMissingShaderPath
	}
	return nil
}

// ResolveSeed returns the configured seed, or a time-based one when Seed is zero.
//
// Returns:
//   - int64: the seed to use for the initial particle layout
func (c Config) ResolveSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}
