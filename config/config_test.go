package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 100000, cfg.ParticleCount)
	assert.Equal(t, 1000, cfg.WorkGroupSize)
	assert.Equal(t, 1920, cfg.ScreenWidth)
	assert.Equal(t, 1080, cfg.ScreenHeight)
	assert.InDelta(t, 0.1, cfg.TimeStep, 1e-7)
	assert.True(t, cfg.VSync)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:    "zero particles",
			mutate:  func(c *Config) { c.ParticleCount = 0 },
			wantErr: ErrInvalidParticleCount,
		},
		{
			name:    "negative work group size",
			mutate:  func(c *Config) { c.WorkGroupSize = -1 },
			wantErr: ErrInvalidWorkGroupSize,
		},
		{
			name:    "remainder particles",
			mutate:  func(c *Config) { c.ParticleCount = 100001 },
			wantErr: ErrIndivisibleParticleCount,
		},
		{
			name:    "zero height",
			mutate:  func(c *Config) { c.ScreenHeight = 0 },
			wantErr: ErrInvalidScreenSize,
		},
		{
			name:    "missing compute shader",
			mutate:  func(c *Config) { c.Shaders.Compute = "" },
			wantErr: ErrMissingShaderPath,
		},
		{
			name:   "small run",
			mutate: func(c *Config) { c.ParticleCount = 64; c.WorkGroupSize = 16 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "particles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("particle_count: 2000\nwork_group_size: 500\nseed: 42\nsoftware_renderer: true\nshaders:\n  compute: other.wgsl\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.ParticleCount)
	assert.Equal(t, 500, cfg.WorkGroupSize)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.True(t, cfg.SoftwareRenderer)
	assert.Equal(t, "other.wgsl", cfg.Shaders.Compute)
	// untouched fields keep their defaults
	assert.Equal(t, 1920, cfg.ScreenWidth)
	assert.Equal(t, "assets/shaders/particles-vert.wgsl", cfg.Shaders.Vertex)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("particles: 10\n"), 0o644))
	_, err := Load(unknown)
	assert.Error(t, err)

	indivisible := filepath.Join(dir, "indivisible.yaml")
	require.NoError(t, os.WriteFile(indivisible, []byte("particle_count: 1001\n"), 0o644))
	_, err = Load(indivisible)
	assert.ErrorIs(t, err, ErrIndivisibleParticleCount)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveSeed(t *testing.T) {
	cfg := Default()
	cfg.Seed = 7
	assert.Equal(t, int64(7), cfg.ResolveSeed())

	cfg.Seed = 0
	assert.NotZero(t, cfg.ResolveSeed())
}

func TestLoadExampleMatchesDefault(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "assets", "config", "particles.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}
