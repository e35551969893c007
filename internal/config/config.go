package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/imo2vmd/internal/patch"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	DefaultFormat     = "vmd"
	DefaultSampleRate = 60
	DefaultFPS        = 30
)

type Config struct {
	InputPath  string    `yaml:"input"`
	OutputPath string    `yaml:"output"`
	Format     string    `yaml:"format"`
	BasePath   string    `yaml:"base"`
	Workers    int       `yaml:"workers"`
	SampleRate float64   `yaml:"rate"`
	FPS        float64   `yaml:"fps"`
	Name       string    `yaml:"name"`
	FixedFOV   uint32    `yaml:"fixed_fov"`
	Patches    patch.Set `yaml:"patches"`

	DumpPoses string `yaml:"dump_poses"`
	PlotPath  string `yaml:"plot"`
	ShowStats bool   `yaml:"stats"`

	BuildVersion string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		Format:     DefaultFormat,
		Workers:    runtime.NumCPU(),
		SampleRate: DefaultSampleRate,
		FPS:        DefaultFPS,
	}
}

// Load reads a YAML config file on top of the defaults. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Format) {
	case "vmd", "mvd":
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if !(c.SampleRate > 0) {
		return fmt.Errorf("%w: sample rate must be positive, got %g", ErrInvalidConfig, c.SampleRate)
	}
	if !(c.FPS > 0) {
		return fmt.Errorf("%w: fps must be positive, got %g", ErrInvalidConfig, c.FPS)
	}
	if c.FixedFOV > 180 {
		return fmt.Errorf("%w: fixed_fov %d is beyond 180 degrees", ErrInvalidConfig, c.FixedFOV)
	}
	if err := c.Patches.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
