package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/neurlang/gospectro/griffinlim"
	"github.com/neurlang/gospectro/ingest"
	"github.com/neurlang/gospectro/settings"
	"gopkg.in/yaml.v2"
)

// ErrMissingField is returned when a required key is absent.
var ErrMissingField = errors.New("missing required field")

// Decoder names.
const (
	DecoderNative = "native"
	DecoderFFmpeg = "ffmpeg"
)

// Config is the base configuration object
type Config struct {
	Resolution  int            `yaml:"resolution"`
	SampleRate  int            `yaml:"sample-rate"`
	HopLength   int            `yaml:"hop-length"`
	Iterations  *int           `yaml:"iterations"`
	Engine      EngineConfig   `yaml:"engine,omitempty"`
	Decoder     string         `yaml:"decoder,omitempty"`
	Contrast    float64        `yaml:"contrast,omitempty"`
	VolumeBoost float64        `yaml:"volume-boost,omitempty"`
	Output      string         `yaml:"output,omitempty"`
	Sources     []SourceConfig `yaml:"sources"`
}

// EngineConfig holds optional Griffin-Lim tuning.
type EngineConfig struct {
	Backend   string  `yaml:"backend,omitempty"`
	Power     float64 `yaml:"power,omitempty"`
	Momentum  float64 `yaml:"momentum,omitempty"`
	ZeroPhase bool    `yaml:"zero-phase,omitempty"`
	Seed      int64   `yaml:"seed,omitempty"`
	Tolerance float64 `yaml:"tolerance,omitempty"`
	Length    int     `yaml:"length,omitempty"`
	Workers   int     `yaml:"workers,omitempty"`
}

// SourceConfig describes one input of the job.
type SourceConfig struct {
	Type     string   `yaml:"type"`
	Path     string   `yaml:"path,omitempty"`
	Paths    []string `yaml:"paths,omitempty"`
	Duration float64  `yaml:"duration,omitempty"`
	Gap      float64  `yaml:"gap,omitempty"`
}

// NewConfig creates a new config object from the given filename.
func NewConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file %s: %w", filename, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML job.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch {
	case c.Resolution == 0:
		return fmt.Errorf("%w: resolution", ErrMissingField)
	case c.SampleRate == 0:
		return fmt.Errorf("%w: sample-rate", ErrMissingField)
	case c.HopLength == 0:
		return fmt.Errorf("%w: hop-length", ErrMissingField)
	case c.Iterations == nil:
		return fmt.Errorf("%w: iterations", ErrMissingField)
	}
	switch c.Decoder {
	case "", DecoderNative, DecoderFFmpeg:
	default:
		return fmt.Errorf("unknown decoder %q", c.Decoder)
	}
	for i, src := range c.Sources {
		if src.Type == "" {
			return fmt.Errorf("%w: sources[%d].type", ErrMissingField, i)
		}
	}
	return nil
}

// Settings builds the shared settings.
func (c *Config) Settings() (*settings.Settings, error) {
	return settings.New(c.Resolution, c.SampleRate, c.HopLength)
}

// GriffinLim returns the engine parameters for s.
func (c *Config) GriffinLim(s *settings.Settings) griffinlim.Config {
	cfg := griffinlim.DefaultConfig(s)
	cfg.Iterations = *c.Iterations
	cfg.Backend = c.Engine.Backend
	if c.Engine.Power != 0 {
		cfg.Power = c.Engine.Power
	}
	cfg.Momentum = c.Engine.Momentum
	cfg.RandomPhase = !c.Engine.ZeroPhase
	cfg.Seed = c.Engine.Seed
	cfg.Tolerance = c.Engine.Tolerance
	cfg.Length = c.Engine.Length
	cfg.Workers = c.Engine.Workers
	return cfg
}

// ContrastOrDefault returns the configured contrast, ingest.DefaultContrast if unset.
func (c *Config) ContrastOrDefault() float64 {
	if c.Contrast == 0 {
		return ingest.DefaultContrast
	}
	return c.Contrast
}

// IngestSources converts the configured sources.
func (c *Config) IngestSources() []ingest.Source {
	out := make([]ingest.Source, 0, len(c.Sources))
	for _, src := range c.Sources {
		out = append(out, ingest.Source{
			Kind:     src.Type,
			Path:     src.Path,
			Paths:    src.Paths,
			Duration: src.Duration,
			Gap:      src.Gap,
		})
	}
	return out
}
