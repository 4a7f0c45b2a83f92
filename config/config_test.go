package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/neurlang/gospectro/ingest"
)

const job = `
resolution: 360
sample-rate: 44100
hop-length: 64
iterations: 16
engine:
  backend: gonum
  momentum: 0.5
  zero-phase: true
decoder: ffmpeg
output: out/final.wav
sources:
  - type: folder
    path: docs/slides
    duration: 3
    gap: 1
  - type: gap
    duration: 0.5
  - type: image
    path: logo.png
    duration: 2
`

func TestNewConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(path, []byte(job), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := NewConfig(path)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	s, err := c.Settings()
	if err != nil {
		t.Fatal(err)
	}
	if s.TransformSize() != 718 {
		t.Errorf("transform size %d, want 718", s.TransformSize())
	}

	gl := c.GriffinLim(s)
	if gl.Iterations != 16 || gl.Backend != "gonum" || gl.Momentum != 0.5 || gl.RandomPhase {
		t.Errorf("unexpected engine config %+v", gl)
	}
	if gl.Power != 1 {
		t.Errorf("power %v, want the default 1", gl.Power)
	}
	if c.ContrastOrDefault() != ingest.DefaultContrast {
		t.Errorf("contrast %v, want default", c.ContrastOrDefault())
	}

	sources := c.IngestSources()
	if len(sources) != 3 {
		t.Fatalf("got %d sources, want 3", len(sources))
	}
	if sources[0].Kind != ingest.KindFolder || sources[0].Gap != 1 || sources[2].Path != "logo.png" {
		t.Errorf("unexpected sources %+v", sources)
	}
}

func TestParseMissingFields(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "resolution", yaml: "sample-rate: 44100\nhop-length: 64\niterations: 32\n"},
		{name: "sample rate", yaml: "resolution: 360\nhop-length: 64\niterations: 32\n"},
		{name: "hop length", yaml: "resolution: 360\nsample-rate: 44100\niterations: 32\n"},
		{name: "iterations", yaml: "resolution: 360\nsample-rate: 44100\nhop-length: 64\n"},
		{name: "source type", yaml: "resolution: 360\nsample-rate: 44100\nhop-length: 64\niterations: 1\nsources:\n  - path: a.png\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); !errors.Is(err, ErrMissingField) {
				t.Fatalf("expected ErrMissingField, got %v", err)
			}
		})
	}
}

func TestParseZeroIterations(t *testing.T) {
	c, err := Parse([]byte("resolution: 8\nsample-rate: 8000\nhop-length: 4\niterations: 0\n"))
	if err != nil {
		t.Fatalf("explicit zero iterations rejected: %v", err)
	}
	s, _ := c.Settings()
	if c.GriffinLim(s).Iterations != 0 {
		t.Error("iterations not carried")
	}
}

func TestParseRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":     "resolution: 8\nsample-rate: 8000\nhop-length: 4\niterations: 1\ncolour: red\n",
		"unknown decoder": "resolution: 8\nsample-rate: 8000\nhop-length: 4\niterations: 1\ndecoder: gstreamer\n",
	} {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
