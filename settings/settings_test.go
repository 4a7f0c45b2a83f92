package settings

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		resolution int
		sampleRate int
		hopLength  int
		wantErr    bool
		wantFFT    int
	}{
		{name: "defaults", resolution: 360, sampleRate: 44100, hopLength: 64, wantFFT: 718},
		{name: "smallest", resolution: 2, sampleRate: 8000, hopLength: 1, wantFFT: 2},
		{name: "power of two bins", resolution: 513, sampleRate: 22050, hopLength: 256, wantFFT: 1024},
		{name: "resolution one", resolution: 1, sampleRate: 44100, hopLength: 64, wantErr: true},
		{name: "zero resolution", resolution: 0, sampleRate: 44100, hopLength: 64, wantErr: true},
		{name: "negative sample rate", resolution: 360, sampleRate: -1, hopLength: 64, wantErr: true},
		{name: "zero hop", resolution: 360, sampleRate: 44100, hopLength: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.resolution, tt.sampleRate, tt.hopLength)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.TransformSize() != tt.wantFFT {
				t.Errorf("TransformSize() = %d, want %d", s.TransformSize(), tt.wantFFT)
			}
			if s.TransformSize() != 2*(s.Resolution()-1) {
				t.Errorf("TransformSize() is not 2*(resolution-1)")
			}
		})
	}
}

func TestEqual(t *testing.T) {
	a, _ := New(360, 44100, 64)
	b, _ := New(360, 44100, 64)
	c, _ := New(360, 48000, 64)

	if !a.Equal(b) {
		t.Error("identical settings should be equal")
	}
	if a.Equal(c) {
		t.Error("different sample rates should not be equal")
	}
	if a.Equal(nil) {
		t.Error("settings should not equal nil")
	}
}

func TestDuration(t *testing.T) {
	s := NewDefault()
	if got := s.Duration(689); got < 0.99 || got > 1.01 {
		t.Errorf("Duration(689) = %f, want about 1s", got)
	}
}
