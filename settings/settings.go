package settings

import "errors"
import "fmt"

// ErrInvalidConfig is returned when a Settings value cannot be constructed.
var ErrInvalidConfig = errors.New("invalid config")

// Default values used by the commands.
const (
	DefaultResolution = 360
	DefaultSampleRate = 44100
	DefaultHopLength  = 64
)

// Settings is an immutable resolution / sample rate / hop length triple.
type Settings struct {
	resolution    int
	sampleRate    int
	hopLength     int
	transformSize int
}

// New validates the arguments and returns a Settings value.
func New(resolution, sampleRate, hopLength int) (*Settings, error) {
	if resolution <= 0 || sampleRate <= 0 || hopLength <= 0 {
		return nil, fmt.Errorf("%w: resolution=%d sample rate=%d hop length=%d must be positive",
			ErrInvalidConfig, resolution, sampleRate, hopLength)
	}
	if resolution < 2 {
		return nil, fmt.Errorf("%w: resolution must be at least 2, got %d", ErrInvalidConfig, resolution)
	}
	return &Settings{
		resolution:    resolution,
		sampleRate:    sampleRate,
		hopLength:     hopLength,
		transformSize: 2 * (resolution - 1),
	}, nil
}

// NewDefault returns the 360 / 44100 Hz / 64 configuration.
func NewDefault() *Settings {
	s, _ := New(DefaultResolution, DefaultSampleRate, DefaultHopLength)
	return s
}

// Resolution is the number of frequency bins, i.e. the field height.
func (s *Settings) Resolution() int { return s.resolution }

// SampleRate is the output sample rate in Hz.
func (s *Settings) SampleRate() int { return s.sampleRate }

// HopLength is the number of samples advanced per analysis frame.
func (s *Settings) HopLength() int { return s.hopLength }

// TransformSize is the short-time transform length, 2*(Resolution-1).
func (s *Settings) TransformSize() int { return s.transformSize }

// Equal reports whether both settings describe the same configuration.
func (s *Settings) Equal(o *Settings) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil {
		return false
	}
	return s.resolution == o.resolution &&
		s.sampleRate == o.sampleRate &&
		s.hopLength == o.hopLength
}

// Duration returns the number of seconds covered by width field columns.
func (s *Settings) Duration(width int) float64 {
	return float64(width*s.hopLength) / float64(s.sampleRate)
}

func (s *Settings) String() string {
	return fmt.Sprintf("resolution=%d sample_rate=%d hop_length=%d n_fft=%d",
		s.resolution, s.sampleRate, s.hopLength, s.transformSize)
}
