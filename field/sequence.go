package field

import (
	"errors"
	"fmt"
	"math"

	"github.com/neurlang/gospectro/settings"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShapeMismatch is returned when a segment height differs from the resolution.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrEmptySequence is returned when flattening a sequence without segments.
	ErrEmptySequence = errors.New("empty sequence")
	// ErrSettingsMismatch is returned when concatenating sequences with different settings.
	ErrSettingsMismatch = errors.New("settings mismatch")
	// ErrInvalidDuration is returned for a non-finite gap duration.
	ErrInvalidDuration = errors.New("invalid duration")
)

// Sequence is an ordered list of segments sharing one Settings value.
// It is not safe for concurrent mutation.
type Sequence struct {
	settings *settings.Settings
	segments []*Segment
}

// NewSequence returns an empty sequence.
func NewSequence(s *settings.Settings) *Sequence {
	return &Sequence{settings: s}
}

// Settings returns the shared settings.
func (q *Sequence) Settings() *settings.Settings { return q.settings }

// Len returns the number of segments.
func (q *Sequence) Len() int { return len(q.segments) }

// Segments returns the segment list. The slice must not be modified.
func (q *Sequence) Segments() []*Segment { return q.segments }

// Width returns the summed width of all segments.
func (q *Sequence) Width() (w int) {
	for _, seg := range q.segments {
		w += seg.Width()
	}
	return w
}

// Append adds seg at the end of the sequence.
func (q *Sequence) Append(seg *Segment) error {
	if seg == nil {
		return fmt.Errorf("%w: nil segment", ErrShapeMismatch)
	}
	if seg.Height() != q.settings.Resolution() {
		return fmt.Errorf("%w: segment %d has height %d, resolution is %d",
			ErrShapeMismatch, len(q.segments), seg.Height(), q.settings.Resolution())
	}
	q.segments = append(q.segments, seg)
	return nil
}

// GapWidth returns the number of columns of a silence gap of the given duration,
// max(1, round(seconds*sampleRate/hopLength)), clamped to MaxInt32.
func GapWidth(seconds float64, s *settings.Settings) int {
	w := math.Round(seconds * float64(s.SampleRate()) / float64(s.HopLength()))
	if !(w >= 1) {
		return 1
	}
	if w > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(w)
}

// AppendGap appends a zero-valued segment lasting seconds. Gaps wider than
// MaxInt32 columns are rejected.
func (q *Sequence) AppendGap(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) ||
		seconds*float64(q.settings.SampleRate())/float64(q.settings.HopLength()) > math.MaxInt32 {
		return fmt.Errorf("%w: gap of %v seconds", ErrInvalidDuration, seconds)
	}
	q.segments = append(q.segments, Zero(q.settings.Resolution(), GapWidth(seconds, q.settings)))
	return nil
}

// Concat returns a new sequence holding the segments of q followed by those of
// other. Segment data is shared, not copied.
func (q *Sequence) Concat(other *Sequence) (*Sequence, error) {
	if other == nil {
		other = &Sequence{settings: q.settings}
	}
	if !q.settings.Equal(other.settings) {
		return nil, fmt.Errorf("%w: %v vs %v", ErrSettingsMismatch, q.settings, other.settings)
	}
	merged := make([]*Segment, 0, len(q.segments)+len(other.segments))
	merged = append(merged, q.segments...)
	merged = append(merged, other.segments...)
	return &Sequence{settings: q.settings, segments: merged}, nil
}

// Flatten stacks every segment horizontally, in order, into one field.
func (q *Sequence) Flatten() (*Field, error) {
	if len(q.segments) == 0 {
		return nil, ErrEmptySequence
	}
	rows := q.settings.Resolution()
	out := mat.NewDense(rows, q.Width(), nil)

	var col int
	for _, seg := range q.segments {
		w := seg.Width()
		out.Slice(0, rows, col, col+w).(*mat.Dense).Copy(seg.mag)
		col += w
	}
	return &Field{settings: q.settings, mag: out}, nil
}
