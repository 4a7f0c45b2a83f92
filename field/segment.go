package field

import "gonum.org/v1/gonum/mat"

// Segment is one contiguous (resolution x width) magnitude sub-field.
type Segment struct {
	mag *mat.Dense
}

// NewSegment wraps m without copying it. The caller must not modify m afterwards.
func NewSegment(m *mat.Dense) *Segment {
	return &Segment{mag: m}
}

// Zero returns an all-zero (silent) segment.
func Zero(rows, width int) *Segment {
	return &Segment{mag: mat.NewDense(rows, width, nil)}
}

// Height is the number of frequency bins.
func (s *Segment) Height() int {
	r, _ := s.mag.Dims()
	return r
}

// Width is the number of time steps.
func (s *Segment) Width() int {
	_, c := s.mag.Dims()
	return c
}

// Matrix exposes the underlying magnitudes for reading.
func (s *Segment) Matrix() mat.Matrix {
	return s.mag
}
