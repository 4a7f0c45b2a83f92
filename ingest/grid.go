package ingest

import (
	"fmt"
	"math"

	"github.com/neurlang/gospectro/field"
	"github.com/neurlang/gospectro/settings"
	"gonum.org/v1/gonum/mat"
)

// Grid is a row-major grayscale byte grid. Row 0 is the visual top.
type Grid struct {
	Rows, Cols int
	Pix        []uint8
}

// Normalizer converts grids into segments for one Settings value.
type Normalizer struct {
	settings *settings.Settings
}

// NewNormalizer returns a Normalizer producing segments of height s.Resolution().
func NewNormalizer(s *settings.Settings) *Normalizer {
	return &Normalizer{settings: s}
}

// Normalize maps every byte to value/255 and flips the grid vertically, so
// the last grid row becomes bin 0.
func (n *Normalizer) Normalize(g Grid) (*field.Segment, error) {
	if g.Rows != n.settings.Resolution() {
		return nil, fmt.Errorf("%w: grid has %d rows, resolution is %d",
			field.ErrShapeMismatch, g.Rows, n.settings.Resolution())
	}
	if g.Cols < 1 || len(g.Pix) != g.Rows*g.Cols {
		return nil, fmt.Errorf("%w: %d bytes for a %dx%d grid",
			field.ErrShapeMismatch, len(g.Pix), g.Rows, g.Cols)
	}

	data := make([]float64, len(g.Pix))
	for y := 0; y < g.Rows; y++ {
		src := g.Pix[y*g.Cols : (y+1)*g.Cols]
		dst := data[(g.Rows-1-y)*g.Cols : (g.Rows-y)*g.Cols]
		for x, v := range src {
			dst[x] = float64(v) / 255.0
		}
	}
	return field.NewSegment(mat.NewDense(g.Rows, g.Cols, data)), nil
}

// WidthForDuration returns the number of columns lasting seconds,
// max(1, floor(seconds*sampleRate/hopLength)).
func WidthForDuration(seconds float64, s *settings.Settings) int {
	w := math.Floor(seconds * float64(s.SampleRate()) / float64(s.HopLength()))
	if !(w >= 1) {
		return 1
	}
	if w > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(w)
}
