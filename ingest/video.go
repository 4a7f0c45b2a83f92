package ingest

import (
	"math"

	"github.com/neurlang/gospectro/field"
	"github.com/neurlang/gospectro/settings"
	"gonum.org/v1/gonum/mat"
)

// videoSpan spreads the columns of a video over its frames cumulatively, so
// per-frame rounding never adds up: frame i gets
// floor((i+1)*total/frames) - floor(i*total/frames) columns.
type videoSpan struct {
	total  int     // columns of the whole video, 0 when the duration is unknown
	frames int     // frames the total is spread over
	rate   float64 // columns per frame
}

func newVideoSpan(info VideoInfo, s *settings.Settings) videoSpan {
	rate := float64(s.SampleRate()) / float64(s.HopLength()) / info.FrameRate
	if !(info.Duration > 0) || math.IsInf(info.Duration, 0) {
		return videoSpan{rate: rate}
	}
	n := math.Round(info.Duration * info.FrameRate)
	if n > math.MaxInt32 {
		n = math.MaxInt32
	}
	return videoSpan{
		total:  WidthForDuration(info.Duration, s),
		frames: max(1, int(n)),
		rate:   rate,
	}
}

// columns returns the width of frame i. Frames past the probed duration get 0.
func (v videoSpan) columns(i int) int {
	if v.total == 0 {
		return int(math.Floor(float64(i+1)*v.rate)) - int(math.Floor(float64(i)*v.rate))
	}
	if i >= v.frames {
		return 0
	}
	return (i+1)*v.total/v.frames - i*v.total/v.frames
}

// decodeWidth is the widest frame columns can return.
func (v videoSpan) decodeWidth() int {
	if v.total == 0 {
		return max(1, int(math.Ceil(v.rate)))
	}
	return max(1, (v.total+v.frames-1)/v.frames)
}

// keepColumns narrows seg to its first cols columns.
func keepColumns(seg *field.Segment, cols int) *field.Segment {
	if cols >= seg.Width() {
		return seg
	}
	m := seg.Matrix().(*mat.Dense)
	return field.NewSegment(m.Slice(0, seg.Height(), 0, cols).(*mat.Dense))
}
