package field

import (
	"fmt"
	"io"

	"github.com/neurlang/gospectro/settings"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/x448/float16"
	"gonum.org/v1/gonum/mat"
)

const snapshotVersion = 1

// snapshot is the on-disk envelope. Data holds row-major half precision bits.
type snapshot struct {
	Version    int      `msgpack:"version"`
	Resolution int      `msgpack:"resolution"`
	SampleRate int      `msgpack:"sample_rate"`
	HopLength  int      `msgpack:"hop_length"`
	Width      int      `msgpack:"width"`
	Data       []uint16 `msgpack:"data"`
}

// Half returns the field in row-major half precision.
func (f *Field) Half() []uint16 {
	rows, cols := f.mag.Dims()
	out := make([]uint16, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out = append(out, float16.Fromfloat32(float32(f.mag.At(i, j))).Bits())
		}
	}
	return out
}

// EncodeSnapshot writes the field to w so it can be rendered again later.
func (f *Field) EncodeSnapshot(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(&snapshot{
		Version:    snapshotVersion,
		Resolution: f.settings.Resolution(),
		SampleRate: f.settings.SampleRate(),
		HopLength:  f.settings.HopLength(),
		Width:      f.Width(),
		Data:       f.Half(),
	})
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot as a single segment.
// The stored resolution must match s.
func DecodeSnapshot(r io.Reader, s *settings.Settings) (*Segment, error) {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	if snap.Resolution != s.Resolution() {
		return nil, fmt.Errorf("%w: snapshot resolution %d, settings resolution %d",
			ErrShapeMismatch, snap.Resolution, s.Resolution())
	}
	if snap.Width < 1 || len(snap.Data) != snap.Resolution*snap.Width {
		return nil, fmt.Errorf("%w: snapshot holds %d values for %dx%d",
			ErrShapeMismatch, len(snap.Data), snap.Resolution, snap.Width)
	}

	data := make([]float64, len(snap.Data))
	for i, bits := range snap.Data {
		data[i] = float64(float16.Frombits(bits).Float32())
	}
	return NewSegment(mat.NewDense(snap.Resolution, snap.Width, data)), nil
}
