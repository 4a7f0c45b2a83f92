package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/neurlang/gospectro/field"
	"github.com/sbinet/npyio/npy"
)

// FromNumpy loads a hand-drawn (resolution, width) uint8 .npy grid. Row 0 of
// the drawing is its visual top, like every decoded image. A drawing whose
// height differs from the resolution is rejected.
func (in *Ingestor) FromNumpy(ctx context.Context, path string) (*field.Sequence, error) {
	g, err := readNumpy(path)
	if err != nil {
		return in.empty(), err
	}
	if g.Rows != in.Settings.Resolution() {
		in.Log.Warnw("drawing height does not match resolution",
			"path", path, "height", g.Rows, "resolution", in.Settings.Resolution())
	}
	seq, err := in.single(g)
	if err != nil {
		return seq, fmt.Errorf("%s: %w", path, err)
	}
	in.Log.Infow("loaded drawing", "path", path, "width", g.Cols)
	return seq, nil
}

func readNumpy(path string) (Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return Grid{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	defer f.Close()

	r, err := npy.NewReader(f)
	if err != nil {
		return Grid{}, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, path, err)
	}
	descr := r.Header.Descr
	if strings.TrimLeft(descr.Type, "<>|=") != "u1" {
		return Grid{}, fmt.Errorf("%w: %s: dtype %q, want uint8", ErrDecodeFailed, path, descr.Type)
	}
	if len(descr.Shape) != 2 {
		return Grid{}, fmt.Errorf("%w: %s: shape %v is not 2-D", field.ErrShapeMismatch, path, descr.Shape)
	}

	var data []uint8
	if err := r.Read(&data); err != nil {
		return Grid{}, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, path, err)
	}
	rows, cols := descr.Shape[0], descr.Shape[1]
	if len(data) != rows*cols {
		return Grid{}, fmt.Errorf("%w: %s: %d values for shape %v", ErrDecodeFailed, path, len(data), descr.Shape)
	}

	if descr.Fortran {
		pix := make([]uint8, len(data))
		for x := 0; x < cols; x++ {
			for y := 0; y < rows; y++ {
				pix[y*cols+x] = data[x*rows+y]
			}
		}
		data = pix
	}
	return Grid{Rows: rows, Cols: cols, Pix: data}, nil
}
