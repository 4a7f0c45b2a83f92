package ingest

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultContrast matches the eq=contrast=1.5 filter of the ffmpeg pipeline.
const DefaultContrast = 1.5

// ImageDecoder decodes still images natively, without ffmpeg.
type ImageDecoder struct {
	// Contrast stretches luma around mid gray; 0 or 1 leaves it unchanged.
	Contrast float64
}

// NewImageDecoder returns an ImageDecoder with the default contrast.
func NewImageDecoder() *ImageDecoder {
	return &ImageDecoder{Contrast: DefaultContrast}
}

// Decode reads path, scales it to width x height with Catmull-Rom and returns
// its luma.
func (d *ImageDecoder) Decode(ctx context.Context, path string, width, height int) (Grid, error) {
	if err := ctx.Err(); err != nil {
		return Grid{}, err
	}
	if width < 1 || height < 1 {
		return Grid{}, fmt.Errorf("%w: %s: invalid target size %dx%d", ErrDecodeFailed, path, width, height)
	}

	f, err := os.Open(path)
	if err != nil {
		return Grid{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return Grid{}, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, path, err)
	}

	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	g := Grid{Rows: height, Cols: width, Pix: make([]uint8, width*height)}
	for y := 0; y < height; y++ {
		copy(g.Pix[y*width:(y+1)*width], dst.Pix[y*dst.Stride:y*dst.Stride+width])
	}
	stretch(g.Pix, d.Contrast)
	return g, nil
}

func stretch(pix []uint8, contrast float64) {
	if contrast == 0 || contrast == 1 {
		return
	}
	var lut [256]uint8
	for i := range lut {
		v := (float64(i)-127.5)*contrast + 127.5
		lut[i] = uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	for i, v := range pix {
		pix[i] = lut[v]
	}
}
