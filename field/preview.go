package field

import (
	"image"
	"image/png"
	"io"

	"gonum.org/v1/gonum/mat"
)

// EncodePNG writes the field as a grayscale picture, min-max scaled, with the
// highest frequency bin as the top row.
func (f *Field) EncodePNG(w io.Writer) error {
	rows, cols := f.mag.Dims()
	lo, hi := mat.Min(f.mag), mat.Max(f.mag)

	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		bin := rows - y - 1
		line := img.Pix[y*img.Stride : y*img.Stride+cols]
		for x := range line {
			if hi > lo {
				line[x] = uint8(255 * (f.mag.At(bin, x) - lo) / (hi - lo))
			}
		}
	}
	return png.Encode(w, img)
}
