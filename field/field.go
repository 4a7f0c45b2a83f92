package field

import (
	"github.com/neurlang/gospectro/settings"
	"gonum.org/v1/gonum/mat"
)

// Field is a flattened (resolution x totalWidth) magnitude matrix.
type Field struct {
	settings *settings.Settings
	mag      *mat.Dense
}

// Settings returns the settings the field was assembled with.
func (f *Field) Settings() *settings.Settings { return f.settings }

// Matrix returns the magnitudes; rows are bins, columns are frames.
func (f *Field) Matrix() mat.Matrix { return f.mag }

// Width is the number of frames.
func (f *Field) Width() int {
	_, c := f.mag.Dims()
	return c
}

// Duration is the nominal length of the field in seconds.
func (f *Field) Duration() float64 {
	return f.settings.Duration(f.Width())
}
