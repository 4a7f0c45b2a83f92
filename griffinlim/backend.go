package griffinlim

import (
	"errors"
	"fmt"
	"math/cmplx"

	dspfft "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// ErrUnknownBackend is returned by SelectBackend for an unsupported name.
var ErrUnknownBackend = errors.New("unknown transform backend")

// Backend names accepted by SelectBackend.
const (
	BackendAuto  = "auto"
	BackendGonum = "gonum"
	BackendGoDSP = "godsp"
)

// Transform is a real FFT pair of fixed length n. A Transform is used by one
// goroutine at a time.
type Transform interface {
	// Forward stores the n/2+1 one-sided coefficients of frame in dst.
	Forward(dst []complex128, frame []float64) []complex128
	// Inverse stores in dst the real length n frame with one-sided spectrum
	// coeff, so that Inverse(Forward(x)) == x.
	Inverse(dst []float64, coeff []complex128) []float64
}

// Backend creates transforms of a given length.
type Backend interface {
	Name() string
	NewTransform(n int) Transform
}

// SelectBackend resolves name to a backend for transforms of length n.
// The automatic choice is the gonum real FFT when n factors into 2, 3 and 5,
// which its mixed radix passes handle directly, and go-dsp otherwise: gonum
// degrades to a generic O(n*p) radix for a large prime factor p while go-dsp
// switches to Bluestein's algorithm.
func SelectBackend(name string, n int) (Backend, error) {
	switch name {
	case "", BackendAuto:
		if largestFactor(n) <= 5 {
			return Gonum{}, nil
		}
		return GoDSP{}, nil
	case BackendGonum:
		return Gonum{}, nil
	case BackendGoDSP:
		return GoDSP{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

func largestFactor(n int) int {
	largest := 1
	for p := 2; p*p <= n; p++ {
		for n%p == 0 {
			largest, n = p, n/p
		}
	}
	if n > 1 {
		largest = n
	}
	return largest
}

// Gonum is backed by gonum.org/v1/gonum/dsp/fourier.
type Gonum struct{}

func (Gonum) Name() string { return BackendGonum }

func (Gonum) NewTransform(n int) Transform {
	return &gonumTransform{fft: fourier.NewFFT(n), scale: 1 / float64(n)}
}

type gonumTransform struct {
	fft   *fourier.FFT
	scale float64
}

func (t *gonumTransform) Forward(dst []complex128, frame []float64) []complex128 {
	return t.fft.Coefficients(dst, frame)
}

func (t *gonumTransform) Inverse(dst []float64, coeff []complex128) []float64 {
	// fourier.FFT.Sequence is unnormalized
	dst = t.fft.Sequence(dst, coeff)
	floats.Scale(t.scale, dst)
	return dst
}

// GoDSP is backed by github.com/mjibson/go-dsp/fft.
type GoDSP struct{}

func (GoDSP) Name() string { return BackendGoDSP }

func (GoDSP) NewTransform(n int) Transform {
	return &godspTransform{n: n, full: make([]complex128, n)}
}

type godspTransform struct {
	n    int
	full []complex128
}

func (t *godspTransform) Forward(dst []complex128, frame []float64) []complex128 {
	if dst == nil {
		dst = make([]complex128, t.n/2+1)
	}
	copy(dst, dspfft.FFTReal(frame)[:t.n/2+1])
	return dst
}

func (t *godspTransform) Inverse(dst []float64, coeff []complex128) []float64 {
	if dst == nil {
		dst = make([]float64, t.n)
	}
	half := t.n / 2

	// rebuild the Hermitian spectrum; DC and Nyquist must be real
	t.full[0] = complex(real(coeff[0]), 0)
	t.full[half] = complex(real(coeff[half]), 0)
	for k := 1; k < half; k++ {
		t.full[k] = coeff[k]
		t.full[t.n-k] = cmplx.Conj(coeff[k])
	}

	for i, v := range dspfft.IFFT(t.full) {
		dst[i] = real(v)
	}
	return dst
}
