package griffinlim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"runtime"

	"github.com/neurlang/gospectro/settings"
	"github.com/r9y9/gossp/stft"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidField is returned for a magnitude field the engine cannot invert.
	ErrInvalidField = errors.New("invalid field")
	// ErrDegenerateConfig is returned when the transform parameters cannot
	// reconstruct a continuous signal.
	ErrDegenerateConfig = errors.New("degenerate config")
)

// DefaultIterations is the fixed iteration budget.
const DefaultIterations = 32

// Config holds the reconstruction parameters.
type Config struct {
	TransformSize int
	HopLength     int
	SampleRate    int

	Iterations int
	// Power is the exponent the field was raised to; the target magnitude is
	// M^(1/Power). Zero is treated as 1.
	Power float64
	// Momentum enables fast Griffin-Lim when in (0, 1).
	Momentum float64
	// RandomPhase draws the initial phase from Seed, otherwise it is zero.
	RandomPhase bool
	Seed        int64
	// Tolerance stops early once the mean magnitude error improves by less
	// than Tolerance between iterations. Zero disables the check.
	Tolerance float64
	// Length trims or zero pads the output to an exact sample count when > 0.
	Length int
	// Workers bounds the goroutines used inside one pass, 0 means GOMAXPROCS.
	Workers int
	// Backend is one of BackendAuto, BackendGonum, BackendGoDSP.
	Backend string
}

// DefaultConfig returns the parameters derived from s.
func DefaultConfig(s *settings.Settings) Config {
	return Config{
		TransformSize: s.TransformSize(),
		HopLength:     s.HopLength(),
		SampleRate:    s.SampleRate(),
		Iterations:    DefaultIterations,
		Power:         1,
		RandomPhase:   true,
		Backend:       BackendAuto,
	}
}

// Result is a reconstructed mono waveform.
type Result struct {
	Samples    []float64
	SampleRate int
	// Iterations actually run, below Config.Iterations only after an early stop.
	Iterations int
	// Error is the mean absolute magnitude error of the last projection.
	Error float64
}

// Engine inverts magnitude fields. It holds no per-call state and may be
// shared between goroutines.
type Engine struct {
	cfg     Config
	geom    *stft.STFT
	backend Backend
	bins    int
	workers int
}

// New validates cfg and selects the transform backend.
func New(cfg Config) (*Engine, error) {
	n := cfg.TransformSize
	if n < 2 || n%2 != 0 {
		return nil, fmt.Errorf("%w: transform size %d must be even and at least 2", ErrDegenerateConfig, n)
	}
	if cfg.HopLength < 1 || cfg.HopLength > n {
		return nil, fmt.Errorf("%w: hop length %d must be in [1, %d]", ErrDegenerateConfig, cfg.HopLength, n)
	}
	if cfg.Iterations < 0 {
		return nil, fmt.Errorf("%w: negative iteration count %d", ErrDegenerateConfig, cfg.Iterations)
	}
	if cfg.Power == 0 {
		cfg.Power = 1
	}
	if cfg.Power < 0 || math.IsNaN(cfg.Power) || math.IsInf(cfg.Power, 0) {
		return nil, fmt.Errorf("%w: power %v", ErrDegenerateConfig, cfg.Power)
	}
	if cfg.Momentum < 0 || cfg.Momentum >= 1 {
		return nil, fmt.Errorf("%w: momentum %v must be in [0, 1)", ErrDegenerateConfig, cfg.Momentum)
	}

	backend, err := SelectBackend(cfg.Backend, n)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Engine{
		cfg:     cfg,
		geom:    stft.New(cfg.HopLength, n),
		backend: backend,
		bins:    n/2 + 1,
		workers: workers,
	}, nil
}

// Config returns the validated configuration.
func (e *Engine) Config() Config { return e.cfg }

// Backend returns the selected transform backend.
func (e *Engine) Backend() Backend { return e.backend }

// Bins is the number of one-sided frequency bins per frame.
func (e *Engine) Bins() int { return e.bins }

// SignalLength returns the overlap-add output length for the given frame count.
func (e *Engine) SignalLength(frames int) int {
	return (frames-1)*e.geom.FrameShift + e.geom.FrameLen
}

// Reconstruct estimates a waveform whose short-time magnitude matches m.
// Rows of m are frequency bins and columns are frames. The context is only
// consulted between iterations.
func (e *Engine) Reconstruct(ctx context.Context, m mat.Matrix) (*Result, error) {
	target, err := e.target(m)
	if err != nil {
		return nil, err
	}

	p := e.newPass(len(target))
	spectrum := e.initialSpectrum(target)

	var prev [][]complex128
	if e.cfg.Momentum > 0 {
		prev = make([][]complex128, len(target))
		for i := range prev {
			prev[i] = make([]complex128, e.bins)
		}
	}

	res := &Result{SampleRate: e.cfg.SampleRate}
	signal := make([]float64, p.length)
	lastErr := math.Inf(1)

	for iter := 0; iter < e.cfg.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p.synthesize(signal, spectrum)
		res.Error = p.project(signal, spectrum, target, prev)
		res.Iterations++

		if e.cfg.Tolerance > 0 {
			if lastErr-res.Error < e.cfg.Tolerance {
				break
			}
			lastErr = res.Error
		}
	}

	p.synthesize(signal, spectrum)
	res.Samples = e.fit(signal)
	return res, nil
}

// fit applies the optional exact output length.
func (e *Engine) fit(signal []float64) []float64 {
	if e.cfg.Length <= 0 || e.cfg.Length == len(signal) {
		return signal
	}
	if e.cfg.Length < len(signal) {
		return signal[:e.cfg.Length]
	}
	out := make([]float64, e.cfg.Length)
	copy(out, signal)
	return out
}

// target validates m and returns it frame-major, with the power applied.
func (e *Engine) target(m mat.Matrix) ([][]float64, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil field", ErrInvalidField)
	}
	rows, cols := m.Dims()
	if rows != e.bins {
		return nil, fmt.Errorf("%w: field has %d rows, transform size %d needs %d",
			ErrInvalidField, rows, e.cfg.TransformSize, e.bins)
	}
	if cols < 1 {
		return nil, fmt.Errorf("%w: field has no frames", ErrInvalidField)
	}

	target := make([][]float64, cols)
	for j := range target {
		target[j] = make([]float64, rows)
		for i := 0; i < rows; i++ {
			v := m.At(i, j)
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: value %v at bin %d frame %d", ErrInvalidField, v, i, j)
			}
			if e.cfg.Power != 1 {
				v = math.Pow(v, 1/e.cfg.Power)
			}
			target[j][i] = v
		}
	}
	return target, nil
}

func (e *Engine) initialSpectrum(target [][]float64) [][]complex128 {
	var rng *rand.Rand
	if e.cfg.RandomPhase {
		rng = rand.New(rand.NewSource(e.cfg.Seed))
	}
	spectrum := make([][]complex128, len(target))
	for i, frame := range target {
		spectrum[i] = make([]complex128, e.bins)
		for k, mag := range frame {
			if rng == nil {
				spectrum[i][k] = complex(mag, 0)
				continue
			}
			spectrum[i][k] = cmplx.Rect(mag, 2*math.Pi*rng.Float64())
		}
	}
	return spectrum
}

// Analyze returns the one-sided short-time spectrum of signal, one slice of
// Bins() coefficients per frame. Trailing samples that do not fill a frame
// are ignored.
func (e *Engine) Analyze(signal []float64) [][]complex128 {
	n, hop := e.geom.FrameLen, e.geom.FrameShift
	if len(signal) < n {
		return nil
	}
	frames := (len(signal)-n)/hop + 1
	tr := e.backend.NewTransform(n)
	buf := make([]float64, n)

	spectrum := make([][]complex128, frames)
	for i := range spectrum {
		for j := range buf {
			buf[j] = signal[i*hop+j] * e.geom.Window[j]
		}
		spectrum[i] = tr.Forward(make([]complex128, e.bins), buf)
	}
	return spectrum
}

// Magnitudes returns |Analyze(signal)| as a (Bins x frames) matrix, the same
// orientation Reconstruct consumes.
func (e *Engine) Magnitudes(signal []float64) (*mat.Dense, error) {
	spectrum := e.Analyze(signal)
	if len(spectrum) == 0 {
		return nil, fmt.Errorf("signal of %d samples is shorter than one %d sample frame",
			len(signal), e.geom.FrameLen)
	}
	out := mat.NewDense(e.bins, len(spectrum), nil)
	for j, frame := range spectrum {
		for i, v := range frame {
			out.Set(i, j, cmplx.Abs(v))
		}
	}
	return out, nil
}
