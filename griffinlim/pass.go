package griffinlim

import (
	"math"
	"math/cmplx"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// windowFloor bounds the overlap-add normalization relative to the largest
// summed squared window, so the nearly empty edge samples are not amplified.
const windowFloor = 1e-3

// pass holds the scratch state of one Reconstruct call. Frames are split into
// contiguous chunks, each processed by one goroutine with its own transform.
type pass struct {
	e      *Engine
	frames int
	length int
	norm   []float64
	chunks []*chunk
}

type chunk struct {
	lo, hi int
	tr     Transform
	frame  []float64
	coeff  []complex128
	out    []float64
	err    float64
}

func (e *Engine) newPass(frames int) *pass {
	n, hop := e.geom.FrameLen, e.geom.FrameShift
	p := &pass{
		e:      e,
		frames: frames,
		length: e.SignalLength(frames),
	}

	p.norm = make([]float64, p.length)
	for i := 0; i < frames; i++ {
		for j, w := range e.geom.Window {
			p.norm[i*hop+j] += w * w
		}
	}
	floor := floats.Max(p.norm) * windowFloor
	if floor == 0 {
		// a window of zeros, only possible for the smallest transform sizes
		floor = 1
	}
	for t, v := range p.norm {
		if v < floor {
			p.norm[t] = floor
		}
	}

	count := min(e.workers, frames)
	size := (frames + count - 1) / count
	for lo := 0; lo < frames; lo += size {
		hi := min(lo+size, frames)
		p.chunks = append(p.chunks, &chunk{
			lo:    lo,
			hi:    hi,
			tr:    e.backend.NewTransform(n),
			frame: make([]float64, n),
			coeff: make([]complex128, e.bins),
			out:   make([]float64, (hi-lo-1)*hop+n),
		})
	}
	return p
}

// each runs fn on every chunk concurrently and waits for all of them.
func (p *pass) each(fn func(c *chunk)) {
	if len(p.chunks) == 1 {
		fn(p.chunks[0])
		return
	}
	var g errgroup.Group
	for _, c := range p.chunks {
		g.Go(func() error {
			fn(c)
			return nil
		})
	}
	_ = g.Wait()
}

// synthesize overlap-adds the windowed inverse transform of every frame of spectrum
// into signal, normalized by the summed squared window.
func (p *pass) synthesize(signal []float64, spectrum [][]complex128) {
	window, hop := p.e.geom.Window, p.e.geom.FrameShift

	p.each(func(c *chunk) {
		clear(c.out)
		for i := c.lo; i < c.hi; i++ {
			c.frame = c.tr.Inverse(c.frame, spectrum[i])
			off := (i - c.lo) * hop
			for j, v := range c.frame {
				c.out[off+j] += v * window[j]
			}
		}
	})

	clear(signal)
	for _, c := range p.chunks {
		start := c.lo * hop
		floats.Add(signal[start:start+len(c.out)], c.out)
	}
	floats.Div(signal, p.norm)
}

// project re-analyzes signal and replaces the magnitude of every coefficient by
// the target while keeping the new phase. Where the new coefficient is zero the
// phase is taken as zero. It returns the mean absolute magnitude error of the
// re-analyzed spectrum.
func (p *pass) project(signal []float64, spectrum [][]complex128, target [][]float64, prev [][]complex128) float64 {
	window, hop := p.e.geom.Window, p.e.geom.FrameShift
	momentum := p.e.cfg.Momentum
	accel := complex(momentum/(1+momentum), 0)

	p.each(func(c *chunk) {
		c.err = 0
		for i := c.lo; i < c.hi; i++ {
			seg := signal[i*hop : i*hop+len(c.frame)]
			for j, w := range window {
				c.frame[j] = seg[j] * w
			}
			c.coeff = c.tr.Forward(c.coeff, c.frame)

			for k, rebuilt := range c.coeff {
				mag := target[i][k]
				c.err += math.Abs(cmplx.Abs(rebuilt) - mag)

				angle := rebuilt
				if prev != nil {
					angle -= prev[i][k] * accel
					prev[i][k] = rebuilt
				}
				if a := cmplx.Abs(angle); a > 0 {
					spectrum[i][k] = angle * complex(mag/a, 0)
				} else {
					spectrum[i][k] = complex(mag, 0)
				}
			}
		}
	})

	var total float64
	for _, c := range p.chunks {
		total += c.err
	}
	return total / float64(p.frames*p.e.bins)
}
