// Package griffinlim reconstructs a waveform from a magnitude-only spectrogram.
//
// The Engine runs a fixed number of Griffin-Lim iterations: synthesize a
// waveform by windowed overlap-add, re-analyze it with the same window, keep the
// new phase and restore the target magnitude. It supports:
//   - two FFT backends (gonum real FFT, go-dsp complex FFT) picked once per Engine
//   - random or zero initial phase, optional fast Griffin-Lim momentum
//   - an optional early stop on spectral convergence (off by default)
//   - per-frame parallelism within one analysis or synthesis pass
package griffinlim
