// Package render drives a magnitude sequence through Griffin-Lim and writes
// the resulting waveform to an audio file.
package render
