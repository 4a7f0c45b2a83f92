// Package settings holds the audio/visual configuration shared by every stage
// of the image-to-sound pipeline.
//
// A Settings value fixes the frequency resolution (the height of every
// magnitude field), the output sample rate and the hop length. The short-time
// transform size is derived from the resolution so that its one-sided spectrum
// has exactly Resolution bins.
package settings
