// Command render turns a YAML render job into an audio file.
//
// The job lists the spectrogram settings, the Griffin-Lim iteration count and
// an ordered list of sources (images, image folders, videos, .npy drawings,
// field snapshots and silence gaps). Sources are concatenated in order,
// reconstructed with Griffin-Lim and written as WAV or FLAC depending on the
// output extension.
//
// Usage:
//
//	render -config job.yaml [-output out.wav] [-snapshot field.snap] [-preview field.png] [-debug]
//
// With -snapshot the assembled field is also saved so it can be rendered again
// later as a "snapshot" source.
package main
