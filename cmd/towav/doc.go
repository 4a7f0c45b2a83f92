// Command towav converts an image, an image folder, a .npy drawing or a field
// snapshot into a WAV file.
//
// The input is read as a spectrogram (360 frequency bins, 44100 Hz, hop 64)
// whose top edge is the highest frequency, and the audio is reconstructed with
// 32 Griffin-Lim iterations.
//
// Usage:
//
//	towav <input> [seconds]
//
// The output WAV file will be named <input>.wav
// Optional seconds sets the duration of each image (default: 3)
package main
