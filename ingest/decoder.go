package ingest

import (
	"context"
	"errors"
)

// ErrDecodeFailed wraps every failure reported by a decoder.
var ErrDecodeFailed = errors.New("decode failed")

// Decoder decodes a still image into a grid of exactly height x width.
type Decoder interface {
	Decode(ctx context.Context, path string, width, height int) (Grid, error)
}

// VideoInfo is the subset of stream metadata needed to size a video.
type VideoInfo struct {
	Duration  float64
	FrameRate float64
	Width     int
	Height    int
}

// VideoDecoder probes a video and streams its frames as grids of exactly
// height x width, in presentation order.
type VideoDecoder interface {
	Probe(ctx context.Context, path string) (VideoInfo, error)
	Frames(ctx context.Context, path string, width, height int, fn func(Grid) error) error
}
