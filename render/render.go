package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/neurlang/gospectro/field"
	"github.com/neurlang/gospectro/griffinlim"
	"go.uber.org/zap"
)

// ErrEmptyInput is returned when there is nothing to render.
var ErrEmptyInput = errors.New("empty input")

// WriteFailedError reports a failure of the audio writer.
type WriteFailedError struct {
	Path string
	Err  error
}

func (e *WriteFailedError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteFailedError) Unwrap() error { return e.Err }

// Renderer converts sequences into audio files.
type Renderer struct {
	Engine *griffinlim.Engine
	Writer Writer
	// VolumeBoost multiplies every sample when non-zero.
	VolumeBoost float64
	Log         *zap.SugaredLogger
}

// NewRenderer returns a Renderer writing through w. A nil logger disables logging.
func NewRenderer(e *griffinlim.Engine, w Writer, log *zap.SugaredLogger) *Renderer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Renderer{Engine: e, Writer: w, Log: log}
}

// Reconstruct flattens seq and runs the engine on it.
func (r *Renderer) Reconstruct(ctx context.Context, seq *field.Sequence) (*griffinlim.Result, error) {
	if seq == nil {
		return nil, ErrEmptyInput
	}
	f, err := seq.Flatten()
	if errors.Is(err, field.ErrEmptySequence) {
		return nil, fmt.Errorf("%w: %w", ErrEmptyInput, err)
	}
	if err != nil {
		return nil, err
	}
	return r.ReconstructField(ctx, f)
}

// ReconstructField runs the engine on an already flattened field.
func (r *Renderer) ReconstructField(ctx context.Context, f *field.Field) (*griffinlim.Result, error) {
	rows, cols := f.Matrix().Dims()
	r.Log.Infow("reconstructing audio",
		"bins", rows, "frames", cols, "seconds", f.Duration(),
		"iterations", r.Engine.Config().Iterations, "backend", r.Engine.Backend().Name())

	res, err := r.Engine.Reconstruct(ctx, f.Matrix())
	if err != nil {
		return nil, err
	}
	if r.VolumeBoost != 0 {
		for i := range res.Samples {
			res.Samples[i] *= r.VolumeBoost
		}
	}
	r.Log.Debugw("reconstruction done", "samples", len(res.Samples), "iterations", res.Iterations, "error", res.Error)
	return res, nil
}

// Render reconstructs seq and writes it to path.
func (r *Renderer) Render(ctx context.Context, seq *field.Sequence, path string) error {
	res, err := r.Reconstruct(ctx, seq)
	if err != nil {
		return err
	}
	return r.write(res, path)
}

// RenderField reconstructs an already flattened field and writes it to path.
func (r *Renderer) RenderField(ctx context.Context, f *field.Field, path string) error {
	res, err := r.ReconstructField(ctx, f)
	if err != nil {
		return err
	}
	return r.write(res, path)
}

func (r *Renderer) write(res *griffinlim.Result, path string) error {
	if err := r.Writer.Write(path, res.Samples, res.SampleRate); err != nil {
		return &WriteFailedError{Path: path, Err: err}
	}
	r.Log.Infow("saved audio", "path", path, "samples", len(res.Samples), "sample_rate", res.SampleRate)
	return nil
}
