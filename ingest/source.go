package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/neurlang/gospectro/field"
)

// Source kinds understood by Collect.
const (
	KindImage    = "image"
	KindList     = "list"
	KindFolder   = "folder"
	KindVideo    = "video"
	KindNumpy    = "numpy"
	KindSnapshot = "snapshot"
	KindGap      = "gap"
)

// ErrUnknownSource is returned by Collect for an unsupported source kind.
var ErrUnknownSource = errors.New("unknown source kind")

// Source describes one entry of a render job.
type Source struct {
	Kind     string
	Path     string
	Paths    []string
	Duration float64
	Gap      float64
}

func (in *Ingestor) load(ctx context.Context, src Source) (*field.Sequence, error) {
	switch src.Kind {
	case KindImage:
		return in.FromImage(ctx, src.Path, src.Duration)
	case KindList:
		return in.FromImageList(ctx, src.Paths, src.Duration, src.Gap)
	case KindFolder:
		return in.FromFolder(ctx, src.Path, src.Duration, src.Gap)
	case KindVideo:
		return in.FromVideo(ctx, src.Path)
	case KindNumpy:
		return in.FromNumpy(ctx, src.Path)
	case KindSnapshot:
		return in.FromSnapshot(ctx, src.Path)
	case KindGap:
		seq := in.empty()
		return seq, seq.AppendGap(src.Duration)
	}
	return in.empty(), fmt.Errorf("%w: %q", ErrUnknownSource, src.Kind)
}

// Collect loads every source in order and concatenates the results. A source
// that fails to load is logged and skipped; an unknown source kind or a
// cancelled context aborts.
func (in *Ingestor) Collect(ctx context.Context, sources []Source) (*field.Sequence, error) {
	out := in.empty()
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seq, err := in.load(ctx, src)
		if errors.Is(err, ErrUnknownSource) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		if err != nil {
			in.Log.Errorw("skipping source", "index", i, "kind", src.Kind, "path", src.Path, "error", err)
			continue
		}
		if out, err = out.Concat(seq); err != nil {
			return nil, err
		}
	}
	return out, nil
}
