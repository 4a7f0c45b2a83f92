package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/neurlang/gospectro/field"
	"github.com/neurlang/gospectro/settings"
	"go.uber.org/zap"
)

// ErrNoImages is returned when a folder holds no supported image.
var ErrNoImages = errors.New("no images found")

// ImageExtensions lists the file extensions picked up by FromFolder.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".webp"}

// Ingestor builds sequences from files. Every factory returns a non-nil,
// possibly empty, sequence so results can always be concatenated.
type Ingestor struct {
	Settings *settings.Settings
	Images   Decoder
	Video    VideoDecoder
	Log      *zap.SugaredLogger

	normalizer *Normalizer
}

// NewIngestor returns an Ingestor. A nil logger disables logging.
func NewIngestor(s *settings.Settings, images Decoder, video VideoDecoder, log *zap.SugaredLogger) *Ingestor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Ingestor{
		Settings:   s,
		Images:     images,
		Video:      video,
		Log:        log,
		normalizer: NewNormalizer(s),
	}
}

func (in *Ingestor) empty() *field.Sequence {
	return field.NewSequence(in.Settings)
}

// single wraps one grid into a sequence.
func (in *Ingestor) single(g Grid) (*field.Sequence, error) {
	seg, err := in.normalizer.Normalize(g)
	if err != nil {
		return in.empty(), err
	}
	seq := in.empty()
	if err := seq.Append(seg); err != nil {
		return in.empty(), err
	}
	return seq, nil
}

// FromImage decodes one still image stretched over seconds.
func (in *Ingestor) FromImage(ctx context.Context, path string, seconds float64) (*field.Sequence, error) {
	if _, err := os.Stat(path); err != nil {
		return in.empty(), fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	width := WidthForDuration(seconds, in.Settings)
	g, err := in.Images.Decode(ctx, path, width, in.Settings.Resolution())
	if err != nil {
		return in.empty(), err
	}
	seq, err := in.single(g)
	if err != nil {
		return seq, fmt.Errorf("%s: %w", path, err)
	}
	in.Log.Debugw("loaded image", "path", path, "width", width)
	return seq, nil
}

// FromImageList decodes paths in order, seconds each, with a silence gap after
// every loaded slide when gap > 0. Images failing to decode are logged and skipped.
func (in *Ingestor) FromImageList(ctx context.Context, paths []string, seconds, gap float64) (*field.Sequence, error) {
	master := in.empty()
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return in.empty(), err
		}

		slide, err := in.FromImage(ctx, path, seconds)
		if err != nil {
			in.Log.Warnw("skipping image", "path", path, "error", err)
			continue
		}
		if master, err = master.Concat(slide); err != nil {
			return in.empty(), err
		}
		if gap > 0 {
			if err := master.AppendGap(gap); err != nil {
				return in.empty(), err
			}
		}
	}
	return master, nil
}

// FromFolder renders every supported image in dir, sorted case-insensitively.
func (in *Ingestor) FromFolder(ctx context.Context, dir string, seconds, gap float64) (*field.Sequence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return in.empty(), fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	var images []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || !slices.Contains(ImageExtensions, ext) {
			continue
		}
		images = append(images, filepath.Join(dir, e.Name()))
	}
	if len(images) == 0 {
		in.Log.Warnw("no valid images found", "folder", dir)
		return in.empty(), fmt.Errorf("%w in %s", ErrNoImages, dir)
	}
	slices.SortStableFunc(images, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})

	in.Log.Infow("found images", "folder", filepath.Base(dir), "count", len(images))
	return in.FromImageList(ctx, images, seconds, gap)
}

// FromVideo renders a video so that its audio lasts as long as the probed
// duration. The columns are spread over the frames cumulatively; when the
// decoder delivers fewer frames than the duration implies, the last frame is
// held, and frames past the duration are dropped.
func (in *Ingestor) FromVideo(ctx context.Context, path string) (*field.Sequence, error) {
	info, err := in.Video.Probe(ctx, path)
	if err != nil {
		return in.empty(), err
	}
	if !(info.FrameRate > 0) {
		return in.empty(), fmt.Errorf("%w: %s: unknown frame rate", ErrDecodeFailed, path)
	}

	span := newVideoSpan(info, in.Settings)
	in.Log.Infow("decoding video", "path", path, "duration", info.Duration,
		"fps", info.FrameRate, "columns", span.total)

	seq := in.empty()
	var last *field.Segment
	frames := 0
	err = in.Video.Frames(ctx, path, span.decodeWidth(), in.Settings.Resolution(), func(g Grid) error {
		seg, err := in.normalizer.Normalize(g)
		if err != nil {
			return err
		}
		last = seg
		cols := span.columns(frames)
		frames++
		if cols == 0 {
			return nil
		}
		return seq.Append(keepColumns(seg, cols))
	})
	if err != nil {
		return in.empty(), fmt.Errorf("%s: %w", path, err)
	}
	if last == nil {
		return in.empty(), fmt.Errorf("%w: %s produced no frames", ErrDecodeFailed, path)
	}
	if frames < span.frames {
		in.Log.Debugw("holding last video frame", "path", path,
			"decoded", frames, "expected", span.frames)
	}
	for ; frames < span.frames; frames++ {
		if err := seq.Append(keepColumns(last, span.columns(frames))); err != nil {
			return in.empty(), err
		}
	}
	if seq.Len() == 0 {
		return seq, fmt.Errorf("%w: %s produced no frames", ErrDecodeFailed, path)
	}
	return seq, nil
}

// FromSnapshot loads a field written by field.EncodeSnapshot.
func (in *Ingestor) FromSnapshot(ctx context.Context, path string) (*field.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return in.empty(), fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	defer f.Close()

	seg, err := field.DecodeSnapshot(f, in.Settings)
	if err != nil {
		return in.empty(), fmt.Errorf("%s: %w", path, err)
	}
	seq := in.empty()
	if err := seq.Append(seg); err != nil {
		return in.empty(), err
	}
	return seq, nil
}
