package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpeg decodes images and videos by running the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
	Contrast    float64
}

// NewFFmpeg returns an FFmpeg decoder using the binaries found in PATH.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe", Contrast: DefaultContrast}
}

func (f *FFmpeg) args(path string, width, height int) []string {
	contrast := f.Contrast
	if contrast == 0 {
		contrast = 1
	}
	filters := fmt.Sprintf("scale=%d:%d,eq=contrast=%g:saturation=0,format=gray", width, height, contrast)
	return []string{"-v", "error", "-i", path, "-vf", filters, "-f", "rawvideo", "-pix_fmt", "gray", "-"}
}

// Decode returns the first frame of path scaled to width x height.
func (f *FFmpeg) Decode(ctx context.Context, path string, width, height int) (Grid, error) {
	args := f.args(path, width, height)
	args = append(args[:len(args)-1], "-frames:v", "1", "-")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.FFmpegPath, args...)
	cmd.Stderr = &stderr
	raw, err := cmd.Output()
	if err != nil {
		return Grid{}, fmt.Errorf("%w: ffmpeg %s: %v: %s", ErrDecodeFailed, path, err, strings.TrimSpace(stderr.String()))
	}
	if len(raw) != width*height {
		return Grid{}, fmt.Errorf("%w: ffmpeg %s: got %d bytes, want %d", ErrDecodeFailed, path, len(raw), width*height)
	}
	return Grid{Rows: height, Cols: width, Pix: raw}, nil
}

type probeOutput struct {
	Streams []struct {
		Duration   string `json:"duration"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}

// Probe reads the duration and frame rate of the first video stream.
func (f *FFmpeg) Probe(ctx context.Context, path string) (VideoInfo, error) {
	out, err := exec.CommandContext(ctx, f.FFprobePath,
		"-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=duration,width,height,r_frame_rate",
		"-of", "json", path).Output()
	if err != nil {
		return VideoInfo{}, fmt.Errorf("%w: ffprobe %s: %v", ErrDecodeFailed, path, err)
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return VideoInfo{}, fmt.Errorf("%w: ffprobe %s: %v", ErrDecodeFailed, path, err)
	}
	if len(probe.Streams) == 0 {
		return VideoInfo{}, fmt.Errorf("%w: %s has no video stream", ErrDecodeFailed, path)
	}
	s := probe.Streams[0]

	duration, err := strconv.ParseFloat(s.Duration, 64)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("%w: %s: duration %q: %v", ErrDecodeFailed, path, s.Duration, err)
	}
	rate, err := parseRate(s.RFrameRate)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, path, err)
	}
	return VideoInfo{Duration: duration, FrameRate: rate, Width: s.Width, Height: s.Height}, nil
}

// parseRate parses ffprobe rates such as "30000/1001" or "25".
func parseRate(s string) (float64, error) {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("frame rate %q: %v", s, err)
	}
	d := 1.0
	if found {
		if d, err = strconv.ParseFloat(den, 64); err != nil {
			return 0, fmt.Errorf("frame rate %q: %v", s, err)
		}
	}
	if n <= 0 || d <= 0 {
		return 0, fmt.Errorf("frame rate %q is not positive", s)
	}
	return n / d, nil
}

// Frames streams every frame of path scaled to width x height.
func (f *FFmpeg) Frames(ctx context.Context, path string, width, height int, fn func(Grid) error) error {
	cmd := exec.CommandContext(ctx, f.FFmpegPath, f.args(path, width, height)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: ffmpeg %s: %v", ErrDecodeFailed, path, err)
	}

	r := bufio.NewReaderSize(stdout, width*height)
	var ferr error
	for {
		pix := make([]uint8, width*height)
		if _, err := io.ReadFull(r, pix); err != nil {
			if !errors.Is(err, io.EOF) {
				ferr = fmt.Errorf("%w: ffmpeg %s: truncated frame: %v", ErrDecodeFailed, path, err)
			}
			break
		}
		if err := fn(Grid{Rows: height, Cols: width, Pix: pix}); err != nil {
			ferr = err
			break
		}
	}

	if ferr != nil {
		// stopped early, ffmpeg would block on a full pipe
		_ = cmd.Process.Kill()
	}
	if err := cmd.Wait(); err != nil && ferr == nil {
		ferr = fmt.Errorf("%w: ffmpeg %s: %v", ErrDecodeFailed, path, err)
	}
	return ferr
}
