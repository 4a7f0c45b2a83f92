package render

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/faiface/beep/wav"
	"github.com/mewkiz/flac"
	"github.com/neurlang/gospectro/field"
	"github.com/neurlang/gospectro/griffinlim"
	"github.com/neurlang/gospectro/settings"
	"gonum.org/v1/gonum/mat"
)

type recordingWriter struct {
	path       string
	samples    []float64
	sampleRate int
	err        error
}

func (w *recordingWriter) Write(path string, samples []float64, sampleRate int) error {
	w.path, w.samples, w.sampleRate = path, samples, sampleRate
	return w.err
}

func newRenderer(t *testing.T, s *settings.Settings, w Writer) *Renderer {
	t.Helper()
	cfg := griffinlim.DefaultConfig(s)
	cfg.Iterations = 4
	e, err := griffinlim.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return NewRenderer(e, w, nil)
}

func TestRenderEmpty(t *testing.T) {
	s := settings.NewDefault()
	w := &recordingWriter{}
	err := newRenderer(t, s, w).Render(context.Background(), field.NewSequence(s), "out.wav")
	if !errors.Is(err, ErrEmptyInput) || !errors.Is(err, field.ErrEmptySequence) {
		t.Fatalf("expected ErrEmptyInput wrapping ErrEmptySequence, got %v", err)
	}
	if w.path != "" {
		t.Error("writer called for an empty sequence")
	}
}

func TestRender(t *testing.T) {
	s, _ := settings.New(33, 8000, 16)
	seq := field.NewSequence(s)
	m := mat.NewDense(33, 20, nil)
	for j := 0; j < 20; j++ {
		m.Set(5, j, 1)
	}
	if err := seq.Append(field.NewSegment(m)); err != nil {
		t.Fatal(err)
	}
	if err := seq.AppendGap(0.01); err != nil {
		t.Fatal(err)
	}

	w := &recordingWriter{}
	if err := newRenderer(t, s, w).Render(context.Background(), seq, "tone.wav"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if w.path != "tone.wav" || w.sampleRate != 8000 {
		t.Errorf("writer got path %q rate %d", w.path, w.sampleRate)
	}
	// 20 columns plus a 5 column gap
	if want := (25-1)*16 + 64; len(w.samples) != want {
		t.Errorf("got %d samples, want %d", len(w.samples), want)
	}
}

func TestRenderWriteFailed(t *testing.T) {
	s, _ := settings.New(9, 8000, 4)
	seq := field.NewSequence(s)
	if err := seq.AppendGap(0.01); err != nil {
		t.Fatal(err)
	}

	cause := errors.New("disk full")
	err := newRenderer(t, s, &recordingWriter{err: cause}).Render(context.Background(), seq, "/tmp/x.wav")

	var wf *WriteFailedError
	if !errors.As(err, &wf) {
		t.Fatalf("expected WriteFailedError, got %v", err)
	}
	if wf.Path != "/tmp/x.wav" || !errors.Is(err, cause) {
		t.Errorf("unexpected error details: %v", wf)
	}
}

func TestRenderInvalidField(t *testing.T) {
	s, _ := settings.New(9, 8000, 4)
	m := mat.NewDense(9, 3, nil)
	m.Set(0, 0, -1)
	seq := field.NewSequence(s)
	if err := seq.Append(field.NewSegment(m)); err != nil {
		t.Fatal(err)
	}
	w := &recordingWriter{}
	if err := newRenderer(t, s, w).Render(context.Background(), seq, "x.wav"); !errors.Is(err, griffinlim.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	if w.path != "" {
		t.Error("writer called after an invalid field")
	}
}

func TestVolumeBoost(t *testing.T) {
	s, _ := settings.New(17, 8000, 8)
	m := mat.NewDense(17, 6, nil)
	m.Set(3, 2, 2)
	seq := field.NewSequence(s)
	if err := seq.Append(field.NewSegment(m)); err != nil {
		t.Fatal(err)
	}

	plain, boosted := &recordingWriter{}, &recordingWriter{}
	if err := newRenderer(t, s, plain).Render(context.Background(), seq, "a.wav"); err != nil {
		t.Fatal(err)
	}
	r := newRenderer(t, s, boosted)
	r.VolumeBoost = 3
	if err := r.Render(context.Background(), seq, "b.wav"); err != nil {
		t.Fatal(err)
	}
	for i := range plain.samples {
		if math.Abs(boosted.samples[i]-3*plain.samples[i]) > 1e-12 {
			t.Fatalf("sample %d: %v is not 3x %v", i, boosted.samples[i], plain.samples[i])
		}
	}
}

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(float64(i)/10)
	}
	return out
}

func TestWavWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	samples := ramp(1000)
	if err := WriterFor(path).Write(path, samples, 22050); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	stream, format, err := wav.Decode(f)
	if err != nil {
		t.Fatalf("wav.Decode: %v", err)
	}
	if format.SampleRate != 22050 || format.NumChannels != 1 {
		t.Errorf("format = %+v", format)
	}
	if stream.Len() != len(samples) {
		t.Errorf("decoded %d samples, want %d", stream.Len(), len(samples))
	}
}

func TestFlacBlocks(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{16, []int{16}},
		{1152, []int{1152}},
		{1162, []int{1162}},
		{1168, []int{1152, 16}},
		{4100, []int{1152, 1152, 1152, 644}},
		{3466, []int{1152, 1152, 1162}},
	}
	for _, tt := range tests {
		if got := flacBlocks(tt.n); !slices.Equal(got, tt.want) {
			t.Errorf("flacBlocks(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestFlacWriter(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"rendered field", 7054, 7054},
		{"whole blocks", 4608, 4608},
		{"short tail", 4100, 4100},
		{"tail below minimum frame", 3466, 3466},
		{"shorter than one frame", 10, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.flac")
			samples := ramp(tt.n)
			w := WriterFor(path)
			if _, ok := w.(FlacWriter); !ok {
				t.Fatalf("WriterFor picked %T for a .flac path", w)
			}
			if err := w.Write(path, samples, 44100); err != nil {
				t.Fatalf("Write: %v", err)
			}

			stream, err := flac.ParseFile(path)
			if err != nil {
				t.Fatalf("flac.ParseFile: %v", err)
			}
			defer stream.Close()
			if stream.Info.SampleRate != 44100 || stream.Info.NChannels != 1 {
				t.Errorf("stream info = %+v", stream.Info)
			}

			var decoded int
			for {
				fr, err := stream.ParseNext()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("ParseNext: %v", err)
				}
				for i, v := range fr.Subframes[0].Samples {
					var want int32
					if decoded+i < len(samples) {
						want = quantize16(samples[decoded+i])
					}
					if v != want {
						t.Fatalf("sample %d = %d, want %d", decoded+i, v, want)
					}
				}
				decoded += fr.Subframes[0].NSamples
			}
			if decoded != tt.want {
				t.Errorf("decoded %d samples, want %d", decoded, tt.want)
			}
		})
	}
}
