package render

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// Writer persists a mono waveform.
type Writer interface {
	Write(path string, samples []float64, sampleRate int) error
}

// WriterFor picks a writer from the file extension, WAV unless it is .flac.
func WriterFor(path string) Writer {
	if strings.EqualFold(filepath.Ext(path), ".flac") {
		return FlacWriter{}
	}
	return WavWriter{}
}

// WavWriter writes 16-bit mono WAV files.
type WavWriter struct{}

// monoStreamer plays samples on both beep channels.
type monoStreamer struct {
	samples []float64
	pos     int
}

func (s *monoStreamer) Stream(buf [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := copy2(buf, s.samples[s.pos:])
	s.pos += n
	return n, true
}

func copy2(dst [][2]float64, src []float64) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i][0], dst[i][1] = src[i], src[i]
	}
	return n
}

func (s *monoStreamer) Err() error { return nil }

func (WavWriter) Write(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	format := beep.Format{SampleRate: beep.SampleRate(sampleRate), NumChannels: 1, Precision: 2}
	if err := wav.Encode(f, &monoStreamer{samples: samples}, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FlacWriter writes 16-bit mono FLAC files with verbatim subframes.
type FlacWriter struct{}

// flacBlockSize is the FLAC standard block size. Larger verbatim blocks come
// back from mewkiz/flac with broken frame CRCs.
const flacBlockSize = 1152

// flacMinBlockSize is the smallest frame the encoder accepts.
const flacMinBlockSize = 16

// flacBlocks splits n samples into frame sizes. A tail shorter than
// flacMinBlockSize is merged into the frame before it.
func flacBlocks(n int) []int {
	var blocks []int
	for n > 0 {
		size := min(n, flacBlockSize)
		if n-size < flacMinBlockSize {
			size = n
		}
		blocks = append(blocks, size)
		n -= size
	}
	return blocks
}

func quantize16(v float64) int32 {
	v = max(-1, min(1, v))
	return int32(v * 32767)
}

// Write zero-pads signals shorter than one minimal frame.
func (FlacWriter) Write(path string, samples []float64, sampleRate int) error {
	if len(samples) < flacMinBlockSize {
		samples = append(samples[:len(samples):len(samples)], make([]float64, flacMinBlockSize-len(samples))...)
	}
	blocks := flacBlocks(len(samples))

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	info := &meta.StreamInfo{
		BlockSizeMin:  flacMinBlockSize,
		BlockSizeMax:  uint16(slices.Max(blocks)),
		SampleRate:    uint32(sampleRate),
		NChannels:     1,
		BitsPerSample: 16,
		NSamples:      uint64(len(samples)),
	}
	enc, err := flac.NewEncoder(f, info)
	if err != nil {
		f.Close()
		return err
	}

	start := 0
	for num, size := range blocks {
		block := samples[start : start+size]
		start += size
		sub := &frame.Subframe{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   make([]int32, len(block)),
			NSamples:  len(block),
		}
		for i, v := range block {
			sub.Samples[i] = quantize16(v)
		}
		fr := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(len(block)),
				SampleRate:        uint32(sampleRate),
				Channels:          frame.ChannelsMono,
				BitsPerSample:     16,
				Num:               uint64(num),
			},
			Subframes: []*frame.Subframe{sub},
		}
		if err := enc.WriteFrame(fr); err != nil {
			enc.Close()
			return fmt.Errorf("frame %d: %w", num, err)
		}
	}
	// Close also closes f
	return enc.Close()
}
