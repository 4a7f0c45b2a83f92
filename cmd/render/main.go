package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"

	"github.com/neurlang/gospectro/config"
	"github.com/neurlang/gospectro/field"
	"github.com/neurlang/gospectro/griffinlim"
	"github.com/neurlang/gospectro/ingest"
	"github.com/neurlang/gospectro/internal/log"
	"github.com/neurlang/gospectro/render"
)

func main() {
	cfgFile := flag.String("config", "job.yaml", "Path to the render job")
	output := flag.String("output", "", "Output audio file, overrides the job output")
	snapshot := flag.String("snapshot", "", "Also save the assembled field to this file")
	preview := flag.String("preview", "", "Also save the assembled field as a PNG picture")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		panic(err)
	}
	defer log.Sync()
	logger := log.GetSugaredLogger()

	cfg, err := config.NewConfig(*cfgFile)
	if err != nil {
		log.Fatalf("error reading config: %v", err)
	}
	if *output != "" {
		cfg.Output = *output
	}
	if cfg.Output == "" {
		log.Fatalf("no output file given")
	}

	s, err := cfg.Settings()
	if err != nil {
		log.Fatalf("invalid settings: %v", err)
	}
	engine, err := griffinlim.New(cfg.GriffinLim(s))
	if err != nil {
		log.Fatalf("invalid engine parameters: %v", err)
	}

	ffmpeg := ingest.NewFFmpeg()
	ffmpeg.Contrast = cfg.ContrastOrDefault()
	var images ingest.Decoder = ffmpeg
	if cfg.Decoder != config.DecoderFFmpeg {
		images = &ingest.ImageDecoder{Contrast: cfg.ContrastOrDefault()}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Infow("loading media", "settings", s.String(), "sources", len(cfg.Sources))
	in := ingest.NewIngestor(s, images, ffmpeg, logger)
	seq, err := in.Collect(ctx, cfg.IngestSources())
	if err != nil {
		log.Fatalf("error loading sources: %v", err)
	}

	f, err := seq.Flatten()
	if errors.Is(err, field.ErrEmptySequence) {
		logger.Warn("no data to render")
		return
	}
	if err != nil {
		log.Fatalf("error assembling field: %v", err)
	}
	if *snapshot != "" {
		if err := save(*snapshot, f.EncodeSnapshot); err != nil {
			log.Fatalf("error saving snapshot: %v", err)
		}
		logger.Infow("saved snapshot", "path", *snapshot)
	}
	if *preview != "" {
		if err := save(*preview, f.EncodePNG); err != nil {
			log.Fatalf("error saving preview: %v", err)
		}
		logger.Infow("saved preview", "path", *preview)
	}

	r := render.NewRenderer(engine, render.WriterFor(cfg.Output), logger)
	r.VolumeBoost = cfg.VolumeBoost
	if err := r.RenderField(ctx, f, cfg.Output); err != nil {
		log.Fatalf("error rendering: %v", err)
	}
}

func save(path string, encode func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
