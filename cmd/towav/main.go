package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/neurlang/gospectro/field"
	"github.com/neurlang/gospectro/griffinlim"
	"github.com/neurlang/gospectro/ingest"
	"github.com/neurlang/gospectro/internal/log"
	"github.com/neurlang/gospectro/render"
	"github.com/neurlang/gospectro/settings"
)

func main() {
	// Check if the filename argument is provided
	if len(os.Args) < 2 {
		fmt.Println("Usage: towav <image|folder|npy|snap> [seconds]")
		os.Exit(1)
	}

	var filename = strings.TrimRight(os.Args[1], string(filepath.Separator))
	var seconds = 3.0
	if len(os.Args) > 2 {
		var err error
		if seconds, err = strconv.ParseFloat(os.Args[2], 64); err != nil {
			fmt.Printf("Invalid duration %q: %v\n", os.Args[2], err)
			os.Exit(1)
		}
	}

	if err := log.Init(false); err != nil {
		panic(err)
	}
	defer log.Sync()

	var s = settings.NewDefault()
	var in = ingest.NewIngestor(s, ingest.NewImageDecoder(), ingest.NewFFmpeg(), log.GetSugaredLogger())
	var ctx = context.Background()

	var seq *field.Sequence
	var err error
	info, statErr := os.Stat(filename)
	switch ext := strings.ToLower(filepath.Ext(filename)); {
	case statErr == nil && info.IsDir():
		seq, err = in.FromFolder(ctx, filename, seconds, 0)
	case ext == ".npy":
		seq, err = in.FromNumpy(ctx, filename)
	case ext == ".snap":
		seq, err = in.FromSnapshot(ctx, filename)
	default:
		seq, err = in.FromImage(ctx, filename, seconds)
	}
	if err != nil {
		fmt.Printf("Error loading %s: %v\n", filename, err)
		os.Exit(1)
	}

	engine, err := griffinlim.New(griffinlim.DefaultConfig(s))
	if err != nil {
		fmt.Printf("Error creating engine: %v\n", err)
		os.Exit(1)
	}

	outputFile := filename + ".wav"
	r := render.NewRenderer(engine, render.WavWriter{}, log.GetSugaredLogger())
	if err := r.Render(ctx, seq, outputFile); err != nil {
		fmt.Printf("Error generating wave from spectrogram: %v\n", err)
		os.Exit(1)
	}
}
