// Command cedulascan reads the identity data from photos of Costa Rican
// cédula cards.
//
//	cedulascan [flags] <image-file> [image-file...]
//	cedulascan -render <payload> -o card.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ericlevine/cedula/config"
	"github.com/ericlevine/cedula/imageio"
	"github.com/ericlevine/cedula/normalize"
	"github.com/ericlevine/cedula/scan"
)

// Exit codes.
const (
	exitOK         = 0
	exitIncomplete = 1
	exitUsage      = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	fs := flag.NewFlagSet("cedulascan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  = fs.String("config", "", "YAML or JSON config file")
		output      = fs.String("output", config.OutputText, "report format: text, json or yaml")
		bin         = fs.String("binarizer", config.BinarizerOtsu, "engine binarizer: otsu, histogram or hybrid")
		tryHarder   = fs.Bool("try-harder", false, "search harder and retry with the hybrid binarizer")
		maxDim      = fs.Int("max-dim", config.DefaultMaxDimension, "downsize photos whose longest side exceeds this (0 disables)")
		charsetName = fs.String("charset", "", "character set of byte data without an ECI (default ISO-8859-1)")
		strength    = fs.Float64("denoise.h", normalize.DefaultStrength, "denoise filter strength (positive)")
		patch       = fs.Int("denoise.patch", normalize.DefaultPatchSize, "denoise patch size (odd)")
		search      = fs.Int("denoise.search", normalize.DefaultSearchSize, "denoise search window (odd)")
		workers     = fs.Int("workers", 0, "images scanned at once (0 means one per CPU)")
		verbose     = fs.Bool("v", false, "verbose logging")
		render      = fs.String("render", "", "render this payload as a PDF417 image instead of scanning")
		renderOut   = fs.String("o", "card.png", "output file for -render")
		level       = fs.Int("level", 2, "PDF417 error correction level for -render (0-8)")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: cedulascan [flags] <image-file> [image-file...]\n\n")
		fmt.Fprintf(stderr, "Read Costa Rican cédula barcodes from image files (PNG, JPEG, GIF, BMP, TIFF, WebP).\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Error().Err(err).Msg("load config")
			return exitUsage
		}
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		logger.Error().Err(err).Msg("environment")
		return exitUsage
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.Output = *output
		case "binarizer":
			cfg.Binarizer = *bin
		case "try-harder":
			cfg.TryHarder = *tryHarder
		case "max-dim":
			cfg.MaxDimension = *maxDim
		case "charset":
			cfg.CharacterSet = *charsetName
		case "denoise.h":
			cfg.Denoise.Strength = *strength
		case "denoise.patch":
			cfg.Denoise.PatchSize = *patch
		case "denoise.search":
			cfg.Denoise.SearchSize = *search
		case "workers":
			cfg.Workers = *workers
		case "v":
			cfg.Verbose = *verbose
		}
	})
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("config")
		return exitUsage
	}

	if cfg.Verbose {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	if *render != "" {
		return renderCard(*render, *renderOut, *level, logger)
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	sink, err := scan.NewSink(cfg.Output, stdout)
	if err != nil {
		logger.Error().Err(err).Msg("output")
		return exitUsage
	}
	if ts, ok := sink.(*scan.TextSink); ok {
		ts.ShowPath = fs.NArg() > 1
	}

	scanner := scan.New(
		scan.WithLogger(logger),
		scan.WithNormalizeOptions(cfg.NormalizeOptions()),
		scan.WithBinarizer(cfg.Binarizer),
		scan.WithTryHarder(cfg.TryHarder),
		scan.WithMaxDimension(cfg.MaxDimension),
		scan.WithCharacterSet(cfg.CharacterSet),
	)

	reports := scanAll(ctx, scanner, fs.Args(), cfg.Workers)

	code := exitOK
	for _, rep := range reports {
		if scan.IsCanceled(rep) {
			logger.Warn().Msg("interrupted")
			code = exitIncomplete
			break
		}
		if !rep.Complete() {
			code = exitIncomplete
		}
		if err := sink.Emit(rep); err != nil {
			logger.Error().Err(err).Str("path", rep.Path).Msg("write report")
			code = exitIncomplete
		}
	}
	if c, ok := sink.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Error().Err(err).Msg("write report")
			code = exitIncomplete
		}
	}
	return code
}

// scanAll scans paths with at most workers scans in flight and returns the
// reports in argument order.
func scanAll(ctx context.Context, scanner *scan.Scanner, paths []string, workers int) []scan.Report {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	reports := make([]scan.Report, len(paths))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			reports[i] = scanner.ScanFile(ctx, path)
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

func renderCard(payload, out string, level int, logger zerolog.Logger) int {
	if level < 0 || level > 8 {
		logger.Error().Int("level", level).Msg("error correction level must be 0-8")
		return exitUsage
	}
	lvl := byte(level)
	img, err := imageio.RenderPDF417(payload, imageio.RenderOptions{SecurityLevel: &lvl})
	if err != nil {
		logger.Error().Err(err).Msg("render")
		return exitIncomplete
	}
	if err := imageio.Save(out, img); err != nil {
		logger.Error().Err(err).Msg("save")
		return exitIncomplete
	}
	b := img.Bounds()
	logger.Info().Str("path", out).Int("width", b.Dx()).Int("height", b.Dy()).Msg("rendered")
	return exitOK
}
