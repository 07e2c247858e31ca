// Package scan runs the cédula reading pipeline: load a photograph,
// normalize it, decode the barcodes in it and parse each payload into a
// record. Results come back as a Report; printing is left to a Sink.
package scan

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/ericlevine/cedula/imageio"
	"github.com/ericlevine/cedula/normalize"
)

// Scanner reads cédula barcodes from images. A Scanner holds no state that
// changes between calls and may be shared by concurrent goroutines.
type Scanner struct {
	log       zerolog.Logger
	decoder   Decoder
	fallback  Decoder
	denoise   normalize.Options
	maxDim    int
	tryHarder bool
	charset   string
	binarizer string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger for stage timings and recovered panics.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scanner) { s.log = l }
}

// WithDecoder replaces the barcode engine.
func WithDecoder(d Decoder) Option {
	return func(s *Scanner) { s.decoder = d }
}

// WithFallbackDecoder sets the decoder retried on the denoised grayscale
// image when TryHarder is on and the first pass finds nothing.
func WithFallbackDecoder(d Decoder) Option {
	return func(s *Scanner) { s.fallback = d }
}

// WithNormalizeOptions sets the denoising parameters.
func WithNormalizeOptions(o normalize.Options) Option {
	return func(s *Scanner) { s.denoise = o }
}

// WithTryHarder enables the slower detector search and the fallback pass.
func WithTryHarder(on bool) Option {
	return func(s *Scanner) { s.tryHarder = on }
}

// WithMaxDimension downsizes images whose longest side exceeds n pixels
// before normalization. 0 disables downsizing.
func WithMaxDimension(n int) Option {
	return func(s *Scanner) { s.maxDim = n }
}

// WithCharacterSet sets the encoding of byte data without an ECI for the
// default engine decoders.
func WithCharacterSet(name string) Option {
	return func(s *Scanner) { s.charset = name }
}

// WithBinarizer selects the binarizer of the default engine decoder.
func WithBinarizer(name string) Option {
	return func(s *Scanner) { s.binarizer = name }
}

// New returns a Scanner. Without options it logs nothing, uses the default
// denoising parameters and the Otsu binarizer, and does not downsize.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		log:     zerolog.Nop(),
		denoise: normalize.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.decoder == nil {
		s.decoder = EngineDecoder{
			Binarizer:    s.binarizer,
			TryHarder:    s.tryHarder,
			CharacterSet: s.charset,
		}
	}
	if s.fallback == nil && s.tryHarder {
		s.fallback = EngineDecoder{
			Binarizer:    BinarizerHybrid,
			TryHarder:    true,
			CharacterSet: s.charset,
		}
	}
	return s
}

// ScanFile loads the image at path and scans it. A file that cannot be
// opened or decoded yields StatusUnreadable.
func (s *Scanner) ScanFile(ctx context.Context, path string) (rep Report) {
	log := s.log.With().Str("path", path).Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("scan aborted")
			rep = failedReport(fmt.Errorf("internal error: %v", r))
			rep.Path = path
		}
	}()

	start := time.Now()
	img, err := imageio.Load(path)
	if err != nil {
		log.Debug().Err(err).Msg("load failed")
		return unreadableReport(path, err)
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("loaded")

	rep = s.scan(ctx, img, log)
	rep.Path = path
	return rep
}

// Scan runs the pipeline on an image already in memory.
func (s *Scanner) Scan(ctx context.Context, img image.Image) Report {
	return s.scan(ctx, img, s.log)
}

func (s *Scanner) scan(ctx context.Context, img image.Image, log zerolog.Logger) (rep Report) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("scan aborted")
			rep = failedReport(fmt.Errorf("internal error: %v", r))
		}
	}()

	if img == nil || img.Bounds().Empty() {
		return failedReport(ErrEmptyImage)
	}
	orig := img.Bounds()
	if s.maxDim > 0 {
		img = imageio.Downscale(img, s.maxDim)
	}

	denoised, binary, err := s.normalize(ctx, img, log)
	if err != nil {
		return failedReport(err)
	}

	start := time.Now()
	payloads, err := s.decoder.Decode(ctx, binary)
	if err != nil {
		return failedReport(fmt.Errorf("decode: %w", err))
	}
	log.Debug().Dur("elapsed", time.Since(start)).Int("found", len(payloads)).Msg("decoded")

	if len(payloads) == 0 && s.tryHarder && s.fallback != nil {
		if err := ctx.Err(); err != nil {
			return failedReport(err)
		}
		start = time.Now()
		payloads, err = s.fallback.Decode(ctx, denoised)
		if err != nil {
			return failedReport(fmt.Errorf("decode: %w", err))
		}
		log.Debug().Dur("elapsed", time.Since(start)).Int("found", len(payloads)).Msg("fallback decoded")
	}

	if len(payloads) == 0 {
		return noBarcodeReport()
	}
	rep = Report{Status: StatusOK}
	for _, p := range payloads {
		p.Position = toSource(p.Position, orig, img.Bounds())
		log.Debug().
			Str("format", p.Format).
			Str("ecLevel", p.ErrorCorrectionLevel).
			Int("errorsCorrected", p.ErrorsCorrected).
			Msg("payload")
		d := detect(p)
		if d.Err != nil {
			log.Debug().Str("reason", d.Err.Reason).Msg("payload did not parse")
		}
		rep.Detections = append(rep.Detections, d)
	}
	return rep
}

// toSource maps points found in the processed image, whose origin is (0, 0)
// and size is that of scaled, back onto the source image bounds.
func toSource(pts []image.Point, source, scaled image.Rectangle) []image.Point {
	if len(pts) == 0 {
		return pts
	}
	sw, sh := scaled.Dx(), scaled.Dy()
	out := make([]image.Point, len(pts))
	for i, p := range pts {
		out[i] = image.Pt(
			source.Min.X+int(math.Round(float64(p.X)*float64(source.Dx())/float64(sw))),
			source.Min.Y+int(math.Round(float64(p.Y)*float64(source.Dy())/float64(sh))),
		)
	}
	return out
}

// normalize returns the denoised grayscale image and its binarization,
// checking for cancellation between stages.
func (s *Scanner) normalize(ctx context.Context, img image.Image, log zerolog.Logger) (*image.Gray, *image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	start := time.Now()
	gray := normalize.Grayscale(img)
	log.Debug().Dur("elapsed", time.Since(start)).Msg("grayscale")

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	start = time.Now()
	denoised := normalize.Denoise(gray, &s.denoise)
	log.Debug().Dur("elapsed", time.Since(start)).Msg("denoised")

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	start = time.Now()
	binary := normalize.Threshold(denoised)
	log.Debug().Dur("elapsed", time.Since(start)).Msg("thresholded")

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return denoised, binary, nil
}

// IsCanceled reports whether a failed report was caused by context
// cancellation or deadline.
func IsCanceled(r Report) bool {
	return errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded)
}
