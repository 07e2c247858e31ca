package scan

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ericlevine/cedula/barcode"
	"github.com/ericlevine/cedula/barcode/binarizer"

	// Register the PDF417 reader.
	_ "github.com/ericlevine/cedula/barcode/pdf417"
)

// Payload is one symbol found by a Decoder. Format and Position are opaque
// to the rest of the pipeline; only Text is interpreted.
type Payload struct {
	Format   string
	Position []image.Point
	Text     string

	// ErrorCorrectionLevel and ErrorsCorrected describe how much of the
	// symbol had to be repaired. Decoders that cannot tell leave them zero.
	ErrorCorrectionLevel string
	ErrorsCorrected      int
}

// Decoder finds and decodes barcodes in a normalized image. Finding nothing
// is reported as zero payloads and a nil error.
type Decoder interface {
	Decode(ctx context.Context, img *image.Gray) ([]Payload, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(ctx context.Context, img *image.Gray) ([]Payload, error)

// Decode calls f(ctx, img).
func (f DecoderFunc) Decode(ctx context.Context, img *image.Gray) ([]Payload, error) {
	return f(ctx, img)
}

// Binarizer names understood by EngineDecoder.
const (
	BinarizerOtsu      = "otsu"
	BinarizerHistogram = "histogram"
	BinarizerHybrid    = "hybrid"
)

// EngineDecoder decodes PDF417 symbols with the in-tree barcode engine.
type EngineDecoder struct {
	// Binarizer selects how the engine turns luminance into black and
	// white. Empty means BinarizerOtsu.
	Binarizer string

	// TryHarder makes the detector keep scanning rows after a miss and
	// retries on the inverted image when nothing is found.
	TryHarder bool

	// CharacterSet decodes byte data that is not preceded by an ECI.
	// Empty means ISO-8859-1.
	CharacterSet string
}

// Decode runs the engine over img. Panics raised by the engine on malformed
// symbols are returned as errors.
func (d EngineDecoder) Decode(ctx context.Context, img *image.Gray) (payloads []Payload, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	source := barcode.NewGrayImageLuminanceSource(img)
	bin, err := d.binarizer(source)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			payloads = nil
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()

	results, err := barcode.DecodeMultiple(barcode.NewBinaryBitmap(bin), &barcode.DecodeOptions{
		TryHarder:       d.TryHarder,
		AlsoInverted:    d.TryHarder,
		PossibleFormats: []barcode.Format{barcode.FormatPDF417},
		CharacterSet:    d.CharacterSet,
	})
	if errors.Is(err, barcode.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, r := range results {
		key := r.Format.String() + ":" + r.Text
		if seen[key] {
			continue
		}
		seen[key] = true
		p := Payload{
			Format:   r.Format.String(),
			Position: polygon(r.Points),
			Text:     r.Text,
		}
		if level, ok := r.Metadata[barcode.MetadataErrorCorrectionLevel].(string); ok {
			p.ErrorCorrectionLevel = level
		}
		if n, ok := r.Metadata[barcode.MetadataErrorsCorrected].(int); ok {
			p.ErrorsCorrected = n
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

func (d EngineDecoder) binarizer(source barcode.LuminanceSource) (barcode.Binarizer, error) {
	switch d.Binarizer {
	case "", BinarizerOtsu:
		return binarizer.NewOtsu(source), nil
	case BinarizerHistogram:
		return binarizer.NewGlobalHistogram(source), nil
	case BinarizerHybrid:
		return binarizer.NewHybrid(source), nil
	default:
		return nil, fmt.Errorf("unknown binarizer %q", d.Binarizer)
	}
}

func polygon(points []barcode.ResultPoint) []image.Point {
	if len(points) == 0 {
		return nil
	}
	out := make([]image.Point, len(points))
	for i, p := range points {
		out[i] = image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
	}
	return out
}
