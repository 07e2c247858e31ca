// Package pdf417 reads PDF417 symbols, the stacked barcode printed on the
// back of Costa Rican identity cards.
package pdf417

import (
	"fmt"
	"math"

	"github.com/ericlevine/cedula/barcode"
	"github.com/ericlevine/cedula/barcode/charset"
	"github.com/ericlevine/cedula/barcode/pdf417/decoder"
	"github.com/ericlevine/cedula/barcode/pdf417/detector"
)

// PDF417Reader decodes PDF417 barcodes from binary images.
type PDF417Reader struct{}

// NewPDF417Reader creates a new PDF417 reader.
func NewPDF417Reader() *PDF417Reader {
	return &PDF417Reader{}
}

// Decode locates and decodes a PDF417 barcode in the given image.
func (r *PDF417Reader) Decode(image *barcode.BinaryBitmap, opts *barcode.DecodeOptions) (*barcode.Result, error) {
	results, err := r.decode(image, opts, false)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// DecodeMultiple locates and decodes all PDF417 barcodes in the given image.
func (r *PDF417Reader) DecodeMultiple(image *barcode.BinaryBitmap, opts *barcode.DecodeOptions) ([]*barcode.Result, error) {
	return r.decode(image, opts, true)
}

func (r *PDF417Reader) decode(image *barcode.BinaryBitmap, opts *barcode.DecodeOptions, multiple bool) ([]*barcode.Result, error) {
	if opts == nil {
		opts = &barcode.DecodeOptions{}
	}
	matrix, err := image.BlackMatrix()
	if err != nil {
		return nil, err
	}

	detResult, err := detector.Detect(matrix, multiple, opts.TryHarder)
	if err != nil {
		return nil, err
	}

	var fallback *charset.ECI
	if opts.CharacterSet != "" {
		fallback = charset.GetECIByName(opts.CharacterSet)
		if fallback == nil {
			return nil, fmt.Errorf("unknown character set %q: %w", opts.CharacterSet, barcode.ErrFormat)
		}
	}

	var results []*barcode.Result
	for _, points := range detResult.Points {
		if len(points) < 8 {
			continue
		}
		var enc = charset.DefaultEncoding
		if fallback != nil {
			enc = fallback.Encoding
		}
		dr, err := decoder.Decode(
			detResult.Bits,
			points[4], // imageTopLeft
			points[5], // imageBottomLeft
			points[6], // imageTopRight
			points[7], // imageBottomRight
			getMinCodewordWidth(points),
			getMaxCodewordWidth(points),
			enc,
		)
		if err != nil {
			continue
		}

		corners := outline(points, detResult.Rotation, matrix.Width(), matrix.Height())
		result := barcode.NewResult(dr.Text, dr.RawBytes, corners, barcode.FormatPDF417)

		result.PutMetadata(barcode.MetadataErrorCorrectionLevel, dr.ECLevel)
		result.PutMetadata(barcode.MetadataErrorsCorrected, dr.ErrorsCorrected)
		result.PutMetadata(barcode.MetadataErasuresCorrected, dr.Erasures)
		result.PutMetadata(barcode.MetadataOrientation, detResult.Rotation)
		if dr.Other != nil {
			result.PutMetadata(barcode.MetadataPDF417ExtraMetadata, dr.Other)
		}
		result.PutMetadata(barcode.MetadataSymbologyIdentifier, fmt.Sprintf("]L%d", dr.SymbologyModifier))

		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, barcode.ErrNotFound
	}
	return results, nil
}

// outline returns the symbol corners clockwise from top-left, mapped back to
// the coordinates of the unrotated width x height matrix. Corners the
// detector could not locate are omitted.
func outline(points []*barcode.ResultPoint, rotation, width, height int) []barcode.ResultPoint {
	var corners []barcode.ResultPoint
	for _, i := range [4]int{0, 2, 3, 1} {
		p := points[i]
		if p == nil {
			continue
		}
		corners = append(corners, unrotate(*p, rotation, width, height))
	}
	return corners
}

// unrotate inverts bitutil.BitMatrix.Rotate for a single point.
func unrotate(p barcode.ResultPoint, rotation, width, height int) barcode.ResultPoint {
	w := float64(width - 1)
	h := float64(height - 1)
	switch rotation % 360 {
	case 90:
		return barcode.ResultPoint{X: w - p.Y, Y: p.X}
	case 180:
		return barcode.ResultPoint{X: w - p.X, Y: h - p.Y}
	case 270:
		return barcode.ResultPoint{X: p.Y, Y: h - p.X}
	default:
		return p
	}
}

func getMinWidth(p1, p2 *barcode.ResultPoint) int {
	if p1 == nil || p2 == nil {
		return math.MaxInt32
	}
	return int(math.Abs(p1.X - p2.X))
}

func getMaxWidth(p1, p2 *barcode.ResultPoint) int {
	if p1 == nil || p2 == nil {
		return 0
	}
	return int(math.Abs(p1.X - p2.X))
}

func getMinCodewordWidth(points []*barcode.ResultPoint) int {
	return min(
		min(getMinWidth(points[0], points[4]), getMinWidth(points[6], points[2])*decoder.ModulesInCodeword/decoder.ModulesInStopPattern),
		min(getMinWidth(points[1], points[5]), getMinWidth(points[7], points[3])*decoder.ModulesInCodeword/decoder.ModulesInStopPattern),
	)
}

func getMaxCodewordWidth(points []*barcode.ResultPoint) int {
	return max(
		max(getMaxWidth(points[0], points[4]), getMaxWidth(points[6], points[2])*decoder.ModulesInCodeword/decoder.ModulesInStopPattern),
		max(getMaxWidth(points[1], points[5]), getMaxWidth(points[7], points[3])*decoder.ModulesInCodeword/decoder.ModulesInStopPattern),
	)
}
