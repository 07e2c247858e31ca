package pdf417_test

import (
	"errors"
	"image"
	"testing"

	"github.com/ericlevine/cedula/barcode"
	"github.com/ericlevine/cedula/barcode/binarizer"
	"github.com/ericlevine/cedula/barcode/pdf417"
	"github.com/ericlevine/cedula/imageio"
)

const sample = "PDF417 SAMPLE 0123456789"

func render(t *testing.T) *image.Gray {
	t.Helper()
	img, err := imageio.RenderPDF417(sample, imageio.RenderOptions{ModuleWidth: 2})
	if err != nil {
		t.Fatalf("RenderPDF417: %v", err)
	}
	return img
}

func bitmap(img *image.Gray) *barcode.BinaryBitmap {
	return barcode.NewBinaryBitmap(binarizer.NewOtsu(barcode.NewGrayImageLuminanceSource(img)))
}

func TestReaderDecode(t *testing.T) {
	img := render(t)
	result, err := pdf417.NewPDF417Reader().Decode(bitmap(img), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if result.Text != sample || result.Format != barcode.FormatPDF417 {
		t.Errorf("got %s %q", result.Format, result.Text)
	}
	if level, _ := result.Metadata[barcode.MetadataErrorCorrectionLevel].(string); level != "2" {
		t.Errorf("error correction level = %q, want \"2\"", level)
	}
	if n, ok := result.Metadata[barcode.MetadataErrorsCorrected].(int); !ok || n != 0 {
		t.Errorf("errors corrected = %v, want 0", result.Metadata[barcode.MetadataErrorsCorrected])
	}
	if len(result.Points) != 4 {
		t.Errorf("got %d corners, want 4", len(result.Points))
	}
}

func TestDecodeBlankNotFound(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 80, 40))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	_, err := barcode.DecodeMultiple(bitmap(img), &barcode.DecodeOptions{AlsoInverted: true})
	if !errors.Is(err, barcode.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDecodeMultipleInverted(t *testing.T) {
	img := render(t)
	for i := range img.Pix {
		img.Pix[i] = 255 - img.Pix[i]
	}
	opts := &barcode.DecodeOptions{
		PossibleFormats: []barcode.Format{barcode.FormatPDF417},
		AlsoInverted:    true,
	}
	results, err := barcode.DecodeMultiple(bitmap(img), opts)
	if err != nil {
		t.Fatalf("DecodeMultiple: %v", err)
	}
	if results[0].Text != sample {
		t.Errorf("Text = %q, want %q", results[0].Text, sample)
	}
}
