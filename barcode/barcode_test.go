package barcode_test

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ericlevine/cedula/barcode"
	"github.com/ericlevine/cedula/barcode/binarizer"
)

func TestFormatString(t *testing.T) {
	if got := barcode.FormatPDF417.String(); got != "PDF_417" {
		t.Errorf("FormatPDF417.String() = %q", got)
	}
	if got := barcode.Format(99).String(); got != "UNKNOWN" {
		t.Errorf("Format(99).String() = %q", got)
	}
}

func TestLuminance(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want byte
	}{
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"white", color.RGBA{255, 255, 255, 255}, 255},
		{"red", color.RGBA{255, 0, 0, 255}, 76},
		{"green", color.RGBA{0, 255, 0, 255}, 150},
		{"blue", color.RGBA{0, 0, 255, 255}, 29},
		{"transparent", color.RGBA{0, 0, 0, 0}, 255},
		{"half black", color.NRGBA{0, 0, 0, 128}, 127},
		{"half white", color.NRGBA{255, 255, 255, 128}, 255},
		{"gray", color.Gray{Y: 77}, 77},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := barcode.Luminance(tt.c); got != tt.want {
				t.Errorf("Luminance(%v) = %d, want %d", tt.c, got, tt.want)
			}
		})
	}
}

func TestImageLuminanceSource(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 7, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 7; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 30), uint8(y * 60), 90, 255})
		}
	}
	source := barcode.NewImageLuminanceSource(img)

	if source.Width() != 7 || source.Height() != 3 {
		t.Fatalf("dimensions: got %dx%d, want 7x3", source.Width(), source.Height())
	}
	lum := source.Matrix()
	if len(lum) != source.Width()*source.Height() {
		t.Errorf("matrix length: got %d, want %d", len(lum), source.Width()*source.Height())
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 7; x++ {
			if want := barcode.Luminance(img.At(x, y)); lum[y*7+x] != want {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, lum[y*7+x], want)
			}
		}
	}

	row := source.Row(1, nil)
	if len(row) != source.Width() {
		t.Errorf("row length: got %d, want %d", len(row), source.Width())
	}
	if source.Row(3, nil) != nil {
		t.Error("Row out of range should be nil")
	}
	if g := source.Gray(); g.Bounds() != image.Rect(0, 0, 7, 3) || g.GrayAt(2, 1).Y != lum[7+2] {
		t.Error("Gray() does not mirror the luminance matrix")
	}
}

func TestTranslucentPixelsAgree(t *testing.T) {
	colors := []color.NRGBA{
		{255, 0, 0, 128},
		{0, 0, 0, 1},
		{30, 200, 90, 77},
		{0, 0, 0, 0},
		{12, 34, 56, 255},
	}
	nrgba := image.NewNRGBA(image.Rect(0, 0, len(colors), 1))
	rgba := image.NewRGBA(image.Rect(0, 0, len(colors), 1))
	for x, c := range colors {
		nrgba.SetNRGBA(x, 0, c)
		rgba.Set(x, 0, c)
	}
	fast := barcode.NewImageLuminanceSource(nrgba).Matrix()
	generic := barcode.NewImageLuminanceSource(rgba).Matrix()
	for x, c := range colors {
		// image.RGBA stores premultiplied channels in 8 bits, so it may
		// round one step away.
		if d := int(fast[x]) - int(generic[x]); d < -1 || d > 1 {
			t.Errorf("%v: NRGBA luminance %d, RGBA luminance %d", c, fast[x], generic[x])
		}
		if want := barcode.Luminance(c); fast[x] != want {
			t.Errorf("%v: NRGBA luminance %d, Luminance %d", c, fast[x], want)
		}
	}
}

func TestGrayLuminanceSourceSubImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	sub := img.SubImage(image.Rect(2, 3, 6, 5)).(*image.Gray)
	source := barcode.NewGrayImageLuminanceSource(sub)
	if source.Width() != 4 || source.Height() != 2 {
		t.Fatalf("dimensions: got %dx%d, want 4x2", source.Width(), source.Height())
	}
	if got, want := source.Matrix()[0], byte(3*10+2); got != want {
		t.Errorf("first luminance = %d, want %d", got, want)
	}
}

func TestDecodeWithoutReadersNotFound(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	bitmap := barcode.NewBinaryBitmap(binarizer.NewGlobalHistogram(barcode.NewGrayImageLuminanceSource(img)))
	if _, err := barcode.DecodeMultiple(bitmap, nil); !errors.Is(err, barcode.ErrNotFound) {
		t.Errorf("DecodeMultiple() error = %v, want ErrNotFound", err)
	}
}
