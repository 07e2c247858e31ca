package imageio_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ericlevine/cedula/barcode"
	"github.com/ericlevine/cedula/barcode/binarizer"
	_ "github.com/ericlevine/cedula/barcode/pdf417"
	"github.com/ericlevine/cedula/imageio"
)

// Every security level must give a symbol the engine reads back, whatever
// the row count works out to.
func TestRenderPDF417ReadsBack(t *testing.T) {
	card := "109870654" + fmt.Sprintf("%-26s%-26s%-26s", "JUAN", "PEREZ", "MORA") + "1" + "19900115" + "20300101"
	payloads := []string{card, "HELLO 12345", strings.Repeat("A", 60)}
	for _, text := range payloads {
		for level := byte(0); level <= 5; level++ {
			t.Run(fmt.Sprintf("%d/level%d", len(text), level), func(t *testing.T) {
				lvl := level
				img, err := imageio.RenderPDF417(text, imageio.RenderOptions{ModuleWidth: 2, SecurityLevel: &lvl})
				if err != nil {
					t.Fatalf("RenderPDF417: %v", err)
				}
				bitmap := barcode.NewBinaryBitmap(binarizer.NewOtsu(barcode.NewGrayImageLuminanceSource(img)))
				results, err := barcode.DecodeMultiple(bitmap, &barcode.DecodeOptions{
					PossibleFormats: []barcode.Format{barcode.FormatPDF417},
				})
				if err != nil {
					t.Fatalf("DecodeMultiple: %v", err)
				}
				for _, r := range results {
					if r.Text != text {
						t.Errorf("decoded %q, want %q", r.Text, text)
					}
				}
			})
		}
	}
}
