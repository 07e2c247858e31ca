// Package normalize turns a color photograph into the clean black and white
// image the barcode engine reads best: grayscale projection, non-local means
// denoising, then a global Otsu threshold.
package normalize

import (
	"fmt"
	"image"

	"github.com/ericlevine/cedula/barcode"
	"github.com/ericlevine/cedula/barcode/binarizer"
)

// Default denoising parameters.
const (
	DefaultStrength   = 3.0
	DefaultPatchSize  = 7
	DefaultSearchSize = 21
)

// Options configures Normalize. The zero value of a field selects its
// default.
type Options struct {
	// Strength is the filter strength h. Larger values remove more noise
	// and more detail.
	Strength float64

	// PatchSize is the side of the square patch compared between pixels.
	// Must be odd.
	PatchSize int

	// SearchSize is the side of the square window searched for similar
	// patches. Must be odd.
	SearchSize int
}

// DefaultOptions returns the options Normalize uses when given nil.
func DefaultOptions() Options {
	return Options{
		Strength:   DefaultStrength,
		PatchSize:  DefaultPatchSize,
		SearchSize: DefaultSearchSize,
	}
}

func (o *Options) withDefaults() Options {
	d := DefaultOptions()
	if o == nil {
		return d
	}
	r := *o
	if r.Strength == 0 {
		r.Strength = d.Strength
	}
	if r.PatchSize == 0 {
		r.PatchSize = d.PatchSize
	}
	if r.SearchSize == 0 {
		r.SearchSize = d.SearchSize
	}
	return r
}

// Validate reports options Denoise cannot work with.
func (o Options) Validate() error {
	if o.Strength < 0 {
		return fmt.Errorf("normalize: strength %v is negative", o.Strength)
	}
	if o.PatchSize < 0 || (o.PatchSize != 0 && o.PatchSize%2 == 0) {
		return fmt.Errorf("normalize: patch size %d must be odd", o.PatchSize)
	}
	if o.SearchSize < 0 || (o.SearchSize != 0 && o.SearchSize%2 == 0) {
		return fmt.Errorf("normalize: search size %d must be odd", o.SearchSize)
	}
	return nil
}

// Normalize runs the full pipeline. The result has the same width and height
// as img, starts at (0, 0) and holds only 0 and 255. img must not be empty.
func Normalize(img image.Image, opts *Options) *image.Gray {
	return Threshold(Denoise(Grayscale(img), opts))
}

// Grayscale projects img onto luminance with the engine's fixed-point
// 0.299/0.587/0.114 weights.
func Grayscale(img image.Image) *image.Gray {
	return barcode.NewImageLuminanceSource(img).Gray()
}

// Threshold binarizes gray with Otsu's method: pixels above the threshold
// become 255, the rest 0.
func Threshold(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	var hist [256]int
	for y := 0; y < h; y++ {
		off := gray.PixOffset(b.Min.X, b.Min.Y+y)
		for _, v := range gray.Pix[off : off+w] {
			hist[v]++
		}
	}
	t := binarizer.OtsuThreshold(&hist)

	for y := 0; y < h; y++ {
		src := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			if int(src[x]) > t {
				dst[x] = 255
			}
		}
	}
	return out
}
