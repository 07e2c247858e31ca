package barcode

import (
	"image"
	"image/color"
)

// ImageLuminanceSource is a LuminanceSource backed by a flat buffer of 8-bit
// luminance values.
type ImageLuminanceSource struct {
	luminances []byte
	width      int
	height     int
}

// Luminance converts a color to 8-bit luminance with the fixed-point weights
// (306*R + 601*G + 117*B + 0x200) >> 10, i.e. 0.299/0.587/0.114. Translucent
// pixels are composited onto white first, so fully transparent pixels are
// white.
func Luminance(c color.Color) byte {
	return luminance16(c.RGBA())
}

// luminance16 takes alpha-premultiplied 16-bit channels, as returned by
// color.Color.RGBA.
func luminance16(r, g, b, a uint32) byte {
	bg := 0xFFFF - a
	r8 := (r + bg) >> 8
	g8 := (g + bg) >> 8
	b8 := (b + bg) >> 8
	return byte((306*r8 + 601*g8 + 117*b8 + 0x200) >> 10)
}

// premultiply widens an 8-bit non-premultiplied channel the way
// color.NRGBA.RGBA does.
func premultiply(v, a uint32) uint32 {
	v |= v << 8
	return v * a / 0xFF
}

// NewImageLuminanceSource creates a LuminanceSource from a Go image.Image.
// The image is converted to greyscale luminance values upon construction.
func NewImageLuminanceSource(img image.Image) *ImageLuminanceSource {
	if g, ok := img.(*image.Gray); ok {
		return NewGrayImageLuminanceSource(g)
	}
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	luminances := make([]byte, w*h)

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			off := (bounds.Min.Y+y-src.Rect.Min.Y)*src.Stride + (bounds.Min.X-src.Rect.Min.X)*4
			for x := 0; x < w; x++ {
				p := src.Pix[off+x*4 : off+x*4+4 : off+x*4+4]
				a := uint32(p[3])
				luminances[y*w+x] = luminance16(
					premultiply(uint32(p[0]), a),
					premultiply(uint32(p[1]), a),
					premultiply(uint32(p[2]), a),
					a|a<<8,
				)
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				luminances[y*w+x] = Luminance(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
	}

	return &ImageLuminanceSource{
		luminances: luminances,
		width:      w,
		height:     h,
	}
}

// NewGrayImageLuminanceSource creates a LuminanceSource from a *image.Gray,
// using the pixel data directly without conversion.
func NewGrayImageLuminanceSource(img *image.Gray) *ImageLuminanceSource {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	luminances := make([]byte, w*h)
	if img.Stride == w && bounds.Min.X == 0 && bounds.Min.Y == 0 {
		copy(luminances, img.Pix[:w*h])
	} else {
		for y := 0; y < h; y++ {
			srcOff := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(luminances[y*w:], img.Pix[srcOff:srcOff+w])
		}
	}
	return &ImageLuminanceSource{
		luminances: luminances,
		width:      w,
		height:     h,
	}
}

// Row returns a row of luminance data.
func (s *ImageLuminanceSource) Row(y int, row []byte) []byte {
	if y < 0 || y >= s.height {
		return nil
	}
	if row == nil || len(row) < s.width {
		row = make([]byte, s.width)
	}
	offset := y * s.width
	copy(row, s.luminances[offset:offset+s.width])
	return row
}

// Matrix returns the entire luminance matrix.
func (s *ImageLuminanceSource) Matrix() []byte {
	result := make([]byte, len(s.luminances))
	copy(result, s.luminances)
	return result
}

// Width returns the width of the image.
func (s *ImageLuminanceSource) Width() int {
	return s.width
}

// Height returns the height of the image.
func (s *ImageLuminanceSource) Height() int {
	return s.height
}

// Gray returns the luminance values as a new *image.Gray anchored at (0, 0).
func (s *ImageLuminanceSource) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, s.width, s.height))
	copy(img.Pix, s.luminances)
	return img
}

// BitMatrixToImage converts a BitMatrix to a grayscale image where black
// modules are black (0) and white modules are white (255).
func BitMatrixToImage(matrix interface {
	Width() int
	Height() int
	Get(x, y int) bool
}) *image.Gray {
	w := matrix.Width()
	h := matrix.Height()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}
