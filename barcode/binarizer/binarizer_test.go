package binarizer

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ericlevine/cedula/barcode"
)

func TestOtsuThreshold(t *testing.T) {
	tests := []struct {
		name string
		hist map[int]int
		want int
	}{
		{"empty", nil, 0},
		{"uniform", map[int]int{128: 100}, 0},
		{"binary", map[int]int{0: 40, 255: 60}, 0},
		{"two clusters", map[int]int{30: 50, 31: 50, 200: 50, 201: 50}, 31},
		{"skewed", map[int]int{10: 90, 240: 10}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hist [256]int
			for v, n := range tt.hist {
				hist[v] = n
			}
			if got := OtsuThreshold(&hist); got != tt.want {
				t.Errorf("OtsuThreshold() = %d, want %d", got, tt.want)
			}
		})
	}
}

func grayImage(w, h int, fill func(x, y int) uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: fill(x, y)})
		}
	}
	return img
}

func TestOtsuBlackMatrix(t *testing.T) {
	img := grayImage(40, 20, func(x, y int) uint8 {
		if x < 10 {
			return 20
		}
		return 220
	})
	o := NewOtsu(barcode.NewGrayImageLuminanceSource(img))
	m, err := o.BlackMatrix()
	if err != nil {
		t.Fatalf("BlackMatrix: %v", err)
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			if got, want := m.Get(x, y), x < 10; got != want {
				t.Fatalf("Get(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
	row, err := o.BlackRow(3, nil)
	if err != nil {
		t.Fatalf("BlackRow: %v", err)
	}
	if !row.Get(0) || row.Get(39) {
		t.Error("BlackRow disagrees with BlackMatrix")
	}
	back := barcode.BitMatrixToImage(m)
	if back.GrayAt(0, 0).Y != 0 || back.GrayAt(39, 0).Y != 255 {
		t.Error("BitMatrixToImage did not round trip")
	}
}

func TestOtsuUniformImageNotFound(t *testing.T) {
	img := grayImage(30, 30, func(x, y int) uint8 { return 255 })
	_, err := NewOtsu(barcode.NewGrayImageLuminanceSource(img)).BlackMatrix()
	if !errors.Is(err, barcode.ErrNotFound) {
		t.Errorf("BlackMatrix() error = %v, want ErrNotFound", err)
	}
}

func TestGlobalHistogramBlackMatrix(t *testing.T) {
	img := grayImage(50, 50, func(x, y int) uint8 {
		if (x/5)%2 == 0 {
			return 10
		}
		return 240
	})
	m, err := NewGlobalHistogram(barcode.NewGrayImageLuminanceSource(img)).BlackMatrix()
	if err != nil {
		t.Fatalf("BlackMatrix: %v", err)
	}
	if !m.Get(0, 0) || m.Get(5, 0) {
		t.Error("stripes not binarized as expected")
	}
}

func TestHybridFallsBackOnSmallImages(t *testing.T) {
	img := grayImage(20, 20, func(x, y int) uint8 {
		if x < 10 {
			return 0
		}
		return 255
	})
	m, err := NewHybrid(barcode.NewGrayImageLuminanceSource(img)).BlackMatrix()
	if err != nil {
		t.Fatalf("BlackMatrix: %v", err)
	}
	if !m.Get(2, 2) || m.Get(15, 2) {
		t.Error("small image not binarized via global histogram")
	}
}
