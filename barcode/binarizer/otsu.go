package binarizer

import (
	"github.com/ericlevine/cedula/barcode"
	"github.com/ericlevine/cedula/barcode/bitutil"
)

// OtsuThreshold returns the global threshold t that maximizes the
// between-class variance of a 256-bin luminance histogram, where the dark
// class holds values <= t. Ties keep the smallest t. A histogram with fewer
// than two populated bins yields 0.
func OtsuThreshold(hist *[256]int) int {
	total := 0
	sum := 0.0
	for v, n := range hist {
		total += n
		sum += float64(v * n)
	}

	best := 0
	bestVariance := -1.0
	w0 := 0
	sum0 := 0.0
	for t := 0; t < 255; t++ {
		w0 += hist[t]
		sum0 += float64(t * hist[t])
		w1 := total - w0
		if w0 == 0 || w1 == 0 {
			continue
		}
		mu0 := sum0 / float64(w0)
		mu1 := (sum - sum0) / float64(w1)
		d := mu0 - mu1
		variance := float64(w0) * float64(w1) * d * d
		if variance > bestVariance {
			bestVariance = variance
			best = t
		}
	}
	return best
}

// Histogram counts the occurrences of every luminance value.
func Histogram(luminances []byte) *[256]int {
	var hist [256]int
	for _, v := range luminances {
		hist[v]++
	}
	return &hist
}

// Otsu binarizes with a single global threshold chosen by Otsu's method.
// Luminance at or below the threshold is black.
type Otsu struct {
	source    barcode.LuminanceSource
	threshold int
	computed  bool
	matrix    *bitutil.BitMatrix
}

// NewOtsu creates a new Otsu binarizer.
func NewOtsu(source barcode.LuminanceSource) *Otsu {
	return &Otsu{source: source}
}

// LuminanceSource returns the underlying source.
func (o *Otsu) LuminanceSource() barcode.LuminanceSource { return o.source }

// Width returns the image width.
func (o *Otsu) Width() int { return o.source.Width() }

// Height returns the image height.
func (o *Otsu) Height() int { return o.source.Height() }

// Threshold returns the global threshold for the whole source.
func (o *Otsu) Threshold() int {
	if !o.computed {
		o.threshold = OtsuThreshold(Histogram(o.source.Matrix()))
		o.computed = true
	}
	return o.threshold
}

// BlackRow returns row y binarized against the global threshold.
func (o *Otsu) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	width := o.source.Width()
	if row == nil || row.Size() < width {
		row = bitutil.NewBitArray(width)
	} else {
		row.Clear()
	}
	luminances := o.source.Row(y, nil)
	if luminances == nil {
		return nil, barcode.ErrNotFound
	}
	t := o.Threshold()
	for x, v := range luminances[:width] {
		if int(v) <= t {
			row.Set(x)
		}
	}
	return row, nil
}

// BlackMatrix returns the full binarized matrix.
func (o *Otsu) BlackMatrix() (*bitutil.BitMatrix, error) {
	if o.matrix != nil {
		return o.matrix, nil
	}
	width := o.source.Width()
	height := o.source.Height()
	luminances := o.source.Matrix()
	hist := Histogram(luminances)
	if populated(hist) < 2 {
		return nil, barcode.ErrNotFound
	}
	t := OtsuThreshold(hist)
	o.threshold, o.computed = t, true

	matrix := bitutil.NewBitMatrixWithSize(width, height)
	for y := 0; y < height; y++ {
		offset := y * width
		for x := 0; x < width; x++ {
			if int(luminances[offset+x]) <= t {
				matrix.Set(x, y)
			}
		}
	}
	o.matrix = matrix
	return matrix, nil
}

func populated(hist *[256]int) int {
	n := 0
	for _, c := range hist {
		if c > 0 {
			n++
		}
	}
	return n
}
