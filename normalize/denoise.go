package normalize

import (
	"image"
	"math"
)

const (
	// largest mean squared difference between two 8-bit patches
	maxAvgDist = 255 * 255

	// weights below this contribute nothing
	weightThreshold = 0.001
)

// Denoise applies non-local means filtering to gray. Every output pixel is
// the weighted mean of the pixels in its search window, each weighted by
// exp(-d/h²) where d is the mean squared difference between the patches
// centered on the two pixels. Borders are mirrored without repeating the
// edge pixel. The result starts at (0, 0).
func Denoise(gray *image.Gray, opts *Options) *image.Gray {
	o := opts.withDefaults()
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	tr := o.PatchSize / 2
	sr := o.SearchSize / 2
	border := tr + sr
	padded, pw := reflectPad(gray, border)

	weights := weightTable(o.Strength, o.PatchSize)
	area := o.PatchSize * o.PatchSize

	// The patch-distance integral covers every pixel plus a tr margin.
	rw, rh := w+2*tr, h+2*tr
	integral := make([]int64, (rw+1)*(rh+1))
	sumW := make([]float64, w*h)
	sumV := make([]float64, w*h)

	for dy := -sr; dy <= sr; dy++ {
		for dx := -sr; dx <= sr; dx++ {
			// integral[(v+1)*(rw+1)+(u+1)] sums the squared differences
			// over region coordinates [0,u] x [0,v].
			for v := 0; v < rh; v++ {
				row := padded[(v+sr)*pw+sr:]
				moved := padded[(v+sr+dy)*pw+sr+dx:]
				var acc int64
				above := integral[v*(rw+1)+1:]
				cur := integral[(v+1)*(rw+1)+1:]
				for u := 0; u < rw; u++ {
					d := int64(row[u]) - int64(moved[u])
					acc += d * d
					cur[u] = above[u] + acc
				}
			}
			for y := 0; y < h; y++ {
				top := integral[y*(rw+1):]
				bottom := integral[(y+o.PatchSize)*(rw+1):]
				src := padded[(y+border+dy)*pw+border+dx:]
				base := y * w
				for x := 0; x < w; x++ {
					ssd := bottom[x+o.PatchSize] - bottom[x] - top[x+o.PatchSize] + top[x]
					wt := weights[ssd/int64(area)]
					if wt == 0 {
						continue
					}
					sumW[base+x] += wt
					sumV[base+x] += wt * float64(src[x])
				}
			}
		}
	}

	for i := range out.Pix {
		v := math.Round(sumV[i] / sumW[i])
		switch {
		case v < 0:
			v = 0
		case v > 255:
			v = 255
		}
		out.Pix[i] = uint8(v)
	}
	return out
}

// weightTable maps a mean squared patch difference to its weight.
func weightTable(strength float64, patchSize int) []float64 {
	table := make([]float64, maxAvgDist+1)
	table[0] = 1
	if strength == 0 {
		return table
	}
	h2 := strength * strength
	for d := 1; d <= maxAvgDist; d++ {
		wt := math.Exp(-float64(d) / h2)
		if wt < weightThreshold {
			break
		}
		table[d] = wt
	}
	return table
}

// reflectPad copies gray into a buffer with a border of n pixels on every
// side, filled by mirroring around the edge pixels (dcb|abcd|cba). It
// returns the buffer and its stride.
func reflectPad(gray *image.Gray, n int) ([]uint8, int) {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	pw, ph := w+2*n, h+2*n
	buf := make([]uint8, pw*ph)
	for py := 0; py < ph; py++ {
		sy := reflect101(py-n, h)
		src := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+sy):]
		dst := buf[py*pw:]
		for px := 0; px < pw; px++ {
			dst[px] = src[reflect101(px-n, w)]
		}
	}
	return buf, pw
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	if i < 0 {
		i = -i
	}
	i %= period
	if i >= n {
		i = period - i
	}
	return i
}
