package normalize

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
)

// noisyCard draws dark bars on a light background with pseudo-random noise.
func noisyCard(w, h int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			base := 215
			if (x/4)%3 == 0 && y > h/4 && y < 3*h/4 {
				base = 40
			}
			n := rng.Intn(31) - 15
			v := uint8(base + n)
			img.SetRGBA(x, y, color.RGBA{v, uint8(int(v) * 9 / 10), v, 255})
		}
	}
	return img
}

func toRGBA(g *image.Gray) *image.RGBA {
	b := g.Bounds()
	img := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := g.GrayAt(x, y).Y
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func smallOptions() *Options {
	return &Options{Strength: 3, PatchSize: 3, SearchSize: 7}
}

func TestNormalizeShapeAndValues(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"wide", 48, 20},
		{"tall", 9, 33},
		{"single pixel", 1, 1},
		{"single row", 25, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize(noisyCard(tt.w, tt.h, 1), smallOptions())
			if got := out.Bounds(); got != image.Rect(0, 0, tt.w, tt.h) {
				t.Fatalf("bounds = %v, want %dx%d", got, tt.w, tt.h)
			}
			for i, v := range out.Pix {
				if v != 0 && v != 255 {
					t.Fatalf("pixel %d = %d, want 0 or 255", i, v)
				}
			}
		})
	}
}

func TestNormalizeOffsetBounds(t *testing.T) {
	src := noisyCard(40, 30, 2)
	sub := src.SubImage(image.Rect(5, 7, 35, 27))
	out := Normalize(sub, smallOptions())
	if got := out.Bounds(); got != image.Rect(0, 0, 30, 20) {
		t.Fatalf("bounds = %v, want 30x20 at origin", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	once := Normalize(noisyCard(40, 24, 3), nil)
	twice := Normalize(toRGBA(once), nil)
	for i := range once.Pix {
		if once.Pix[i] != twice.Pix[i] {
			t.Fatalf("pixel %d changed from %d to %d", i, once.Pix[i], twice.Pix[i])
		}
	}
}

func TestNormalizeSeparatesBars(t *testing.T) {
	out := Normalize(noisyCard(60, 40, 4), nil)
	if v := out.GrayAt(1, 20).Y; v != 0 {
		t.Errorf("bar pixel = %d, want 0", v)
	}
	if v := out.GrayAt(5, 20).Y; v != 255 {
		t.Errorf("gap pixel = %d, want 255", v)
	}
	if v := out.GrayAt(1, 2).Y; v != 255 {
		t.Errorf("margin pixel = %d, want 255", v)
	}
}

func TestNormalizeUniform(t *testing.T) {
	for _, v := range []uint8{0, 128, 255} {
		img := image.NewUniform(color.RGBA{v, v, v, 255})
		bounded := image.NewRGBA(image.Rect(0, 0, 12, 12))
		for y := 0; y < 12; y++ {
			for x := 0; x < 12; x++ {
				bounded.Set(x, y, img.At(x, y))
			}
		}
		out := Normalize(bounded, smallOptions())
		want := uint8(255)
		if v == 0 {
			want = 0
		}
		for i, got := range out.Pix {
			if got != want {
				t.Fatalf("value %d: pixel %d = %d, want %d", v, i, got, want)
			}
		}
	}
}

func TestGrayscaleWeights(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(1, 0, color.RGBA{0, 255, 0, 255})
	img.SetRGBA(2, 0, color.RGBA{0, 0, 255, 255})
	g := Grayscale(img)
	want := []uint8{76, 150, 29}
	for i, w := range want {
		if g.Pix[i] != w {
			t.Errorf("pixel %d = %d, want %d", i, g.Pix[i], w)
		}
	}
}

func TestDenoiseReducesNoise(t *testing.T) {
	gray := Grayscale(noisyCard(40, 40, 5))
	out := Denoise(gray, &Options{Strength: 15, PatchSize: 3, SearchSize: 9})
	if variance(out, 20, 0, 40, 8) >= variance(gray, 20, 0, 40, 8) {
		t.Error("denoising did not reduce variance in a flat region")
	}
}

func TestDenoiseKeepsCleanEdges(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range gray.Pix {
		if i%16 < 8 {
			gray.Pix[i] = 255
		}
	}
	out := Denoise(gray, nil)
	for i := range gray.Pix {
		if out.Pix[i] != gray.Pix[i] {
			t.Fatalf("pixel %d = %d, want %d", i, out.Pix[i], gray.Pix[i])
		}
	}
}

func variance(g *image.Gray, x0, y0, x1, y1 int) float64 {
	var sum, sq float64
	n := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			v := float64(g.GrayAt(x, y).Y)
			sum += v
			sq += v * v
			n++
		}
	}
	mean := sum / float64(n)
	return sq/float64(n) - mean*mean
}

func TestThresholdUsesOtsu(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 1))
	copy(gray.Pix, []uint8{30, 31, 200, 201})
	out := Threshold(gray)
	want := []uint8{0, 0, 255, 255}
	for i, w := range want {
		if out.Pix[i] != w {
			t.Errorf("pixel %d = %d, want %d", i, out.Pix[i], w)
		}
	}
}

func TestReflect101(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{0, 5, 0},
		{4, 5, 4},
		{-1, 5, 1},
		{-2, 5, 2},
		{5, 5, 3},
		{6, 5, 2},
		{-9, 5, 1},
		{13, 5, 3},
		{-3, 1, 0},
		{2, 2, 0},
	}
	for _, tt := range tests {
		if got := reflect101(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect101(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		ok   bool
	}{
		{"defaults", DefaultOptions(), true},
		{"zero", Options{}, true},
		{"even patch", Options{PatchSize: 6}, false},
		{"even search", Options{SearchSize: 20}, false},
		{"negative strength", Options{Strength: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func BenchmarkNormalize(b *testing.B) {
	img := noisyCard(320, 120, 6)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Normalize(img, nil)
	}
}
