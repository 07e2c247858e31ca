package imageio

import (
	"fmt"
	"image"
	"image/color"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/pdf417"

	"github.com/ericlevine/cedula/barcode/pdf417/decoder"
)

// RenderOptions controls RenderPDF417. Zero fields take the defaults noted
// on each field.
type RenderOptions struct {
	// ModuleWidth is the width of the narrowest bar in pixels. Default 3.
	ModuleWidth int

	// RowHeight is the height of each symbol row in pixels. Default 4x
	// ModuleWidth.
	RowHeight int

	// QuietZone is the white margin on every side in pixels. Default 10x
	// ModuleWidth.
	QuietZone int

	// SecurityLevel is the PDF417 error correction level, 0 to 8.
	// Default 2.
	SecurityLevel *byte
}

// RenderPDF417 draws payload as a PDF417 symbol on a white background. It
// produces test cards that exercise the whole reading pipeline.
func RenderPDF417(payload string, opts RenderOptions) (*image.Gray, error) {
	if opts.ModuleWidth <= 0 {
		opts.ModuleWidth = 3
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = 4 * opts.ModuleWidth
	}
	if opts.QuietZone <= 0 {
		opts.QuietZone = 10 * opts.ModuleWidth
	}
	level := byte(2)
	if opts.SecurityLevel != nil {
		level = *opts.SecurityLevel
	}

	code, err := pdf417.Encode(payload, level)
	if err != nil {
		return nil, fmt.Errorf("encode pdf417: %w", err)
	}
	grid := modules(code)
	if err := fixLeftRowIndicators(grid); err != nil {
		return nil, err
	}
	return rasterize(grid, opts), nil
}

// modules reads the symbol into one row of booleans per symbol row. The
// encoder lays every row out two pixels tall.
func modules(code barcode.Barcode) [][]bool {
	const encoderRowHeight = 2
	b := code.Bounds()
	rows := make([][]bool, b.Dy()/encoderRowHeight)
	for r := range rows {
		rows[r] = make([]bool, b.Dx())
		for c := range rows[r] {
			rows[r][c] = isDark(code.At(b.Min.X+c, b.Min.Y+r*encoderRowHeight))
		}
	}
	return rows
}

// fixLeftRowIndicators rewrites the left row indicator of every cluster 0
// row. The encoder stores (rows-3)/3 there instead of (rows-1)/3, which
// readers reject unless the row count is a multiple of three.
func fixLeftRowIndicators(grid [][]bool) error {
	n := len(grid)
	for r := 0; r < n; r += 3 {
		pattern := decoder.ClusterPattern(r, 30*(r/3)+(n-1)/3)
		if pattern < 0 || len(grid[r]) < 2*decoder.ModulesInCodeword {
			return fmt.Errorf("encode pdf417: unexpected symbol layout")
		}
		// The indicator follows the 17-module start pattern.
		cells := grid[r][decoder.ModulesInCodeword : 2*decoder.ModulesInCodeword]
		for i := range cells {
			cells[i] = pattern&(1<<(decoder.ModulesInCodeword-1-i)) != 0
		}
	}
	return nil
}

// rasterize scales the module grid to the requested module and row size.
func rasterize(grid [][]bool, opts RenderOptions) *image.Gray {
	rows := len(grid)
	cols := 0
	if rows > 0 {
		cols = len(grid[0])
	}

	w := cols*opts.ModuleWidth + 2*opts.QuietZone
	h := rows*opts.RowHeight + 2*opts.QuietZone
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}

	for r, line := range grid {
		for c, dark := range line {
			if !dark {
				continue
			}
			x0 := opts.QuietZone + c*opts.ModuleWidth
			y0 := opts.QuietZone + r*opts.RowHeight
			for y := y0; y < y0+opts.RowHeight; y++ {
				row := img.Pix[y*img.Stride:]
				for x := x0; x < x0+opts.ModuleWidth; x++ {
					row[x] = 0
				}
			}
		}
	}
	return img
}

func isDark(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r+g+b < 3*0x8000
}
