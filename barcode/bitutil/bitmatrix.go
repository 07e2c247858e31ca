package bitutil

import "strings"

// BitMatrix is a 2D matrix of bits with x as the column and y as the row.
// The origin is at the top-left.
type BitMatrix struct {
	width   int
	height  int
	rowSize int
	data    []uint32
}

// NewBitMatrixWithSize creates a cleared BitMatrix.
func NewBitMatrixWithSize(width, height int) *BitMatrix {
	if width < 1 || height < 1 {
		panic("bitmatrix: dimensions must be greater than 0")
	}
	rowSize := (width + 31) / 32
	return &BitMatrix{
		width:   width,
		height:  height,
		rowSize: rowSize,
		data:    make([]uint32, rowSize*height),
	}
}

// Get returns true if the bit at (x, y) is set.
func (bm *BitMatrix) Get(x, y int) bool {
	offset := y*bm.rowSize + x/32
	return (bm.data[offset]>>uint(x&0x1f))&1 != 0
}

// Set sets the bit at (x, y).
func (bm *BitMatrix) Set(x, y int) {
	offset := y*bm.rowSize + x/32
	bm.data[offset] |= 1 << uint(x&0x1f)
}

// FlipAll inverts every bit in the matrix.
func (bm *BitMatrix) FlipAll() {
	for i := range bm.data {
		bm.data[i] = ^bm.data[i]
	}
}

// Row copies row y into row, allocating a new BitArray when row is nil or
// too small.
func (bm *BitMatrix) Row(y int, row *BitArray) *BitArray {
	if row == nil || row.Size() < bm.width {
		row = NewBitArray(bm.width)
	} else {
		row.Clear()
	}
	offset := y * bm.rowSize
	for x := 0; x < bm.rowSize; x++ {
		row.SetBulk(x*32, bm.data[offset+x])
	}
	return row
}

// SetRow replaces row y with the contents of row.
func (bm *BitMatrix) SetRow(y int, row *BitArray) {
	copy(bm.data[y*bm.rowSize:], row.BitData()[:bm.rowSize])
}

// Rotate rotates the matrix counterclockwise by 0, 90, 180 or 270 degrees.
func (bm *BitMatrix) Rotate(degrees int) {
	switch degrees % 360 {
	case 0:
		return
	case 90:
		bm.Rotate90()
	case 180:
		bm.Rotate180()
	case 270:
		bm.Rotate90()
		bm.Rotate180()
	default:
		panic("bitmatrix: degrees must be a multiple of 90")
	}
}

// Rotate180 rotates the matrix 180 degrees in place.
func (bm *BitMatrix) Rotate180() {
	topRow := NewBitArray(bm.width)
	bottomRow := NewBitArray(bm.width)
	maxHeight := (bm.height + 1) / 2
	for i := 0; i < maxHeight; i++ {
		topRow = bm.Row(i, topRow)
		bottomRowIndex := bm.height - 1 - i
		bottomRow = bm.Row(bottomRowIndex, bottomRow)
		topRow.Reverse()
		bottomRow.Reverse()
		bm.SetRow(i, bottomRow)
		bm.SetRow(bottomRowIndex, topRow)
	}
}

// Rotate90 rotates the matrix 90 degrees counterclockwise, swapping width
// and height.
func (bm *BitMatrix) Rotate90() {
	newWidth := bm.height
	newHeight := bm.width
	newRowSize := (newWidth + 31) / 32
	newData := make([]uint32, newRowSize*newHeight)

	for y := 0; y < bm.height; y++ {
		for x := 0; x < bm.width; x++ {
			offset := y*bm.rowSize + x/32
			if (bm.data[offset]>>uint(x&0x1f))&1 != 0 {
				newOffset := (newHeight-1-x)*newRowSize + y/32
				newData[newOffset] |= 1 << uint(y&0x1f)
			}
		}
	}
	bm.width = newWidth
	bm.height = newHeight
	bm.rowSize = newRowSize
	bm.data = newData
}

// Width returns the width.
func (bm *BitMatrix) Width() int { return bm.width }

// Height returns the height.
func (bm *BitMatrix) Height() int { return bm.height }

// Clone returns a deep copy of the BitMatrix.
func (bm *BitMatrix) Clone() *BitMatrix {
	d := make([]uint32, len(bm.data))
	copy(d, bm.data)
	return &BitMatrix{width: bm.width, height: bm.height, rowSize: bm.rowSize, data: d}
}

// String renders the matrix one text line per row, "X " for set bits.
func (bm *BitMatrix) String() string {
	var sb strings.Builder
	sb.Grow(bm.height * (2*bm.width + 1))
	for y := 0; y < bm.height; y++ {
		for x := 0; x < bm.width; x++ {
			if bm.Get(x, y) {
				sb.WriteString("X ")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
