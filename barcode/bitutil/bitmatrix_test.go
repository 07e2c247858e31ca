package bitutil

import "testing"

func TestBitMatrixGetSet(t *testing.T) {
	bm := NewBitMatrixWithSize(40, 10)
	bm.Set(3, 5)
	bm.Set(35, 9)
	if !bm.Get(3, 5) || !bm.Get(35, 9) {
		t.Error("bits should be set")
	}
	if bm.Get(5, 3) {
		t.Error("bit (5,3) should not be set")
	}
}

func TestBitMatrixFlipAll(t *testing.T) {
	bm := NewBitMatrixWithSize(4, 2)
	bm.Set(1, 1)
	bm.FlipAll()
	if bm.Get(1, 1) || !bm.Get(0, 0) || !bm.Get(3, 1) {
		t.Errorf("unexpected matrix after FlipAll:\n%s", bm)
	}
}

func TestBitMatrixRow(t *testing.T) {
	bm := NewBitMatrixWithSize(8, 4)
	bm.Set(3, 2)
	bm.Set(5, 2)
	row := bm.Row(2, nil)
	if !row.Get(3) || !row.Get(5) {
		t.Error("row should have bits 3 and 5 set")
	}
	if row.Get(4) {
		t.Error("row bit 4 should not be set")
	}

	bm.SetRow(0, row)
	if !bm.Get(3, 0) || !bm.Get(5, 0) {
		t.Error("SetRow did not copy the row")
	}
}

func TestBitMatrixRotate180(t *testing.T) {
	bm := NewBitMatrixWithSize(4, 4)
	bm.Set(0, 0)
	bm.Rotate180()
	if !bm.Get(3, 3) {
		t.Error("(3,3) should be set after 180 rotation")
	}
	if bm.Get(0, 0) {
		t.Error("(0,0) should be unset after 180 rotation")
	}
}

func TestBitMatrixRotate90(t *testing.T) {
	bm := NewBitMatrixWithSize(4, 3)
	bm.Set(3, 0)
	bm.Rotate90()
	if bm.Width() != 3 || bm.Height() != 4 {
		t.Errorf("dimensions after 90 rotation: %dx%d, want 3x4", bm.Width(), bm.Height())
	}
	if !bm.Get(0, 0) {
		t.Error("(0,0) should be set after 90 rotation")
	}
}

func TestBitMatrixRotateFullTurn(t *testing.T) {
	bm := NewBitMatrixWithSize(5, 3)
	bm.Set(1, 0)
	bm.Set(4, 2)
	want := bm.String()
	for _, deg := range []int{90, 180, 270, 0} {
		bm.Rotate(deg)
	}
	// 90+180+270 = 540, a half turn; one more half turn restores it.
	bm.Rotate(180)
	if got := bm.String(); got != want {
		t.Errorf("rotations did not compose:\n%s\nwant\n%s", got, want)
	}
}

func TestBitMatrixClone(t *testing.T) {
	bm := NewBitMatrixWithSize(8, 8)
	bm.Set(1, 1)
	clone := bm.Clone()
	clone.Set(2, 2)
	if bm.Get(2, 2) {
		t.Error("modifying clone should not affect original")
	}
	if !clone.Get(1, 1) {
		t.Error("clone lost a bit")
	}
}
