package bitutil

import "testing"

func TestBitArrayGetSet(t *testing.T) {
	ba := NewBitArray(33)
	for i := 0; i < 33; i++ {
		if ba.Get(i) {
			t.Errorf("bit %d should not be set", i)
		}
	}
	ba.Set(0)
	ba.Set(31)
	ba.Set(32)
	if !ba.Get(0) || !ba.Get(31) || !ba.Get(32) {
		t.Error("bits should be set")
	}
	if ba.Get(1) || ba.Get(30) {
		t.Error("bits should not be set")
	}
	ba.Clear()
	if ba.Get(0) || ba.Get(32) {
		t.Error("Clear left bits set")
	}
}

func TestBitArrayReverse(t *testing.T) {
	tests := []struct {
		size int
		set  []int
		want []int
	}{
		{8, []int{0, 2}, []int{7, 5}},
		{32, []int{0}, []int{31}},
		{40, []int{1, 33}, []int{38, 6}},
	}
	for _, tt := range tests {
		ba := NewBitArray(tt.size)
		for _, i := range tt.set {
			ba.Set(i)
		}
		ba.Reverse()
		for _, i := range tt.want {
			if !ba.Get(i) {
				t.Errorf("size %d: bit %d not set after reverse: %s", tt.size, i, ba)
			}
		}
		for _, i := range tt.set {
			if !contains(tt.want, i) && ba.Get(i) {
				t.Errorf("size %d: bit %d still set after reverse", tt.size, i)
			}
		}
	}
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func TestBitArrayString(t *testing.T) {
	ba := NewBitArray(10)
	ba.Set(0)
	ba.Set(9)
	if got, want := ba.String(), " X....... .X"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
