// Package bitutil holds the packed bit rows and matrices the binarizers
// produce and the PDF417 detector scans.
package bitutil

import (
	"math/bits"
	"strings"
)

// BitArray is a row of bits packed into uint32 words, least significant bit
// first.
type BitArray struct {
	bits []uint32
	size int
}

// NewBitArray creates a cleared BitArray of size bits.
func NewBitArray(size int) *BitArray {
	if size <= 0 {
		return &BitArray{}
	}
	return &BitArray{
		bits: make([]uint32, (size+31)/32),
		size: size,
	}
}

// Size returns the number of bits in the array.
func (ba *BitArray) Size() int {
	return ba.size
}

// Get returns true if bit i is set.
func (ba *BitArray) Get(i int) bool {
	return (ba.bits[i/32] & (1 << uint(i&0x1F))) != 0
}

// Set sets bit i.
func (ba *BitArray) Set(i int) {
	ba.bits[i/32] |= 1 << uint(i&0x1F)
}

// SetBulk sets the 32 bits starting at bit i, which must be a multiple of 32.
func (ba *BitArray) SetBulk(i int, newBits uint32) {
	ba.bits[i/32] = newBits
}

// Clear clears all bits.
func (ba *BitArray) Clear() {
	for i := range ba.bits {
		ba.bits[i] = 0
	}
}

// BitData returns the underlying words.
func (ba *BitArray) BitData() []uint32 {
	return ba.bits
}

// Reverse reverses the order of the bits.
func (ba *BitArray) Reverse() {
	if ba.size == 0 {
		return
	}
	newBits := make([]uint32, len(ba.bits))
	ln := (ba.size - 1) / 32
	oldBitsLen := ln + 1
	for i := 0; i < oldBitsLen; i++ {
		newBits[ln-i] = bits.Reverse32(ba.bits[i])
	}
	if ba.size != oldBitsLen*32 {
		leftOffset := uint(oldBitsLen*32 - ba.size)
		currentInt := newBits[0] >> leftOffset
		for i := 1; i < oldBitsLen; i++ {
			nextInt := newBits[i]
			currentInt |= nextInt << (32 - leftOffset)
			newBits[i-1] = currentInt
			currentInt = nextInt >> leftOffset
		}
		newBits[oldBitsLen-1] = currentInt
	}
	ba.bits = newBits
}

// String renders set bits as 'X' and unset bits as '.', in groups of eight.
func (ba *BitArray) String() string {
	var sb strings.Builder
	sb.Grow(ba.size + ba.size/8 + 1)
	for i := 0; i < ba.size; i++ {
		if i&0x07 == 0 {
			sb.WriteByte(' ')
		}
		if ba.Get(i) {
			sb.WriteByte('X')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
