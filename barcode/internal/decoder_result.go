// Package internal holds result types shared by the format decoders.
package internal

// DecoderResult is what a format decoder recovers from a grid of codewords.
type DecoderResult struct {
	RawBytes          []byte
	NumBits           int
	Text              string
	ECLevel           string
	ErrorsCorrected   int
	Erasures          int
	Other             interface{}
	SymbologyModifier int
}

// NewDecoderResult creates a DecoderResult with the basic fields.
func NewDecoderResult(rawBytes []byte, text string, ecLevel string) *DecoderResult {
	numBits := 0
	if rawBytes != nil {
		numBits = 8 * len(rawBytes)
	}
	return &DecoderResult{
		RawBytes: rawBytes,
		NumBits:  numBits,
		Text:     text,
		ECLevel:  ecLevel,
	}
}
