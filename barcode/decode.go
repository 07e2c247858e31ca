package barcode

// DecodeOptions configures barcode decoding behavior.
type DecodeOptions struct {
	// TryHarder enables spending more time looking for barcodes.
	TryHarder bool

	// PossibleFormats limits which formats to look for.
	PossibleFormats []Format

	// CharacterSet names the encoding of byte-compacted data when the symbol
	// carries no ECI. Empty means ISO-8859-1.
	CharacterSet string

	// AlsoInverted retries on the inverted image when nothing is found.
	AlsoInverted bool
}

// Reader decodes barcodes from a BinaryBitmap.
type Reader interface {
	// Decode attempts to decode a barcode from the image.
	Decode(image *BinaryBitmap, opts *DecodeOptions) (*Result, error)
}

// MultipleBarcodeReader can decode multiple barcodes from a single image.
type MultipleBarcodeReader interface {
	// DecodeMultiple attempts to decode all barcodes in the image.
	DecodeMultiple(image *BinaryBitmap, opts *DecodeOptions) ([]*Result, error)
}

// DecodeMultiple decodes every barcode the registered readers can find.
func DecodeMultiple(image *BinaryBitmap, opts *DecodeOptions) ([]*Result, error) {
	return NewMultiFormatReader().DecodeMultiple(image, opts)
}
