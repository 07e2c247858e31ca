package barcode

import "sort"

// MultiFormatReader dispatches to the readers registered for the requested
// formats and tries them in sequence.
type MultiFormatReader struct {
	readers []Reader
}

// NewMultiFormatReader creates a new multi-format reader. If the options
// passed to DecodeMultiple specify PossibleFormats, only those formats are
// tried. Otherwise all registered formats are tried.
func NewMultiFormatReader() *MultiFormatReader {
	return &MultiFormatReader{}
}

// DecodeMultiple returns every barcode found by the readers that support
// multiple detection. Readers without that capability contribute at most one
// result. ErrNotFound is returned when nothing decodes.
func (r *MultiFormatReader) DecodeMultiple(image *BinaryBitmap, opts *DecodeOptions) ([]*Result, error) {
	if r.readers == nil {
		r.readers = buildReaders(opts)
	}
	results := r.collect(image, opts)
	if len(results) == 0 && opts != nil && opts.AlsoInverted && r.invert(image) {
		results = r.collect(image, opts)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results, nil
}

func (r *MultiFormatReader) collect(image *BinaryBitmap, opts *DecodeOptions) []*Result {
	var results []*Result
	for _, reader := range r.readers {
		if multi, ok := reader.(MultipleBarcodeReader); ok {
			found, err := multi.DecodeMultiple(image, opts)
			if err == nil {
				results = append(results, found...)
			}
			continue
		}
		result, err := reader.Decode(image, opts)
		if err == nil {
			results = append(results, result)
		}
	}
	return results
}

// invert flips the cached black matrix in place.
func (r *MultiFormatReader) invert(image *BinaryBitmap) bool {
	matrix, err := image.BlackMatrix()
	if err != nil {
		return false
	}
	matrix.FlipAll()
	return true
}

// readerFactory creates a Reader. Format packages register one from init.
type readerFactory func(opts *DecodeOptions) Reader

var readerFactories = map[Format]readerFactory{}

// RegisterReader registers a reader factory for the given format. This should
// be called from an init() function in format-specific packages.
func RegisterReader(format Format, factory readerFactory) {
	readerFactories[format] = factory
}

// RegisteredFormats lists the formats that have a registered reader, in
// ascending order.
func RegisteredFormats() []Format {
	formats := make([]Format, 0, len(readerFactories))
	for f := range readerFactories {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// buildReaders creates readers based on the options.
func buildReaders(opts *DecodeOptions) []Reader {
	var readers []Reader

	if opts != nil && len(opts.PossibleFormats) > 0 {
		for _, f := range opts.PossibleFormats {
			if factory, ok := readerFactories[f]; ok {
				readers = append(readers, factory(opts))
			}
		}
	}

	if len(readers) == 0 {
		for _, f := range RegisteredFormats() {
			readers = append(readers, readerFactories[f](opts))
		}
	}

	return readers
}
