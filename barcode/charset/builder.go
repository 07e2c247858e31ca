package charset

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// DefaultEncoding is applied to byte data until an ECI says otherwise.
var DefaultEncoding encoding.Encoding = charmap.ISO8859_1

// Builder accumulates decoded barcode bytes and converts them to UTF-8,
// switching encodings whenever an ECI designator is appended.
type Builder struct {
	current encoding.Encoding
	pending []byte
	out     strings.Builder
}

// NewBuilder returns a Builder that starts in enc, or DefaultEncoding when
// enc is nil.
func NewBuilder(enc encoding.Encoding) *Builder {
	if enc == nil {
		enc = DefaultEncoding
	}
	return &Builder{current: enc}
}

// WriteByte appends one byte in the current encoding.
func (b *Builder) WriteByte(c byte) error {
	b.pending = append(b.pending, c)
	return nil
}

// WriteString appends ASCII text.
func (b *Builder) WriteString(s string) {
	b.pending = append(b.pending, s...)
}

// AppendECI switches the encoding used for subsequent bytes.
func (b *Builder) AppendECI(value int) error {
	eci, err := GetECIByValue(value)
	if err != nil {
		return err
	}
	if eci == nil {
		return ErrFormatECI
	}
	b.flush()
	b.current = eci.Encoding
	return nil
}

// Len reports the number of bytes appended so far, decoded or not.
func (b *Builder) Len() int {
	return b.out.Len() + len(b.pending)
}

// String returns everything appended so far as UTF-8.
func (b *Builder) String() string {
	b.flush()
	return b.out.String()
}

func (b *Builder) flush() {
	if len(b.pending) == 0 {
		return
	}
	b.out.WriteString(DecodeBytes(b.pending, b.current))
	b.pending = b.pending[:0]
}

// DecodeBytes converts data from enc to UTF-8. Bytes that cannot be decoded
// are passed through unchanged.
func DecodeBytes(data []byte, enc encoding.Encoding) string {
	if enc == nil {
		enc = DefaultEncoding
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}
