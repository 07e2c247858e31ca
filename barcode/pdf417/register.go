package pdf417

import "github.com/ericlevine/cedula/barcode"

func init() {
	barcode.RegisterReader(barcode.FormatPDF417, func(opts *barcode.DecodeOptions) barcode.Reader {
		return NewPDF417Reader()
	})
}
