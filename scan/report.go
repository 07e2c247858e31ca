package scan

import (
	"errors"
	"fmt"

	"github.com/ericlevine/cedula"
)

// Status is the outcome of scanning one image.
type Status string

const (
	// StatusOK means at least one barcode was decoded. Individual
	// detections may still carry a parse failure.
	StatusOK Status = "ok"

	// StatusUnreadable means the image could not be loaded.
	StatusUnreadable Status = "unreadable"

	// StatusNoBarcode means the decoder found nothing.
	StatusNoBarcode Status = "no_barcode"

	// StatusFailed means an unexpected error stopped the scan.
	StatusFailed Status = "failed"
)

// User-facing messages.
const (
	MessageNoBarcode    = "Could not find any barcode. Please ensure the image contains a clear barcode."
	MessageParseWarning = "Warning: Could not parse the barcode data as a Costa Rican ID. The format may be different than expected."
	MessageUnreadable   = "Could not read the image. Please check the file path."
)

// ErrEmptyImage is reported for images with no pixels.
var ErrEmptyImage = errors.New("scan: empty image")

// Detection is one decoded barcode and the outcome of parsing its text.
// Exactly one of Record and Err is set.
type Detection struct {
	Payload
	Record *cedula.Record
	Err    *cedula.ParseError
}

// Parsed reports whether the payload produced a record.
func (d Detection) Parsed() bool { return d.Record != nil }

// Report is everything learned from one image.
type Report struct {
	// Path is the source file, empty for in-memory images.
	Path       string
	Status     Status
	Message    string
	Err        error
	Detections []Detection
}

// Complete reports whether the scan found barcodes and every one of them
// parsed as a record.
func (r Report) Complete() bool {
	if r.Status != StatusOK || len(r.Detections) == 0 {
		return false
	}
	for _, d := range r.Detections {
		if !d.Parsed() {
			return false
		}
	}
	return true
}

func failedReport(err error) Report {
	return Report{
		Status:  StatusFailed,
		Message: fmt.Sprintf("An error occurred: %v", err),
		Err:     err,
	}
}

func unreadableReport(path string, err error) Report {
	return Report{
		Path:    path,
		Status:  StatusUnreadable,
		Message: fmt.Sprintf("An error occurred: %s (%v)", MessageUnreadable, err),
		Err:     err,
	}
}

func noBarcodeReport() Report {
	return Report{
		Status:  StatusNoBarcode,
		Message: MessageNoBarcode,
	}
}

func detect(p Payload) Detection {
	d := Detection{Payload: p}
	rec, err := cedula.Parse(p.Text)
	if err != nil {
		var perr *cedula.ParseError
		if !errors.As(err, &perr) {
			perr = &cedula.ParseError{Reason: err.Error(), Raw: p.Text}
		}
		d.Err = perr
		return d
	}
	d.Record = &rec
	return d
}
