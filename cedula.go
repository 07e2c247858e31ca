// Package cedula reads the identity record encoded in the PDF417 barcode on
// the back of a Costa Rican national identity card (cédula de identidad).
//
// The decoded payload is a fixed-width layout addressed by character
// position. Parse splits it into a Record; the normalize, scan and imageio
// packages turn a photograph of the card into that payload.
package cedula

import (
	"errors"
	"fmt"
	"strings"
)

// PayloadLength is the minimum number of characters a payload must carry to
// hold every field. Characters past it are ignored.
const PayloadLength = 104

// Sex values produced by Parse.
const (
	SexMale   = "Masculino"
	SexFemale = "Femenino"
)

// Presentation labels, in report order.
const (
	LabelIDNumber       = "Cédula"
	LabelFirstName      = "Nombre"
	LabelFirstSurname   = "Primer Apellido"
	LabelSecondSurname  = "Segundo Apellido"
	LabelSex            = "Sexo"
	LabelBirthDate      = "Fecha de Nacimiento"
	LabelExpirationDate = "Fecha de Vencimiento"
)

// Labels lists the presentation labels in the order fields are reported.
var Labels = []string{
	LabelIDNumber,
	LabelFirstName,
	LabelFirstSurname,
	LabelSecondSurname,
	LabelSex,
	LabelBirthDate,
	LabelExpirationDate,
}

// ErrShortPayload is wrapped by every ParseError caused by a payload shorter
// than PayloadLength characters.
var ErrShortPayload = errors.New("cedula: payload too short")

// ParseError reports a payload that does not match the cédula layout. Raw
// keeps the text exactly as decoded.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return "cedula: " + e.Reason
}

// Unwrap returns ErrShortPayload so callers can test with errors.Is.
func (e *ParseError) Unwrap() error {
	return ErrShortPayload
}

// Record is the identity data of one card. Values are returned by Parse and
// never modified afterwards.
type Record struct {
	IDNumber       string `json:"cedula" yaml:"cedula"`
	FirstName      string `json:"nombre" yaml:"nombre"`
	FirstSurname   string `json:"primer_apellido" yaml:"primer_apellido"`
	SecondSurname  string `json:"segundo_apellido" yaml:"segundo_apellido"`
	Sex            string `json:"sexo" yaml:"sexo"`
	BirthDate      string `json:"fecha_nacimiento" yaml:"fecha_nacimiento"`
	ExpirationDate string `json:"fecha_vencimiento" yaml:"fecha_vencimiento"`
}

// Field is one labeled value of a Record.
type Field struct {
	Label string
	Value string
}

// Fields returns the record's values paired with their labels, in the order
// of Labels.
func (r Record) Fields() []Field {
	return []Field{
		{LabelIDNumber, r.IDNumber},
		{LabelFirstName, r.FirstName},
		{LabelFirstSurname, r.FirstSurname},
		{LabelSecondSurname, r.SecondSurname},
		{LabelSex, r.Sex},
		{LabelBirthDate, r.BirthDate},
		{LabelExpirationDate, r.ExpirationDate},
	}
}

// Character ranges of the layout, half-open.
var (
	idNumberSpan       = span{0, 9}
	firstNameSpan      = span{9, 35}
	firstSurnameSpan   = span{35, 61}
	secondSurnameSpan  = span{61, 87}
	sexIndex           = 87
	birthDateSpan      = span{88, 96}
	expirationDateSpan = span{96, 104}
)

type span struct{ start, end int }

func (s span) of(chars []rune) string {
	return string(chars[s.start:s.end])
}

// Parse splits a decoded payload into a Record. Offsets count Unicode code
// points, so accented names occupy one position per letter. Field contents
// are not validated: odd dates or sex flags parse as-is.
func Parse(text string) (Record, error) {
	chars := []rune(text)
	if len(chars) < PayloadLength {
		return Record{}, &ParseError{
			Reason: fmt.Sprintf("payload has %d characters, want at least %d", len(chars), PayloadLength),
			Raw:    text,
		}
	}

	sex := SexFemale
	if chars[sexIndex] == '1' {
		sex = SexMale
	}
	return Record{
		IDNumber:       idNumberSpan.of(chars),
		FirstName:      strings.TrimSpace(firstNameSpan.of(chars)),
		FirstSurname:   strings.TrimSpace(firstSurnameSpan.of(chars)),
		SecondSurname:  strings.TrimSpace(secondSurnameSpan.of(chars)),
		Sex:            sex,
		BirthDate:      formatDate(birthDateSpan.of(chars)),
		ExpirationDate: formatDate(expirationDateSpan.of(chars)),
	}, nil
}

// formatDate rearranges an 8-character YYYYMMDD run as DD/MM/YYYY.
func formatDate(yyyymmdd string) string {
	d := []rune(yyyymmdd)
	return string(d[6:8]) + "/" + string(d[4:6]) + "/" + string(d[0:4])
}
