package cedula_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ericlevine/cedula"
)

// payload lays fields out at their fixed offsets.
func payload(id, name, surname1, surname2, sex, birth, expiry string) string {
	pad := func(s string, n int) string {
		return s + strings.Repeat(" ", n-len([]rune(s)))
	}
	return pad(id, 9) + pad(name, 26) + pad(surname1, 26) + pad(surname2, 26) + sex + birth + expiry
}

func TestParseRecord(t *testing.T) {
	text := payload("112340567", "MARIA JOSE", "PEÑA", "ARAYA", "2", "19851231", "20291130")
	rec, err := cedula.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := cedula.Record{
		IDNumber:       "112340567",
		FirstName:      "MARIA JOSE",
		FirstSurname:   "PEÑA",
		SecondSurname:  "ARAYA",
		Sex:            cedula.SexFemale,
		BirthDate:      "31/12/1985",
		ExpirationDate: "30/11/2029",
	}
	if rec != want {
		t.Errorf("Parse() = %+v, want %+v", rec, want)
	}
}

func TestParseZerosAndSpaces(t *testing.T) {
	text := strings.Repeat("0", 9) + strings.Repeat(" ", 78) + "1" + "19900115" + "20300101"
	rec, err := cedula.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.IDNumber != "000000000" {
		t.Errorf("IDNumber = %q", rec.IDNumber)
	}
	if rec.FirstName != "" || rec.FirstSurname != "" || rec.SecondSurname != "" {
		t.Errorf("names not trimmed to empty: %+v", rec)
	}
	if rec.Sex != "Masculino" {
		t.Errorf("Sex = %q, want Masculino", rec.Sex)
	}
	if rec.BirthDate != "15/01/1990" {
		t.Errorf("BirthDate = %q, want 15/01/1990", rec.BirthDate)
	}
	if rec.ExpirationDate != "01/01/2030" {
		t.Errorf("ExpirationDate = %q, want 01/01/2030", rec.ExpirationDate)
	}
}

func TestParseSexFlag(t *testing.T) {
	tests := []struct {
		flag string
		want string
	}{
		{"1", "Masculino"},
		{"2", "Femenino"},
		{"0", "Femenino"},
		{"X", "Femenino"},
		{" ", "Femenino"},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			rec, err := cedula.Parse(payload("1", "A", "B", "C", tt.flag, "20000101", "20100101"))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if rec.Sex != tt.want {
				t.Errorf("Sex = %q, want %q", rec.Sex, tt.want)
			}
		})
	}
}

func TestParseShortPayload(t *testing.T) {
	full := payload("123456789", "ANA", "MORA", "SOLIS", "2", "19700101", "20250101")
	for _, n := range []int{0, 1, 9, 87, 88, 96, 103} {
		text := string([]rune(full)[:n])
		rec, err := cedula.Parse(text)
		if err == nil {
			t.Fatalf("Parse(len %d) succeeded with %+v", n, rec)
		}
		if rec != (cedula.Record{}) {
			t.Errorf("Parse(len %d) returned partial record %+v", n, rec)
		}
		if !errors.Is(err, cedula.ErrShortPayload) {
			t.Errorf("Parse(len %d) error %v does not wrap ErrShortPayload", n, err)
		}
		var perr *cedula.ParseError
		if !errors.As(err, &perr) || perr.Raw != text {
			t.Errorf("Parse(len %d) error %v does not carry raw text", n, err)
		}
	}
}

func TestParseLengthBoundary(t *testing.T) {
	full := payload("123456789", "ANA", "MORA", "SOLIS", "2", "19700101", "20250101")
	if n := len([]rune(full)); n != cedula.PayloadLength {
		t.Fatalf("fixture has %d characters", n)
	}
	for _, text := range []string{full, full + "TRAILING DATA", full + "\x00\x00"} {
		rec, err := cedula.Parse(text)
		if err != nil {
			t.Fatalf("Parse(len %d): %v", len([]rune(text)), err)
		}
		for _, f := range rec.Fields() {
			if f.Value == "" {
				t.Errorf("field %s empty", f.Label)
			}
		}
		if rec.ExpirationDate != "01/01/2025" {
			t.Errorf("ExpirationDate = %q, trailing data leaked in", rec.ExpirationDate)
		}
	}
}

func TestParseCountsCodePoints(t *testing.T) {
	// Ñ and É are two bytes each in UTF-8 but one position in the layout.
	text := payload("ÑÑÑÑÑÑÑÑÑ", "JOSÉ", "NÚÑEZ", "CHÁVES", "1", "19991231", "20310615")
	if len(text) <= cedula.PayloadLength+10 {
		t.Fatalf("fixture should be longer in bytes than in characters")
	}
	rec, err := cedula.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.IDNumber != "ÑÑÑÑÑÑÑÑÑ" || rec.FirstName != "JOSÉ" || rec.FirstSurname != "NÚÑEZ" || rec.SecondSurname != "CHÁVES" {
		t.Errorf("names misaligned: %+v", rec)
	}
	if rec.Sex != cedula.SexMale || rec.BirthDate != "31/12/1999" || rec.ExpirationDate != "15/06/2031" {
		t.Errorf("trailing fields misaligned: %+v", rec)
	}
}

func TestParseNoSemanticValidation(t *testing.T) {
	rec, err := cedula.Parse(payload("ABCDEFGHI", "", "", "", "9", "99999999", "ABCDEFGH"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.BirthDate != "99/99/9999" || rec.ExpirationDate != "GH/EF/ABCD" {
		t.Errorf("dates = %q, %q", rec.BirthDate, rec.ExpirationDate)
	}
}

func TestParseDeterministic(t *testing.T) {
	inputs := []string{
		"",
		"short",
		payload("123456789", "ANA", "MORA", "SOLIS", "2", "19700101", "20250101"),
	}
	for _, in := range inputs {
		r1, err1 := cedula.Parse(in)
		r2, err2 := cedula.Parse(in)
		if r1 != r2 {
			t.Errorf("Parse(%q) records differ: %+v vs %+v", in, r1, r2)
		}
		if (err1 == nil) != (err2 == nil) || (err1 != nil && err1.Error() != err2.Error()) {
			t.Errorf("Parse(%q) errors differ: %v vs %v", in, err1, err2)
		}
	}
}

func TestFieldsOrderMatchesLabels(t *testing.T) {
	fields := cedula.Record{}.Fields()
	if len(fields) != len(cedula.Labels) {
		t.Fatalf("got %d fields, want %d", len(fields), len(cedula.Labels))
	}
	for i, f := range fields {
		if f.Label != cedula.Labels[i] {
			t.Errorf("field %d label = %q, want %q", i, f.Label, cedula.Labels[i])
		}
	}
}

func BenchmarkParse(b *testing.B) {
	text := payload("123456789", "ANA", "MORA", "SOLIS", "2", "19700101", "20250101")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := cedula.Parse(text); err != nil {
			b.Fatal(err)
		}
	}
}
