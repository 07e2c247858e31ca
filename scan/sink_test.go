package scan

import (
	"bytes"
	"encoding/json"
	"image"
	"strings"
	"testing"

	yaml "gopkg.in/yaml.v3"

	"github.com/ericlevine/cedula"
)

func sampleReport(t *testing.T) Report {
	t.Helper()
	rec, err := cedula.Parse(validPayload)
	if err != nil {
		t.Fatal(err)
	}
	return Report{
		Path:   "card.jpg",
		Status: StatusOK,
		Detections: []Detection{
			{
				Payload: Payload{
					Format:               "PDF_417",
					Position:             []image.Point{{10, 20}, {90, 20}, {90, 60}, {10, 60}},
					Text:                 validPayload,
					ErrorCorrectionLevel: "2",
					ErrorsCorrected:      3,
				},
				Record:  &rec,
			},
			{
				Payload: Payload{Format: "PDF_417", Text: "ABC"},
				Err:     &cedula.ParseError{Reason: "too short", Raw: "ABC"},
			},
		},
	}
}

func TestTextSink(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextSink{W: &buf, ShowPath: true}).Emit(sampleReport(t)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"== card.jpg ==",
		"Found barcode:",
		"Format: PDF_417",
		"Position: (10,20) (90,20) (90,60) (10,60)",
		"Cédula Information:",
		"Cédula: 109870654",
		"Nombre: JUAN",
		"Primer Apellido: PEREZ",
		"Segundo Apellido: MORA",
		"Sexo: Masculino",
		"Fecha de Nacimiento: 15/01/1990",
		"Fecha de Vencimiento: 01/01/2030",
		"Raw barcode text:\nABC\n",
		MessageParseWarning,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTextSinkMessages(t *testing.T) {
	tests := []struct {
		rep  Report
		want string
	}{
		{noBarcodeReport(), MessageNoBarcode + "\n"},
		{failedReport(ErrEmptyImage), "An error occurred: scan: empty image\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := (&TextSink{W: &buf}).Emit(tt.rep); err != nil {
			t.Fatal(err)
		}
		if buf.String() != tt.want {
			t.Errorf("Emit(%q) = %q, want %q", tt.rep.Status, buf.String(), tt.want)
		}
	}
}

func TestJSONSink(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONSink(&buf).Emit(sampleReport(t)); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Path       string
		Status     string
		Detections []struct {
			Format   string
			Position []struct{ X, Y int }
			Text     string
			Record   map[string]string
			Warning  string

			ErrorCorrectionLevel string
			ErrorsCorrected      int
		}
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if got.Path != "card.jpg" || got.Status != "ok" || len(got.Detections) != 2 {
		t.Fatalf("got %+v", got)
	}
	first := got.Detections[0]
	if first.Record["cedula"] != "109870654" || first.Record["sexo"] != "Masculino" {
		t.Errorf("record = %v", first.Record)
	}
	if first.ErrorCorrectionLevel != "2" || first.ErrorsCorrected != 3 {
		t.Errorf("error correction = %q/%d", first.ErrorCorrectionLevel, first.ErrorsCorrected)
	}
	if len(first.Position) != 4 || first.Position[2].X != 90 || first.Position[2].Y != 60 {
		t.Errorf("position = %v", first.Position)
	}
	if got.Detections[1].Record != nil || got.Detections[1].Warning != MessageParseWarning {
		t.Errorf("second detection = %+v", got.Detections[1])
	}
}

func TestYAMLSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewYAMLSink(&buf)
	if err := sink.Emit(sampleReport(t)); err != nil {
		t.Fatal(err)
	}
	if err := sink.Emit(noBarcodeReport()); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	dec := yaml.NewDecoder(&buf)
	var first, second map[string]interface{}
	if err := dec.Decode(&first); err != nil {
		t.Fatalf("first document: %v", err)
	}
	if err := dec.Decode(&second); err != nil {
		t.Fatalf("second document: %v", err)
	}
	if first["status"] != "ok" || second["status"] != "no_barcode" {
		t.Errorf("statuses = %v, %v", first["status"], second["status"])
	}
	if second["message"] != MessageNoBarcode {
		t.Errorf("message = %v", second["message"])
	}
}

func TestNewSink(t *testing.T) {
	for _, name := range []string{"", "text", "json", "yaml"} {
		if _, err := NewSink(name, &bytes.Buffer{}); err != nil {
			t.Errorf("NewSink(%q): %v", name, err)
		}
	}
	if _, err := NewSink("xml", &bytes.Buffer{}); err == nil {
		t.Error("NewSink(xml) succeeded")
	}
}
