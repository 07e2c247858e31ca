package scan

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/ericlevine/cedula"
)

// Sink presents reports to a user or another program.
type Sink interface {
	Emit(Report) error
}

// NewSink returns the sink for an output format name: "text", "json" or
// "yaml".
func NewSink(format string, w io.Writer) (Sink, error) {
	switch format {
	case "", "text":
		return &TextSink{W: w}, nil
	case "json":
		return NewJSONSink(w), nil
	case "yaml":
		return NewYAMLSink(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// TextSink prints reports for people, one labeled line per field.
type TextSink struct {
	W io.Writer

	// ShowPath prefixes each report with its source path.
	ShowPath bool
}

// Emit writes r.
func (s *TextSink) Emit(r Report) error {
	var b strings.Builder
	if s.ShowPath && r.Path != "" {
		fmt.Fprintf(&b, "== %s ==\n", r.Path)
	}
	if r.Status != StatusOK {
		b.WriteString(r.Message)
		b.WriteByte('\n')
		_, err := io.WriteString(s.W, b.String())
		return err
	}
	for _, d := range r.Detections {
		b.WriteString("Found barcode:\n")
		fmt.Fprintf(&b, "Format: %s\n", d.Format)
		fmt.Fprintf(&b, "Position: %s\n", formatPosition(d.Position))
		if d.Record != nil {
			b.WriteString("\nCédula Information:\n")
			for _, f := range d.Record.Fields() {
				fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
			}
		} else {
			b.WriteString("\nRaw barcode text:\n")
			b.WriteString(d.Text)
			b.WriteString("\n\n")
			b.WriteString(MessageParseWarning)
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(s.W, b.String())
	return err
}

func formatPosition(pts []image.Point) string {
	if len(pts) == 0 {
		return "unknown"
	}
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

// JSONSink writes one indented JSON object per report.
type JSONSink struct {
	enc *json.Encoder
}

// NewJSONSink returns a JSONSink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return &JSONSink{enc: enc}
}

// Emit writes r.
func (s *JSONSink) Emit(r Report) error {
	return s.enc.Encode(newReportView(r))
}

// YAMLSink writes one YAML document per report. Close flushes the stream.
type YAMLSink struct {
	enc *yaml.Encoder
}

// NewYAMLSink returns a YAMLSink writing to w.
func NewYAMLSink(w io.Writer) *YAMLSink {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &YAMLSink{enc: enc}
}

// Emit writes r.
func (s *YAMLSink) Emit(r Report) error {
	return s.enc.Encode(newReportView(r))
}

// Close finishes the YAML stream.
func (s *YAMLSink) Close() error {
	return s.enc.Close()
}

type reportView struct {
	Path       string          `json:"path,omitempty" yaml:"path,omitempty"`
	Status     Status          `json:"status" yaml:"status"`
	Message    string          `json:"message,omitempty" yaml:"message,omitempty"`
	Detections []detectionView `json:"detections,omitempty" yaml:"detections,omitempty"`
}

type detectionView struct {
	Format   string         `json:"format" yaml:"format"`
	Position []pointView    `json:"position,omitempty" yaml:"position,omitempty"`
	Text     string         `json:"text" yaml:"text"`
	Record   *cedula.Record `json:"record,omitempty" yaml:"record,omitempty"`
	Warning  string         `json:"warning,omitempty" yaml:"warning,omitempty"`

	ErrorCorrectionLevel string `json:"errorCorrectionLevel,omitempty" yaml:"errorCorrectionLevel,omitempty"`
	ErrorsCorrected      int    `json:"errorsCorrected,omitempty" yaml:"errorsCorrected,omitempty"`
}

type pointView struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func newReportView(r Report) reportView {
	v := reportView{Path: r.Path, Status: r.Status, Message: r.Message}
	for _, d := range r.Detections {
		dv := detectionView{
			Format:               d.Format,
			Text:                 d.Text,
			Record:               d.Record,
			ErrorCorrectionLevel: d.ErrorCorrectionLevel,
			ErrorsCorrected:      d.ErrorsCorrected,
		}
		for _, p := range d.Position {
			dv.Position = append(dv.Position, pointView{p.X, p.Y})
		}
		if d.Err != nil {
			dv.Warning = MessageParseWarning
		}
		v.Detections = append(v.Detections, dv)
	}
	return v
}
