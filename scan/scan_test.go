package scan

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ericlevine/cedula"
	"github.com/ericlevine/cedula/normalize"
)

func pad(s string, n int) string {
	return s + strings.Repeat(" ", n-len(s))
}

// payload builds a 104-character cédula payload.
func payload(id, name, surname1, surname2, sex, birth, expiry string) string {
	return id + pad(name, 26) + pad(surname1, 26) + pad(surname2, 26) + sex + birth + expiry
}

var validPayload = payload("109870654", "JUAN", "PEREZ", "MORA", "1", "19900115", "20300101")

func smallDenoise() Option {
	return WithNormalizeOptions(normalize.Options{Strength: 3, PatchSize: 3, SearchSize: 7})
}

func photo(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{230, 225, 210, 255}
			if (x/4)%2 == 0 && y > h/4 && y < 3*h/4 {
				c = color.RGBA{20, 25, 30, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

type fakeDecoder struct {
	mu       sync.Mutex
	payloads []Payload
	err      error
	panicMsg string
	calls    int
	got      *image.Gray
}

func (f *fakeDecoder) Decode(_ context.Context, img *image.Gray) ([]Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.got = img
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.payloads, f.err
}

func TestScanNoBarcode(t *testing.T) {
	dec := &fakeDecoder{}
	rep := New(WithDecoder(dec), smallDenoise()).Scan(context.Background(), photo(40, 30))
	if rep.Status != StatusNoBarcode {
		t.Fatalf("Status = %q, want %q", rep.Status, StatusNoBarcode)
	}
	if rep.Message != MessageNoBarcode {
		t.Errorf("Message = %q", rep.Message)
	}
	if len(rep.Detections) != 0 || rep.Complete() {
		t.Errorf("unexpected detections: %+v", rep.Detections)
	}
	if dec.calls != 1 {
		t.Errorf("decoder called %d times, want 1", dec.calls)
	}
}

func TestScanPassesBinaryImage(t *testing.T) {
	dec := &fakeDecoder{}
	New(WithDecoder(dec), smallDenoise()).Scan(context.Background(), photo(40, 30))
	if dec.got == nil {
		t.Fatal("decoder not called")
	}
	if b := dec.got.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Fatalf("decoder got %v, want 40x30", b)
	}
	for i, v := range dec.got.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("pixel %d = %d, want 0 or 255", i, v)
		}
	}
}

func TestScanParsesEachDetection(t *testing.T) {
	dec := &fakeDecoder{payloads: []Payload{
		{Format: "PDF_417", Position: []image.Point{{1, 2}, {3, 2}, {3, 4}, {1, 4}}, Text: validPayload},
		{Format: "PDF_417", Text: "HELLO"},
	}}
	rep := New(WithDecoder(dec), smallDenoise()).Scan(context.Background(), photo(40, 30))
	if rep.Status != StatusOK {
		t.Fatalf("Status = %q, want ok", rep.Status)
	}
	if len(rep.Detections) != 2 {
		t.Fatalf("got %d detections, want 2", len(rep.Detections))
	}

	first := rep.Detections[0]
	if !first.Parsed() || first.Err != nil {
		t.Fatalf("first detection not parsed: %+v", first)
	}
	want := cedula.Record{
		IDNumber:       "109870654",
		FirstName:      "JUAN",
		FirstSurname:   "PEREZ",
		SecondSurname:  "MORA",
		Sex:            cedula.SexMale,
		BirthDate:      "15/01/1990",
		ExpirationDate: "01/01/2030",
	}
	if *first.Record != want {
		t.Errorf("Record = %+v, want %+v", *first.Record, want)
	}

	second := rep.Detections[1]
	if second.Parsed() {
		t.Fatal("short payload produced a record")
	}
	if second.Err == nil || second.Err.Raw != "HELLO" {
		t.Fatalf("Err = %+v, want raw text kept", second.Err)
	}
	if !errors.Is(second.Err, cedula.ErrShortPayload) {
		t.Errorf("Err does not wrap ErrShortPayload")
	}
	if rep.Complete() {
		t.Error("Complete() = true with a parse failure")
	}
}

func TestScanDecoderError(t *testing.T) {
	boom := errors.New("boom")
	rep := New(WithDecoder(&fakeDecoder{err: boom}), smallDenoise()).Scan(context.Background(), photo(20, 20))
	if rep.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed", rep.Status)
	}
	if !errors.Is(rep.Err, boom) {
		t.Errorf("Err = %v, want wrapping boom", rep.Err)
	}
	if !strings.HasPrefix(rep.Message, "An error occurred: ") {
		t.Errorf("Message = %q", rep.Message)
	}
}

func TestScanRecoversDecoderPanic(t *testing.T) {
	rep := New(WithDecoder(&fakeDecoder{panicMsg: "index out of range"}), smallDenoise()).
		Scan(context.Background(), photo(20, 20))
	if rep.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed", rep.Status)
	}
	if !strings.Contains(rep.Message, "index out of range") {
		t.Errorf("Message = %q", rep.Message)
	}
}

func TestScanEmptyImage(t *testing.T) {
	dec := &fakeDecoder{}
	s := New(WithDecoder(dec))
	for _, img := range []image.Image{nil, image.NewRGBA(image.Rect(0, 0, 0, 10))} {
		rep := s.Scan(context.Background(), img)
		if rep.Status != StatusFailed || !errors.Is(rep.Err, ErrEmptyImage) {
			t.Errorf("Scan(%v) = %q / %v, want failed with ErrEmptyImage", img, rep.Status, rep.Err)
		}
	}
	if dec.calls != 0 {
		t.Errorf("decoder called %d times for empty images", dec.calls)
	}
}

func TestScanCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dec := &fakeDecoder{}
	rep := New(WithDecoder(dec), smallDenoise()).Scan(ctx, photo(20, 20))
	if rep.Status != StatusFailed || !IsCanceled(rep) {
		t.Fatalf("got %q / %v, want canceled failure", rep.Status, rep.Err)
	}
	if dec.calls != 0 {
		t.Error("decoder ran after cancellation")
	}
}

func TestScanFallback(t *testing.T) {
	primary := &fakeDecoder{}
	fallback := &fakeDecoder{payloads: []Payload{{Format: "PDF_417", Text: validPayload}}}

	rep := New(WithDecoder(primary), WithFallbackDecoder(fallback), WithTryHarder(true), smallDenoise()).
		Scan(context.Background(), photo(40, 30))
	if rep.Status != StatusOK || !rep.Complete() {
		t.Fatalf("got %q, want a complete ok report", rep.Status)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", primary.calls, fallback.calls)
	}

	fallback.calls = 0
	rep = New(WithDecoder(primary), WithFallbackDecoder(fallback), smallDenoise()).
		Scan(context.Background(), photo(40, 30))
	if rep.Status != StatusNoBarcode {
		t.Errorf("Status = %q without try-harder, want no_barcode", rep.Status)
	}
	if fallback.calls != 0 {
		t.Error("fallback ran without try-harder")
	}
}

func TestScanFileUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.png")
	rep := New(WithDecoder(&fakeDecoder{})).ScanFile(context.Background(), path)
	if rep.Status != StatusUnreadable {
		t.Fatalf("Status = %q, want unreadable", rep.Status)
	}
	if rep.Path != path {
		t.Errorf("Path = %q", rep.Path)
	}
	if !strings.Contains(rep.Message, MessageUnreadable) {
		t.Errorf("Message = %q", rep.Message)
	}
}

// A decoder registered for files starting with "BOOM!" that always panics.
func init() {
	image.RegisterFormat("boom", "BOOM!",
		func(io.Reader) (image.Image, error) { panic("corrupt header") },
		func(io.Reader) (image.Config, error) { panic("corrupt header") },
	)
}

func TestScanFileRecoversLoaderPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.boom")
	if err := os.WriteFile(path, []byte("BOOM!\x00\x01"), 0o644); err != nil {
		t.Fatal(err)
	}
	dec := &fakeDecoder{}
	rep := New(WithDecoder(dec)).ScanFile(context.Background(), path)
	if rep.Status != StatusFailed {
		t.Fatalf("Status = %q, want %q", rep.Status, StatusFailed)
	}
	if rep.Path != path {
		t.Errorf("Path = %q, want %q", rep.Path, path)
	}
	if !strings.Contains(rep.Message, "corrupt header") {
		t.Errorf("Message = %q", rep.Message)
	}
	if dec.calls != 0 {
		t.Errorf("decoder called %d times", dec.calls)
	}
}

func TestScanPositionInSourceCoordinates(t *testing.T) {
	dec := &fakeDecoder{payloads: []Payload{{
		Format:   "PDF_417",
		Position: []image.Point{{0, 0}, {50, 0}, {50, 25}, {0, 25}},
		Text:     validPayload,
	}}}
	src := photo(200, 100).SubImage(image.Rect(100, 50, 200, 100))
	rep := New(WithDecoder(dec), smallDenoise(), WithMaxDimension(50)).Scan(context.Background(), src)
	if b := dec.got.Bounds(); b.Dx() != 50 || b.Dy() != 25 {
		t.Fatalf("decoder got %v, want 50x25", b)
	}
	if !rep.Complete() {
		t.Fatalf("Status = %q", rep.Status)
	}
	want := []image.Point{{100, 50}, {200, 50}, {200, 100}, {100, 100}}
	got := rep.Detections[0].Position
	if len(got) != len(want) {
		t.Fatalf("Position = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position = %v, want %v", got, want)
			break
		}
	}
	if dec.payloads[0].Position[1] != image.Pt(50, 0) {
		t.Error("decoder payload modified")
	}
}

func TestScanConcurrent(t *testing.T) {
	dec := &fakeDecoder{payloads: []Payload{{Format: "PDF_417", Text: validPayload}}}
	s := New(WithDecoder(dec), smallDenoise())
	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rep := s.Scan(context.Background(), photo(24, 16))
			if !rep.Complete() {
				errs <- string(rep.Status)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for status := range errs {
		t.Errorf("concurrent scan status %q", status)
	}
}
