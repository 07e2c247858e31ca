package charset

import "testing"

func TestGetECIByValue(t *testing.T) {
	tests := []struct {
		value int
		name  string
	}{
		{0, "Cp437"},
		{2, "Cp437"},
		{3, "ISO8859_1"},
		{26, "UTF8"},
		{170, "ASCII"},
	}
	for _, tt := range tests {
		eci, err := GetECIByValue(tt.value)
		if err != nil {
			t.Fatalf("GetECIByValue(%d): %v", tt.value, err)
		}
		if eci == nil || eci.Name != tt.name {
			t.Errorf("GetECIByValue(%d) = %v, want %s", tt.value, eci, tt.name)
		}
	}
	if _, err := GetECIByValue(900); err != ErrFormatECI {
		t.Errorf("GetECIByValue(900) error = %v, want ErrFormatECI", err)
	}
}

func TestGetECIByName(t *testing.T) {
	if GetECIByName("ISO-8859-1") != ECIISO8859_1 {
		t.Error("alias ISO-8859-1 not resolved")
	}
	if GetECIByName("nope") != nil {
		t.Error("unknown name resolved")
	}
}

func TestBuilderLatin1Default(t *testing.T) {
	b := NewBuilder(nil)
	b.WriteString("PE")
	b.WriteByte(0xD1) // Ñ
	b.WriteString("A")
	if got := b.String(); got != "PEÑA" {
		t.Errorf("String() = %q, want %q", got, "PEÑA")
	}
}

func TestBuilderSwitchesOnECI(t *testing.T) {
	b := NewBuilder(nil)
	b.WriteByte(0xE9) // é in ISO-8859-1
	if err := b.AppendECI(26); err != nil {
		t.Fatal(err)
	}
	for _, c := range []byte("é") {
		b.WriteByte(c)
	}
	if got := b.String(); got != "éé" {
		t.Errorf("String() = %q, want %q", got, "éé")
	}
	if err := b.AppendECI(899); err != ErrFormatECI {
		t.Errorf("AppendECI(899) error = %v, want ErrFormatECI", err)
	}
}
