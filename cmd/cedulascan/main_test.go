package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ericlevine/cedula/scan"
)

const cardPayload = "109870654" +
	"JUAN                      " +
	"PEREZ                     " +
	"MORA                      " +
	"1" + "19900115" + "20300101"

var fastDenoise = []string{"-denoise.h", "3", "-denoise.patch", "3", "-denoise.search", "7"}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRenderThenScan(t *testing.T) {
	for _, level := range []string{"", "0", "3", "4"} {
		name := "default"
		if level != "" {
			name = "level" + level
		}
		t.Run(name, func(t *testing.T) {
			card := filepath.Join(t.TempDir(), "card.png")
			render := []string{"-render", cardPayload, "-o", card}
			if level != "" {
				render = append(render, "-level", level)
			}
			if code, _, stderr := runCLI(t, render...); code != exitOK {
				t.Fatalf("render exit %d: %s", code, stderr)
			}

			args := append(append([]string{}, fastDenoise...), card)
			code, stdout, stderr := runCLI(t, args...)
			if code != exitOK {
				t.Fatalf("scan exit %d\nstdout: %s\nstderr: %s", code, stdout, stderr)
			}
			for _, want := range []string{"Found barcode:", "Cédula: 109870654", "Nombre: JUAN", "Sexo: Masculino", "Fecha de Vencimiento: 01/01/2030"} {
				if !strings.Contains(stdout, want) {
					t.Errorf("output missing %q:\n%s", want, stdout)
				}
			}
			if strings.Contains(stdout, "== ") {
				t.Errorf("single file output has a path header:\n%s", stdout)
			}
		})
	}
}

func TestScanMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.png")
	code, stdout, _ := runCLI(t, "-output", "json", missing)
	if code != exitIncomplete {
		t.Errorf("exit = %d, want %d", code, exitIncomplete)
	}
	if !strings.Contains(stdout, `"status": "unreadable"`) || !strings.Contains(stdout, scan.MessageUnreadable) {
		t.Errorf("unexpected output:\n%s", stdout)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no files", nil},
		{"unknown flag", []string{"-nope", "x.png"}},
		{"bad binarizer", []string{"-binarizer", "adaptive", "x.png"}},
		{"even patch", []string{"-denoise.patch", "4", "x.png"}},
		{"zero strength", []string{"-denoise.h", "0", "x.png"}},
		{"bad level", []string{"-render", "X", "-level", "9"}},
		{"missing config", []string{"-config", "/nonexistent/cedula.yaml", "x.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := runCLI(t, tt.args...); code != exitUsage {
				t.Errorf("exit = %d, want %d", code, exitUsage)
			}
		})
	}
}

func TestEnvironmentOverriddenByFlags(t *testing.T) {
	t.Setenv("CEDULA_OUTPUT", "xml")
	if code, _, _ := runCLI(t, "x.png"); code != exitUsage {
		t.Errorf("exit = %d, want %d for invalid CEDULA_OUTPUT", code, exitUsage)
	}
	missing := filepath.Join(t.TempDir(), "missing.png")
	code, stdout, _ := runCLI(t, "-output", "yaml", missing)
	if code != exitIncomplete {
		t.Errorf("exit = %d, want %d", code, exitIncomplete)
	}
	if !strings.Contains(stdout, "status: unreadable") {
		t.Errorf("flag did not override environment:\n%s", stdout)
	}
}

func TestScanManyKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"c.png", "a.png", "b.png"} {
		paths = append(paths, filepath.Join(dir, name))
	}
	args := append([]string{"-workers", "2"}, paths...)
	code, stdout, _ := runCLI(t, args...)
	if code != exitIncomplete {
		t.Errorf("exit = %d, want %d", code, exitIncomplete)
	}
	last := -1
	for _, p := range paths {
		i := strings.Index(stdout, "== "+p+" ==")
		if i < 0 {
			t.Fatalf("missing header for %s:\n%s", p, stdout)
		}
		if i < last {
			t.Errorf("report for %s out of order:\n%s", p, stdout)
		}
		last = i
	}
	if n := strings.Count(stdout, scan.MessageUnreadable); n != len(paths) {
		t.Errorf("got %d unreadable messages, want %d", n, len(paths))
	}
}
