package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	path := writeFile(t, "cedula.yaml", `
denoise:
  strength: 5.5
binarizer: hybrid
tryHarder: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Denoise.Strength != 5.5 || cfg.Binarizer != BinarizerHybrid || !cfg.TryHarder {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Denoise.PatchSize != 7 || cfg.Denoise.SearchSize != 21 {
		t.Errorf("unset denoise keys lost defaults: %+v", cfg.Denoise)
	}
	if cfg.Output != OutputText || cfg.MaxDimension != DefaultMaxDimension {
		t.Errorf("unset keys lost defaults: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "cedula.json", `{"output": "json", "maxDimension": 800, "characterSet": "UTF-8"}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output != OutputJSON || cfg.MaxDimension != 800 || cfg.CharacterSet != "UTF-8" {
		t.Errorf("json values not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadUnknownExtensionFallsBackToJSON(t *testing.T) {
	path := writeFile(t, "cedula.conf", `{"binarizer":"histogram"}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Binarizer != BinarizerHistogram {
		t.Errorf("Binarizer = %q, want histogram", cfg.Binarizer)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want ErrNotExist", err)
	}
	path := writeFile(t, "bad.yaml", "denoise: [1, 2")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse yaml") {
		t.Errorf("Load(bad yaml) error = %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvStrength, "10")
	t.Setenv(EnvPatchSize, "5")
	t.Setenv(EnvSearchSize, "")
	t.Setenv(EnvBinarizer, "HYBRID")
	t.Setenv(EnvTryHarder, "true")
	t.Setenv(EnvOutput, "yaml")
	t.Setenv(EnvVerbose, "1")
	t.Setenv(EnvWorkers, "3")

	cfg := Default()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Denoise.Strength != 10 || cfg.Denoise.PatchSize != 5 {
		t.Errorf("denoise = %+v", cfg.Denoise)
	}
	if cfg.Denoise.SearchSize != 21 {
		t.Errorf("empty variable overrode SearchSize: %d", cfg.Denoise.SearchSize)
	}
	if cfg.Binarizer != BinarizerHybrid || !cfg.TryHarder || cfg.Output != OutputYAML || !cfg.Verbose || cfg.Workers != 3 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestApplyEnvMalformed(t *testing.T) {
	t.Setenv(EnvMaxDimension, "big")
	t.Setenv(EnvTryHarder, "perhaps")
	cfg := Default()
	err := ApplyEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, name := range []string{EnvMaxDimension, EnvTryHarder} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %s", err, name)
		}
	}
	if cfg.MaxDimension != DefaultMaxDimension {
		t.Errorf("malformed value applied: %d", cfg.MaxDimension)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"even patch", func(c *Config) { c.Denoise.PatchSize = 6 }, "patch size"},
		{"even search", func(c *Config) { c.Denoise.SearchSize = 4 }, "search size"},
		{"zero patch", func(c *Config) { c.Denoise.PatchSize = 0 }, "positive"},
		{"negative strength", func(c *Config) { c.Denoise.Strength = -2 }, "strength"},
		{"zero strength", func(c *Config) { c.Denoise.Strength = 0 }, "strength must be positive"},
		{"binarizer", func(c *Config) { c.Binarizer = "adaptive" }, "binarizer"},
		{"output", func(c *Config) { c.Output = "xml" }, "output"},
		{"max dimension", func(c *Config) { c.MaxDimension = -1 }, "max dimension"},
		{"workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"charset", func(c *Config) { c.CharacterSet = "EBCDIC" }, "character set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate() = %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %q, want mention of %q", err, tt.want)
			}
		})
	}
}
