// Package config holds the reader's settings. Values are layered: built-in
// defaults, then an optional YAML or JSON file, then CEDULA_* environment
// variables, then command-line flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/ericlevine/cedula/barcode/charset"
	"github.com/ericlevine/cedula/normalize"
)

// Binarizer names.
const (
	BinarizerOtsu      = "otsu"
	BinarizerHistogram = "histogram"
	BinarizerHybrid    = "hybrid"
)

// Output format names.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// DefaultMaxDimension bounds the longest side of a photo before denoising.
const DefaultMaxDimension = 1600

// ErrInvalid is wrapped by every Validate error.
var ErrInvalid = errors.New("invalid config")

// Denoise configures the non-local means stage.
type Denoise struct {
	Strength   float64 `yaml:"strength" json:"strength"`
	PatchSize  int     `yaml:"patchSize" json:"patchSize"`
	SearchSize int     `yaml:"searchSize" json:"searchSize"`
}

// Config is the complete set of reader settings.
type Config struct {
	Denoise Denoise `yaml:"denoise" json:"denoise"`

	// Binarizer is the engine binarizer used on the normalized image.
	Binarizer string `yaml:"binarizer" json:"binarizer"`

	// TryHarder makes the engine search more rows and retry with the
	// hybrid binarizer on the denoised image when nothing is found.
	TryHarder bool `yaml:"tryHarder" json:"tryHarder"`

	// MaxDimension downsizes larger photos before processing. 0 disables.
	MaxDimension int `yaml:"maxDimension" json:"maxDimension"`

	// CharacterSet decodes byte data not covered by an ECI. Empty means
	// ISO-8859-1.
	CharacterSet string `yaml:"characterSet" json:"characterSet"`

	// Workers bounds how many images are scanned at once. 0 means one per
	// CPU.
	Workers int `yaml:"workers" json:"workers"`

	Output  string `yaml:"output" json:"output"`
	Verbose bool   `yaml:"verbose" json:"verbose"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Denoise: Denoise{
			Strength:   normalize.DefaultStrength,
			PatchSize:  normalize.DefaultPatchSize,
			SearchSize: normalize.DefaultSearchSize,
		},
		Binarizer:    BinarizerOtsu,
		MaxDimension: DefaultMaxDimension,
		Output:       OutputText,
	}
}

// Load reads the file at path over the defaults. Keys missing from the file
// keep their default values. .json files are parsed as JSON; anything else
// is tried as YAML first, then JSON.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			cfg = Default()
			if jerr := json.Unmarshal(b, &cfg); jerr != nil {
				return cfg, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return cfg, nil
}

// Environment variables read by ApplyEnv.
const (
	EnvStrength     = "CEDULA_DENOISE_STRENGTH"
	EnvPatchSize    = "CEDULA_DENOISE_PATCH"
	EnvSearchSize   = "CEDULA_DENOISE_SEARCH"
	EnvBinarizer    = "CEDULA_BINARIZER"
	EnvTryHarder    = "CEDULA_TRY_HARDER"
	EnvMaxDimension = "CEDULA_MAX_DIMENSION"
	EnvCharacterSet = "CEDULA_CHARSET"
	EnvWorkers      = "CEDULA_WORKERS"
	EnvOutput       = "CEDULA_OUTPUT"
	EnvVerbose      = "CEDULA_VERBOSE"
)

// ApplyEnv overrides cfg with every CEDULA_* variable that is set and
// non-empty. Malformed numbers and booleans are errors.
func ApplyEnv(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	var errs []error
	if v, ok := lookup(EnvStrength); ok {
		f, err := strconv.ParseFloat(v, 64)
		errs = append(errs, envErr(EnvStrength, err))
		if err == nil {
			cfg.Denoise.Strength = f
		}
	}
	intVars := []struct {
		name string
		dst  *int
	}{
		{EnvPatchSize, &cfg.Denoise.PatchSize},
		{EnvSearchSize, &cfg.Denoise.SearchSize},
		{EnvMaxDimension, &cfg.MaxDimension},
		{EnvWorkers, &cfg.Workers},
	}
	for _, iv := range intVars {
		if v, ok := lookup(iv.name); ok {
			n, err := strconv.Atoi(v)
			errs = append(errs, envErr(iv.name, err))
			if err == nil {
				*iv.dst = n
			}
		}
	}
	boolVars := []struct {
		name string
		dst  *bool
	}{
		{EnvTryHarder, &cfg.TryHarder},
		{EnvVerbose, &cfg.Verbose},
	}
	for _, bv := range boolVars {
		if v, ok := lookup(bv.name); ok {
			b, err := strconv.ParseBool(v)
			errs = append(errs, envErr(bv.name, err))
			if err == nil {
				*bv.dst = b
			}
		}
	}
	if v, ok := lookup(EnvBinarizer); ok {
		cfg.Binarizer = strings.ToLower(v)
	}
	if v, ok := lookup(EnvCharacterSet); ok {
		cfg.CharacterSet = v
	}
	if v, ok := lookup(EnvOutput); ok {
		cfg.Output = strings.ToLower(v)
	}
	return errors.Join(errs...)
}

func lookup(name string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	return v, v != ""
}

func envErr(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

// Validate checks every setting and reports all problems at once.
func (c Config) Validate() error {
	var problems []string
	if err := c.NormalizeOptions().Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Denoise.Strength <= 0 {
		problems = append(problems, "denoise strength must be positive")
	}
	if c.Denoise.PatchSize < 1 || c.Denoise.SearchSize < 1 {
		problems = append(problems, "denoise patch and search sizes must be positive")
	}
	switch c.Binarizer {
	case BinarizerOtsu, BinarizerHistogram, BinarizerHybrid:
	default:
		problems = append(problems, fmt.Sprintf("unknown binarizer %q", c.Binarizer))
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		problems = append(problems, fmt.Sprintf("unknown output format %q", c.Output))
	}
	if c.MaxDimension < 0 {
		problems = append(problems, "max dimension must not be negative")
	}
	if c.Workers < 0 {
		problems = append(problems, "workers must not be negative")
	}
	if c.CharacterSet != "" && charset.GetECIByName(c.CharacterSet) == nil {
		problems = append(problems, fmt.Sprintf("unknown character set %q", c.CharacterSet))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// NormalizeOptions converts the denoise settings for the normalize package.
func (c Config) NormalizeOptions() normalize.Options {
	return normalize.Options{
		Strength:   c.Denoise.Strength,
		PatchSize:  c.Denoise.PatchSize,
		SearchSize: c.Denoise.SearchSize,
	}
}
