// Package config loads the extractor's settings from YAML, .env files and
// STX_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/statement-extractor/internal/parser"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STX_"

// Config is the top-level configuration file.
type Config struct {
	Log        LogConfig      `yaml:"log"`
	Server     ServerConfig   `yaml:"server"`
	Convert    ConvertConfig  `yaml:"convert"`
	Thresholds parser.Options `yaml:"thresholds"`
}

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Addr        string  `yaml:"addr"`
	RateLimit   float64 `yaml:"rate_limit"` // uploads per second, 0 disables
	RateBurst   int     `yaml:"rate_burst"`
	MaxUploadMB int     `yaml:"max_upload_mb"`
	StaticDir   string  `yaml:"static_dir,omitempty"`
}

// ConvertConfig controls document conversion.
type ConvertConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	OCR             bool          `yaml:"ocr"`
	OCRLang         string        `yaml:"ocr_lang"`
	OCRDPI          int           `yaml:"ocr_dpi"`
	BankFallthrough bool          `yaml:"bank_fallthrough"`
	Workers         int           `yaml:"workers"`
	Bank            string        `yaml:"bank,omitempty"` // force one bank parser
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:        ":8080",
			RateLimit:   5,
			RateBurst:   10,
			MaxUploadMB: 32,
		},
		Convert: ConvertConfig{
			Timeout:         60 * time.Second,
			OCRLang:         "eng",
			OCRDPI:          300,
			BankFallthrough: true,
			Workers:         4,
		},
		Thresholds: parser.DefaultOptions(),
	}
}

// Load reads the file at path over the defaults and then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// LoadDotenv loads .env files into the process environment. Variables that
// are already set win, and missing files are ignored.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg from STX_* variables.
func ApplyEnv(cfg *Config) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *float64) {
		if v, ok := lookup(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("SERVER_ADDR", &cfg.Server.Addr)
	num("RATE_LIMIT", &cfg.Server.RateLimit)
	integer("RATE_BURST", &cfg.Server.RateBurst)
	num("ROW_TOLERANCE", &cfg.Thresholds.RowTolerance)
	boolean("OCR", &cfg.Convert.OCR)
	boolean("BANK_FALLTHROUGH", &cfg.Convert.BankFallthrough)
	integer("WORKERS", &cfg.Convert.Workers)
	if v, ok := lookup("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err))
		} else {
			cfg.Convert.Timeout = d
		}
	}
	return errors.Join(errs...)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Validate rejects settings the rest of the program cannot run with.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format %q: must be text or json", c.Log.Format)
	}
	if c.Convert.Timeout <= 0 {
		return fmt.Errorf("convert timeout must be positive, got %s", c.Convert.Timeout)
	}
	if c.Convert.Workers < 1 {
		return fmt.Errorf("convert workers must be at least 1, got %d", c.Convert.Workers)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server max_upload_mb must be at least 1, got %d", c.Server.MaxUploadMB)
	}
	return nil
}
