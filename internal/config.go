// Package internal provides the application configuration and the watch-mode runtime.
package internal

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hallgrim/notelint/internal/report"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Corpus CorpusConfig      `yaml:"corpus"`
	Cache  CacheConfig       `yaml:"cache"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Corpus.Validate(); err != nil {
		return err
	}
	return c.Cache.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel    slog.Level `yaml:"log_level"`
	Output      string     `yaml:"output"`
	Parallelism int        `yaml:"parallelism"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Output, validation.Required,
			validation.In(report.FormatText, report.FormatJSON)),
		validation.Field(&c.Parallelism, validation.Min(0)),
	)
}

// CorpusConfig holds the corpus root and the asset store location.
//
// AssetsDir is resolved relative to the working directory, not the corpus
// root, because some corpora keep images in a sibling repository checkout.
type CorpusConfig struct {
	Path      string `yaml:"path"`
	AssetsDir string `yaml:"assets_dir"`
}

// Validate validates the corpus configuration.
func (c *CorpusConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.AssetsDir, validation.Required),
	)
}

// CacheConfig holds the incremental-cache database location.
// An empty path disables the cache entirely.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			Output:   report.FormatText,
		},
		Corpus: CorpusConfig{
			Path:      "./notes",
			AssetsDir: "./notes/images",
		},
		Cache: CacheConfig{
			Path: "", // disabled unless configured
		},
	}
}
