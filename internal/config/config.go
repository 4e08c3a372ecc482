// Package config loads bookgest settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8090"`

	// Auth
	APIKey string `env:"BOOKGEST_API_KEY"`

	// Filesystem
	InputDir       string `env:"INPUT_DIR" envDefault:"./data/raw"`
	InputPattern   string `env:"INPUT_PATTERN" envDefault:"*"`
	OutputDir      string `env:"OUTPUT_DIR" envDefault:"./data"`
	CatalogFile    string `env:"CATALOG_FILE"`
	ManifestDB     string `env:"MANIFEST_DB" envDefault:"./data/manifest.db"`
	WriteProcessed bool   `env:"WRITE_PROCESSED" envDefault:"true"`
	SkipDuplicates bool   `env:"SKIP_DUPLICATES" envDefault:"true"`

	// Worker pool
	BatchWorkers int `env:"BATCH_WORKERS" envDefault:"4"`
	WorkerCount  int `env:"WORKER_COUNT" envDefault:"4"`
	MaxQueueSize int `env:"MAX_QUEUE_SIZE" envDefault:"100"`

	// Upload limits
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"` // 50MB

	// Chunking
	MaxTokens     int    `env:"MAX_TOKENS" envDefault:"900"`
	OverlapTokens int    `env:"OVERLAP_TOKENS" envDefault:"120"`
	Sizer         string `env:"SIZER" envDefault:"estimate"`
	TrimSeed      bool   `env:"CHUNK_TRIM_SEED" envDefault:"false"`

	// Language detection
	Languages       []string `env:"LANGUAGES" envSeparator:","`
	LangSampleChars int      `env:"LANG_SAMPLE_CHARS" envDefault:"4000"`
	LangMinDistance float64  `env:"LANG_MIN_DISTANCE" envDefault:"0"`

	// Cleaning
	NormalForm     string  `env:"NORMAL_FORM" envDefault:"NFKC"`
	TrimPolicyFile string  `env:"TRIM_POLICY_FILE"`
	TrimCutoff     float64 `env:"TRIM_CUTOFF" envDefault:"0.30"`
	TrimTOCGuard   bool    `env:"TRIM_TOC_GUARD" envDefault:"false"`

	// Index delivery; disabled when IndexURL is empty.
	IndexURL    string `env:"INDEX_URL"`
	IndexAPIKey string `env:"INDEX_API_KEY"`

	// Browser origins allowed to call the API; CORS is off when empty.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	// Job state
	JobTTL time.Duration `env:"JOB_TTL" envDefault:"1h"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	cfg.clamp()
	return cfg, nil
}

// LoadFrom reads settings from vars only, ignoring the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	cfg.clamp()
	return cfg, nil
}

func (c *Config) clamp() {
	if c.BatchWorkers <= 0 {
		c.BatchWorkers = 4
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 4
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 100
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 52428800
	}
	if c.LangSampleChars <= 0 {
		c.LangSampleChars = 4000
	}
	if c.JobTTL <= 0 {
		c.JobTTL = 1 * time.Hour
	}
	langs := c.Languages[:0]
	for _, l := range c.Languages {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			langs = append(langs, l)
		}
	}
	c.Languages = langs
}

// Validate checks settings that have no safe fallback. Server-only keys are
// checked by ValidateServer.
func (c Config) Validate() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	if c.OverlapTokens < 0 || c.OverlapTokens >= c.MaxTokens {
		return fmt.Errorf("OVERLAP_TOKENS must be in [0, MAX_TOKENS), got %d", c.OverlapTokens)
	}
	switch c.Sizer {
	case "estimate", "tiktoken":
	default:
		return fmt.Errorf("SIZER must be estimate or tiktoken, got %q", c.Sizer)
	}
	if c.TrimCutoff < 0 || c.TrimCutoff > 1 {
		return fmt.Errorf("TRIM_CUTOFF must be in [0,1], got %.2f", c.TrimCutoff)
	}
	if c.LangMinDistance < 0 || c.LangMinDistance >= 1 {
		return fmt.Errorf("LANG_MIN_DISTANCE must be in [0,1), got %.2f", c.LangMinDistance)
	}
	switch strings.ToUpper(c.NormalForm) {
	case "NFC", "NFKC":
	default:
		return fmt.Errorf("NORMAL_FORM must be NFC or NFKC, got %q", c.NormalForm)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	return nil
}

// ValidateServer additionally requires the API key.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return errors.New("BOOKGEST_API_KEY is required")
	}
	return nil
}
