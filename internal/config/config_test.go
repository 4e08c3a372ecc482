package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, 900, cfg.MaxTokens)
	assert.Equal(t, 120, cfg.OverlapTokens)
	assert.Equal(t, "estimate", cfg.Sizer)
	assert.Equal(t, 4000, cfg.LangSampleChars)
	assert.Equal(t, 0.30, cfg.TrimCutoff)
	assert.Equal(t, "NFKC", cfg.NormalForm)
	assert.Equal(t, time.Hour, cfg.JobTTL)
	assert.Equal(t, int64(52428800), cfg.MaxUploadBytes)
	assert.True(t, cfg.WriteProcessed)
	assert.Empty(t, cfg.Languages)
	assert.Equal(t, "*", cfg.InputPattern)
	assert.False(t, cfg.TrimSeed)
	assert.Empty(t, cfg.CORSOrigins)
	assert.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateServer())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"BOOKGEST_API_KEY": "k",
		"MAX_TOKENS":       "512",
		"OVERLAP_TOKENS":   "64",
		"SIZER":            "tiktoken",
		"LANGUAGES":        "EN, de,,fr ",
		"JOB_TTL":          "15m",
		"WORKER_COUNT":     "0",
		"TRIM_TOC_GUARD":   "true",
		"INPUT_PATTERN":    "**/*.txt",
		"CORS_ORIGINS":     "https://a.example,https://b.example",
		"CHUNK_TRIM_SEED":  "true",
	})
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.MaxTokens)
	assert.Equal(t, []string{"en", "de", "fr"}, cfg.Languages)
	assert.Equal(t, "**/*.txt", cfg.InputPattern)
	assert.True(t, cfg.TrimSeed)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 15*time.Minute, cfg.JobTTL)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.True(t, cfg.TrimTOCGuard)
	assert.NoError(t, cfg.ValidateServer())
}

func TestLoadFrom_BadValue(t *testing.T) {
	_, err := LoadFrom(map[string]string{"MAX_TOKENS": "lots"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }},
		{"overlap not below max", func(c *Config) { c.OverlapTokens = c.MaxTokens }},
		{"negative overlap", func(c *Config) { c.OverlapTokens = -1 }},
		{"unknown sizer", func(c *Config) { c.Sizer = "words" }},
		{"cutoff above one", func(c *Config) { c.TrimCutoff = 1.2 }},
		{"min distance one", func(c *Config) { c.LangMinDistance = 1 }},
		{"bad form", func(c *Config) { c.NormalForm = "NFD" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mut(&c)
			assert.Error(t, c.Validate())
		})
	}
}
