package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/dgallion1/bookgest/internal/catalog"
	"github.com/dgallion1/bookgest/internal/chunker"
	"github.com/dgallion1/bookgest/internal/config"
	"github.com/dgallion1/bookgest/internal/indexclient"
	"github.com/dgallion1/bookgest/internal/langdetect"
	"github.com/dgallion1/bookgest/internal/metrics"
	"github.com/dgallion1/bookgest/internal/normalize"
	"github.com/dgallion1/bookgest/internal/pipeline"
	"github.com/dgallion1/bookgest/internal/segment"
	"github.com/dgallion1/bookgest/internal/sink"
	"github.com/dgallion1/bookgest/internal/store"
	"github.com/dgallion1/bookgest/internal/store/sqlite"
	"github.com/dgallion1/bookgest/internal/trim"
)

// services bundles the long-lived components built from configuration.
type services struct {
	fs      afero.Fs
	pipe    *pipeline.Pipeline
	sink    *sink.JSONL
	store   store.Store
	index   *indexclient.Client
	stats   *pipeline.StageStats
	metrics *metrics.Metrics
}

func (r *services) Close() {
	if r.index != nil {
		r.index.Close()
	}
	if r.store != nil {
		_ = r.store.Close()
	}
}

// indexer avoids handing the worker a typed nil interface.
func (r *services) indexer() pipeline.Indexer {
	if r.index == nil {
		return nil
	}
	return r.index
}

func (r *services) worker(cfg config.Config, log *slog.Logger) *pipeline.Worker {
	return pipeline.NewWorker(r.pipe, r.sink, r.store, r.indexer(), r.metrics, log, pipeline.WorkerOptions{
		WriteProcessed: cfg.WriteProcessed,
		SkipUnchanged:  cfg.SkipDuplicates,
	})
}

// buildRuntime wires every component the batch and server commands share.
func buildRuntime(cfg config.Config, log *slog.Logger) (*services, error) {
	r := &services{
		fs:      afero.NewOsFs(),
		stats:   pipeline.NewStageStats(0),
		metrics: metrics.New(),
	}

	pipe, err := buildPipeline(cfg, log, r.stats, r.metrics)
	if err != nil {
		return nil, err
	}
	r.pipe = pipe

	if r.sink, err = sink.NewJSONL(r.fs, cfg.OutputDir); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.ManifestDB); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create manifest dir: %w", err)
		}
	}
	if r.store, err = sqlite.Open(cfg.ManifestDB); err != nil {
		return nil, err
	}

	if cfg.IndexURL != "" {
		r.index = indexclient.NewClient(cfg.IndexURL, cfg.IndexAPIKey, log)
		log.Info("index delivery enabled", "url", cfg.IndexURL)
	}
	return r, nil
}

// buildPipeline constructs the stage components once per process.
func buildPipeline(cfg config.Config, log *slog.Logger, stats *pipeline.StageStats, m *metrics.Metrics) (*pipeline.Pipeline, error) {
	form, err := normalize.ParseForm(cfg.NormalForm)
	if err != nil {
		return nil, err
	}

	policy := trim.DefaultPolicy()
	if cfg.TrimPolicyFile != "" {
		if policy, err = trim.LoadPolicy(cfg.TrimPolicyFile); err != nil {
			return nil, err
		}
	} else {
		policy.CutoffFraction = cfg.TrimCutoff
		policy.TOCRowsGuard = cfg.TrimTOCGuard
	}
	trimmer, err := trim.New(policy)
	if err != nil {
		return nil, fmt.Errorf("trim policy: %w", err)
	}

	detector, err := langdetect.NewLingua(langdetect.Options{
		Languages:   cfg.Languages,
		SampleChars: cfg.LangSampleChars,
		MinDistance: cfg.LangMinDistance,
	})
	if err != nil {
		return nil, fmt.Errorf("language detector: %w", err)
	}

	segmenter, err := segment.NewPunkt(log)
	if err != nil {
		return nil, fmt.Errorf("sentence segmenter: %w", err)
	}

	chunkCfg := chunker.Config{MaxTokens: cfg.MaxTokens, OverlapTokens: cfg.OverlapTokens, TrimSeed: cfg.TrimSeed}
	if err := chunkCfg.Validate(); err != nil {
		return nil, err
	}
	var sizer chunker.Sizer
	if cfg.Sizer == "tiktoken" {
		if sizer, err = chunker.TiktokenSizer(); err != nil {
			return nil, err
		}
	}

	log.Debug("pipeline configured",
		"normal_form", cfg.NormalForm, "trim_cutoff", policy.CutoffFraction,
		"max_tokens", chunkCfg.MaxTokens, "overlap_tokens", chunkCfg.OverlapTokens, "sizer", cfg.Sizer)

	return pipeline.New(pipeline.Options{
		Normalizer: normalize.New(form),
		Trimmer:    trimmer,
		Detector:   detector,
		Segmenter:  segmenter,
		Builder:    chunker.New(chunkCfg, sizer),
		Stats:      stats,
		Metrics:    m,
	})
}

// loadCatalog returns nil when no catalog file is configured.
func loadCatalog(fs afero.Fs, path string, log *slog.Logger) (*catalog.Catalog, error) {
	if path == "" {
		return nil, nil
	}
	cat, err := catalog.Load(fs, path)
	if err != nil {
		return nil, err
	}
	log.Info("catalog loaded", "path", path, "books", cat.Len())
	return cat, nil
}
