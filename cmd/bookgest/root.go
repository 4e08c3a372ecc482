package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookgest/internal/config"
)

// app is the state shared by every subcommand once flags and environment
// are resolved.
type app struct {
	cfg config.Config
	log *slog.Logger
}

func RootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "bookgest",
		Short:        "Clean, deduplicate and chunk book text for embedding",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			applyFlags(cmd, &a.cfg)
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			a.log = newLogger(a.cfg)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("output", "", "output root for chunks/ and processed/ (OUTPUT_DIR)")
	pf.String("log-level", "", "debug, info, warn or error (LOG_LEVEL)")
	pf.Int("max-tokens", 0, "token budget per chunk (MAX_TOKENS)")
	pf.Int("overlap-tokens", -1, "overlap carried between chunks (OVERLAP_TOKENS)")
	pf.String("sizer", "", "estimate or tiktoken (SIZER)")

	root.AddCommand(
		processCmd(a),
		serveCmd(a),
		tokensCmd(a),
		chunkCmd(a),
	)
	return root
}

// applyFlags overrides environment settings with flags the user set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("output") {
		cfg.OutputDir, _ = fs.GetString("output")
	}
	if fs.Changed("log-level") {
		cfg.LogLevel, _ = fs.GetString("log-level")
	}
	if fs.Changed("max-tokens") {
		cfg.MaxTokens, _ = fs.GetInt("max-tokens")
	}
	if fs.Changed("overlap-tokens") {
		cfg.OverlapTokens, _ = fs.GetInt("overlap-tokens")
	}
	if fs.Changed("sizer") {
		cfg.Sizer, _ = fs.GetString("sizer")
	}
	if fs.Changed("input") {
		cfg.InputDir, _ = fs.GetString("input")
	}
	if fs.Changed("pattern") {
		cfg.InputPattern, _ = fs.GetString("pattern")
	}
	if fs.Changed("catalog") {
		cfg.CatalogFile, _ = fs.GetString("catalog")
	}
	if fs.Changed("workers") {
		cfg.BatchWorkers, _ = fs.GetInt("workers")
	}
	if fs.Changed("port") {
		cfg.Port, _ = fs.GetString("port")
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	// Logs go to stderr so chunk output on stdout stays clean.
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
