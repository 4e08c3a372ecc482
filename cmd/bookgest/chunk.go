package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookgest/internal/pipeline"
	"github.com/dgallion1/bookgest/internal/sink"
)

func chunkCmd(a *app) *cobra.Command {
	var bookID string
	cmd := &cobra.Command{
		Use:   "chunk FILE",
		Short: "Chunk a single book file and print JSON Lines to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if bookID == "" {
				base := filepath.Base(path)
				bookID = strings.TrimSuffix(base, filepath.Ext(base))
			}

			pipe, err := buildPipeline(a.cfg, a.log, nil, nil)
			if err != nil {
				return err
			}

			raw, _, err := pipeline.ParseDocument(pipeline.Document{BookID: bookID, Filename: filepath.Base(path), Data: data})
			if err != nil {
				return err
			}
			res, err := pipe.Process(cmd.Context(), raw)
			if err != nil {
				return fmt.Errorf("chunk %s: %w", path, err)
			}
			a.log.Info("chunked book", "book_id", bookID, "lang", res.Lang, "chunks", len(res.Chunks))
			return sink.Encode(cmd.Context(), cmd.OutOrStdout(), res.Chunks)
		},
	}
	cmd.Flags().StringVar(&bookID, "book-id", "", "book ID for the records (default: file name stem)")
	return cmd
}
