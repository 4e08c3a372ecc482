package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookgest/internal/pipeline"
)

func processCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Chunk every book file in the input directory",
		Long: `Reads each supported file (txt, md, html, pdf, docx) in the input
directory whose relative path matches the input pattern, cleans and
chunks it, and writes <output>/chunks/<book_id>.jsonl.
Books that fail are logged and recorded in the manifest; the run continues.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := buildRuntime(a.cfg, a.log)
			if err != nil {
				return err
			}
			defer svc.Close()

			cat, err := loadCatalog(svc.fs, a.cfg.CatalogFile, a.log)
			if err != nil {
				return err
			}

			src, err := pipeline.NewDirSource(svc.fs, a.cfg.InputDir, cat).WithPattern(a.cfg.InputPattern)
			if err != nil {
				return err
			}
			batch := pipeline.NewBatch(svc.worker(a.cfg, a.log), src, a.cfg.BatchWorkers, a.log)
			sum, err := batch.Run(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("%d books: %d completed, %d empty, %d unchanged, %d failed, %d chunks in %s\n",
				sum.Books, sum.Completed, sum.Empty, sum.Skipped, sum.Failed, sum.Chunks, sum.Elapsed.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().String("input", "", "directory of book files (INPUT_DIR)")
	cmd.Flags().String("pattern", "", `relative paths to include, e.g. "**/*.txt" (INPUT_PATTERN)`)
	cmd.Flags().String("catalog", "", "book catalog CSV (CATALOG_FILE)")
	cmd.Flags().Int("workers", 0, "books processed in parallel (BATCH_WORKERS)")
	return cmd
}
