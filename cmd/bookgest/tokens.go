package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tiktoken-go/tokenizer"

	"github.com/dgallion1/bookgest/internal/chunker"
	"github.com/dgallion1/bookgest/internal/report"
	"github.com/dgallion1/bookgest/internal/sink"
)

func tokensCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Count cl100k_base tokens of processed text and estimate embedding cost",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := sink.NewJSONL(afero.NewOsFs(), a.cfg.OutputDir)
			if err != nil {
				return err
			}
			codec, err := tokenizer.Get(tokenizer.Cl100kBase)
			if err != nil {
				return fmt.Errorf("load cl100k_base: %w", err)
			}

			rep, err := report.CountTokens(cmd.Context(), out, func(text string) (int, error) {
				return chunker.CountTokens(codec, text)
			})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			return rep.WriteText(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
