package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/freightsift/freightsift/internal/cli"
	"github.com/freightsift/freightsift/internal/pipeline"
)

var (
	extractInputs []string
	extractOutput string
	extractStrict bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract shipment records from invoice PDFs",
	Long: `Extract runs the full pipeline over one or more invoice PDFs and writes
one JSON array of shipment records per input into the output directory,
named <input base>_extracted.json.

Multiple --input files are processed concurrently, one document per worker.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := cfgManager.Get()

		strict := cfg.Strict
		if cmd.Flags().Changed("strict") {
			strict = extractStrict
		}

		p := pipeline.New(slog.Default())
		results := p.RunAll(cmd.Context(), extractInputs, extractOutput, cfg.Workers, pipeline.Options{Strict: strict})

		summaries := make([]*pipeline.Result, 0, len(results))
		var failed int
		for _, r := range results {
			if r.Err != nil {
				failed++
				continue
			}
			summaries = append(summaries, r.Result)
		}

		if err := cli.Output(summaries); err != nil {
			return err
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringArrayVar(&extractInputs, "input", nil, "path to an invoice PDF (repeatable)")
	extractCmd.Flags().StringVar(&extractOutput, "output", "", "directory for JSON output (created if absent)")
	extractCmd.Flags().BoolVar(&extractStrict, "strict", false, "fail a document when its output violates the record schema")

	extractCmd.MarkFlagRequired("input")
	extractCmd.MarkFlagRequired("output")

	extractCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if len(extractInputs) == 0 {
			return errors.New("at least one --input is required")
		}
		return nil
	}
}
