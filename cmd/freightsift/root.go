package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/freightsift/freightsift/internal/cli"
	"github.com/freightsift/freightsift/internal/config"
	"github.com/freightsift/freightsift/version"
)

var (
	cfgFile      string
	logLevel     string
	outputFormat string

	cfgManager *config.Manager
)

var rootCmd = &cobra.Command{
	Use:   "freightsift",
	Short: "Structured shipment extraction from freight-invoice PDFs",
	Long: `Freightsift extracts structured shipment records from freight-invoice
PDFs produced by UPS, DHL, FedEx, Dachser and DB Schenker.

The pipeline includes:
  - Shipment block segmentation across multi-page invoices
  - Layered field extraction (strict, OCR-tolerant, fuzzy, keyword fallback)
  - German/English date, address, weight and cost-row parsing
  - Shape normalization that never destroys unparseable values`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.freightsift/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output-format", "o", "yaml", "run summary format: yaml or json",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cli.SetOutputFormat(outputFormat)

		var err error
		cfgManager, err = config.NewManager(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		cfg := cfgManager.Get()
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})
		slog.SetDefault(slog.New(handler))

		return nil
	}

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}
