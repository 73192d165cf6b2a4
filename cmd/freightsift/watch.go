package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/freightsift/freightsift/internal/pipeline"
	"github.com/freightsift/freightsift/internal/watch"
)

var (
	watchDirs   []string
	watchOutput string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch directories and extract new invoice PDFs as they appear",
	Long: `Watch observes the given directories (recursively) and runs the
extraction pipeline on every PDF that appears or changes. Files are debounced
until the exporting side stops writing them, and opened with retries since
carrier portals write large PDFs non-atomically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := cfgManager.Get()
		log := slog.Default()

		cfgManager.WatchConfig()

		w, err := watch.New(watch.Config{
			Roots:       watchDirs,
			Debounce:    cfg.Watch.Debounce,
			InitialScan: cfg.Watch.InitialScan,
			Logger:      log,
		})
		if err != nil {
			return err
		}

		files, err := w.Start(ctx)
		if err != nil {
			return err
		}

		log.Info("watching for invoices", "dirs", watchDirs, "output", watchOutput)

		p := pipeline.New(log)
		for path := range files {
			path := path
			err := watch.ProcessSettled(ctx, path, func() error {
				_, err := p.ExtractFile(ctx, path, watchOutput, pipeline.Options{Strict: cfg.Strict})
				return err
			})
			if err != nil {
				log.Error("failed to process invoice", "path", path, "error", err)
			}
		}

		return nil
	},
}

func init() {
	watchCmd.Flags().StringArrayVar(&watchDirs, "dir", nil, "directory to watch for PDFs (repeatable)")
	watchCmd.Flags().StringVar(&watchOutput, "output", "", "directory for JSON output (created if absent)")

	watchCmd.MarkFlagRequired("dir")
	watchCmd.MarkFlagRequired("output")
}
