package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/InVictorLopes/eps-to-png-converter/internal/batch"
	"github.com/InVictorLopes/eps-to-png-converter/internal/logging"
	"github.com/InVictorLopes/eps-to-png-converter/internal/rasterize"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Convert every EPS file in a directory",
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().String("input-dir", "", "Directory to read EPS files from (default paths.input_dir)")
	batchCmd.Flags().String("output-dir", "", "Directory to write PNG files to (default paths.output_dir)")
	batchCmd.Flags().Int("workers", 0, "Concurrent conversions (default one per CPU)")
	batchCmd.Flags().Bool("stop-on-error", false, "Stop dispatching files after the first failure")
	batchCmd.Flags().String("log-level", "", "Log level: debug, info, warn or error")
	addCanvasFlags(batchCmd)
	addGhostscriptFlags(batchCmd)
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Paths.InputDir == "" || cfg.Paths.OutputDir == "" {
		return errors.New("input and output directories are required (flags or [paths] in the config file)")
	}
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	summary, runErr := batch.Run(cmd.Context(), batch.Options{
		InputDir:    cfg.Paths.InputDir,
		OutputDir:   cfg.Paths.OutputDir,
		Extensions:  cfg.Paths.Extensions,
		Workers:     cfg.Workers.Count,
		StopOnError: cfg.Workers.StopOnError,
		Pipeline:    opts,
		Rasterizer:  rasterize.Auto{Vector: rasterize.NewGhostscript(cfg.Ghostscript)},
		Logger:      logger,
	})
	if summary == nil {
		return runErr
	}

	w := cmd.OutOrStdout()
	if len(summary.Results) == 0 {
		fmt.Fprintf(w, "No matching files in %s\n", cfg.Paths.InputDir)
		return runErr
	}
	fmt.Fprintln(w, renderSummary(summary))
	fmt.Fprintf(w, "%d converted, %d failed in %s (run %s)\n",
		len(summary.Results)-summary.Failed(), summary.Failed(),
		summary.Elapsed.Round(time.Millisecond), summary.RunID)

	if runErr != nil {
		logger.Error("batch stopped early", zap.Error(runErr))
		return runErr
	}
	if n := summary.Failed(); n > 0 {
		return fmt.Errorf("%d of %d files failed", n, len(summary.Results))
	}
	return nil
}
