package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/InVictorLopes/eps-to-png-converter/internal/batch"
	"github.com/InVictorLopes/eps-to-png-converter/internal/codec"
	"github.com/InVictorLopes/eps-to-png-converter/internal/pipeline"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Rasterize one EPS file and normalize it to a square PNG",
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringP("input", "i", "", "Input EPS (or image) file")
	convertCmd.Flags().StringP("output", "o", "", "Output PNG file (default: input name with .png)")
	addCanvasFlags(convertCmd)
	addGhostscriptFlags(convertCmd)
	convertCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = batch.OutputPath(filepath.Dir(inputPath), inputPath)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	src, err := rasterizerFor(cfg, inputPath).Rasterize(cmd.Context(), inputPath)
	if err != nil {
		return fmt.Errorf("rasterizing: %w", err)
	}
	out, err := pipeline.Process(src, opts)
	if err != nil {
		return fmt.Errorf("conversion: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := codec.WritePNG(f, out); err != nil {
		f.Close()
		os.Remove(outputPath)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Converted %dx%d → %dx%d (%s)\n", src.Width, src.Height, out.Width, out.Height, opts.Compose.Mode)
	fmt.Fprintf(w, "Input:  %s\n", inputPath)
	fmt.Fprintf(w, "Output: %s\n", outputPath)
	return nil
}
