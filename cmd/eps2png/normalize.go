package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/InVictorLopes/eps-to-png-converter/internal/pipeline"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize an already rasterized image (PNG, JPEG, ...) without Ghostscript",
	RunE:  runNormalize,
}

func init() {
	normalizeCmd.Flags().StringP("input", "i", "", "Input image file")
	normalizeCmd.Flags().StringP("output", "o", "", "Output PNG file")
	addCanvasFlags(normalizeCmd)
	normalizeCmd.MarkFlagRequired("input")
	normalizeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	inputData, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	result, err := pipeline.Run(inputData, opts)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}

	if err := os.WriteFile(outputPath, result.Data, 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Normalized %dx%d → %dx%d\n", result.SrcWidth, result.SrcHeight, result.Width, result.Height)
	fmt.Fprintf(w, "Input:  %s (%d bytes)\n", inputPath, len(inputData))
	fmt.Fprintf(w, "Output: %s (%d bytes)\n", outputPath, len(result.Data))
	return nil
}
