package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/InVictorLopes/eps-to-png-converter/internal/codec"
	"github.com/InVictorLopes/eps-to-png-converter/internal/config"
	"github.com/InVictorLopes/eps-to-png-converter/internal/ir"
	"github.com/InVictorLopes/eps-to-png-converter/internal/transform"
)

var identifyCmd = &cobra.Command{
	Use:   "identify [file]",
	Short: "Inspect image dimensions, content box and shapes",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentify,
}

func init() {
	addGhostscriptFlags(identifyCmd)
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "File:        %s\n", path)

	if st, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "File size:   %d bytes (%.1f MB)\n", st.Size(), float64(st.Size())/(1024*1024))
	}

	if !cfg.HasExtension(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if info, err := codec.GetInfo(data); err == nil {
			fmt.Fprintf(w, "Format:      %s\n", info.Format)
			fmt.Fprintf(w, "Components:  %d\n", info.NumComponents)
			fmt.Fprintf(w, "Color model: %s\n", info.ColorModel)
		}
	}

	r, err := rasterizerFor(cfg, path).Rasterize(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("rasterizing %s: %w", path, err)
	}
	return describeRaster(w, cfg, r)
}

func describeRaster(w io.Writer, cfg *config.Config, r *ir.Raster) error {
	fmt.Fprintf(w, "Dimensions:  %d x %d\n", r.Width, r.Height)

	box, ok, err := transform.Locate(r)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(w, "Content:     none (fully transparent)")
		return nil
	}
	fmt.Fprintf(w, "Content:     %dx%d at (%d,%d)\n", box.W, box.H, box.X, box.Y)

	forest, err := transform.Shapes(r)
	if err != nil {
		return err
	}
	roots := forest.Roots()
	fmt.Fprintf(w, "Shapes:      %d (%d borders)\n", len(roots), len(forest))
	if sel := transform.Central(forest, r.Width, r.Height); sel >= 0 {
		b := forest[sel].Bounds()
		fmt.Fprintf(w, "Central:     %dx%d at (%d,%d), %d holes\n",
			b.Dx(), b.Dy(), b.Min.X, b.Min.Y, len(forest.Children(sel)))
	}
	if cfg.Isolation.Enabled && len(roots) > 1 {
		fmt.Fprintf(w, "Isolation:   would drop %d shapes\n", len(roots)-1)
	}
	return nil
}
