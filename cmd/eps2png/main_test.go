package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/InVictorLopes/eps-to-png-converter/internal/batch"
	"github.com/InVictorLopes/eps-to-png-converter/internal/codec"
	"github.com/InVictorLopes/eps-to-png-converter/internal/config"
	"github.com/InVictorLopes/eps-to-png-converter/internal/transform"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestApplyOverrides(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addCanvasFlags(cmd)
	addGhostscriptFlags(cmd)
	if err := cmd.ParseFlags([]string{"--mode", "fit", "--margin", "0.5", "--no-isolate", "--resolution", "600"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	cfg := config.Default()
	if err := applyOverrides(cmd, &cfg); err != nil {
		t.Fatalf("applyOverrides: %v", err)
	}
	if cfg.Canvas.Mode != "fit" || cfg.Canvas.Margin != 0.5 {
		t.Errorf("canvas = %+v, want fit with margin 0.5", cfg.Canvas)
	}
	if cfg.Canvas.Padding != 40 || cfg.Canvas.TargetSize != 1080 {
		t.Errorf("unset flags changed defaults: %+v", cfg.Canvas)
	}
	if cfg.Isolation.Enabled {
		t.Error("--no-isolate should disable isolation")
	}
	if cfg.Ghostscript.Resolution != 600 {
		t.Errorf("resolution = %d, want 600", cfg.Ghostscript.Resolution)
	}

	opts, err := pipelineOptions(&cfg)
	if err != nil {
		t.Fatalf("pipelineOptions: %v", err)
	}
	if opts.Compose.Mode != transform.ModeFit || opts.Isolate {
		t.Errorf("pipeline options = %+v", opts)
	}
}

func TestLoadConfigNormalizesFlags(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().String("input-dir", "", "")
	cmd.Flags().String("log-level", "", "")
	addCanvasFlags(cmd)
	args := []string{
		"--config", filepath.Join(t.TempDir(), "missing.toml"),
		"--input-dir", "~/artwork",
		"--log-level", "WARN",
		"--mode", "FIT",
	}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Paths.InputDir != filepath.Join(home, "artwork") {
		t.Errorf("input dir = %q, want %s", cfg.Paths.InputDir, filepath.Join(home, "artwork"))
	}
	if cfg.Canvas.Mode != "fit" {
		t.Errorf("mode = %q, want fit", cfg.Canvas.Mode)
	}
}

func TestNormalizeCommand(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	for y := 2; y < 8; y++ {
		for x := 4; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	if err := os.WriteFile(in, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, err := execute(t, "normalize", "-i", in, "-o", out, "--padding", "3",
		"--config", filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("normalize: %v\n%s", err, stdout)
	}
	if !strings.Contains(stdout, "20x10 → 18x18") {
		t.Errorf("unexpected output:\n%s", stdout)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	info, err := codec.GetInfo(data)
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if info.Width != 18 || info.Height != 18 {
		t.Errorf("output is %dx%d, want 18x18", info.Width, info.Height)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "eps2png.toml")
	if _, err := execute(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config does not load: exists=%v err=%v", exists, err)
	}
	if _, err := execute(t, "config", "init", path); err == nil {
		t.Fatal("expected an error when the file already exists")
	}
}

func TestRenderSummary(t *testing.T) {
	s := &batch.Summary{Results: []batch.Result{
		{Input: "/in/a.eps", Width: 1080, Height: 1080, Duration: 1500 * time.Millisecond},
		{Input: "/in/b.eps", Stage: "rasterize", Err: errors.New("gs failed")},
	}}
	got := renderSummary(s)
	for _, want := range []string{"a.eps", "1080x1080", "1.5s", "b.eps", "rasterize: gs failed"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
	footer := strings.ToLower(got)
	for _, want := range []string{"2 files", "1 failed"} {
		if !strings.Contains(footer, want) {
			t.Errorf("summary footer missing %q:\n%s", want, got)
		}
	}
}
