package batch

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/InVictorLopes/eps-to-png-converter/internal/codec"
	"github.com/InVictorLopes/eps-to-png-converter/internal/ir"
	"github.com/InVictorLopes/eps-to-png-converter/internal/logging"
	"github.com/InVictorLopes/eps-to-png-converter/internal/pipeline"
	"github.com/InVictorLopes/eps-to-png-converter/internal/rasterize"
	"github.com/InVictorLopes/eps-to-png-converter/internal/transform"
)

// fakeRasterizer serves canned rasters or errors keyed by file base name.
type fakeRasterizer struct {
	rasters map[string]*ir.Raster
	errs    map[string]error
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, path string) (*ir.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	if r, ok := f.rasters[name]; ok {
		return r.Clone(), nil
	}
	return nil, fmt.Errorf("no fixture for %s", name)
}

func square(w, h int) *ir.Raster {
	r := ir.New(w, h)
	for y := h / 4; y < h*3/4; y++ {
		for x := w / 4; x < w*3/4; x++ {
			r.Set(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	return r
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("%!PS"), 0o644); err != nil {
			t.Fatalf("write %s: %v", n, err)
		}
	}
}

func baseOptions(t *testing.T, r rasterize.Rasterizer) Options {
	t.Helper()
	return Options{
		InputDir:  t.TempDir(),
		OutputDir: filepath.Join(t.TempDir(), "out"),
		Workers:   2,
		Pipeline: pipeline.Options{
			Compose: transform.ComposeOptions{Mode: transform.ModePad, Padding: 2},
			Isolate: true,
		},
		Rasterizer: r,
	}
}

func errsOf(results []Result) map[string]string {
	out := make(map[string]string, len(results))
	for _, r := range results {
		msg := ""
		if r.Err != nil {
			msg = r.Stage
			if errors.Is(r.Err, ErrSkipped) {
				msg = "skipped"
			}
		}
		out[filepath.Base(r.Input)] = msg
	}
	return out
}

func TestEnumerate(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.eps", "a.EPS", "c.png", "notes.txt")
	if err := os.Mkdir(filepath.Join(dir, "d.eps"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Enumerate(dir, []string{".eps"})
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	want := []string{filepath.Join(dir, "a.EPS"), filepath.Join(dir, "b.eps")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}

	got, err = Enumerate(dir, []string{"PNG"})
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "c.png")}, got); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}

	if _, err := Enumerate(filepath.Join(dir, "missing"), nil); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestOutputPath(t *testing.T) {
	got := OutputPath("/out", "/in/logo.final.eps")
	if want := filepath.Join("/out", "logo.final.png"); got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}
}

func TestRunConvertsAll(t *testing.T) {
	fake := &fakeRasterizer{rasters: map[string]*ir.Raster{
		"one.eps": square(40, 20),
		"two.eps": square(16, 32),
	}}
	opts := baseOptions(t, fake)
	touch(t, opts.InputDir, "one.eps", "two.eps", "skip.txt")

	core, logs := observer.New(zapcore.InfoLevel)
	opts.Logger = zap.New(core)

	summary, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Results) != 2 || summary.Failed() != 0 {
		t.Fatalf("unexpected results: %+v", summary.Results)
	}
	if summary.RunID == "" {
		t.Error("expected a run id")
	}

	wantSide := map[string]int{"one.png": 24, "two.png": 20}
	for name, side := range wantSide {
		data, err := os.ReadFile(filepath.Join(opts.OutputDir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		info, err := codec.GetInfo(data)
		if err != nil {
			t.Fatalf("GetInfo %s: %v", name, err)
		}
		if info.Width != side || info.Height != side {
			t.Errorf("%s is %dx%d, want %dx%d", name, info.Width, info.Height, side, side)
		}
	}

	entries, err := os.ReadDir(opts.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}

	converted := logs.FilterMessage("converted").All()
	if len(converted) != 2 {
		t.Fatalf("expected 2 converted log entries, got %d", len(converted))
	}
	for _, entry := range converted {
		if entry.ContextMap()[logging.FieldRunID] != summary.RunID {
			t.Errorf("log entry missing run id: %v", entry.ContextMap())
		}
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	fake := &fakeRasterizer{
		rasters: map[string]*ir.Raster{
			"a.eps":     square(8, 8),
			"blank.eps": ir.New(8, 8),
			"c.eps":     square(8, 8),
		},
		errs: map[string]error{"b.eps": errors.New("gs exploded")},
	}
	opts := baseOptions(t, fake)
	touch(t, opts.InputDir, "a.eps", "b.eps", "blank.eps", "c.eps")

	core, logs := observer.New(zapcore.InfoLevel)
	opts.Logger = zap.New(core)

	summary, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := map[string]string{"a.eps": "", "b.eps": stageRaster, "blank.eps": pipeline.StageCompose, "c.eps": ""}
	if diff := cmp.Diff(want, errsOf(summary.Results)); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(summary.Results[2].Err, transform.ErrEmptyContent) {
		t.Errorf("blank.eps error = %v, want ErrEmptyContent", summary.Results[2].Err)
	}
	if n := logs.FilterMessage("conversion failed").Len(); n != 2 {
		t.Errorf("expected 2 failure log entries, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(opts.OutputDir, "blank.png")); !os.IsNotExist(err) {
		t.Errorf("failed item should leave no output, stat err = %v", err)
	}
}

func TestRunStopOnError(t *testing.T) {
	boom := errors.New("boom")
	fake := &fakeRasterizer{
		rasters: map[string]*ir.Raster{"b.eps": square(8, 8), "c.eps": square(8, 8)},
		errs:    map[string]error{"a.eps": boom},
	}
	opts := baseOptions(t, fake)
	opts.Workers = 1
	opts.StopOnError = true
	touch(t, opts.InputDir, "a.eps", "b.eps", "c.eps")

	summary, err := Run(context.Background(), opts)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	want := map[string]string{"a.eps": stageRaster, "b.eps": "skipped", "c.eps": "skipped"}
	if diff := cmp.Diff(want, errsOf(summary.Results)); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestRunAbortsWithoutGhostscript(t *testing.T) {
	fake := &fakeRasterizer{errs: map[string]error{
		"a.eps": fmt.Errorf("%w: gs", rasterize.ErrGhostscriptNotFound),
		"b.eps": fmt.Errorf("%w: gs", rasterize.ErrGhostscriptNotFound),
	}}
	opts := baseOptions(t, fake)
	opts.Workers = 1
	touch(t, opts.InputDir, "a.eps", "b.eps")

	summary, err := Run(context.Background(), opts)
	if !errors.Is(err, rasterize.ErrGhostscriptNotFound) {
		t.Fatalf("expected ErrGhostscriptNotFound, got %v", err)
	}
	if !errors.Is(summary.Results[1].Err, ErrSkipped) {
		t.Errorf("second item should be skipped, got %v", summary.Results[1].Err)
	}
}

func TestRunCancelled(t *testing.T) {
	fake := &fakeRasterizer{rasters: map[string]*ir.Raster{"a.eps": square(8, 8)}}
	opts := baseOptions(t, fake)
	touch(t, opts.InputDir, "a.eps")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := Run(ctx, opts)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if summary.Failed() != 1 {
		t.Errorf("expected the item to be reported as not converted: %+v", summary.Results)
	}
	if _, err := os.Stat(filepath.Join(opts.OutputDir, "a.png")); !os.IsNotExist(err) {
		t.Errorf("cancelled run should write nothing, stat err = %v", err)
	}
}

func TestRunRefusesLockedOutput(t *testing.T) {
	opts := baseOptions(t, &fakeRasterizer{})
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	held := flock.New(filepath.Join(opts.OutputDir, lockName))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	if _, err := Run(context.Background(), opts); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestRunRejectsBadOptions(t *testing.T) {
	opts := baseOptions(t, &fakeRasterizer{})
	opts.Pipeline.Compose.Padding = -3
	if _, err := Run(context.Background(), opts); !errors.Is(err, transform.ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}

	opts = baseOptions(t, nil)
	opts.Rasterizer = nil
	if _, err := Run(context.Background(), opts); err == nil {
		t.Fatal("expected error without a rasterizer")
	}
}

func TestWriteAtomicOutputIsWorldReadable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	path := filepath.Join(t.TempDir(), "logo.png")
	if err := writeAtomic(path, square(4, 4)); err != nil {
		t.Fatalf("writeAtomic: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o644 {
		t.Errorf("output mode = %v, want -rw-r--r--", got)
	}
}

func TestRunReportsOutputNameCollision(t *testing.T) {
	fake := &fakeRasterizer{rasters: map[string]*ir.Raster{
		"logo.EPS": square(8, 8),
		"logo.eps": square(12, 12),
	}}
	opts := baseOptions(t, fake)
	touch(t, opts.InputDir, "logo.EPS", "logo.eps")
	if entries, _ := os.ReadDir(opts.InputDir); len(entries) != 2 {
		t.Skip("case-insensitive file system")
	}

	summary, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Sorted order puts logo.EPS first, so it owns logo.png.
	if summary.Results[0].Err != nil {
		t.Errorf("first input failed: %v", summary.Results[0].Err)
	}
	if !errors.Is(summary.Results[1].Err, ErrDuplicateOutput) {
		t.Fatalf("second input error = %v, want ErrDuplicateOutput", summary.Results[1].Err)
	}
	if !strings.Contains(summary.Results[1].Err.Error(), "logo.EPS") {
		t.Errorf("error %q should name the input that owns the output", summary.Results[1].Err)
	}

	data, err := os.ReadFile(filepath.Join(opts.OutputDir, "logo.png"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	info, err := codec.GetInfo(data)
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	// square(8, 8) has 4x4 content, plus padding 2 on each side.
	if info.Width != 8 {
		t.Errorf("logo.png is %dpx wide, want the 8px result of logo.EPS", info.Width)
	}
}
