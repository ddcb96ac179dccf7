// Package batch converts every matching file in a directory, a bounded
// number at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/InVictorLopes/eps-to-png-converter/internal/codec"
	"github.com/InVictorLopes/eps-to-png-converter/internal/ir"
	"github.com/InVictorLopes/eps-to-png-converter/internal/logging"
	"github.com/InVictorLopes/eps-to-png-converter/internal/pipeline"
	"github.com/InVictorLopes/eps-to-png-converter/internal/rasterize"
)

const (
	lockName    = ".eps2png.lock"
	stageRaster = "rasterize"
	stageWrite  = "write"

	outputMode = 0o644
)

var (
	// ErrLocked is returned when another run holds the output directory.
	ErrLocked = errors.New("output directory is locked by another run")
	// ErrSkipped marks items that were never started because the run
	// stopped early.
	ErrSkipped = errors.New("skipped")
	// ErrDuplicateOutput marks an input whose output name is already taken
	// by an earlier input, such as logo.eps next to logo.EPS.
	ErrDuplicateOutput = errors.New("output name already used by another input")
)

// Options configures a batch run.
type Options struct {
	InputDir    string
	OutputDir   string
	Extensions  []string
	Workers     int // <= 0 means one per CPU
	StopOnError bool
	Pipeline    pipeline.Options
	Rasterizer  rasterize.Rasterizer
	Logger      *zap.Logger
}

// Result is the outcome of one input file.
type Result struct {
	Input    string
	Output   string
	Stage    string // failing stage, empty on success
	Err      error
	Duration time.Duration
	Width    int
	Height   int
}

// Summary collects the results of a run in input order.
type Summary struct {
	RunID   string
	Results []Result
	Elapsed time.Duration
}

// Failed counts results with an error, skipped items included.
func (s *Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Run converts every matching file in opts.InputDir into opts.OutputDir.
// Item failures are recorded in the summary and do not stop the run unless
// opts.StopOnError is set. A missing Ghostscript binary always aborts, as
// does cancellation of ctx. The returned error reports why the run stopped
// early; the summary is returned either way.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Rasterizer == nil {
		return nil, errors.New("batch: no rasterizer configured")
	}
	if err := opts.Pipeline.Compose.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".eps"}
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	inputs, err := Enumerate(opts.InputDir, exts)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	lock := flock.New(filepath.Join(opts.OutputDir, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, opts.OutputDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", zap.Error(err))
		}
	}()

	summary := &Summary{RunID: uuid.NewString(), Results: make([]Result, len(inputs))}
	logger = logger.With(zap.String(logging.FieldRunID, summary.RunID))
	logger.Info("batch started",
		zap.String("input_dir", opts.InputDir),
		zap.String("output_dir", opts.OutputDir),
		zap.Int("files", len(inputs)),
		zap.Int(logging.FieldWorkers, workers),
	)
	start := time.Now()

	claimed := make(map[string]string, len(inputs))
	for i, in := range inputs {
		res := Result{Input: in, Output: OutputPath(opts.OutputDir, in), Err: ErrSkipped}
		if first, ok := claimed[res.Output]; ok {
			res.Stage = stageWrite
			res.Err = fmt.Errorf("%w: %s", ErrDuplicateOutput, filepath.Base(first))
			logger.Error("conversion failed",
				zap.String(logging.FieldInput, in),
				zap.String(logging.FieldOutput, res.Output),
				zap.Error(res.Err),
			)
		} else {
			claimed[res.Output] = in
		}
		summary.Results[i] = res
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range inputs {
		if gctx.Err() != nil {
			break
		}
		if !errors.Is(summary.Results[i].Err, ErrSkipped) {
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res := convert(gctx, opts, summary.Results[i])
			summary.Results[i] = res

			fields := []zap.Field{
				zap.String(logging.FieldInput, res.Input),
				zap.Duration(logging.FieldDuration, res.Duration),
			}
			if res.Err != nil {
				logger.Error("conversion failed", append(fields, zap.String(logging.FieldStage, res.Stage), zap.Error(res.Err))...)
				if errors.Is(res.Err, rasterize.ErrGhostscriptNotFound) || opts.StopOnError {
					return res.Err
				}
				return nil
			}
			logger.Info("converted", append(fields,
				zap.String(logging.FieldOutput, res.Output),
				zap.Int("width", res.Width),
			)...)
			return nil
		})
	}

	runErr := g.Wait()
	if runErr == nil {
		runErr = ctx.Err()
	}
	summary.Elapsed = time.Since(start)

	logger.Info("batch finished",
		zap.Int("files", len(inputs)),
		zap.Int("failed", summary.Failed()),
		zap.Duration(logging.FieldDuration, summary.Elapsed),
	)
	return summary, runErr
}

func convert(ctx context.Context, opts Options, item Result) (res Result) {
	start := time.Now()
	res = item
	res.Err = nil
	defer func() { res.Duration = time.Since(start) }()

	src, err := opts.Rasterizer.Rasterize(ctx, res.Input)
	if err != nil {
		res.Stage, res.Err = stageRaster, err
		return res
	}
	out, err := pipeline.Process(src, opts.Pipeline)
	if err != nil {
		var se *pipeline.StageError
		if errors.As(err, &se) {
			res.Stage = se.Stage
		}
		res.Err = err
		return res
	}
	if err := writeAtomic(res.Output, out); err != nil {
		res.Stage, res.Err = stageWrite, err
		return res
	}
	res.Width, res.Height = out.Width, out.Height
	return res
}

// writeAtomic writes r next to path and renames it into place, so readers
// never see a partial PNG.
func writeAtomic(path string, r *ir.Raster) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".eps2png-*.png.tmp")
	if err != nil {
		return fmt.Errorf("creating temp output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = codec.WritePNG(tmp, r); err != nil {
		return err
	}
	if err = tmp.Chmod(outputMode); err != nil {
		return fmt.Errorf("setting output mode: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp output: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming output: %w", err)
	}
	return nil
}
