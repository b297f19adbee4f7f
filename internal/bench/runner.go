// Package bench measures copy strategies and traversal primitives on real
// directory trees, so an operator can pick a default strategy empirically.
// Every trial is guarded: a failing method yields a Result carrying the
// error instead of aborting the run.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dircp/internal/engine"
	"dircp/internal/traverse"
)

const defaultIterations = 3

// Runner drives the copy service and the raw traversal primitives across
// repeated trials.
type Runner struct {
	service  *engine.Service
	bufferKB int
	logger   *slog.Logger
}

// NewRunner creates a benchmark runner. bufferKB feeds the ad-hoc parallel
// strategies built for worker-scaling trials.
func NewRunner(service *engine.Service, bufferKB int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if bufferKB <= 0 {
		bufferKB = engine.DefaultBufferKB
	}
	return &Runner{service: service, bufferKB: bufferKB, logger: logger}
}

// TraversalBenchmark runs every available traversal method against dir,
// iterations times each.
func (r *Runner) TraversalBenchmark(dir string, iterations int) []Result {
	if iterations <= 0 {
		iterations = 1
	}
	var results []Result
	for _, method := range traverse.Methods() {
		for range iterations {
			results = append(results, r.traverseOnce(dir, method))
		}
	}
	return results
}

func (r *Runner) traverseOnce(dir string, method traverse.Method) Result {
	start := time.Now()
	var sum traverse.Summary
	var err error
	switch method {
	case traverse.MethodScan:
		sum, err = traverse.Scan(dir, 0, false)
	default:
		sum, err = traverse.Walk(dir, false)
	}
	elapsed := time.Since(start).Seconds()

	if err != nil {
		r.logger.Warn("traversal benchmark failed", "method", method, "error", err)
		return Result{
			Operation: "traversal",
			Method:    string(method),
			Errors:    []string{err.Error()},
		}
	}
	return Result{
		Operation:      "traversal",
		Method:         string(method),
		Duration:       elapsed,
		FileCount:      sum.Files,
		TotalSize:      sum.Bytes,
		ThroughputMBps: throughputMBps(sum.Bytes, elapsed),
	}
}

// StrategyBenchmark copies src once per strategy kind into a uniquely named
// destination under dstBase. The destination is deleted afterward no matter
// how the copy went.
func (r *Runner) StrategyBenchmark(ctx context.Context, src, dstBase string, kinds []engine.Kind) []Result {
	fileCount := r.countFiles(src)

	var results []Result
	for _, kind := range kinds {
		results = append(results, r.strategyOnce(ctx, src, dstBase, kind, fileCount))
	}
	return results
}

func (r *Runner) strategyOnce(ctx context.Context, src, dstBase string, kind engine.Kind, fileCount int64) Result {
	dst := filepath.Join(dstBase, fmt.Sprintf("bench-%s-%s", kind, uuid.NewString()[:8]))
	defer os.RemoveAll(dst)

	copied := r.service.CopyDirectory(ctx, src, dst, true, kind)
	result := Result{
		Operation:      "strategy_copy",
		Method:         copied.StrategyUsed,
		Duration:       copied.Elapsed.Seconds(),
		FileCount:      fileCount,
		TotalSize:      copied.BytesCopied,
		ThroughputMBps: copied.SpeedMBps(),
	}
	if copied.Err != "" {
		result.Errors = []string{copied.Err}
	}
	return result
}

// WorkerScalingBenchmark repeats the parallel strategy under varying pool
// sizes to characterize scaling.
func (r *Runner) WorkerScalingBenchmark(ctx context.Context, src, dstBase string, workerCounts []int) []Result {
	fileCount := r.countFiles(src)

	var results []Result
	for _, workers := range workerCounts {
		strategy := engine.NewParallel(workers, r.bufferKB, r.logger)
		dst := filepath.Join(dstBase, fmt.Sprintf("bench-workers%d-%s", workers, uuid.NewString()[:8]))

		copied := strategy.CopyDirectory(ctx, src, dst, true)
		os.RemoveAll(dst)

		result := Result{
			Operation:      "parallel_scaling",
			Method:         fmt.Sprintf("parallel_%d_workers", workers),
			Duration:       copied.Elapsed.Seconds(),
			FileCount:      fileCount,
			TotalSize:      copied.BytesCopied,
			ThroughputMBps: copied.SpeedMBps(),
		}
		if copied.Err != "" {
			result.Errors = []string{copied.Err}
		}
		results = append(results, result)
	}
	return results
}

// PipelineBenchmark runs the two-phase pipeline algorithm against an
// explicit component list: size every component concurrently, then copy each
// into cacheDir on a smaller pool, measuring both phases.
func (r *Runner) PipelineBenchmark(ctx context.Context, workspace, cacheDir string, components []string) []Result {
	sizes := make([]int64, len(components))
	var errMu sync.Mutex
	var sizeErrs []string

	start := time.Now()
	grp := &errgroup.Group{}
	grp.SetLimit(engine.DefaultMaxWorkers)
	for i, name := range components {
		grp.Go(func() error {
			size, err := traverse.Size(filepath.Join(workspace, name))
			if err != nil {
				r.logger.Warn("component sizing failed", "component", name, "error", err)
				errMu.Lock()
				sizeErrs = append(sizeErrs, err.Error())
				errMu.Unlock()
				return nil
			}
			sizes[i] = size
			return nil
		})
	}
	_ = grp.Wait()
	sizeElapsed := time.Since(start).Seconds()

	var totalSize int64
	for _, s := range sizes {
		totalSize += s
	}
	sizeResult := Result{
		Operation:      "pipeline",
		Method:         "size_discovery",
		Duration:       sizeElapsed,
		FileCount:      int64(len(components)),
		TotalSize:      totalSize,
		ThroughputMBps: throughputMBps(totalSize, sizeElapsed),
		Errors:         sizeErrs,
	}

	var copyErrs []string
	var copiedBytes int64

	start = time.Now()
	grp = &errgroup.Group{}
	grp.SetLimit(engine.DefaultMaxWorkers - 1)
	copied := make([]int64, len(components))
	for i, name := range components {
		grp.Go(func() error {
			n, err := engine.CopyPath(ctx, filepath.Join(workspace, name), filepath.Join(cacheDir, name), true)
			if err != nil {
				r.logger.Warn("component copy failed", "component", name, "error", err)
				errMu.Lock()
				copyErrs = append(copyErrs, err.Error())
				errMu.Unlock()
				return nil
			}
			copied[i] = n
			return nil
		})
	}
	_ = grp.Wait()
	copyElapsed := time.Since(start).Seconds()

	for _, n := range copied {
		copiedBytes += n
	}
	copyResult := Result{
		Operation:      "pipeline",
		Method:         "parallel_copy",
		Duration:       copyElapsed,
		FileCount:      int64(len(components)),
		TotalSize:      copiedBytes,
		ThroughputMBps: throughputMBps(copiedBytes, copyElapsed),
		Errors:         copyErrs,
	}

	return []Result{sizeResult, copyResult}
}

// Comprehensive runs every benchmark category in sequence. A fault in one
// category never blocks the others: all four keys are always present, each
// holding whatever subset of trials succeeded. When outputDir is non-empty a
// YAML report lands there.
func (r *Runner) Comprehensive(ctx context.Context, workspace, outputDir string, verbose bool) map[string][]Result {
	results := make(map[string][]Result)

	results["traversal"] = r.guard("traversal", func() []Result {
		return r.TraversalBenchmark(workspace, defaultIterations)
	})

	scratch, err := os.MkdirTemp("", "dircp-bench-*")
	if err != nil {
		r.logger.Error("benchmark scratch dir failed", "error", err)
		for _, category := range []string{"copy_strategies", "parallel_workers", "pipeline"} {
			results[category] = []Result{{Operation: category, Errors: []string{err.Error()}}}
		}
	} else {
		defer os.RemoveAll(scratch)

		results["copy_strategies"] = r.guard("copy_strategies", func() []Result {
			return r.StrategyBenchmark(ctx, workspace, scratch, r.service.AvailableKinds())
		})
		results["parallel_workers"] = r.guard("parallel_workers", func() []Result {
			return r.WorkerScalingBenchmark(ctx, workspace, scratch, []int{1, 2, 4, 8})
		})
		results["pipeline"] = r.guard("pipeline", func() []Result {
			return r.PipelineBenchmark(ctx, workspace, filepath.Join(scratch, "pipeline-cache"), r.topComponents(workspace))
		})
	}

	if verbose {
		for category, rs := range results {
			for _, res := range rs {
				r.logger.Info("benchmark result",
					"category", category,
					"method", res.Method,
					"duration_s", res.Duration,
					"speed", res.SpeedSummary(),
				)
			}
		}
	}

	if outputDir != "" {
		path := filepath.Join(outputDir, "benchmark_report.yaml")
		if err := WriteReport(path, results); err != nil {
			r.logger.Warn("benchmark report not written", "path", path, "error", err)
		}
	}
	return results
}

// guard converts a panicking category into an error-carrying Result so the
// comprehensive run keeps going.
func (r *Runner) guard(category string, fn func() []Result) (results []Result) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("benchmark category panicked", "category", category, "panic", p)
			results = []Result{{Operation: category, Errors: []string{fmt.Sprint(p)}}}
		}
	}()
	results = fn()
	if results == nil {
		results = []Result{}
	}
	return results
}

func (r *Runner) countFiles(src string) int64 {
	sum, err := traverse.Walk(src, true)
	if err != nil {
		r.logger.Debug("file count unavailable", "src", src, "error", err)
		return 0
	}
	return sum.Files
}

func (r *Runner) topComponents(workspace string) []string {
	entries, err := os.ReadDir(workspace)
	if err != nil {
		r.logger.Warn("component listing failed", "workspace", workspace, "error", err)
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.Name() == traverse.GitDir {
			continue
		}
		names = append(names, e.Name())
	}
	return names
}
