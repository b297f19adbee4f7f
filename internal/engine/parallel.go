package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"dircp/internal/stats"
	"dircp/internal/traverse"
)

// ParallelStrategy partitions the tree once, creates every directory, then
// fans the file copies out to a fixed pool of workers. Unlike the
// all-or-nothing strategies, a single file's failure is only a warning: the
// file is dropped from the byte count and the call still succeeds.
type ParallelStrategy struct {
	workers int
	bufSize int
	logger  *slog.Logger
}

// NewParallel creates a parallel strategy with the given pool size
// (DefaultMaxWorkers when non-positive) and per-worker buffer size in KiB.
func NewParallel(workers, bufferKB int, logger *slog.Logger) *ParallelStrategy {
	if workers <= 0 {
		workers = DefaultMaxWorkers
	}
	if bufferKB <= 0 {
		bufferKB = DefaultBufferKB
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ParallelStrategy{workers: workers, bufSize: bufferKB * 1024, logger: logger}
}

func (s *ParallelStrategy) Name() string { return "Parallel" }

func (s *ParallelStrategy) Description() string {
	return fmt.Sprintf("per-file copies on a pool of %d workers", s.workers)
}

func (s *ParallelStrategy) ValidatePrerequisites() []string { return nil }

// CopyDirectory runs the two-pass algorithm: partition, create all
// directories, then dispatch file copies to the pool. Only a fault in the
// dispatch itself (traversal, destination setup, mkdir) fails the call.
func (s *ParallelStrategy) CopyDirectory(ctx context.Context, src, dst string, excludeGit bool) Result {
	start := time.Now()

	if err := checkSource(src); err != nil {
		return failed(s.Name(), 0, time.Since(start), err)
	}

	dirs, files, err := traverse.ScanPartition(src, s.workers, excludeGit)
	if err != nil {
		s.logger.Debug("parallel scan failed, using recursive walk", "src", src, "error", err)
		dirs, files, err = traverse.Partition(src, excludeGit)
		if err != nil {
			return failed(s.Name(), 0, time.Since(start), fmt.Errorf("walk source: %w", err))
		}
	}

	if err := resetDest(dst); err != nil {
		return failed(s.Name(), 0, time.Since(start), err)
	}

	// All directories exist before any file task is submitted.
	coll := &stats.Collector{}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dst, d.Rel), d.Mode.Perm()); err != nil {
			return failed(s.Name(), 0, time.Since(start), fmt.Errorf("mkdir %s: %w", d.Rel, err))
		}
		coll.AddDirsCreated(1)
	}

	tasks := make(chan traverse.Entry)
	var wg sync.WaitGroup
	for range s.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, s.bufSize)
			for f := range tasks {
				s.copyOne(ctx, f, dst, buf, coll)
			}
		}()
	}

	for _, f := range files {
		tasks <- f
	}
	close(tasks)
	wg.Wait()

	snap := coll.Snapshot()
	s.logger.Debug("parallel copy complete",
		"src", src,
		"files", snap.FilesCopied,
		"failed", snap.FilesFailed,
		"bytes", snap.BytesCopied,
	)
	return succeeded(s.Name(), snap.BytesCopied, time.Since(start))
}

func (s *ParallelStrategy) copyOne(ctx context.Context, f traverse.Entry, dst string, buf []byte, coll *stats.Collector) {
	if ctx.Err() != nil {
		coll.AddFilesFailed(1)
		return
	}
	target := filepath.Join(dst, f.Rel)

	if f.Link != "" {
		if err := makeSymlink(f.Link, target); err != nil {
			s.logger.Warn("symlink failed", "path", f.Path, "error", err)
			coll.AddFilesFailed(1)
		}
		return
	}

	n, err := copyFileBuffered(f.Path, target, buf, s.logger)
	if err != nil {
		// Partial bytes of a failed file never count toward the result.
		s.logger.Warn("file copy failed", "path", f.Path, "error", err)
		coll.AddFilesFailed(1)
		return
	}
	coll.AddFilesCopied(1)
	coll.AddBytesCopied(n)
}
