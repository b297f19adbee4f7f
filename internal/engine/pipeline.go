package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"dircp/internal/stats"
	"dircp/internal/traverse"
)

// PipelineStrategy is tuned for a shallow, named-components layout: a handful
// of top-level subdirectories plus loose root files. It sizes every component
// concurrently on one pool, then copies each component as an independent task
// on a second, smaller pool — subtree copies are heavier per task, so fewer
// run at once.
type PipelineStrategy struct {
	sizeWorkers int
	copyWorkers int
	logger      *slog.Logger
}

// NewPipeline creates a pipeline strategy. maxWorkers sizes the discovery
// pool; the copy pool runs one worker fewer (minimum one).
func NewPipeline(maxWorkers int, logger *slog.Logger) *PipelineStrategy {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	copyWorkers := maxWorkers - 1
	if copyWorkers < 1 {
		copyWorkers = 1
	}
	return &PipelineStrategy{
		sizeWorkers: maxWorkers,
		copyWorkers: copyWorkers,
		logger:      logger,
	}
}

func (s *PipelineStrategy) Name() string { return "Pipeline" }

func (s *PipelineStrategy) Description() string {
	return fmt.Sprintf("two-phase component copy: %d sizing workers, %d copy workers",
		s.sizeWorkers, s.copyWorkers)
}

func (s *PipelineStrategy) ValidatePrerequisites() []string { return nil }

type component struct {
	name  string
	isDir bool
	size  int64 // phase-1 estimate, may be stale by phase 2
}

// CopyDirectory runs size discovery, then the component copies. Per-component
// failures are warnings; only a dispatch fault fails the call. A source with
// no usable components degrades to a plain recursive copy, marked with a
// "(fallback)" suffix on the strategy name.
func (s *PipelineStrategy) CopyDirectory(ctx context.Context, src, dst string, excludeGit bool) Result {
	start := time.Now()

	if err := checkSource(src); err != nil {
		return failed(s.Name(), 0, time.Since(start), err)
	}

	comps, err := s.discoverComponents(src, excludeGit)
	if err != nil {
		return failed(s.Name(), 0, time.Since(start), err)
	}
	if len(comps) == 0 {
		return s.fallbackCopy(ctx, src, dst, excludeGit, start)
	}

	if err := resetDest(dst); err != nil {
		return failed(s.Name(), 0, time.Since(start), err)
	}

	s.discoverSizes(ctx, src, comps)

	// Largest components first keeps the smaller copy pool saturated.
	sort.Slice(comps, func(i, j int) bool { return comps[i].size > comps[j].size })

	coll := &stats.Collector{}
	grp := &errgroup.Group{}
	grp.SetLimit(s.copyWorkers)
	for _, c := range comps {
		grp.Go(func() error {
			s.copyComponent(ctx, src, dst, excludeGit, c, coll)
			return nil
		})
	}
	_ = grp.Wait()

	snap := coll.Snapshot()
	s.logger.Debug("pipeline copy complete",
		"src", src,
		"components", len(comps),
		"failed", snap.FilesFailed,
		"bytes", snap.BytesCopied,
	)
	return succeeded(s.Name(), snap.BytesCopied, time.Since(start))
}

// discoverComponents lists the top-level entries of src.
func (s *PipelineStrategy) discoverComponents(src string, excludeGit bool) ([]*component, error) {
	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", src, err)
	}
	var comps []*component
	for _, e := range entries {
		if excludeGit && e.Name() == traverse.GitDir {
			continue
		}
		comps = append(comps, &component{name: e.Name(), isDir: e.IsDir()})
	}
	return comps, nil
}

// discoverSizes fills in component sizes concurrently. A component that
// cannot be sized copies anyway; the size only drives scheduling order.
func (s *PipelineStrategy) discoverSizes(ctx context.Context, src string, comps []*component) {
	grp := &errgroup.Group{}
	grp.SetLimit(s.sizeWorkers)
	for _, c := range comps {
		grp.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			size, err := traverse.Size(filepath.Join(src, c.name))
			if err != nil {
				s.logger.Warn("component size discovery failed", "component", c.name, "error", err)
				return nil
			}
			c.size = size
			return nil
		})
	}
	_ = grp.Wait()
}

// copyComponent copies one top-level entry and records the actual copied
// size, recomputed from what landed in the destination.
func (s *PipelineStrategy) copyComponent(ctx context.Context, src, dst string, excludeGit bool, c *component, coll *stats.Collector) {
	if ctx.Err() != nil {
		coll.AddFilesFailed(1)
		return
	}

	target := filepath.Join(dst, c.name)
	if _, err := CopyPath(ctx, filepath.Join(src, c.name), target, excludeGit); err != nil {
		s.logger.Warn("component copy failed", "component", c.name, "error", err)
		coll.AddFilesFailed(1)
		return
	}

	// Phase-1 sizes may be stale; measure what was actually written.
	actual, err := traverse.Size(target)
	if err != nil {
		s.logger.Warn("component size recount failed", "component", c.name, "error", err)
		actual = c.size
	}
	coll.AddFilesCopied(1)
	coll.AddBytesCopied(actual)
}

// fallbackCopy handles sources with no usable top-level components.
func (s *PipelineStrategy) fallbackCopy(ctx context.Context, src, dst string, excludeGit bool, start time.Time) Result {
	s.logger.Warn("no usable components, using plain recursive copy", "src", src)
	name := s.Name() + " (fallback)"

	if err := resetDest(dst); err != nil {
		return failed(name, 0, time.Since(start), err)
	}
	bytes, err := copyTree(ctx, src, dst, excludeGit)
	if err != nil {
		return failed(name, bytes, time.Since(start), err)
	}
	return succeeded(name, bytes, time.Since(start))
}
