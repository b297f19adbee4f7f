package engine

import (
	"context"
	"log/slog"
	"time"
)

// BaselineStrategy is a plain recursive tree copy with no concurrency. It
// has no prerequisites and is the universal fallback target.
type BaselineStrategy struct {
	logger *slog.Logger
}

// NewBaseline creates the baseline strategy.
func NewBaseline(logger *slog.Logger) *BaselineStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaselineStrategy{logger: logger}
}

func (s *BaselineStrategy) Name() string { return "Baseline" }

func (s *BaselineStrategy) Description() string {
	return "single-threaded recursive tree copy, always available"
}

func (s *BaselineStrategy) ValidatePrerequisites() []string { return nil }

// CopyDirectory copies src into dst in one pass. Any failure aborts the
// whole call.
func (s *BaselineStrategy) CopyDirectory(ctx context.Context, src, dst string, excludeGit bool) Result {
	start := time.Now()

	if err := checkSource(src); err != nil {
		return failed(s.Name(), 0, time.Since(start), err)
	}
	if err := resetDest(dst); err != nil {
		return failed(s.Name(), 0, time.Since(start), err)
	}

	bytes, err := copyTree(ctx, src, dst, excludeGit)
	if err != nil {
		s.logger.Error("baseline copy failed", "src", src, "dst", dst, "error", err)
		return failed(s.Name(), bytes, time.Since(start), err)
	}

	s.logger.Debug("baseline copy complete", "src", src, "bytes", bytes)
	return succeeded(s.Name(), bytes, time.Since(start))
}
