package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"dircp/internal/traverse"
)

// BufferedStrategy walks the tree itself and copies every file through a
// fixed-size userspace buffer: directory structure first, then file
// contents.
type BufferedStrategy struct {
	bufSize int
	logger  *slog.Logger
}

// NewBuffered creates a buffered strategy with the given buffer size in KiB
// (DefaultBufferKB when non-positive).
func NewBuffered(bufferKB int, logger *slog.Logger) *BufferedStrategy {
	if bufferKB <= 0 {
		bufferKB = DefaultBufferKB
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BufferedStrategy{bufSize: bufferKB * 1024, logger: logger}
}

func (s *BufferedStrategy) Name() string { return "Buffered" }

func (s *BufferedStrategy) Description() string {
	return fmt.Sprintf("read/write loop with a %dKB userspace buffer", s.bufSize/1024)
}

func (s *BufferedStrategy) ValidatePrerequisites() []string { return nil }

// CopyDirectory replicates the directory structure, then copies each file
// through the buffer. Any file failure aborts the whole call; metadata
// failures do not.
func (s *BufferedStrategy) CopyDirectory(ctx context.Context, src, dst string, excludeGit bool) Result {
	start := time.Now()

	if err := checkSource(src); err != nil {
		return failed(s.Name(), 0, time.Since(start), err)
	}
	dirs, files, err := traverse.Partition(src, excludeGit)
	if err != nil {
		return failed(s.Name(), 0, time.Since(start), fmt.Errorf("walk source: %w", err))
	}
	if err := resetDest(dst); err != nil {
		return failed(s.Name(), 0, time.Since(start), err)
	}

	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dst, d.Rel), d.Mode.Perm()); err != nil {
			return failed(s.Name(), 0, time.Since(start), fmt.Errorf("mkdir %s: %w", d.Rel, err))
		}
	}

	buf := make([]byte, s.bufSize)
	var total int64
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return failed(s.Name(), total, time.Since(start), err)
		}
		target := filepath.Join(dst, f.Rel)
		if f.Link != "" {
			if err := makeSymlink(f.Link, target); err != nil {
				return failed(s.Name(), total, time.Since(start), err)
			}
			continue
		}
		n, err := copyFileBuffered(f.Path, target, buf, s.logger)
		total += n
		if err != nil {
			s.logger.Error("buffered copy failed", "path", f.Path, "error", err)
			return failed(s.Name(), total, time.Since(start), err)
		}
	}

	s.logger.Debug("buffered copy complete", "src", src, "files", len(files), "bytes", total)
	return succeeded(s.Name(), total, time.Since(start))
}
