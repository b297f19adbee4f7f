package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"dircp/internal/platform"
	"dircp/internal/traverse"
)

// SendfileStrategy copies file contents with the kernel zero-copy primitive.
// When sendfile fails at runtime for a particular file — not just on
// unsupported hosts, but for that file or filesystem — the strategy rewinds
// the destination and redoes that one file with a buffered loop instead of
// aborting the call.
type SendfileStrategy struct {
	bufSize int
	logger  *slog.Logger
}

// NewSendfile creates the sendfile strategy. bufferKB sizes the per-file
// fallback buffer.
func NewSendfile(bufferKB int, logger *slog.Logger) *SendfileStrategy {
	if bufferKB <= 0 {
		bufferKB = DefaultBufferKB
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SendfileStrategy{bufSize: bufferKB * 1024, logger: logger}
}

func (s *SendfileStrategy) Name() string { return "Sendfile" }

func (s *SendfileStrategy) Description() string {
	return "kernel zero-copy transfer via sendfile(2), per-file buffered fallback"
}

func (s *SendfileStrategy) ValidatePrerequisites() []string {
	if !platform.Supported() {
		return []string{"file-to-file sendfile(2) is not available on this host"}
	}
	return nil
}

// CopyDirectory replicates the structure, then transfers each file with
// sendfile. Any non-recoverable failure aborts the whole call.
func (s *SendfileStrategy) CopyDirectory(ctx context.Context, src, dst string, excludeGit bool) Result {
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
		n, err := s.copyFile(f.Path, target, buf)
		total += n
		if err != nil {
			s.logger.Error("sendfile copy failed", "path", f.Path, "error", err)
			return failed(s.Name(), total, time.Since(start), err)
		}
	}

	s.logger.Debug("sendfile copy complete", "src", src, "files", len(files), "bytes", total)
	return succeeded(s.Name(), total, time.Since(start))
}

// copyFile transfers one file with sendfile, rewinding and redoing it with
// the buffered loop on any runtime sendfile error.
func (s *SendfileStrategy) copyFile(src, dst string, buf []byte) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dst, err)
	}

	n, serr := platform.Copy(out, in, info.Size())
	if serr != nil {
		s.logger.Warn("sendfile failed for file, retrying buffered", "path", src, "error", serr)
		n, err = s.rewindAndRetry(in, out, buf)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("copy %s: %w", src, err)
	}

	preserveMetadata(dst, info, s.logger)
	return n, nil
}

// rewindAndRetry discards whatever sendfile managed to write and redoes the
// whole file through the userspace buffer.
func (s *SendfileStrategy) rewindAndRetry(in, out *os.File, buf []byte) (int64, error) {
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	if err := out.Truncate(0); err != nil {
		return 0, err
	}
	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return bufferedCopy(out, in, buf)
}
