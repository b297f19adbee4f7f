package engine

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"dircp/internal/traverse"
)

// checkSource verifies that src exists and is a directory.
func checkSource(src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s: not a directory", src)
	}
	return nil
}

// resetDest destroys any existing destination and creates it fresh. Copies
// are non-incremental: nothing from a previous run may survive.
func resetDest(dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("clear destination: %w", err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	return nil
}

// copyTree recursively copies the contents of src into dst, which must
// already exist. It returns the bytes copied before the first error.
func copyTree(ctx context.Context, src, dst string, excludeGit bool) (int64, error) {
	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, fmt.Errorf("readdir %s: %w", src, err)
	}

	var total int64
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if excludeGit && e.Name() == traverse.GitDir {
			continue
		}
		sp := filepath.Join(src, e.Name())
		dp := filepath.Join(dst, e.Name())

		switch {
		case e.IsDir():
			info, err := e.Info()
			if err != nil {
				return total, fmt.Errorf("stat %s: %w", sp, err)
			}
			if err := os.MkdirAll(dp, info.Mode().Perm()); err != nil {
				return total, fmt.Errorf("mkdir %s: %w", dp, err)
			}
			n, err := copyTree(ctx, sp, dp, excludeGit)
			total += n
			if err != nil {
				return total, err
			}
		case e.Type().IsRegular():
			n, err := copyFile(sp, dp)
			total += n
			if err != nil {
				return total, err
			}
		case e.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(sp)
			if err != nil {
				return total, fmt.Errorf("readlink %s: %w", sp, err)
			}
			if err := makeSymlink(target, dp); err != nil {
				return total, err
			}
		default:
			// sockets, devices and other irregular entries are skipped
		}
	}
	return total, nil
}

// CopyPath bulk-copies src (file or subtree) to dst. The pipeline strategy
// and the benchmark runner use it for whole-component copies.
func CopyPath(ctx context.Context, src, dst string, excludeGit bool) (int64, error) {
	info, err := os.Lstat(src)
	if err != nil {
		return 0, fmt.Errorf("source: %w", err)
	}
	switch {
	case info.IsDir():
		if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return 0, fmt.Errorf("mkdir %s: %w", dst, err)
		}
		return copyTree(ctx, src, dst, excludeGit)
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return 0, fmt.Errorf("readlink %s: %w", src, err)
		}
		return 0, makeSymlink(target, dst)
	default:
		return copyFile(src, dst)
	}
}

// copyFile copies one regular file with io.Copy, letting the runtime pick
// the transfer path, and carries the source mode onto the new file.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dst, err)
	}

	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("copy %s: %w", src, err)
	}
	_ = os.Chtimes(dst, time.Now(), info.ModTime())
	return n, nil
}

// bufferedCopy pumps src into dst through buf with an explicit read/write
// loop, never handing the transfer off to a kernel fast path.
func bufferedCopy(dst io.Writer, src io.Reader, buf []byte) (int64, error) {
	var total int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			total += int64(w)
			if werr != nil {
				return total, werr
			}
			if w < n {
				return total, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}

// copyFileBuffered copies one regular file through buf, then applies the
// source mode and mtime best-effort. Metadata failures never fail the copy.
func copyFileBuffered(src, dst string, buf []byte, logger *slog.Logger) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dst, err)
	}

	n, err := bufferedCopy(out, in, buf)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("copy %s: %w", src, err)
	}

	preserveMetadata(dst, info, logger)
	return n, nil
}

// preserveMetadata reapplies source permissions and mtime. Best-effort: a
// filesystem that rejects either gets a debug log, not a failed copy.
func preserveMetadata(dst string, info os.FileInfo, logger *slog.Logger) {
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		logger.Debug("preserve mode", "path", dst, "error", err)
	}
	if err := os.Chtimes(dst, time.Now(), info.ModTime()); err != nil {
		logger.Debug("preserve mtime", "path", dst, "error", err)
	}
}

// makeSymlink recreates a symlink at dst pointing at target, replacing any
// stale entry left at that path.
func makeSymlink(target, dst string) error {
	_ = os.Remove(dst)
	if err := os.Symlink(target, dst); err != nil {
		return fmt.Errorf("symlink %s -> %s: %w", dst, target, err)
	}
	return nil
}
