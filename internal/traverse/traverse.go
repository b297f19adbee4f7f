// Package traverse provides the directory-enumeration primitives shared by
// the copy strategies and the benchmark runner: a portable recursive walk and
// a parallel scan that reads independent directories concurrently.
package traverse

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// GitDir is the path component skipped when git exclusion is requested.
const GitDir = ".git"

// Method identifies a traversal implementation.
type Method string

const (
	// MethodWalk is the portable recursive listing via filepath.WalkDir.
	MethodWalk Method = "walkdir"
	// MethodScan enumerates independent directories on a bounded worker pool.
	MethodScan Method = "parallel_scan"
)

// Methods returns the traversal methods usable on this host. Both are pure
// Go, so both are always available; benchmarks compare them empirically.
func Methods() []Method {
	return []Method{MethodWalk, MethodScan}
}

// Summary aggregates the contents of one tree.
type Summary struct {
	Files int64
	Dirs  int64
	Bytes int64
}

// Entry describes one filesystem object found during enumeration. Rel is the
// path relative to the enumeration root.
type Entry struct {
	Path string
	Rel  string
	Size int64
	Mode fs.FileMode
	Link string // symlink target, set when Mode is a symlink
}

// Walk recursively summarizes dir. Any path component named .git is skipped
// when excludeGit is set.
func Walk(dir string, excludeGit bool) (Summary, error) {
	var sum Summary
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path != dir && excludeGit && d.Name() == GitDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		switch {
		case d.IsDir():
			if path != dir {
				sum.Dirs++
			}
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			sum.Files++
			sum.Bytes += info.Size()
		default:
			sum.Files++
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}

// Partition walks dir once, splitting its contents into directories to
// create and entries to copy (regular files and symlinks). Used by the
// parallel strategy's first pass when the faster scan is unavailable.
func Partition(dir string, excludeGit bool) (dirs, files []Entry, err error) {
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == dir {
			return nil
		}
		if excludeGit && d.Name() == GitDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		entry, ok, entryErr := describe(path, rel, d)
		if entryErr != nil {
			return entryErr
		}
		if !ok {
			return nil
		}
		if entry.Mode.IsDir() {
			dirs = append(dirs, entry)
		} else {
			files = append(files, entry)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return dirs, files, nil
}

// Size returns the total byte size of path: the file size for a regular
// file, the sum of contained file sizes for a directory.
func Size(path string) (int64, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	sum, err := Walk(path, false)
	if err != nil {
		return 0, err
	}
	return sum.Bytes, nil
}

// describe converts a dir entry into an Entry. Sockets, devices and other
// irregular objects are reported as not copyable.
func describe(path, rel string, d fs.DirEntry) (Entry, bool, error) {
	info, err := d.Info()
	if err != nil {
		return Entry{}, false, fmt.Errorf("stat %s: %w", path, err)
	}
	entry := Entry{Path: path, Rel: rel, Mode: info.Mode()}
	switch {
	case info.IsDir():
		return entry, true, nil
	case info.Mode().IsRegular():
		entry.Size = info.Size()
		return entry, true, nil
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return Entry{}, false, fmt.Errorf("readlink %s: %w", path, err)
		}
		entry.Link = target
		return entry, true, nil
	default:
		return Entry{}, false, nil
	}
}
