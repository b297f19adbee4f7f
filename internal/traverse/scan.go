package traverse

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
)

// Scan summarizes dir by reading independent directories concurrently. A
// bounded semaphore keeps at most workers ReadDir calls in flight; each
// subdirectory is scanned by its own goroutine.
func Scan(dir string, workers int, excludeGit bool) (Summary, error) {
	s := newScanner(workers)
	info, err := os.Stat(dir)
	if err != nil {
		return Summary{}, err
	}
	if !info.IsDir() {
		return Summary{}, fmt.Errorf("scan %s: not a directory", dir)
	}

	s.wg.Add(1)
	s.scanDir(dir, excludeGit, nil)
	s.wg.Wait()

	if s.err != nil {
		return Summary{}, s.err
	}
	return Summary{
		Files: s.files.Load(),
		Dirs:  s.dirs.Load(),
		Bytes: s.bytes.Load(),
	}, nil
}

// ScanPartition is the batched counterpart of Partition: the same dirs/files
// split, produced by the parallel scanner. Entry order is unspecified.
func ScanPartition(dir string, workers int, excludeGit bool) (dirs, files []Entry, err error) {
	s := newScanner(workers)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("scan %s: not a directory", dir)
	}

	var mu sync.Mutex
	collect := func(e Entry) {
		mu.Lock()
		if e.Mode.IsDir() {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
		mu.Unlock()
	}

	s.root = dir
	s.wg.Add(1)
	s.scanDir(dir, excludeGit, collect)
	s.wg.Wait()

	if s.err != nil {
		return nil, nil, s.err
	}
	return dirs, files, nil
}

type scanner struct {
	root  string
	sem   chan struct{}
	wg    sync.WaitGroup
	files atomic.Int64
	dirs  atomic.Int64
	bytes atomic.Int64

	mu  sync.Mutex
	err error
}

func newScanner(workers int) *scanner {
	if workers <= 0 {
		workers = min(runtime.NumCPU(), 8)
	}
	return &scanner{sem: make(chan struct{}, workers)}
}

func (s *scanner) record(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

func (s *scanner) scanDir(dir string, excludeGit bool, collect func(Entry)) {
	defer s.wg.Done()

	s.sem <- struct{}{}
	entries, err := os.ReadDir(dir)
	<-s.sem
	if err != nil {
		s.record(err)
		return
	}

	for _, e := range entries {
		if excludeGit && e.Name() == GitDir {
			continue
		}
		path := filepath.Join(dir, e.Name())

		if collect != nil {
			rel, relErr := filepath.Rel(s.root, path)
			if relErr != nil {
				s.record(relErr)
				continue
			}
			entry, ok, descErr := describe(path, rel, e)
			if descErr != nil {
				s.record(descErr)
				continue
			}
			if ok {
				collect(entry)
			}
		}

		switch {
		case e.IsDir():
			s.dirs.Add(1)
			s.wg.Add(1)
			go s.scanDir(path, excludeGit, collect)
		case e.Type().IsRegular():
			info, infoErr := e.Info()
			if infoErr != nil {
				s.record(infoErr)
				continue
			}
			s.files.Add(1)
			s.bytes.Add(info.Size())
		default:
			s.files.Add(1)
		}
	}
}
