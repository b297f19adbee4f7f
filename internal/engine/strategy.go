package engine

import "context"

// Kind identifies a copy strategy in the service registry and in
// configuration.
type Kind string

const (
	KindBaseline Kind = "baseline"
	KindBuffered Kind = "buffered"
	KindSendfile Kind = "sendfile"
	KindParallel Kind = "parallel"
	KindPipeline Kind = "pipeline"
)

// Kinds lists every strategy kind in registration order.
func Kinds() []Kind {
	return []Kind{KindBaseline, KindBuffered, KindSendfile, KindParallel, KindPipeline}
}

// ParseKind maps a configuration string to a Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Default tunables, applied when configuration supplies none.
const (
	DefaultBufferKB   = 1024
	DefaultMaxWorkers = 4
)

// Strategy is a complete, swappable algorithm for copying one directory tree
// to another. Implementations convert every anticipated I/O failure into a
// failed Result; CopyDirectory never panics for expected failures.
type Strategy interface {
	Name() string
	Description() string

	// ValidatePrerequisites returns the host capabilities the strategy
	// needs but cannot currently satisfy. Empty means ready to run.
	ValidatePrerequisites() []string

	// CopyDirectory copies all of src into dst, destroying dst first. It
	// blocks until the copy fully completes. excludeGit skips any path
	// component literally named .git at any depth.
	CopyDirectory(ctx context.Context, src, dst string, excludeGit bool) Result
}
