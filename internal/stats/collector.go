// Package stats tracks per-call copy progress with lock-free counters, so
// parallel workers can report without contending on a mutex.
package stats

import "sync/atomic"

// Collector accumulates progress for one copy call. The zero value is ready
// to use.
type Collector struct {
	filesCopied atomic.Int64
	filesFailed atomic.Int64
	dirsCreated atomic.Int64
	bytesCopied atomic.Int64
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesCopied int64
	FilesFailed int64
	DirsCreated int64
	BytesCopied int64
}

func (c *Collector) AddFilesCopied(n int64) { c.filesCopied.Add(n) }
func (c *Collector) AddFilesFailed(n int64) { c.filesFailed.Add(n) }
func (c *Collector) AddDirsCreated(n int64) { c.dirsCreated.Add(n) }
func (c *Collector) AddBytesCopied(n int64) { c.bytesCopied.Add(n) }

// Snapshot returns a consistent read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesCopied: c.filesCopied.Load(),
		FilesFailed: c.filesFailed.Load(),
		DirsCreated: c.dirsCreated.Load(),
		BytesCopied: c.bytesCopied.Load(),
	}
}
