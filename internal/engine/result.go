package engine

import "time"

// Result is the terminal outcome of one directory copy. It is constructed
// once and returned by value; callers never mutate it.
type Result struct {
	Success      bool
	BytesCopied  int64
	Elapsed      time.Duration
	Err          string // empty on success
	StrategyUsed string
}

// SpeedMBps derives the effective throughput. Zero-duration copies report 0
// rather than infinity.
func (r Result) SpeedMBps() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.BytesCopied) / (1 << 20) / r.Elapsed.Seconds()
}

func succeeded(strategy string, bytes int64, elapsed time.Duration) Result {
	return Result{
		Success:      true,
		BytesCopied:  bytes,
		Elapsed:      elapsed,
		StrategyUsed: strategy,
	}
}

func failed(strategy string, bytes int64, elapsed time.Duration, err error) Result {
	return Result{
		BytesCopied:  bytes,
		Elapsed:      elapsed,
		Err:          err.Error(),
		StrategyUsed: strategy,
	}
}
