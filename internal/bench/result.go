package bench

import "fmt"

// Result is one benchmark measurement: a single trial of one method or
// strategy. A trial that faulted carries zeroed counts and the error text.
type Result struct {
	Operation      string   `yaml:"operation"`
	Method         string   `yaml:"method"`
	Duration       float64  `yaml:"duration_seconds"`
	FileCount      int64    `yaml:"file_count"`
	TotalSize      int64    `yaml:"total_size"`
	ThroughputMBps float64  `yaml:"throughput_mbps"`
	Errors         []string `yaml:"errors,omitempty"`
}

// SpeedSummary renders the throughput for humans, switching to GB/s above
// 1000 MB/s.
func (r Result) SpeedSummary() string {
	if r.ThroughputMBps >= 1000 {
		return fmt.Sprintf("%.2f GB/s", r.ThroughputMBps/1000)
	}
	return fmt.Sprintf("%.2f MB/s", r.ThroughputMBps)
}

func throughputMBps(bytes int64, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return float64(bytes) / (1 << 20) / seconds
}
