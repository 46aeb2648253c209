// Package stats counts import outcomes.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector tracks import statistics using lock-free atomic counters.
type Collector struct {
	filesFound        atomic.Int64
	filesTransferred  atomic.Int64
	filesSkipped      atomic.Int64
	filesFailed       atomic.Int64
	bytesTransferred  atomic.Int64
	filesVerified     atomic.Int64
	filesVerifyFailed atomic.Int64
	startTime         time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesFound        int64
	FilesTransferred  int64
	FilesSkipped      int64
	FilesFailed       int64
	BytesTransferred  int64
	FilesVerified     int64
	FilesVerifyFailed int64
	Elapsed           time.Duration
}

func (c *Collector) AddFilesFound(n int64)        { c.filesFound.Add(n) }
func (c *Collector) AddFilesTransferred(n int64)  { c.filesTransferred.Add(n) }
func (c *Collector) AddFilesSkipped(n int64)      { c.filesSkipped.Add(n) }
func (c *Collector) AddFilesFailed(n int64)       { c.filesFailed.Add(n) }
func (c *Collector) AddBytesTransferred(n int64)  { c.bytesTransferred.Add(n) }
func (c *Collector) AddFilesVerified(n int64)     { c.filesVerified.Add(n) }
func (c *Collector) AddFilesVerifyFailed(n int64) { c.filesVerifyFailed.Add(n) }

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesFound:        c.filesFound.Load(),
		FilesTransferred:  c.filesTransferred.Load(),
		FilesSkipped:      c.filesSkipped.Load(),
		FilesFailed:       c.filesFailed.Load(),
		BytesTransferred:  c.bytesTransferred.Load(),
		FilesVerified:     c.filesVerified.Load(),
		FilesVerifyFailed: c.filesVerifyFailed.Load(),
		Elapsed:           c.Elapsed(),
	}
}

// Elapsed returns time since the collector was created.
func (c *Collector) Elapsed() time.Duration {
	if c.startTime.IsZero() {
		return 0
	}
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"found=%d transferred=%d skipped=%d failed=%d bytes=%d verified=%d verify_failed=%d",
		s.FilesFound, s.FilesTransferred, s.FilesSkipped, s.FilesFailed,
		s.BytesTransferred, s.FilesVerified, s.FilesVerifyFailed,
	)
}

// Failed reports the files that did not end up correctly in place.
func (s Snapshot) Failed() int64 {
	return s.FilesFailed + s.FilesVerifyFailed
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
