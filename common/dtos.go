package common

import (
	"fmt"
	"time"
)

// Sample is one attributed occurrence of a labeled code path extracted
// from a profiling artifact. Percentage is the producer-supplied value
// and may be zero when the artifact omits it; consumers recompute
// percentages over the observed grand total.
type Sample struct {
	Label      string
	Count      float64
	Percentage float64
}

// TimingResult is one benchmark measurement, normalized to milliseconds
type TimingResult struct {
	MeanMs  float64
	SigmaMs float64
}

// StatsSnapshot is one point-in-time reading of the external stats feed
type StatsSnapshot struct {
	Timestamp            time.Time
	TotalReads           int64
	TotalWrites          int64
	TotalMetadataOps     int64
	BytesRead            int64
	BytesWritten         int64
	TotalErrors          int64
	ReadLatencyAvgMs     float64
	WriteLatencyAvgMs    float64
	MetadataLatencyAvgMs float64
	CacheHits            int64
	CacheMisses          int64
	CacheEntries         int64
}

// CacheHitRate returns the hit percentage over all cache lookups
func (s StatsSnapshot) CacheHitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}

	return float64(s.CacheHits) / float64(total) * 100
}

// RateSample is a derived per-second metric computed between two
// consecutive snapshots, gauges passed through from the newer one
type RateSample struct {
	ElapsedSeconds       float64
	ReadsPerSec          float64
	WritesPerSec         float64
	MetadataOpsPerSec    float64
	BytesReadPerSec      float64
	ReadLatencyAvgMs     float64
	WriteLatencyAvgMs    float64
	MetadataLatencyAvgMs float64
	CacheHitRate         float64
	CacheEntries         int64
	Errors               int64
}

// FormatThroughput renders a bytes-per-second value as a short
// human-readable figure (B, K or M)
func FormatThroughput(bytesPerSec float64) string {
	switch {
	case bytesPerSec < 1024:
		return fmt.Sprintf("%.1fB", bytesPerSec)
	case bytesPerSec < 1024*1024:
		return fmt.Sprintf("%.1fK", bytesPerSec/1024)
	default:
		return fmt.Sprintf("%.1fM", bytesPerSec/(1024*1024))
	}
}
