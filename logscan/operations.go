package logscan

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("logscan")

// OperationCounts holds the number of log lines matching each fixed
// operation keyword class. Classes are not mutually exclusive: one
// line can increment several counters.
type OperationCounts struct {
	StatCalls    int
	LookupCalls  int
	ReadCalls    int
	WriteCalls   int
	MkdirCalls   int
	UnlinkCalls  int
	CacheLookups int
	CacheHits    int
	CacheMisses  int
}

// Total returns the sum over all counters
func (c OperationCounts) Total() int {
	return c.StatCalls + c.LookupCalls + c.ReadCalls + c.WriteCalls +
		c.MkdirCalls + c.UnlinkCalls + c.CacheLookups + c.CacheHits + c.CacheMisses
}

// NonZero returns (name, count) pairs for every counter that was hit,
// in the fixed class order
func (c OperationCounts) NonZero() []CounterValue {
	all := []CounterValue{
		{"stat_calls", c.StatCalls},
		{"lookup_calls", c.LookupCalls},
		{"read_calls", c.ReadCalls},
		{"write_calls", c.WriteCalls},
		{"mkdir_calls", c.MkdirCalls},
		{"unlink_calls", c.UnlinkCalls},
		{"cache_lookups", c.CacheLookups},
		{"cache_hits", c.CacheHits},
		{"cache_misses", c.CacheMisses},
	}

	out := make([]CounterValue, 0, len(all))
	for _, cv := range all {
		if cv.Count > 0 {
			out = append(out, cv)
		}
	}

	return out
}

// CounterValue is one named operation counter reading
type CounterValue struct {
	Name  string
	Count int
}

// ScanOperations reads a log line by line and counts keyword class
// hits, case-insensitively
func ScanOperations(r io.Reader) OperationCounts {
	counts := OperationCounts{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.ToLower(scanner.Text())

		if strings.Contains(line, "getattr") || strings.Contains(line, "stat") {
			counts.StatCalls++
		}
		if strings.Contains(line, "lookup") {
			counts.LookupCalls++
		}
		if strings.Contains(line, "read") {
			counts.ReadCalls++
		}
		if strings.Contains(line, "write") {
			counts.WriteCalls++
		}
		if strings.Contains(line, "mkdir") {
			counts.MkdirCalls++
		}
		if strings.Contains(line, "unlink") {
			counts.UnlinkCalls++
		}
		if strings.Contains(line, "cache lookup") {
			counts.CacheLookups++
		}
		if strings.Contains(line, "cache hit") {
			counts.CacheHits++
		}
		if strings.Contains(line, "cache miss") {
			counts.CacheMisses++
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warn("log scan stopped early", "error", err)
	}

	return counts
}

// ScanOperationsFile scans a log file on disk
func ScanOperationsFile(path string) (OperationCounts, error) {
	f, err := os.Open(path)
	if err != nil {
		return OperationCounts{}, fmt.Errorf("failed to open log file '%s': %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	return ScanOperations(f), nil
}
