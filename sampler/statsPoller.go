package sampler

import (
	"context"
	"os/exec"
	"strings"
	"time"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/oxcrypt/oxprof/common"
	"github.com/tidwall/gjson"
)

var log = logger.GetOrCreate("sampler")

// commandRunner abstracts process execution so the poller can be tested
// without a live mount
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// statsPoller queries the external stats command and extracts the
// cumulative counters out of its JSON line
type statsPoller struct {
	command string
	args    []string
	timeout time.Duration
	runCmd  commandRunner
	now     func() time.Time
}

// NewStatsPoller creates a poller around the external stats command
func NewStatsPoller(command string, args []string, timeout time.Duration) *statsPoller {
	return &statsPoller{
		command: command,
		args:    args,
		timeout: timeout,
		runCmd:  execRunner,
		now:     time.Now,
	}
}

// Poll runs the stats command once, bounded by the poll timeout, and
// parses the first JSON line it printed
func (p *statsPoller) Poll(ctx context.Context) (common.StatsSnapshot, error) {
	pollCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	output, err := p.runCmd(pollCtx, p.command, p.args...)
	if err != nil {
		return common.StatsSnapshot{}, errCommandFailed(err.Error())
	}

	payload, found := firstJSONLine(string(output))
	if !found {
		return common.StatsSnapshot{}, errNoJSONPayload
	}

	return p.extractSnapshot(payload), nil
}

func firstJSONLine(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "{") && gjson.Valid(line) {
			return line, true
		}
	}

	return "", false
}

func (p *statsPoller) extractSnapshot(payload string) common.StatsSnapshot {
	return common.StatsSnapshot{
		Timestamp:            p.now(),
		TotalReads:           gjson.Get(payload, "total_reads").Int(),
		TotalWrites:          gjson.Get(payload, "total_writes").Int(),
		TotalMetadataOps:     gjson.Get(payload, "total_metadata_ops").Int(),
		BytesRead:            gjson.Get(payload, "bytes_read").Int(),
		BytesWritten:         gjson.Get(payload, "bytes_written").Int(),
		TotalErrors:          gjson.Get(payload, "total_errors").Int(),
		ReadLatencyAvgMs:     gjson.Get(payload, "read_latency_avg_ms").Float(),
		WriteLatencyAvgMs:    gjson.Get(payload, "write_latency_avg_ms").Float(),
		MetadataLatencyAvgMs: gjson.Get(payload, "metadata_latency_avg_ms").Float(),
		CacheHits:            gjson.Get(payload, "cache.hits").Int(),
		CacheMisses:          gjson.Get(payload, "cache.misses").Int(),
		CacheEntries:         gjson.Get(payload, "cache.entries").Int(),
	}
}

// IsInterfaceNil returns true if the value under the interface is nil
func (p *statsPoller) IsInterfaceNil() bool {
	return p == nil
}
