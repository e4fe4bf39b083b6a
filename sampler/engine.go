package sampler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/multiversx/mx-chain-core-go/core/check"
	"github.com/oxcrypt/oxprof/common"
)

const rowRuleWidth = 110

// monitorEngine runs the live sampling loop: one poll, one derived rate
// row per interval, until the configured duration elapses. It owns only
// the single most recent snapshot.
type monitorEngine struct {
	poller   Poller
	out      io.Writer
	interval time.Duration
	now      func() time.Time

	prev  *common.StatsSnapshot
	start time.Time
}

// NewMonitorEngine creates a new engine instance
func NewMonitorEngine(poller Poller, out io.Writer, interval time.Duration) (*monitorEngine, error) {
	if check.IfNil(poller) {
		return nil, errors.New("nil poller")
	}
	if out == nil {
		return nil, errors.New("nil output writer")
	}
	if interval <= 0 {
		return nil, errors.New("invalid sample interval")
	}

	return &monitorEngine{
		poller:   poller,
		out:      out,
		interval: interval,
		now:      time.Now,
	}, nil
}

// Run executes the sampling loop for the provided duration. A failed
// poll forfeits that tick's row and the loop continues; the only normal
// termination is the duration bound, plus an external interrupt through
// the context.
func (e *monitorEngine) Run(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return errors.New("invalid monitor duration")
	}

	e.start = e.now()
	e.prev = nil
	e.printHeader()

	e.processTick(ctx)

	timer := time.NewTimer(e.interval)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			if e.now().Sub(e.start) >= duration {
				log.Debug("monitor duration elapsed", "duration", duration)
				return nil
			}

			e.processTick(ctx)
			timer.Reset(e.interval)
		case <-ctx.Done():
			log.Debug("monitor interrupted")
			return nil
		}
	}
}

// processTick performs one poll and renders at most one row. No retry
// happens inside a tick, keeping the one-row-per-interval cadence.
func (e *monitorEngine) processTick(ctx context.Context) {
	snapshot, err := e.poller.Poll(ctx)
	if err != nil {
		log.Warn("no data this tick, will retry on the next one", "error", err)
		return
	}

	if e.prev == nil {
		// first successful poll only establishes the baseline
		e.prev = &snapshot
		return
	}

	rates, ok := DeriveRates(*e.prev, snapshot)
	e.prev = &snapshot
	if !ok {
		log.Debug("skipping rate computation for this tick")
		return
	}

	e.renderRow(snapshot, rates)
}

// DeriveRates computes the per-second interval metrics between two
// snapshots. It returns false when the elapsed time is not positive or
// when a cumulative counter decreased, which signals the external
// process restarted; the caller keeps the newer snapshot as baseline.
func DeriveRates(prev common.StatsSnapshot, cur common.StatsSnapshot) (common.RateSample, bool) {
	elapsed := cur.Timestamp.Sub(prev.Timestamp).Seconds()
	if elapsed <= 0 {
		return common.RateSample{}, false
	}

	deltaReads := cur.TotalReads - prev.TotalReads
	deltaWrites := cur.TotalWrites - prev.TotalWrites
	deltaMeta := cur.TotalMetadataOps - prev.TotalMetadataOps
	deltaBytesRead := cur.BytesRead - prev.BytesRead
	if deltaReads < 0 || deltaWrites < 0 || deltaMeta < 0 || deltaBytesRead < 0 {
		log.Warn("cumulative counter decreased, external process likely restarted")
		return common.RateSample{}, false
	}

	return common.RateSample{
		ElapsedSeconds:       elapsed,
		ReadsPerSec:          float64(deltaReads) / elapsed,
		WritesPerSec:         float64(deltaWrites) / elapsed,
		MetadataOpsPerSec:    float64(deltaMeta) / elapsed,
		BytesReadPerSec:      float64(deltaBytesRead) / elapsed,
		ReadLatencyAvgMs:     cur.ReadLatencyAvgMs,
		WriteLatencyAvgMs:    cur.WriteLatencyAvgMs,
		MetadataLatencyAvgMs: cur.MetadataLatencyAvgMs,
		CacheHitRate:         cur.CacheHitRate(),
		CacheEntries:         cur.CacheEntries,
		Errors:               cur.TotalErrors,
	}, true
}

func (e *monitorEngine) printHeader() {
	fmt.Fprintf(e.out, "%8s %8s %8s %8s %8s %8s %8s %8s %10s %8s %8s\n",
		"Time", "Read/s", "Write/s", "Meta/s", "MB/s",
		"RdLat", "WrLat", "MetaLat", "CacheHit%", "Entries", "Errors")
	fmt.Fprintln(e.out, strings.Repeat("-", rowRuleWidth))
}

func (e *monitorEngine) renderRow(snapshot common.StatsSnapshot, rates common.RateSample) {
	elapsed := int(snapshot.Timestamp.Sub(e.start).Seconds())

	fmt.Fprintf(e.out, "%8d %8.1f %8.1f %8.1f %8s %8.2f %8.2f %8.2f %10.1f %8d %8d\n",
		elapsed,
		rates.ReadsPerSec,
		rates.WritesPerSec,
		rates.MetadataOpsPerSec,
		common.FormatThroughput(rates.BytesReadPerSec),
		rates.ReadLatencyAvgMs,
		rates.WriteLatencyAvgMs,
		rates.MetadataLatencyAvgMs,
		rates.CacheHitRate,
		rates.CacheEntries,
		rates.Errors)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *monitorEngine) IsInterfaceNil() bool {
	return e == nil
}
