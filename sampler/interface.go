package sampler

import (
	"context"

	"github.com/oxcrypt/oxprof/common"
)

// Poller defines the interface for reading one snapshot of the external
// statistics feed
type Poller interface {
	// Poll invokes the feed once and returns the cumulative counters and
	// gauges it reported. Errors are per-tick and transient: the caller
	// retries on the next tick.
	Poll(ctx context.Context) (common.StatsSnapshot, error)

	IsInterfaceNil() bool
}
