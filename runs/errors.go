package runs

import "errors"

// ErrNoRuns signals that the profiles directory holds no run directory
// matching the configured prefix
var ErrNoRuns = errors.New("no profiling runs found")
