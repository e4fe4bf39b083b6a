package testsCommon

import (
	"context"

	"github.com/oxcrypt/oxprof/common"
)

// PollerStub -
type PollerStub struct {
	PollHandler func(ctx context.Context) (common.StatsSnapshot, error)
}

// Poll -
func (stub *PollerStub) Poll(ctx context.Context) (common.StatsSnapshot, error) {
	if stub.PollHandler != nil {
		return stub.PollHandler(ctx)
	}

	return common.StatsSnapshot{}, nil
}

// IsInterfaceNil -
func (stub *PollerStub) IsInterfaceNil() bool {
	return stub == nil
}
