package factory

import (
	"context"
	"time"
)

// Engine defines the live monitor's operations
type Engine interface {
	Run(ctx context.Context, duration time.Duration) error
	IsInterfaceNil() bool
}
