package common

import "time"

// FileLoggingHandler defines the behavior of a component that is able to save the logs in files
type FileLoggingHandler interface {
	ChangeFileLifeSpan(newDuration time.Duration, newSizeInMB uint64) error
	Close() error
	IsInterfaceNil() bool
}
