package flamegraph

import "errors"

// errArtifactNotFound signals a missing or unreadable artifact; this is
// the only hard failure the extractor produces
var errArtifactNotFound = errors.New("artifact not found")

// IsArtifactNotFound returns true when the error wraps a missing artifact
func IsArtifactNotFound(err error) bool {
	return errors.Is(err, errArtifactNotFound)
}
