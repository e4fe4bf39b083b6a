package runs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("runs")

// LatestRun resolves the most recent dated profiling run directory
// under dir. Run directories are named <prefix><timestamp>, so the
// lexically last name is the newest. Returns ErrNoRuns when none exist.
func LatestRun(dir string, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read profiles directory '%s': %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w in '%s' with prefix '%s'", ErrNoRuns, dir, prefix)
	}

	sort.Strings(names)
	latest := filepath.Join(dir, names[len(names)-1])
	log.Debug("resolved latest profiling run", "path", latest)

	return latest, nil
}

// ResolveArtifact returns path unchanged when it is a regular file;
// when it is a directory it resolves the latest run inside it and
// appends the artifact name. The returned path is then an explicit
// input for the analysis functions.
func ResolveArtifact(path string, prefix string, artifactName string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to access '%s': %w", path, err)
	}
	if !info.IsDir() {
		return path, nil
	}

	runDir, err := LatestRun(path, prefix)
	if err != nil {
		return "", err
	}

	return filepath.Join(runDir, artifactName), nil
}
