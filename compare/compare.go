package compare

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/oxcrypt/oxprof/common"
	"github.com/oxcrypt/oxprof/logscan"
)

var log = logger.GetOrCreate("compare")

// WorkloadComparison pairs two timing extractions of the same workload.
// Positive deltas mean the candidate run is faster than the baseline.
type WorkloadComparison struct {
	Workload  string
	Baseline  common.TimingResult
	Candidate common.TimingResult
	DeltaMs   float64
	DeltaPct  float64
	Extracted bool
}

// CompareTimings computes the absolute and relative change between a
// baseline and a candidate measurement. Either side missing marks the
// workload as not extracted instead of failing.
func CompareTimings(workload string, baseline *common.TimingResult, candidate *common.TimingResult) WorkloadComparison {
	if baseline == nil || candidate == nil {
		return WorkloadComparison{
			Workload: workload,
		}
	}

	delta := baseline.MeanMs - candidate.MeanMs
	deltaPct := 0.0
	if baseline.MeanMs != 0 {
		deltaPct = delta / baseline.MeanMs * 100
	}

	return WorkloadComparison{
		Workload:  workload,
		Baseline:  *baseline,
		Candidate: *candidate,
		DeltaMs:   delta,
		DeltaPct:  deltaPct,
		Extracted: true,
	}
}

// CompareRuns extracts timings for every workload from
// <dir>/<label>-<workload>.txt pairs and writes per-workload blocks.
// A workload whose extraction fails is reported and skipped; the
// remaining ones are still compared.
func CompareRuns(out io.Writer, dir string, baselineLabel string, candidateLabel string, workloads []string) []WorkloadComparison {
	fmt.Fprintln(out, strings.Repeat("=", 80))
	fmt.Fprintf(out, "%s vs %s\n", strings.ToUpper(candidateLabel), strings.ToUpper(baselineLabel))
	fmt.Fprintln(out, strings.Repeat("=", 80))
	fmt.Fprintln(out)

	comparisons := make([]WorkloadComparison, 0, len(workloads))
	for _, workload := range workloads {
		baseline := extractWorkload(dir, baselineLabel, workload)
		candidate := extractWorkload(dir, candidateLabel, workload)

		comparison := CompareTimings(workload, baseline, candidate)
		comparisons = append(comparisons, comparison)
		renderComparison(out, comparison, baselineLabel, candidateLabel)
	}

	return comparisons
}

func extractWorkload(dir string, label string, workload string) *common.TimingResult {
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.txt", label, workload))

	result, found, err := logscan.ExtractTimingFile(path)
	if err != nil {
		log.Warn("benchmark report unavailable", "path", path, "error", err)
		return nil
	}
	if !found {
		log.Warn("no timing line in benchmark report", "path", path)
		return nil
	}

	return &result
}

func renderComparison(out io.Writer, c WorkloadComparison, baselineLabel string, candidateLabel string) {
	fmt.Fprintln(out, strings.ToUpper(c.Workload))
	fmt.Fprintln(out, strings.Repeat("-", 80))

	if !c.Extracted {
		fmt.Fprintf(out, "  could not extract metrics\n\n")
		return
	}

	fmt.Fprintf(out, "  %-10s %8.2f ms ± %6.2f ms\n", baselineLabel+":", c.Baseline.MeanMs, c.Baseline.SigmaMs)
	fmt.Fprintf(out, "  %-10s %8.2f ms ± %6.2f ms\n", candidateLabel+":", c.Candidate.MeanMs, c.Candidate.SigmaMs)
	fmt.Fprintf(out, "  %-10s %8.2f ms (%+6.2f%%)\n\n", "change:", c.DeltaMs, c.DeltaPct)
}
