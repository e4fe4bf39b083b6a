package logscan

import (
	"os"
	"regexp"
	"strconv"

	"github.com/oxcrypt/oxprof/common"
)

// ansiPattern matches ANSI escape sequences emitted by the benchmark tool
var ansiPattern = regexp.MustCompile(`\x1b(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)

// timingPattern locates the "Time (mean ± σ)" line. The ± glyph may be
// encoded differently depending on the terminal, so the match is kept
// loose: two (value, unit) pairs after the mean marker.
var timingPattern = regexp.MustCompile(`(?s)Time.*?mean.*?(\d+(?:\.\d+)?)\s*([a-z]+).*?(\d+(?:\.\d+)?)\s*([a-z]+)`)

// StripANSI removes ANSI escape sequences from benchmark output
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// ExtractTiming parses the benchmark mean and deviation out of raw tool
// output, both normalized to milliseconds. The second return value is
// false when no timing line is present; absence is a reportable
// outcome, not an error.
func ExtractTiming(content string) (common.TimingResult, bool) {
	clean := StripANSI(content)

	m := timingPattern.FindStringSubmatch(clean)
	if m == nil {
		return common.TimingResult{}, false
	}

	meanVal, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return common.TimingResult{}, false
	}
	sigmaVal, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return common.TimingResult{}, false
	}

	var meanMs float64
	switch m[2] {
	case "s":
		meanMs = meanVal * 1000
	case "ms":
		meanMs = meanVal
	default:
		return common.TimingResult{}, false
	}

	sigmaMs := sigmaVal
	switch m[4] {
	case "s":
		sigmaMs = sigmaVal * 1000
	case "ms":
		sigmaMs = sigmaVal
	}

	return common.TimingResult{
		MeanMs:  meanMs,
		SigmaMs: sigmaMs,
	}, true
}

// ExtractTimingFile parses the timing out of a benchmark report on
// disk. A missing file is an error; a missing timing line is not.
func ExtractTimingFile(path string) (common.TimingResult, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return common.TimingResult{}, false, err
	}

	result, found := ExtractTiming(string(data))

	return result, found, nil
}
