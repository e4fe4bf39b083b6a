package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/oxcrypt/oxprof/aggregate"
	"github.com/oxcrypt/oxprof/common"
	"github.com/oxcrypt/oxprof/logscan"
)

var log = logger.GetOrCreate("report")

const (
	ruleWidth     = 100
	barScale      = 2 // one bar glyph per 2 percent
	noHotspotsMsg = "no hotspots found"
)

// renderer writes ranked tables, category bar charts and diagnostics to
// the injected writer
type renderer struct {
	out          io.Writer
	displayWidth int
}

// NewRenderer creates a new report renderer
func NewRenderer(out io.Writer, displayWidth int) (*renderer, error) {
	if out == nil {
		return nil, errors.New("nil output writer")
	}
	if displayWidth < 20 {
		return nil, errors.New("invalid display width")
	}

	return &renderer{
		out:          out,
		displayWidth: displayWidth,
	}, nil
}

// RenderHotspots prints the ranked top-N table of individual hot labels
func (r *renderer) RenderHotspots(result aggregate.Result) {
	r.rule()
	fmt.Fprintf(r.out, "TOP %d HOTTEST FUNCTIONS\n", len(result.TopSamples))
	r.rule()

	if result.TotalCount == 0 {
		fmt.Fprintln(r.out, noHotspotsMsg)
		return
	}

	fmt.Fprintf(r.out, "%-3s %7s %9s  %s\n", "#", "%", "Samples", "Function")
	fmt.Fprintln(r.out, strings.Repeat("-", ruleWidth))
	for i, s := range result.TopSamples {
		fmt.Fprintf(r.out, "%-3d %6.1f%% %9.0f  %s\n",
			i+1, s.Percentage, s.Count, truncateLabel(s.Label, r.displayWidth))
	}
}

// RenderCategories prints the per-category breakdown with proportional bars
func (r *renderer) RenderCategories(result aggregate.Result) {
	r.rule()
	fmt.Fprintln(r.out, "BREAKDOWN BY SUBSYSTEM")
	r.rule()

	if result.TotalCount == 0 {
		fmt.Fprintln(r.out, noHotspotsMsg)
		return
	}

	for _, cat := range result.Categories {
		bar := strings.Repeat("█", int(cat.Percentage/barScale))
		fmt.Fprintf(r.out, "%-25s %5.1f%% %9.0f  %s\n", cat.Name, cat.Percentage, cat.TotalCount, bar)

		for _, s := range cat.TopSamples {
			fmt.Fprintf(r.out, "  └─ %4.1f%%  %s\n", s.Percentage, truncateLabel(s.Label, r.displayWidth-10))
		}
		fmt.Fprintln(r.out)
	}
}

// RenderDiagnostics evaluates the rule table against the aggregate and
// prints every triggered diagnostic
func (r *renderer) RenderDiagnostics(rules []DiagnosticRule, result aggregate.Result) {
	diags := EvaluateDiagnostics(rules, result)
	if len(diags) == 0 {
		log.Debug("no diagnostic rule triggered")
		return
	}

	r.rule()
	fmt.Fprintln(r.out, "DIAGNOSTICS")
	r.rule()

	for i, d := range diags {
		fmt.Fprintf(r.out, "%d. %s: %.1f%% of samples\n", i+1, d.Metric, d.Percentage)
		fmt.Fprintf(r.out, "   %s\n", d.Summary)
		for _, remedy := range d.Remedies {
			fmt.Fprintf(r.out, "   - %s\n", remedy)
		}
		fmt.Fprintln(r.out)
	}
}

// RenderOperationCounts prints the non-zero operation counters of a log scan
func (r *renderer) RenderOperationCounts(counts logscan.OperationCounts) {
	r.rule()
	fmt.Fprintln(r.out, "OPERATION PATTERN ANALYSIS")
	r.rule()

	nonZero := counts.NonZero()
	if len(nonZero) == 0 {
		fmt.Fprintln(r.out, "no operations matched")
		return
	}

	fmt.Fprintln(r.out, "Operation counts from debug log:")
	for _, cv := range nonZero {
		fmt.Fprintf(r.out, "  %s: %d\n", cv.Name, cv.Count)
	}
}

// RenderTiming prints one benchmark timing extraction, or its absence
func (r *renderer) RenderTiming(name string, result common.TimingResult, found bool) {
	r.rule()
	fmt.Fprintln(r.out, "TIMING RESULTS")
	r.rule()

	if !found {
		fmt.Fprintf(r.out, "%s: could not extract metrics\n", name)
		return
	}

	fmt.Fprintf(r.out, "%s: %.2f ms ± %.2f ms\n", name, result.MeanMs, result.SigmaMs)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (r *renderer) IsInterfaceNil() bool {
	return r == nil
}

func (r *renderer) rule() {
	fmt.Fprintln(r.out, strings.Repeat("=", ruleWidth))
}

// truncateLabel shortens over-wide labels with a trailing ellipsis;
// labels are never wrapped
func truncateLabel(label string, width int) string {
	if len(label) <= width {
		return label
	}

	return label[:width-3] + "..."
}
