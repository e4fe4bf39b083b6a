package flamegraph

import (
	"encoding/xml"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/oxcrypt/oxprof/common"
)

var log = logger.GetOrCreate("flamegraph")

// titlePattern matches the inline frame annotation emitted by the
// flame-graph renderer: label (N samples, P%). The percentage part is
// optional since not all producers emit it.
var titlePattern = regexp.MustCompile(`title>([^<]*?)\s*\((\d+(?:\.\d+)?)\s+samples?(?:,\s*([\d.]+)%)?\)`)

// annotationPattern strips the trailing annotation off a title text
// that was already entity-decoded by the XML tokenizer
var annotationPattern = regexp.MustCompile(`\s*\((\d+(?:\.\d+)?)\s+samples?(?:,\s*([\d.]+)%)?\)\s*$`)

var entityDecoder = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&amp;", "&",
)

// Extract performs a flat scan over the raw artifact content and
// returns one Sample per annotation occurrence, in extraction order.
// Duplicate labels are kept as separate records; the aggregator sums
// them. Malformed annotations are skipped.
func Extract(content string) []common.Sample {
	matches := titlePattern.FindAllStringSubmatch(content, -1)

	samples := make([]common.Sample, 0, len(matches))
	for _, m := range matches {
		count, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}

		pct := 0.0
		if len(m[3]) > 0 {
			pct, err = strconv.ParseFloat(m[3], 64)
			if err != nil {
				continue
			}
		}

		samples = append(samples, common.Sample{
			Label:      entityDecoder.Replace(m[1]),
			Count:      count,
			Percentage: pct,
		})
	}

	return samples
}

// ExtractTree walks the artifact's markup structure and returns one
// Sample per distinct label, counts of recurring labels summed, in
// first-seen order. Use this over Extract when the same leaf label
// carries independent counts at multiple call sites.
func ExtractTree(content string) []common.Sample {
	decoder := xml.NewDecoder(strings.NewReader(content))
	decoder.Strict = false
	decoder.AutoClose = xml.HTMLAutoClose
	decoder.Entity = xml.HTMLEntity

	totals := make(map[string]float64)
	order := make([]string, 0)

	inTitle := false
	var titleText strings.Builder
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "title" {
				inTitle = true
				titleText.Reset()
			}
		case xml.CharData:
			if inTitle {
				titleText.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local != "title" {
				continue
			}
			inTitle = false

			label, count, ok := parseTitle(titleText.String())
			if !ok {
				continue
			}

			if _, seen := totals[label]; !seen {
				order = append(order, label)
			}
			totals[label] += count
		}
	}

	samples := make([]common.Sample, 0, len(order))
	for _, label := range order {
		samples = append(samples, common.Sample{
			Label: label,
			Count: totals[label],
		})
	}

	return samples
}

func parseTitle(text string) (string, float64, bool) {
	text = strings.TrimSpace(text)
	m := annotationPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return "", 0, false
	}

	count, err := strconv.ParseFloat(text[m[2]:m[3]], 64)
	if err != nil {
		return "", 0, false
	}

	return strings.TrimSpace(text[:m[0]]), count, true
}

// ExtractFile runs the flat scan over an artifact on disk
func ExtractFile(path string) ([]common.Sample, error) {
	content, err := readArtifact(path)
	if err != nil {
		return nil, err
	}

	return Extract(content), nil
}

// ExtractTreeFile runs the structural walk over an artifact on disk
func ExtractTreeFile(path string) ([]common.Sample, error) {
	content, err := readArtifact(path)
	if err != nil {
		return nil, err
	}

	return ExtractTree(content), nil
}

func readArtifact(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w reading flame-graph artifact '%s'", errArtifactNotFound, path)
	}

	log.Debug("read flame-graph artifact", "path", path, "size", len(data))

	return string(data), nil
}
