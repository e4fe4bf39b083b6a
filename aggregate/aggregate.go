package aggregate

import (
	"errors"
	"sort"

	"github.com/multiversx/mx-chain-core-go/core/check"
	"github.com/oxcrypt/oxprof/common"
)

// Categorizer maps a sample label onto one category of a fixed taxonomy
type Categorizer interface {
	Categorize(label string) string
	IsInterfaceNil() bool
}

// CategoryAggregate is the rollup of all samples classified under one category
type CategoryAggregate struct {
	Name       string
	TotalCount float64
	Percentage float64
	TopSamples []common.Sample
}

// Result is the full aggregation over one extraction
type Result struct {
	TotalCount float64
	Categories []CategoryAggregate
	TopSamples []common.Sample
}

// CategoryPercentages returns category name to percentage, for
// threshold evaluation
func (r Result) CategoryPercentages() map[string]float64 {
	out := make(map[string]float64, len(r.Categories))
	for _, c := range r.Categories {
		out[c.Name] = c.Percentage
	}

	return out
}

// aggregator groups samples by raw label and by category, producing
// ranked, bounded rollups
type aggregator struct {
	categorizer    Categorizer
	topN           int
	topPerCategory int
}

// NewAggregator creates a new aggregator instance
func NewAggregator(categorizer Categorizer, topN int, topPerCategory int) (*aggregator, error) {
	if check.IfNil(categorizer) {
		return nil, errors.New("nil categorizer")
	}
	if topN <= 0 {
		return nil, errors.New("invalid topN value")
	}
	if topPerCategory <= 0 {
		return nil, errors.New("invalid topPerCategory value")
	}

	return &aggregator{
		categorizer:    categorizer,
		topN:           topN,
		topPerCategory: topPerCategory,
	}, nil
}

// Aggregate merges duplicate labels by summation, classifies each
// merged sample, and produces ranked per-category and global rollups.
// Ranking is count-descending, stable on ties by extraction order.
// All percentages are 0 when the grand total is 0.
func (a *aggregator) Aggregate(samples []common.Sample) Result {
	merged := mergeByLabel(samples)

	total := 0.0
	for _, s := range merged {
		total += s.Count
	}

	byCategory := make(map[string][]common.Sample)
	categoryOrder := make([]string, 0)
	for _, s := range merged {
		cat := a.categorizer.Categorize(s.Label)
		if _, seen := byCategory[cat]; !seen {
			categoryOrder = append(categoryOrder, cat)
		}
		byCategory[cat] = append(byCategory[cat], s)
	}

	categories := make([]CategoryAggregate, 0, len(categoryOrder))
	for _, cat := range categoryOrder {
		members := byCategory[cat]

		catTotal := 0.0
		for _, s := range members {
			catTotal += s.Count
		}

		categories = append(categories, CategoryAggregate{
			Name:       cat,
			TotalCount: catTotal,
			Percentage: percentage(catTotal, total),
			TopSamples: topSorted(members, a.topPerCategory, total),
		})
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].TotalCount > categories[j].TotalCount
	})

	return Result{
		TotalCount: total,
		Categories: categories,
		TopSamples: topSorted(merged, a.topN, total),
	}
}

// IsInterfaceNil returns true if the value under the interface is nil
func (a *aggregator) IsInterfaceNil() bool {
	return a == nil
}

// mergeByLabel sums counts of samples sharing a label, keeping
// first-seen order. Deduplication never discards a count.
func mergeByLabel(samples []common.Sample) []common.Sample {
	index := make(map[string]int)
	merged := make([]common.Sample, 0, len(samples))
	for _, s := range samples {
		if i, seen := index[s.Label]; seen {
			merged[i].Count += s.Count
			continue
		}

		index[s.Label] = len(merged)
		merged = append(merged, s)
	}

	return merged
}

func topSorted(samples []common.Sample, bound int, total float64) []common.Sample {
	ranked := make([]common.Sample, len(samples))
	copy(ranked, samples)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > bound {
		ranked = ranked[:bound]
	}
	for i := range ranked {
		ranked[i].Percentage = percentage(ranked[i].Count, total)
	}

	return ranked
}

func percentage(part float64, total float64) float64 {
	if total == 0 {
		return 0
	}

	return part / total * 100
}
