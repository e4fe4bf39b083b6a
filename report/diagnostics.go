package report

import "github.com/oxcrypt/oxprof/aggregate"

// DiagnosticRule triggers a fixed narrative when a category's share of
// samples crosses its threshold. Also names further categories whose
// percentages count toward the same threshold. Extra, when set, must
// also hold over the full percentage map. Rules are plain data so each
// threshold is testable in isolation.
type DiagnosticRule struct {
	Metric    string
	Also      []string
	Threshold float64
	Extra     func(pcts map[string]float64) bool
	Summary   string
	Remedies  []string
}

// Diagnostic is one triggered rule with the observed percentage
type Diagnostic struct {
	Metric     string
	Percentage float64
	Summary    string
	Remedies   []string
}

// EvaluateDiagnostics runs the rule table against the aggregate's
// category percentages, in rule order
func EvaluateDiagnostics(rules []DiagnosticRule, result aggregate.Result) []Diagnostic {
	pcts := result.CategoryPercentages()

	diags := make([]Diagnostic, 0, len(rules))
	for _, rule := range rules {
		pct := pcts[rule.Metric]
		for _, name := range rule.Also {
			pct += pcts[name]
		}
		if pct <= rule.Threshold {
			continue
		}
		if rule.Extra != nil && !rule.Extra(pcts) {
			continue
		}

		diags = append(diags, Diagnostic{
			Metric:     rule.Metric,
			Percentage: pct,
			Summary:    rule.Summary,
			Remedies:   rule.Remedies,
		})
	}

	return diags
}

// ContentionRules is the fixed diagnostic table for the contention
// taxonomy. Thresholds are percentages of total samples.
func ContentionRules() []DiagnosticRule {
	return []DiagnosticRule{
		{
			Metric:    "Lock Wait",
			Threshold: 20,
			Summary: "Lock contention is the dominant cost: threads are blocked on condition variables, " +
				"not executing work. Reducing how often locks are taken will not help while threads are " +
				"already waiting on them.",
			Remedies: []string{
				"replace the single shared cache lock with a sharded or read-optimized structure",
				"introduce thread-local caches to take contended lookups off the shared path",
				"use a reader/writer lock instead of a mutex for read-heavy access",
			},
		},
		{
			Metric:    "Cache",
			Threshold: 15,
			Extra: func(pcts map[string]float64) bool {
				return pcts["Cache"] > pcts["Encryption"]
			},
			Summary: "The cache layer costs more than the crypto it fronts; its internal locking and " +
				"eviction dominate.",
			Remedies: []string{
				"shard the cache or switch to a concurrent map based implementation",
				"move hot entries into thread-local caches",
			},
		},
		{
			Metric:    "Encryption",
			Threshold: 20,
			Summary:   "Encryption and decryption routines account for a significant share of CPU time.",
			Remedies: []string{
				"batch crypto operations to amortize per-call overhead",
				"cache encrypted filenames more aggressively",
				"verify hardware acceleration is in use for the block cipher",
			},
		},
		{
			Metric:    "Async/Task",
			Also:      []string{"Task Spawning"},
			Threshold: 20,
			Summary:   "Async runtime overhead is significant: task scheduling and polling, not workload code.",
			Remedies: []string{
				"check executor lock contention under the concurrent thread count",
				"tune the worker thread pool size",
			},
		},
	}
}
