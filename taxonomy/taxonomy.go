package taxonomy

import "strings"

// CatchAll is the terminal category assigned when no rule matches
const CatchAll = "Other"

// Rule pairs a category name with its match predicate. Rules are
// evaluated in slice order and the first match wins, so the position
// of a rule inside a categorizer is part of its contract.
type Rule struct {
	Category string
	Match    func(label string) bool
}

// Categorizer maps sample labels onto a fixed, ordered taxonomy
type Categorizer struct {
	rules []Rule
}

// NewCategorizer creates a categorizer over the provided ordered rules
func NewCategorizer(rules []Rule) *Categorizer {
	return &Categorizer{
		rules: rules,
	}
}

// Categorize returns the category of the first matching rule, or the
// catch-all when no rule matches. Matching is case-insensitive.
func (c *Categorizer) Categorize(label string) string {
	lowered := strings.ToLower(label)
	for _, r := range c.rules {
		if r.Match(lowered) {
			return r.Category
		}
	}

	return CatchAll
}

// Categories returns the category names in rule order, catch-all last
func (c *Categorizer) Categories() []string {
	names := make([]string, 0, len(c.rules)+1)
	for _, r := range c.rules {
		names = append(names, r.Category)
	}

	return append(names, CatchAll)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (c *Categorizer) IsInterfaceNil() bool {
	return c == nil
}

func anyOf(keywords ...string) func(string) bool {
	return func(label string) bool {
		for _, kw := range keywords {
			if strings.Contains(label, kw) {
				return true
			}
		}

		return false
	}
}

func allOf(keywords ...string) func(string) bool {
	return func(label string) bool {
		for _, kw := range keywords {
			if !strings.Contains(label, kw) {
				return false
			}
		}

		return true
	}
}

// NewSubsystemCategorizer returns the coarse taxonomy used by the
// general flame-graph breakdown
func NewSubsystemCategorizer() *Categorizer {
	return NewCategorizer([]Rule{
		{Category: "FUSE Layer", Match: anyOf("fuser::", "fuse_")},
		{Category: "Crypto Core", Match: anyOf("oxcrypt_core::", "oxcrypt_")},
		{Category: "Encryption/Decryption", Match: anyOf("encrypt", "decrypt")},
		{Category: "AES Primitives", Match: anyOf("aes", "gcm", "siv")},
		{Category: "Async Runtime", Match: anyOf("tokio::", "async")},
		{Category: "I/O Operations", Match: anyOf("std::io", "::fs::")},
		{Category: "Caching", Match: anyOf("dashmap", "cache")},
		{Category: "Synchronization", Match: anyOf("lock", "mutex")},
	})
}

// NewContentionCategorizer returns the finer taxonomy used for lock
// contention diagnosis. Lock Wait (threads blocked on a condition
// variable, idle) is deliberately checked before Synchronization
// (threads executing lock machinery) since the two have opposite
// performance implications.
func NewContentionCategorizer() *Categorizer {
	return NewCategorizer([]Rule{
		{Category: "Lock Wait", Match: anyOf("__pthread_cond_wait", "cond_wait")},
		{Category: "Synchronization", Match: anyOf("pthread", "mutex", "lock")},
		{Category: "Cache", Match: anyOf("moka", "cache", "evict")},
		{Category: "Async/Task", Match: anyOf("tokio::runtime::task", "run_task", "poll")},
		{Category: "Task Spawning", Match: anyOf("spawn", "blocking")},
		{Category: "Encryption", Match: anyOf("encrypt", "decrypt", "gcm", "siv")},
		{Category: "Write Operations", Match: allOf("write", "operations")},
		{Category: "Read Operations", Match: allOf("read", "operations")},
		{Category: "Metadata Ops", Match: anyOf("getattr", "lookup", "stat")},
	})
}
