package rand

import (
	"sort"
	"strings"

	"github.com/jihwankim/covcrv/pkg/rand/solver"
)

// varKey is the exact-variable-set identity a constraint or distribution is
// classified by. Go has no runtime reflection over a closure's parameter
// names, so callers declare the variable set explicitly at registration
// (AddConstraint, AddDistribution) instead of it being inferred from the
// predicate's signature.
func varKey(vars []string) string {
	sorted := append([]string(nil), vars...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

type constraintEntry struct {
	key  string
	vars []string
	pred func(solver.Assignment) bool
}

type distributionEntry struct {
	key    string
	vars   []string
	weight func(solver.Assignment) float64
}

// upsertConstraint replaces any existing constraint over the exact same
// variable set, preserving its position; otherwise it appends.
func upsertConstraint(entries []*constraintEntry, e *constraintEntry) []*constraintEntry {
	for i, existing := range entries {
		if existing.key == e.key {
			entries[i] = e
			return entries
		}
	}
	return append(entries, e)
}

func upsertDistribution(entries []*distributionEntry, e *distributionEntry) []*distributionEntry {
	for i, existing := range entries {
		if existing.key == e.key {
			entries[i] = e
			return entries
		}
	}
	return append(entries, e)
}

func removeConstraint(entries []*constraintEntry, key string) []*constraintEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.key != key {
			out = append(out, e)
		}
	}
	return out
}
