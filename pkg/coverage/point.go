package coverage

import (
	"reflect"

	"github.com/jihwankim/covcrv/pkg/coverage/coverr"
)

// PointOption configures a CoverPoint at construction time.
type PointOption func(*CoverItem)

// WithLabels attaches a parallel label to each bin. len(labels) must equal
// len(bins).
func WithLabels(labels []string) PointOption {
	return func(c *CoverItem) { c.binLabels = labels }
}

// WithTransform overrides the default identity transform.
func WithTransform(xf Transform) PointOption {
	return func(c *CoverItem) { c.matcher.XF = xf }
}

// WithRelation overrides the default equality relation.
func WithRelation(rel Relation) PointOption {
	return func(c *CoverItem) { c.matcher.Rel = rel }
}

// WithVName selects, by name, which of the sampler's declared parameters
// feeds the default identity transform.
func WithVName(name string) PointOption {
	return func(c *CoverItem) { c.matcher.VName = name }
}

// WithWeight sets the leaf's weight (default 1). Must be >= 1.
func WithWeight(w int) PointOption {
	return func(c *CoverItem) { c.weight = w }
}

// WithAtLeast sets the minimum hit count for a bin to count as covered
// (default 1). Must be >= 1.
func WithAtLeast(n int) PointOption {
	return func(c *CoverItem) { c.atLeast = n }
}

// WithInjective overrides the default injective (true) matching mode.
func WithInjective(inj bool) PointOption {
	return func(c *CoverItem) { c.inj = inj; c.matcher.Injective = inj }
}

// NewCoverPoint registers a single-dimensional CoverPoint leaf under db.
// paramNames names the sampler's positional arguments in order, the
// substitute for the source's runtime parameter-name introspection (see
// WithVName and the design notes on closures as first-class values).
func NewCoverPoint(db *CoverageDB, name string, bins []interface{}, paramNames []string, opts ...PointOption) (*CoverItem, error) {
	for _, b := range bins {
		if err := checkComparable(b); err != nil {
			return nil, coverr.Wrap(coverr.Registration, "bin in "+name, err)
		}
	}

	item := &CoverItem{
		name:       name,
		kind:       KindPoint,
		weight:     1,
		atLeast:    1,
		inj:        true,
		bins:       bins,
		hits:       make([]int, len(bins)),
		paramNames: paramNames,
		matcher:    &BinMatcher{Bins: bins, Injective: true},
	}

	for _, opt := range opts {
		opt(item)
	}
	item.matcher.Bins = item.bins
	item.matcher.Labels = item.binLabels
	item.matcher.Injective = item.inj

	if item.binLabels != nil && len(item.binLabels) != len(item.bins) {
		return nil, coverr.Newf(coverr.Registration, "bins_labels length %d does not match bins length %d for %q", len(item.binLabels), len(item.bins), name)
	}
	if item.weight < 1 {
		return nil, coverr.Newf(coverr.Registration, "weight must be >= 1 for %q", name)
	}
	if item.atLeast < 1 {
		return nil, coverr.Newf(coverr.Registration, "at_least must be >= 1 for %q", name)
	}

	item.size = item.weight * len(item.bins)

	if err := db.add(item); err != nil {
		return nil, err
	}
	return item, nil
}

// checkComparable rejects bin values Go cannot meaningfully key or display
// (funcs, channels): the Go analogue of the source's "unhashable bin".
func checkComparable(b interface{}) error {
	if b == nil {
		return nil
	}
	switch reflect.TypeOf(b).Kind() {
	case reflect.Func, reflect.Chan:
		return coverr.New(coverr.Registration, "bin value is not usable as a coverage key")
	default:
		return nil
	}
}

// Sample evaluates args against the CoverPoint's bins, updating hit counts,
// new_hits, and bins/threshold callbacks up the parent chain. It returns the
// indices (in the point's declared bin order) that matched, for use by
// CoverCross opportunistic updates.
func (c *CoverItem) Sample(args ...interface{}) ([]int, error) {
	if c.kind != KindPoint {
		return nil, coverr.New(coverr.Contract, "Sample called on a non-CoverPoint item "+c.name)
	}
	if c.updating {
		return nil, coverr.Newf(coverr.Reentrancy, "reentrant sample on %q", c.name)
	}
	c.updating = true
	defer func() { c.updating = false }()

	matched, err := c.matcher.Match(c.paramNames, args)
	if err != nil {
		return nil, coverr.Wrap(coverr.Contract, "sample on "+c.name, err)
	}

	var firstErr error
	for _, idx := range matched {
		c.hits[idx]++
		label := ""
		if idx < len(c.binLabels) {
			label = c.binLabels[idx]
		}
		firstHit := c.hits[idx] == 1
		crossedAtLeast := c.hits[idx] == c.atLeast

		if crossedAtLeast {
			c.coverage = c.weight * c.countCoveredGeneric()
			c.newHits = append(c.newHits, c.bins[idx])
		}

		notify := ""
		if firstHit && label != "" {
			notify = label
		}
		// A panicking callback for one matched bin must not skip the
		// remaining matched bins' updates; only the first such panic is
		// surfaced, once every bin has been processed.
		if err := c.propagateUp(notify); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return matched, firstErr
}
