package coverage

import (
	"fmt"

	"github.com/jihwankim/covcrv/pkg/coverage/coverr"
)

// Wildcard is the "don't care" sentinel usable in a CoverCross's ign_bins
// position list: passing [][]interface{}{{coverage.Any, 2}} as NewCoverCross's
// ignBins ignores every combination whose second point's bin is 2,
// regardless of the first.
type Wildcard struct{}

// Any is the Wildcard value.
var Any = Wildcard{}

// NewCoverCross registers a CoverCross over the full dotted names of
// previously-registered CoverPoints. Its bins are the Cartesian product of
// the referenced points' bins, minus any combination matched by ignBins.
func NewCoverCross(db *CoverageDB, name string, pointNames []string, ignBins [][]interface{}, opts ...PointOption) (*CoverItem, error) {
	if len(pointNames) < 2 {
		return nil, coverr.Newf(coverr.Registration, "CoverCross %q needs at least two points", name)
	}

	points := make([]*CoverItem, len(pointNames))
	for i, pn := range pointNames {
		p, err := db.Get(pn)
		if err != nil {
			return nil, coverr.Wrap(coverr.Registration, fmt.Sprintf("CoverCross %q references unknown point %q", name, pn), err)
		}
		if p.kind != KindPoint {
			return nil, coverr.Newf(coverr.Registration, "CoverCross %q references %q which is not a CoverPoint", name, pn)
		}
		points[i] = p
	}

	for _, ig := range ignBins {
		if len(ig) != len(points) {
			return nil, coverr.Newf(coverr.Registration, "ign_bins entry length %d does not match %d referenced points in %q", len(ig), len(points), name)
		}
	}

	tuples := cartesianIndices(binCounts(points))
	var bins []interface{}
	var survivors [][]int
	for _, t := range tuples {
		if ignored(t, points, ignBins) {
			continue
		}
		tuple := make([]interface{}, len(points))
		for i, idx := range t {
			tuple[i] = points[i].bins[idx]
		}
		bins = append(bins, tuple)
		survivors = append(survivors, t)
	}

	index := make(map[string]int, len(survivors))
	for i, t := range survivors {
		index[tupleKey(t)] = i
	}

	item := &CoverItem{
		name:        name,
		kind:        KindCross,
		weight:      1,
		atLeast:     1,
		bins:        bins,
		hits:        make([]int, len(bins)),
		crossItems:  pointNames,
		ignBins:     ignBins,
		crossTuples: survivors,
		crossIndex:  index,
	}
	for _, opt := range opts {
		opt(item)
	}
	item.size = item.weight * len(item.bins)

	if err := db.add(item); err != nil {
		return nil, err
	}
	return item, nil
}

func binCounts(points []*CoverItem) []int {
	n := make([]int, len(points))
	for i, p := range points {
		n[i] = len(p.bins)
	}
	return n
}

// cartesianIndices returns every index tuple over the given per-dimension
// counts, in lexicographic order.
func cartesianIndices(counts []int) [][]int {
	result := [][]int{{}}
	for _, n := range counts {
		next := make([][]int, 0, len(result)*n)
		for _, r := range result {
			for i := 0; i < n; i++ {
				t := append(append([]int{}, r...), i)
				next = append(next, t)
			}
		}
		result = next
	}
	return result
}

func ignored(t []int, points []*CoverItem, ignBins [][]interface{}) bool {
	for _, ig := range ignBins {
		match := true
		for i, want := range ig {
			if _, isAny := want.(Wildcard); isAny {
				continue
			}
			if !Equality(points[i].bins[t[i]], want) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func tupleKey(t []int) string {
	return fmt.Sprint(t)
}

// applyEvent increments the cross bin, if any, corresponding to one matched
// index per referenced point within a single Invoke call. It is a no-op if
// any referenced point did not fire in that call, or if the resulting
// combination was excluded by ign_bins.
func (c *CoverItem) applyEvent(event map[string][]int) error {
	idxLists := make([][]int, len(c.crossItems))
	for i, name := range c.crossItems {
		matched, ok := event[name]
		if !ok || len(matched) == 0 {
			return nil
		}
		idxLists[i] = matched
	}

	var firstErr error
	for _, combo := range cartesianIndices(lengths(idxLists)) {
		resolved := make([]int, len(combo))
		for i, pos := range combo {
			resolved[i] = idxLists[i][pos]
		}
		pos, ok := c.crossIndex[tupleKey(resolved)]
		if !ok {
			continue
		}
		c.hits[pos]++
		firstHit := c.hits[pos] == 1
		crossedAtLeast := c.hits[pos] == c.atLeast
		if crossedAtLeast {
			c.coverage = c.weight * c.countCoveredGeneric()
			c.newHits = append(c.newHits, c.bins[pos])
		}
		label := ""
		if pos < len(c.binLabels) {
			label = c.binLabels[pos]
		}
		notify := ""
		if firstHit && label != "" {
			notify = label
		}
		// As in CoverPoint.Sample, a panicking callback for one combination
		// must not skip the remaining combinations in this event.
		if err := c.propagateUp(notify); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func lengths(lists [][]int) []int {
	n := make([]int, len(lists))
	for i, l := range lists {
		n[i] = len(l)
	}
	return n
}
