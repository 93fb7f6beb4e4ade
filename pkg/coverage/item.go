package coverage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jihwankim/covcrv/pkg/coverage/coverr"
)

// Kind discriminates a CoverItem's role in the trie.
type Kind int

const (
	// KindContainer is an implicit or explicit parent node with no bins
	// of its own; its size/coverage fold its children.
	KindContainer Kind = iota
	KindPoint
	KindCross
	KindCheck
)

// ThresholdCallback fires once, the first time a container's
// CoverPercentage crosses Percent.
type ThresholdCallback struct {
	Percent float64
	Fn      func(item *CoverItem)
	fired   bool
}

// BinsCallback fires once per distinct bin (on any descendant leaf) whose
// label matches Label, the first time that bin is hit.
type BinsCallback struct {
	Label string
	Fn    func(item *CoverItem, label string)
}

// CoverItem is a node in the hierarchical coverage trie: a container, or a
// CoverPoint/CoverCross/CoverCheck leaf.
type CoverItem struct {
	name     string
	kind     Kind
	parent   *CoverItem
	children map[string]*CoverItem
	order    []string

	weight  int
	atLeast int

	// leaf state (points and crosses)
	bins      []interface{}
	binLabels []string
	hits      []int
	inj       bool

	// CoverPoint-only
	matcher    *BinMatcher
	paramNames []string

	// CoverCross-only
	crossItems  []string // referenced CoverPoint full names, declared order
	ignBins     [][]interface{}
	crossTuples [][]int       // index tuple per surviving cross bin, parallel to bins/hits
	crossIndex  map[string]int // string(tuple) -> position in crossTuples/bins/hits

	// CoverCheck-only
	check *checkState

	size     int
	coverage int

	newHits []interface{}

	thresholds []*ThresholdCallback
	bc         []*BinsCallback

	updating bool
}

type checkState struct {
	fFail     func(args []interface{}) bool
	fPass     func(args []interface{}) bool
	passCount int
	covered   bool
	failed    bool
	passFired bool
	failFired bool
	onPass    func(item *CoverItem)
	onFail    func(item *CoverItem)
}

func newContainer(name string, parent *CoverItem) *CoverItem {
	return &CoverItem{
		name:     name,
		kind:     KindContainer,
		parent:   parent,
		children: make(map[string]*CoverItem),
		weight:   1,
		atLeast:  1,
	}
}

// Name returns the item's full dotted name.
func (c *CoverItem) Name() string { return c.name }

// Kind returns the item's kind.
func (c *CoverItem) Kind() Kind { return c.kind }

// Size returns the item's total bin count scaled by weight, folded over
// descendants for a container.
func (c *CoverItem) Size() int { return c.size }

// Coverage returns the item's covered-bin count scaled by weight, folded
// over descendants for a container.
func (c *CoverItem) Coverage() int { return c.coverage }

// CoverPercentage returns 100*Coverage/Size, or 0 if Size is 0.
func (c *CoverItem) CoverPercentage() float64 {
	if c.size == 0 {
		return 0
	}
	return 100 * float64(c.coverage) / float64(c.size)
}

// NewHits returns, and clears, the bins first covered since the previous
// call (consumed-on-read).
func (c *CoverItem) NewHits() []interface{} {
	h := c.newHits
	c.newHits = nil
	return h
}

// DetailedCoverage returns a snapshot of bin -> hit count for a CoverPoint or
// CoverCross, or nil for a container or a CoverCheck.
func (c *CoverItem) DetailedCoverage() map[string]int {
	if c.kind == KindContainer || c.kind == KindCheck {
		return nil
	}
	out := make(map[string]int, len(c.bins))
	for i, b := range c.bins {
		out[binKey(b)] = c.hits[i]
	}
	return out
}

// AddThresholdCallback registers fn to fire once, the first time
// CoverPercentage crosses percent (0,100].
func (c *CoverItem) AddThresholdCallback(fn func(item *CoverItem), percent float64) error {
	if percent <= 0 || percent > 100 {
		return coverr.Newf(coverr.Registration, "threshold percent %v out of range (0,100]", percent)
	}
	c.thresholds = append(c.thresholds, &ThresholdCallback{Percent: percent, Fn: fn})
	return nil
}

// AddBinsCallback registers fn to fire once for each distinct descendant bin
// carrying label, the first time it is hit.
func (c *CoverItem) AddBinsCallback(fn func(item *CoverItem, label string), label string) {
	c.bc = append(c.bc, &BinsCallback{Label: label, Fn: fn})
}

func binKey(b interface{}) string {
	return fmt.Sprintf("%#v", b)
}

// countCoveredGeneric counts bins at or above at_least; shared by
// CoverPoint and CoverCross, which both keep a flat hits slice.
func (c *CoverItem) countCoveredGeneric() int {
	n := 0
	for _, h := range c.hits {
		if h >= c.atLeast {
			n++
		}
	}
	return n
}

// recomputeContainer folds size/coverage from children. Children must
// already be up to date.
func (c *CoverItem) recomputeContainer() {
	size, cov := 0, 0
	for _, name := range c.order {
		ch := c.children[name]
		size += ch.size
		cov += ch.coverage
	}
	c.size, c.coverage = size, cov
}

// propagateUp walks from a leaf to the root, recomputing container
// aggregates and firing threshold/bins callbacks in child-before-parent
// order. notifyLabel is the label of a bin that was just hit for the first
// time (empty label = no bins-callback trigger this call).
//
// A panicking callback is isolated: it is recovered, every other callback
// up the chain still runs, and the first panic encountered is converted to
// a returned error only after every callback has had a chance to run (see
// the error handling design's "recoverable conditions are isolated").
func (c *CoverItem) propagateUp(notifyLabel string) error {
	node := c
	first := true
	var firstErr error
	recordErr := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for node != nil {
		if !first {
			node.recomputeContainer()
		}
		if notifyLabel != "" {
			for _, cb := range node.bc {
				if cb.Label == notifyLabel {
					recordErr(callSafely(func() { cb.Fn(node, notifyLabel) }))
				}
			}
		}
		for _, th := range node.thresholds {
			if !th.fired && node.CoverPercentage() >= th.Percent {
				th.fired = true
				recordErr(callSafely(func() { th.Fn(node) }))
			}
		}
		node = node.parent
		first = false
	}
	return firstErr
}

// callSafely runs fn, recovering a panic and reporting it as a Contract
// error instead of letting it unwind through the triggering Sample/
// SampleCheck call.
func callSafely(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = coverr.Newf(coverr.Contract, "callback panicked: %v", r)
		}
	}()
	fn()
	return nil
}

// splitPath returns the dot-separated segments of name, root first.
func splitPath(name string) []string {
	return strings.Split(name, ".")
}

// String renders a plain indented-tree text summary, the ambient
// CLI-summary idiom carried over from this module's teacher lineage (not
// the HTML/templated report rendering that sits outside the core's scope).
func (c *CoverItem) String() string {
	var b strings.Builder
	c.writeSummary(&b, 0)
	return b.String()
}

func (c *CoverItem) writeSummary(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s  size=%d coverage=%d (%.2f%%)\n", indent, c.leafName(), c.size, c.coverage, c.CoverPercentage())
	names := append([]string(nil), c.order...)
	sort.Strings(names)
	for _, n := range names {
		c.children[n].writeSummary(b, depth+1)
	}
}

func (c *CoverItem) leafName() string {
	parts := splitPath(c.name)
	return parts[len(parts)-1]
}
