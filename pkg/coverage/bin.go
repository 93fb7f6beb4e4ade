package coverage

import (
	"reflect"
)

// Relation reports whether a transformed sample value matches a bin.
type Relation func(value, bin interface{}) bool

// Transform extracts a comparable value from a sample's arguments.
type Transform func(args []interface{}) interface{}

// Equality is the default Relation: deep equality on value and bin.
func Equality(value, bin interface{}) bool {
	return reflect.DeepEqual(value, bin)
}

// BinMatcher is the primitive deciding whether a sample value matches a bin
// under a user-supplied transformation and binary relation.
//
// Go has no runtime reflection over a closure's formal parameter names, so
// VName is resolved against the paramNames a CoverPoint declares at
// registration time (NewCoverPoint) rather than inspected from the sampler
// itself.
type BinMatcher struct {
	Bins      []interface{}
	Labels    []string // parallel to Bins; nil or "" entries mean unlabeled
	XF        Transform
	Rel       Relation
	VName     string
	Injective bool
}

// resolvedRel returns Rel, defaulting to Equality.
func (m *BinMatcher) resolvedRel() Relation {
	if m.Rel != nil {
		return m.Rel
	}
	return Equality
}

// resolvedXF returns a transform, defaulting to selecting the named argument
// (or the first argument, if VName is unset or not found in paramNames).
func (m *BinMatcher) resolvedXF(paramNames []string) Transform {
	if m.XF != nil {
		return m.XF
	}
	idx := 0
	if m.VName != "" {
		for i, n := range paramNames {
			if n == m.VName {
				idx = i
				break
			}
		}
	}
	return func(args []interface{}) interface{} {
		if idx >= len(args) {
			return nil
		}
		return args[idx]
	}
}

// Match returns the indices, in declared order, of the bins matched by args.
// Under Injective, at most the first match is returned.
//
// A transform that panics (an out-of-range index or failed type assertion in
// a user-supplied xf) is a programming error and is allowed to propagate
// rather than being converted into a returned error here.
func (m *BinMatcher) Match(paramNames []string, args []interface{}) ([]int, error) {
	if len(m.Bins) == 0 {
		return nil, nil
	}

	xf := m.resolvedXF(paramNames)
	rel := m.resolvedRel()
	value := xf(args)

	var matches []int
	for i, b := range m.Bins {
		if rel(value, b) {
			matches = append(matches, i)
			if m.Injective {
				break
			}
		}
	}
	return matches, nil
}
