package coverage

import "github.com/jihwankim/covcrv/pkg/coverage/coverr"

// Section groups a set of CoverPoints that are sampled together in one
// logical event (e.g. one clock cycle, one transaction). Wrapping a group of
// points in a Section is what lets CoverCross fire opportunistically: a cross
// only counts a hit when every referenced point fired within the same
// Section.Invoke call, so the Section is where the per-call event map is
// collected and handed to any cross that references two or more of its
// points.
//
// This is the decorator-idiom wrapper the source expresses as a function
// decorator; Go has no decorator syntax, so the wrapping is an explicit
// object with an Invoke method instead.
type Section struct {
	db     *CoverageDB
	points []*CoverItem
}

// NewSection builds a Section over previously-registered CoverPoints, named
// by their full dotted names.
func NewSection(db *CoverageDB, pointNames ...string) (*Section, error) {
	points := make([]*CoverItem, len(pointNames))
	for i, pn := range pointNames {
		p, err := db.Get(pn)
		if err != nil {
			return nil, coverr.Wrap(coverr.Registration, "Section references unknown point "+pn, err)
		}
		if p.kind != KindPoint {
			return nil, coverr.Newf(coverr.Registration, "Section references %q which is not a CoverPoint", pn)
		}
		points[i] = p
	}
	return &Section{db: db, points: points}, nil
}

// SampleArgs supplies one point's sample arguments within a single Invoke
// call.
type SampleArgs struct {
	Point string
	Args  []interface{}
}

// Invoke samples every supplied point once, then updates any CoverCross
// whose every referenced point is both a member of this Section and present
// in args. Points with no entry in args are skipped for this call (and so
// cannot complete a cross this round).
func (s *Section) Invoke(args ...SampleArgs) error {
	byName := make(map[string]*CoverItem, len(s.points))
	for _, p := range s.points {
		byName[p.name] = p
	}

	var firstErr error
	event := make(map[string][]int, len(args))
	for _, a := range args {
		p, ok := byName[a.Point]
		if !ok {
			if firstErr == nil {
				firstErr = coverr.Newf(coverr.Contract, "Invoke argument for %q is not a member of this Section", a.Point)
			}
			continue
		}
		matched, err := p.Sample(a.Args...)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if len(matched) > 0 {
			event[a.Point] = matched
		}
	}

	seen := make(map[*CoverItem]bool)
	for pointName := range event {
		for _, cross := range s.db.crossesByPoint[pointName] {
			if seen[cross] {
				continue
			}
			seen[cross] = true
			if err := cross.applyEvent(event); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
