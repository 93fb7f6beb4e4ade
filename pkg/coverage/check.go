package coverage

import "github.com/jihwankim/covcrv/pkg/coverage/coverr"

// CheckOption configures a CoverCheck at construction time.
type CheckOption func(*CoverItem)

// WithCheckWeight sets the check's weight (default 1).
func WithCheckWeight(w int) CheckOption {
	return func(c *CoverItem) { c.weight = w }
}

// WithPassCallback registers fn to fire once, the call on which the check
// first becomes covered.
func WithPassCallback(fn func(item *CoverItem)) CheckOption {
	return func(c *CoverItem) { c.check.onPass = fn }
}

// WithFailCallback registers fn to fire once, the call on which the check
// first fails.
func WithFailCallback(fn func(item *CoverItem)) CheckOption {
	return func(c *CoverItem) { c.check.onFail = fn }
}

// NewCoverCheck registers an assertion-style leaf. fFail, if non-nil, is
// evaluated first on every Sample; once it returns true the check is
// permanently failed and its coverage is permanently 0, regardless of any
// earlier or later pass. fPass defaults to "always true" when nil. atLeast
// passing samples (not failing) are required before the check is covered.
func NewCoverCheck(db *CoverageDB, name string, fPass, fFail func(args []interface{}) bool, atLeast int, opts ...CheckOption) (*CoverItem, error) {
	if atLeast < 1 {
		return nil, coverr.Newf(coverr.Registration, "at_least must be >= 1 for %q", name)
	}

	item := &CoverItem{
		name:    name,
		kind:    KindCheck,
		weight:  1,
		atLeast: atLeast,
		check:   &checkState{fPass: fPass, fFail: fFail},
	}
	for _, opt := range opts {
		opt(item)
	}
	item.size = item.weight

	if err := db.add(item); err != nil {
		return nil, err
	}
	return item, nil
}

// SampleCheck evaluates one assertion round against a CoverCheck. A failing round
// is sticky: coverage never recovers once failed becomes true, even after an
// earlier pass reported the check as covered.
func (c *CoverItem) SampleCheck(args ...interface{}) error {
	if c.kind != KindCheck {
		return coverr.New(coverr.Contract, "SampleCheck called on a non-CoverCheck item "+c.name)
	}
	if c.updating {
		return coverr.Newf(coverr.Reentrancy, "reentrant sample on %q", c.name)
	}
	c.updating = true
	defer func() { c.updating = false }()

	s := c.check
	notify := ""
	var firstErr error
	recordErr := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if s.fFail != nil && s.fFail(args) {
		s.failed = true
		if !s.failFired {
			s.failFired = true
			notify = "FAIL"
			if s.onFail != nil {
				recordErr(callSafely(func() { s.onFail(c) }))
			}
		}
	} else {
		pass := s.fPass == nil || s.fPass(args)
		if pass && !s.failed {
			s.passCount++
			if s.passCount >= c.atLeast {
				s.covered = true
				if !s.passFired {
					s.passFired = true
					notify = "PASS"
					if s.onPass != nil {
						recordErr(callSafely(func() { s.onPass(c) }))
					}
				}
			}
		}
	}

	if s.covered && !s.failed {
		c.coverage = c.weight
	} else {
		c.coverage = 0
	}
	// notify carries the same "PASS"/"FAIL" bin-label convention
	// AddBinsCallback uses for CoverPoint/CoverCross hits, so a callback
	// registered on an ancestor container observes a check's state
	// transition the same way it observes any other leaf's first-hit bin.
	// A panicking onPass/onFail/bins/threshold callback never aborts the
	// rest: every callback still gets a chance to run, and only the first
	// panic encountered is surfaced, after all of them have run.
	recordErr(c.propagateUp(notify))
	return firstErr
}
