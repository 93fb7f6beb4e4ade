// Package rand implements constrained-random variable generation: a base
// type declares named random variables over finite domains, hard
// constraints, weighted distributions, and an optional explicit solve
// order, then resolves one satisfying assignment per Randomize call via a
// pluggable pkg/rand/solver.Strategy.
package rand

import (
	mrand "math/rand"

	"github.com/jihwankim/covcrv/pkg/rand/randerr"
	"github.com/jihwankim/covcrv/pkg/rand/solver"
)

// Domain and Assignment are re-exported from pkg/rand/solver so callers
// rarely need to import it directly.
type Domain = solver.Domain
type Assignment = solver.Assignment

// Randomized is the base every randomizable object embeds. It owns its own
// seeded random source, so two Randomized values with the same seed and the
// same registrations produce the same sequence of Randomize results.
type Randomized struct {
	vars          []string
	domains       map[string]solver.Domain
	constraints   []*constraintEntry
	distributions []*distributionEntry
	solveOrder    [][]string

	strategy    solver.Strategy
	rng         *mrand.Rand
	solutionCap int

	preHooks  []func()
	postHooks []func()

	values map[string]interface{}
}

// NewRandomized constructs a Randomized seeded deterministically. Pass the
// same seed to reproduce a failing run exactly.
func NewRandomized(seed int64) *Randomized {
	return &Randomized{
		domains:     make(map[string]solver.Domain),
		strategy:    solver.NewBacktracking(),
		rng:         mrand.New(mrand.NewSource(seed)),
		solutionCap: 512,
		values:      make(map[string]interface{}),
	}
}

// SetStrategy overrides the default backtracking Strategy.
func (r *Randomized) SetStrategy(s solver.Strategy) { r.strategy = s }

// SetSolutionCap bounds how many satisfying assignments a single solve
// group collects before stopping, trading completeness of the weighted
// choice for bounded search time on large domains.
func (r *Randomized) SetSolutionCap(n int) { r.solutionCap = n }

// AddRand declares a named random variable over domain, in the order given.
// Declaration order is the default solve order and the default variable
// order handed to the Strategy. Re-declaring a variable replaces its domain
// and keeps its original declaration position.
func (r *Randomized) AddRand(name string, domain solver.Domain) error {
	if len(domain) == 0 {
		return randerr.Newf(randerr.Registration, "variable %q has an empty domain", name)
	}
	if _, exists := r.domains[name]; !exists {
		r.vars = append(r.vars, name)
	}
	r.domains[name] = domain
	return nil
}

// AddConstraint registers a hard constraint over vars. Registering a second
// constraint over the exact same variable set replaces the first rather
// than adding a second independent clause, the randomization engine's
// exact-variable-set classification rule.
func (r *Randomized) AddConstraint(vars []string, pred func(Assignment) bool) error {
	if err := r.checkDeclared(vars); err != nil {
		return err
	}
	r.constraints = upsertConstraint(r.constraints, &constraintEntry{key: varKey(vars), vars: vars, pred: pred})
	return nil
}

// DelConstraint removes a previously registered constraint over the exact
// variable set given.
func (r *Randomized) DelConstraint(vars []string) {
	r.constraints = removeConstraint(r.constraints, varKey(vars))
}

// AddDistribution registers a non-negative weight function over vars, used
// to bias the choice among otherwise equally valid satisfying assignments.
// A weight of 0 excludes an assignment as surely as a failing hard
// constraint would: if every satisfying assignment of a solve group is
// excluded this way, Randomize fails with a Solver error.
func (r *Randomized) AddDistribution(vars []string, weight func(Assignment) float64) error {
	if err := r.checkDeclared(vars); err != nil {
		return err
	}
	r.distributions = upsertDistribution(r.distributions, &distributionEntry{key: varKey(vars), vars: vars, weight: weight})
	return nil
}

func (r *Randomized) checkDeclared(vars []string) error {
	for _, v := range vars {
		if _, ok := r.domains[v]; !ok {
			return randerr.Newf(randerr.Registration, "references undeclared variable %q", v)
		}
	}
	return nil
}

// SolveOrder partitions the declared variables into ordered groups, solved
// one at a time, earlier groups' resolved values available as constants to
// later groups' constraints and distributions. A variable may appear in at
// most one group; any variable left out of every group is collected into an
// implicit final group, solved last. Without an explicit SolveOrder call,
// all variables solve together in declaration order.
func (r *Randomized) SolveOrder(groups ...[]string) error {
	if err := validateSolveOrder(r.vars, groups); err != nil {
		return err
	}

	mentioned := make(map[string]bool)
	for _, g := range groups {
		for _, v := range g {
			mentioned[v] = true
		}
	}
	var leftover []string
	for _, v := range r.vars {
		if !mentioned[v] {
			leftover = append(leftover, v)
		}
	}
	if len(leftover) > 0 {
		groups = append(append([][]string(nil), groups...), leftover)
	}

	r.solveOrder = groups
	return nil
}

// PreRandomize registers a hook run before every Randomize/RandomizeWith
// call, in registration order.
func (r *Randomized) PreRandomize(fn func()) { r.preHooks = append(r.preHooks, fn) }

// PostRandomize registers a hook run after a successful Randomize/
// RandomizeWith call, in registration order.
func (r *Randomized) PostRandomize(fn func()) { r.postHooks = append(r.postHooks, fn) }

// Value returns the most recently resolved value for a declared variable.
func (r *Randomized) Value(name string) interface{} { return r.values[name] }

// Values returns a snapshot of every resolved variable.
func (r *Randomized) Values() map[string]interface{} {
	out := make(map[string]interface{}, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Randomize resolves one satisfying assignment for every declared variable,
// honoring every registered constraint and solve_order group.
func (r *Randomized) Randomize() error {
	return r.RandomizeWith()
}

// RandomizeWith resolves one satisfying assignment the same way Randomize
// does, plus a set of additional constraints that apply only to this one
// call (in-line constraints, not registered against the object).
func (r *Randomized) RandomizeWith(extra ...solver.Constraint) error {
	for _, hook := range r.preHooks {
		hook()
	}

	groups := r.solveOrder
	if groups == nil {
		groups = [][]string{append([]string(nil), r.vars...)}
	}

	resolved := make(solver.Assignment)
	for gi, group := range groups {
		groupConstraints, err := r.constraintsForGroup(gi, groups, extra)
		if err != nil {
			return err
		}
		groupDistributions := r.distributionsForGroup(gi, groups)

		domains := make(map[string]solver.Domain, len(group))
		for _, v := range group {
			domains[v] = r.domains[v]
		}

		fixed := resolved
		wrapped := make([]solver.Constraint, len(groupConstraints))
		for i, c := range groupConstraints {
			cc := c
			wrapped[i] = solver.Constraint{
				Vars: intersect(cc.vars, group),
				Pred: func(a solver.Assignment) bool {
					return cc.pred(mergeAssignment(fixed, a))
				},
			}
		}

		sols, err := r.strategy.Solve(group, domains, wrapped, r.solutionCap)
		if err != nil {
			return randerr.Wrap(randerr.Solver, "solve group", err)
		}
		kept := sols[:0]
		for _, s := range sols {
			merged := mergeAssignment(resolved, s)
			allowed := true
			for _, d := range groupDistributions {
				if coversAll(d.vars, merged) && d.weight(merged) <= 0 {
					allowed = false
					break
				}
			}
			if allowed {
				kept = append(kept, s)
			}
		}
		sols = kept
		if len(sols) == 0 {
			return randerr.Newf(randerr.Solver, "no satisfying assignment for variables %v", group)
		}

		chosen := weightedChoice(r.rng, sols, resolved, groupDistributions)
		for k, v := range chosen {
			resolved[k] = v
		}
	}

	r.values = resolved
	for _, hook := range r.postHooks {
		hook()
	}
	return nil
}

func (r *Randomized) constraintsForGroup(gi int, groups [][]string, extra []solver.Constraint) ([]*constraintEntry, error) {
	extraKeys := make(map[string]bool, len(extra))
	for _, e := range extra {
		extraKeys[varKey(e.Vars)] = true
	}

	var out []*constraintEntry
	for _, c := range r.constraints {
		if extraKeys[c.key] {
			continue // extra constraints replace any registered constraint over the same variable set, for this call only
		}
		idx, err := groupIndexFor(c.vars, groups)
		if err != nil {
			return nil, err
		}
		if idx == gi {
			out = append(out, c)
		}
	}
	for _, e := range extra {
		idx, err := groupIndexFor(e.Vars, groups)
		if err != nil {
			return nil, err
		}
		if idx == gi {
			pred := e.Pred
			out = append(out, &constraintEntry{key: varKey(e.Vars), vars: e.Vars, pred: func(a solver.Assignment) bool { return pred(a) }})
		}
	}
	return out, nil
}

func (r *Randomized) distributionsForGroup(gi int, groups [][]string) []*distributionEntry {
	var out []*distributionEntry
	for _, d := range r.distributions {
		idx, err := groupIndexFor(d.vars, groups)
		if err == nil && idx == gi {
			out = append(out, d)
		}
	}
	return out
}

func intersect(vars, group []string) []string {
	set := make(map[string]bool, len(group))
	for _, v := range group {
		set[v] = true
	}
	var out []string
	for _, v := range vars {
		if set[v] {
			out = append(out, v)
		}
	}
	return out
}
