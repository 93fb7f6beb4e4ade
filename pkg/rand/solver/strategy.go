// Package solver defines the pluggable finite-domain constraint-solving
// backend used by pkg/rand, and ships a default backtracking-with-forward-
// checking implementation of it. The algorithm shape (bitset domains, a
// backtracking trail, value pruning ahead of assignment) is grounded in the
// finite-domain engine surveyed from the retrieved example pack; no
// third-party finite-domain solver library appears anywhere in that corpus,
// so this package is standard-library only by necessity, not preference.
package solver

// Domain is an ordered, finite set of candidate values for one variable.
// Order matters: it fixes both the enumeration order and the default value
// order, and is what makes two Solve calls over the same variables, domains,
// and constraints produce the same set of solutions regardless of caller.
type Domain []interface{}

// Assignment maps a variable name to one value chosen from its Domain.
type Assignment map[string]interface{}

// Predicate reports whether an assignment satisfies a constraint. A
// Strategy only ever calls a Predicate once every variable named in its
// Constraint.Vars is present in the assignment.
type Predicate func(Assignment) bool

// Constraint pairs a predicate with the exact set of variables it reads.
// Carrying Vars explicitly is this module's substitute for the source's
// runtime introspection of a constraint function's free variables.
type Constraint struct {
	Vars []string
	Pred Predicate
}

// Strategy is the pluggable constraint-solving backend behind
// Randomized.Randomize. Implementations must enumerate solutions
// deterministically for a fixed variables order, domain order, and
// constraint set: any caller-visible randomness (which solution to pick)
// belongs to the caller, never to the Strategy itself.
type Strategy interface {
	// Solve returns every assignment over variables, drawn from domains,
	// that satisfies every constraint, collecting at most limit solutions
	// (0 means unlimited). A result of length 0 with a nil error means the
	// search space was exhausted with no satisfying assignment.
	Solve(variables []string, domains map[string]Domain, constraints []Constraint, limit int) ([]Assignment, error)
}
