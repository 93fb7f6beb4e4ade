package solver

import (
	"fmt"
	"reflect"
)

// Backtracking is the default Strategy: plain backtracking search with
// one-variable-ahead forward checking. Candidate values for the next
// variable are pruned against any constraint whose every other variable is
// already assigned, before recursing into it.
type Backtracking struct{}

// NewBacktracking constructs the default Strategy.
func NewBacktracking() *Backtracking { return &Backtracking{} }

func (s *Backtracking) Solve(variables []string, domains map[string]Domain, constraints []Constraint, limit int) ([]Assignment, error) {
	remaining := make(map[string]*bitset, len(variables))
	for _, v := range variables {
		d, ok := domains[v]
		if !ok {
			return nil, fmt.Errorf("solver: no domain declared for variable %q", v)
		}
		for _, val := range d {
			if val != nil && !reflect.TypeOf(val).Comparable() {
				return nil, fmt.Errorf("solver: variable %q has a non-comparable domain value %v", v, val)
			}
		}
		remaining[v] = fullBitset(len(d))
	}

	var results []Assignment
	assigned := make(Assignment, len(variables))
	assignedSet := make(map[string]bool, len(variables))

	readyAndSatisfied := func() bool {
		for _, c := range constraints {
			ready := true
			for _, v := range c.Vars {
				if !assignedSet[v] {
					ready = false
					break
				}
			}
			if ready && !c.Pred(assigned) {
				return false
			}
		}
		return true
	}

	// forwardCheck prunes next's remaining candidates against every
	// constraint that references next and has every other variable already
	// assigned, so a doomed branch is skipped before it is ever entered.
	forwardCheck := func(next string) *bitset {
		pruned := remaining[next].clone()
		dom := domains[next]
		for _, c := range constraints {
			hasNext, otherUnassigned := false, false
			for _, v := range c.Vars {
				if v == next {
					hasNext = true
					continue
				}
				if !assignedSet[v] {
					otherUnassigned = true
					break
				}
			}
			if !hasNext || otherUnassigned {
				continue
			}
			pruned.forEach(func(i int) {
				assigned[next] = dom[i]
				if !c.Pred(assigned) {
					pruned.clear(i)
				}
			})
			delete(assigned, next)
		}
		return pruned
	}

	var backtrack func(pos int) bool
	backtrack = func(pos int) bool {
		if pos == len(variables) {
			cp := make(Assignment, len(assigned))
			for k, v := range assigned {
				cp[k] = v
			}
			results = append(results, cp)
			return limit > 0 && len(results) >= limit
		}

		v := variables[pos]
		stop := false
		forwardCheck(v).forEach(func(i int) {
			if stop {
				return
			}
			assigned[v] = domains[v][i]
			assignedSet[v] = true
			if readyAndSatisfied() && backtrack(pos+1) {
				stop = true
			}
			delete(assigned, v)
			assignedSet[v] = false
		})
		return stop
	}

	backtrack(0)
	return results, nil
}
