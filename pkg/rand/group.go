package rand

import "github.com/jihwankim/covcrv/pkg/rand/randerr"

// validateSolveOrder checks that no declared variable is assigned to more
// than one group and that no undeclared name is referenced. Variables left
// out of every group are not an error here: SolveOrder appends them as an
// implicit final group of their own.
func validateSolveOrder(declared []string, groups [][]string) error {
	seen := make(map[string]bool, len(declared))
	declaredSet := make(map[string]bool, len(declared))
	for _, v := range declared {
		declaredSet[v] = true
	}
	for _, g := range groups {
		for _, v := range g {
			if !declaredSet[v] {
				return randerr.Newf(randerr.Registration, "solve_order references undeclared variable %q", v)
			}
			if seen[v] {
				return randerr.Newf(randerr.Registration, "solve_order assigns %q to more than one group", v)
			}
			seen[v] = true
		}
	}
	return nil
}

// groupIndexFor returns the index of the earliest group whose cumulative
// variable set (groups[0..i]) covers every variable in vars: a constraint
// is placed in the first solve step at which all of its free variables are
// available.
func groupIndexFor(vars []string, groups [][]string) (int, error) {
	cumulative := make(map[string]bool)
	for gi, g := range groups {
		for _, v := range g {
			cumulative[v] = true
		}
		covers := true
		for _, v := range vars {
			if !cumulative[v] {
				covers = false
				break
			}
		}
		if covers {
			return gi, nil
		}
	}
	return -1, randerr.Newf(randerr.Classification, "constraint over %v is not covered by any solve_order group", vars)
}
