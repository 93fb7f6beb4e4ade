package rand

import (
	"testing"

	"github.com/jihwankim/covcrv/pkg/rand/randerr"
	"github.com/jihwankim/covcrv/pkg/rand/solver"
)

func intDomain(lo, hi int) Domain {
	d := make(Domain, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		d = append(d, i)
	}
	return d
}

// TestPointWithConstraintScenario implements end-to-end scenario 4: x,y in
// [-10..9] with hard constraint x < y, 1000 draws, every draw satisfying the
// constraint.
func TestPointWithConstraintScenario(t *testing.T) {
	r := NewRandomized(42)
	if err := r.AddRand("x", intDomain(-10, 9)); err != nil {
		t.Fatalf("add_rand x: %v", err)
	}
	if err := r.AddRand("y", intDomain(-10, 9)); err != nil {
		t.Fatalf("add_rand y: %v", err)
	}
	if err := r.AddConstraint([]string{"x", "y"}, func(a Assignment) bool {
		return a["x"].(int) < a["y"].(int)
	}); err != nil {
		t.Fatalf("add_constraint: %v", err)
	}

	seenX := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		if err := r.Randomize(); err != nil {
			t.Fatalf("randomize #%d: %v", i, err)
		}
		x := r.Value("x").(int)
		y := r.Value("y").(int)
		if !(x < y) {
			t.Fatalf("draw #%d violated x<y: x=%d y=%d", i, x, y)
		}
		if x > 8 {
			t.Fatalf("draw #%d: x=%d outside supported range [-10..8]", i, x)
		}
		seenX[x] = true
	}
	if len(seenX) < 2 {
		t.Fatal("expected x's marginal distribution to take more than one value over 1000 draws")
	}
}

// TestCoverageDrivenExclusionScenario implements end-to-end scenario 5: a
// domain of 10 values, excluded one at a time as they're drawn; the 11th
// randomize call must fail once every value has been excluded.
func TestCoverageDrivenExclusionScenario(t *testing.T) {
	r := NewRandomized(7)
	if err := r.AddRand("x", intDomain(0, 9)); err != nil {
		t.Fatalf("add_rand: %v", err)
	}

	var covered []int
	if err := r.AddConstraint([]string{"x"}, func(a Assignment) bool {
		x := a["x"].(int)
		for _, c := range covered {
			if c == x {
				return false
			}
		}
		return true
	}); err != nil {
		t.Fatalf("add_constraint: %v", err)
	}

	successes := 0
	for i := 0; i < 10; i++ {
		if err := r.Randomize(); err != nil {
			t.Fatalf("randomize #%d unexpectedly failed: %v", i, err)
		}
		successes++
		covered = append(covered, r.Value("x").(int))
	}
	if successes != 10 {
		t.Fatalf("successes = %d, want 10", successes)
	}

	err := r.Randomize()
	if err == nil {
		t.Fatal("expected the 11th randomize call to fail: domain fully excluded")
	}
	if !randerr.Is(err, randerr.Solver) {
		t.Fatalf("expected a solver error, got %v", err)
	}
}

func TestAddConstraintRejectsUndeclaredVariable(t *testing.T) {
	r := NewRandomized(1)
	r.AddRand("x", Domain{0, 1})
	err := r.AddConstraint([]string{"x", "ghost"}, func(a Assignment) bool { return true })
	if err == nil {
		t.Fatal("expected a constraint over an undeclared variable to error")
	}
}

func TestAddConstraintReplacesSameVariableSet(t *testing.T) {
	r := NewRandomized(1)
	r.AddRand("x", Domain{0, 1, 2})

	calls := 0
	r.AddConstraint([]string{"x"}, func(a Assignment) bool { calls++; return true })
	r.AddConstraint([]string{"x"}, func(a Assignment) bool { return a["x"].(int) == 2 })

	for i := 0; i < 5; i++ {
		if err := r.Randomize(); err != nil {
			t.Fatalf("randomize: %v", err)
		}
		if r.Value("x").(int) != 2 {
			t.Fatalf("expected the second constraint to have replaced the first, got x=%v", r.Value("x"))
		}
	}
	if calls != 0 {
		t.Fatal("the replaced constraint must never be invoked")
	}
}

func TestSolveOrderSequencesGroups(t *testing.T) {
	r := NewRandomized(3)
	r.AddRand("a", Domain{0, 1})
	r.AddRand("b", Domain{0, 1, 2})
	if err := r.SolveOrder([]string{"a"}, []string{"b"}); err != nil {
		t.Fatalf("solve_order: %v", err)
	}
	if err := r.AddConstraint([]string{"a", "b"}, func(asn Assignment) bool {
		return asn["b"].(int) == asn["a"].(int)+1
	}); err != nil {
		t.Fatalf("add_constraint: %v", err)
	}
	if err := r.Randomize(); err != nil {
		t.Fatalf("randomize: %v", err)
	}
	a := r.Value("a").(int)
	b := r.Value("b").(int)
	if b != a+1 {
		t.Fatalf("constraint spanning groups not honored once b's group solves: a=%d b=%d", a, b)
	}
}

func TestSolveOrderRejectsUndeclaredVariable(t *testing.T) {
	r := NewRandomized(1)
	r.AddRand("a", Domain{0})
	r.AddRand("b", Domain{0})
	if err := r.SolveOrder([]string{"a"}, []string{"ghost"}); err == nil {
		t.Fatal("expected an undeclared variable in solve_order to error")
	}
}

func TestSolveOrderLeavesUnmentionedVariablesToImplicitFinalGroup(t *testing.T) {
	r := NewRandomized(1)
	r.AddRand("a", Domain{0, 1})
	r.AddRand("b", Domain{0, 1, 2})
	if err := r.SolveOrder([]string{"a"}); err != nil {
		t.Fatalf("solve_order: %v", err)
	}
	if err := r.Randomize(); err != nil {
		t.Fatalf("randomize should succeed with b folded into an implicit final group: %v", err)
	}
	if _, ok := r.Values()["b"]; !ok {
		t.Fatal("expected b to be resolved via the implicit final group")
	}
}

func TestAddRandRejectsEmptyDomain(t *testing.T) {
	r := NewRandomized(1)
	if err := r.AddRand("x", Domain{}); err == nil {
		t.Fatal("expected an empty domain to error")
	}
}

func TestAddRandRedeclarationReplacesDomain(t *testing.T) {
	r := NewRandomized(1)
	r.AddRand("x", Domain{0, 1})
	if err := r.AddRand("x", Domain{2, 3}); err != nil {
		t.Fatalf("expected re-declaring x to replace its domain, got %v", err)
	}
	if err := r.Randomize(); err != nil {
		t.Fatalf("randomize: %v", err)
	}
	if v := r.Value("x").(int); v != 2 && v != 3 {
		t.Fatalf("x = %d, want a value from the replacing domain {2,3}", v)
	}
}

func TestDistributionBiasesChoiceTowardHigherWeight(t *testing.T) {
	r := NewRandomized(123)
	r.AddRand("x", Domain{0, 1})
	if err := r.AddDistribution([]string{"x"}, func(a Assignment) float64 {
		if a["x"].(int) == 1 {
			return 100
		}
		return 1
	}); err != nil {
		t.Fatalf("add_distribution: %v", err)
	}

	ones := 0
	const trials = 500
	for i := 0; i < trials; i++ {
		if err := r.Randomize(); err != nil {
			t.Fatalf("randomize: %v", err)
		}
		if r.Value("x").(int) == 1 {
			ones++
		}
	}
	if ones < trials*8/10 {
		t.Fatalf("expected x=1 to dominate under a 100:1 weight, got %d/%d", ones, trials)
	}
}

func TestDistributionZeroWeightExcludesAssignment(t *testing.T) {
	r := NewRandomized(5)
	r.AddRand("x", Domain{0, 1})
	if err := r.AddDistribution([]string{"x"}, func(a Assignment) float64 {
		if a["x"].(int) == 0 {
			return 0
		}
		return 1
	}); err != nil {
		t.Fatalf("add_distribution: %v", err)
	}
	for i := 0; i < 50; i++ {
		if err := r.Randomize(); err != nil {
			t.Fatalf("randomize: %v", err)
		}
		if r.Value("x").(int) != 1 {
			t.Fatalf("expected a zero-weight assignment to never be chosen, got x=%v", r.Value("x"))
		}
	}
}

func TestRandomizeWithAppliesExtraConstraintOnlyForThisCall(t *testing.T) {
	r := NewRandomized(9)
	r.AddRand("x", intDomain(0, 9))

	if err := r.RandomizeWith(solver.Constraint{
		Vars: []string{"x"},
		Pred: func(a Assignment) bool { return a["x"].(int) == 5 },
	}); err != nil {
		t.Fatalf("randomize_with: %v", err)
	}
	if r.Value("x").(int) != 5 {
		t.Fatalf("expected the extra constraint to pin x=5, got %v", r.Value("x"))
	}

	// The extra constraint must not persist beyond its one call.
	sawOther := false
	for i := 0; i < 20; i++ {
		if err := r.Randomize(); err != nil {
			t.Fatalf("randomize: %v", err)
		}
		if r.Value("x").(int) != 5 {
			sawOther = true
		}
	}
	if !sawOther {
		t.Fatal("expected plain Randomize calls to draw values other than 5 once the extra constraint is gone")
	}
}

// TestRandomizeWithExtraConstraintReplacesRegisteredOne covers the
// exact-variable-set replace rule from a registered constraint's side: an
// extra constraint over the same variable set as a registered one must
// replace it for the call, not be ANDed with it (which would make x==5
// unsatisfiable against a registered x==2 constraint).
func TestRandomizeWithExtraConstraintReplacesRegisteredOne(t *testing.T) {
	r := NewRandomized(3)
	r.AddRand("x", intDomain(0, 9))
	if err := r.AddConstraint([]string{"x"}, func(a Assignment) bool { return a["x"].(int) == 2 }); err != nil {
		t.Fatalf("add_constraint: %v", err)
	}

	if err := r.RandomizeWith(solver.Constraint{
		Vars: []string{"x"},
		Pred: func(a Assignment) bool { return a["x"].(int) == 5 },
	}); err != nil {
		t.Fatalf("randomize_with should succeed: the extra constraint replaces x==2, not AND with it: %v", err)
	}
	if r.Value("x").(int) != 5 {
		t.Fatalf("expected x=5 from the replacing extra constraint, got %v", r.Value("x"))
	}

	// The registered x==2 constraint must be restored after the call.
	if err := r.Randomize(); err != nil {
		t.Fatalf("randomize: %v", err)
	}
	if r.Value("x").(int) != 2 {
		t.Fatalf("expected the registered constraint x==2 restored after randomize_with, got %v", r.Value("x"))
	}
}

func TestPreAndPostRandomizeHooksFireInOrder(t *testing.T) {
	r := NewRandomized(1)
	r.AddRand("x", Domain{0, 1})
	var order []string
	r.PreRandomize(func() { order = append(order, "pre1") })
	r.PreRandomize(func() { order = append(order, "pre2") })
	r.PostRandomize(func() { order = append(order, "post1") })
	if err := r.Randomize(); err != nil {
		t.Fatalf("randomize: %v", err)
	}
	want := []string{"pre1", "pre2", "post1"}
	if len(order) != len(want) {
		t.Fatalf("hook order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("hook order = %v, want %v", order, want)
		}
	}
}

func TestNoSatisfyingAssignmentFailsWithoutPartialCommit(t *testing.T) {
	r := NewRandomized(1)
	r.AddRand("x", Domain{0, 1})
	r.Randomize() // establish an initial value
	initial := r.Value("x")

	r.AddConstraint([]string{"x"}, func(a Assignment) bool { return false })
	err := r.Randomize()
	if err == nil {
		t.Fatal("expected an unsatisfiable constraint to fail randomize")
	}
	if r.Value("x") != initial {
		t.Fatalf("a failed randomize must not commit a partial assignment, x changed from %v to %v", initial, r.Value("x"))
	}
}
