package rand

import "testing"

func TestVarKeyIgnoresOrder(t *testing.T) {
	if varKey([]string{"a", "b"}) != varKey([]string{"b", "a"}) {
		t.Fatal("varKey must be order-independent")
	}
	if varKey([]string{"a", "b"}) == varKey([]string{"a", "c"}) {
		t.Fatal("varKey must distinguish different variable sets")
	}
}

func TestUpsertConstraintReplacesInPlace(t *testing.T) {
	first := &constraintEntry{key: varKey([]string{"x"}), vars: []string{"x"}}
	second := &constraintEntry{key: varKey([]string{"x"}), vars: []string{"x"}}
	other := &constraintEntry{key: varKey([]string{"y"}), vars: []string{"y"}}

	entries := upsertConstraint(nil, first)
	entries = upsertConstraint(entries, other)
	entries = upsertConstraint(entries, second)

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (replace, not append)", len(entries))
	}
	if entries[0] != second {
		t.Fatal("replacement must preserve the original entry's position")
	}
}

func TestRemoveConstraintDropsOnlyMatchingKey(t *testing.T) {
	a := &constraintEntry{key: varKey([]string{"x"})}
	b := &constraintEntry{key: varKey([]string{"y"})}
	entries := []*constraintEntry{a, b}
	entries = removeConstraint(entries, varKey([]string{"x"}))
	if len(entries) != 1 || entries[0] != b {
		t.Fatalf("removeConstraint left %v, want only b", entries)
	}
}

func TestValidateSolveOrderRejectsOverlap(t *testing.T) {
	err := validateSolveOrder([]string{"a", "b"}, [][]string{{"a", "b"}, {"a"}})
	if err == nil {
		t.Fatal("expected an error when a variable appears in more than one group")
	}
}

func TestValidateSolveOrderAcceptsExactPartition(t *testing.T) {
	err := validateSolveOrder([]string{"a", "b", "c"}, [][]string{{"a"}, {"b", "c"}})
	if err != nil {
		t.Fatalf("expected a valid partition to be accepted, got %v", err)
	}
}

func TestGroupIndexForEarliestCoveringGroup(t *testing.T) {
	groups := [][]string{{"a"}, {"b"}, {"c"}}
	idx, err := groupIndexFor([]string{"a"}, groups)
	if err != nil || idx != 0 {
		t.Fatalf("groupIndexFor({a}) = %d, %v; want 0, nil", idx, err)
	}
	idx, err = groupIndexFor([]string{"a", "b"}, groups)
	if err != nil || idx != 1 {
		t.Fatalf("groupIndexFor({a,b}) = %d, %v; want 1, nil", idx, err)
	}
}

func TestGroupIndexForUncoveredVariableErrors(t *testing.T) {
	groups := [][]string{{"a"}}
	if _, err := groupIndexFor([]string{"a", "z"}, groups); err == nil {
		t.Fatal("expected an error when a variable is never covered by any group")
	}
}
