package randerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesWrappedKind(t *testing.T) {
	err := Wrap(Solver, "no satisfying assignment", errors.New("search exhausted"))
	if !Is(err, Solver) {
		t.Fatal("expected Is to match the wrapped error's kind")
	}
	if Is(err, Registration) {
		t.Fatal("expected Is to reject a non-matching kind")
	}
}

func TestIsUnwrapsThroughFmtErrorf(t *testing.T) {
	base := Newf(Classification, "constraint over %v spans no group", []string{"x", "y"})
	wrapped := fmt.Errorf("randomize: %w", base)
	if !Is(wrapped, Classification) {
		t.Fatal("expected Is to see through a standard %w wrap")
	}
}

func TestIsReturnsFalseForPlainError(t *testing.T) {
	if Is(errors.New("plain"), Solver) {
		t.Fatal("expected a plain error to never match any Kind")
	}
}
