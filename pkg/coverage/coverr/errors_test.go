package coverr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsMatchesWrappedKind(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(Contract, "bad sample", cause)
	if !Is(err, Contract) {
		t.Fatal("expected Is to match the wrapped error's kind")
	}
	if Is(err, Registration) {
		t.Fatal("expected Is to reject a non-matching kind")
	}
}

func TestIsUnwrapsThroughFmtErrorf(t *testing.T) {
	base := New(Reentrancy, "already updating")
	wrapped := fmt.Errorf("sample %s: %w", "addr", base)
	if !Is(wrapped, Reentrancy) {
		t.Fatal("expected Is to see through a standard %w wrap")
	}
}

func TestIsReturnsFalseForPlainError(t *testing.T) {
	if Is(errors.New("plain"), Contract) {
		t.Fatal("expected a plain error to never match any Kind")
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(ExportMerge, "merge failed", errors.New("bin count mismatch"))
	got := err.Error()
	if !strings.Contains(got, "bin count mismatch") {
		t.Fatalf("expected the error string to include the cause, got %q", got)
	}
}
