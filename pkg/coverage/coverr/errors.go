// Package coverr defines the coverage engine's error kinds, each
// distinguishable with errors.Is/errors.As the way the rest of this module's
// teacher lineage wraps errors with fmt.Errorf("...: %w", err).
package coverr

import "fmt"

// Kind classifies a coverage error per the error handling design: each kind
// is fatal at a specific, well-defined point and never silently swallowed.
type Kind int

const (
	// Registration marks errors fatal at registration time: duplicate
	// names, unhashable bins, mismatched label counts, unknown cross
	// references.
	Registration Kind = iota
	// Contract marks errors fatal at first offending sample: arguments
	// incompatible with a declared transform or named argument.
	Contract
	// ExportMerge marks errors fatal to an export or merge operation,
	// leaving coverage state unchanged.
	ExportMerge
	// Reentrancy marks a sample attempted on a leaf that is already
	// mid-update on the same call stack.
	Reentrancy
)

func (k Kind) String() string {
	switch k {
	case Registration:
		return "registration error"
	case Contract:
		return "contract error"
	case ExportMerge:
		return "export/merge error"
	case Reentrancy:
		return "reentrancy error"
	default:
		return "coverage error"
	}
}

// Error is the concrete error type returned by pkg/coverage.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err is a coverage Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if ce, ok := err.(*Error); ok {
			e = ce
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}
