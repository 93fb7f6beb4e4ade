// Package randerr defines the randomization engine's error kinds, the
// same typed-error shape pkg/coverage/coverr uses for the coverage engine.
package randerr

import "fmt"

// Kind classifies a randomization error.
type Kind int

const (
	// Registration marks errors fatal at add_rand/add_constraint/
	// solve_order registration time: unknown variable, empty domain,
	// a solve_order group that cannot be formed.
	Registration Kind = iota
	// Classification marks errors in partitioning constraints into
	// solve-order groups: a constraint whose free variables are not all
	// covered by the solve-order groups. A constraint spanning several
	// groups is not an error; it is solved with the first group by which
	// all its variables are available.
	Classification
	// Solver marks a Randomize/RandomizeWith call that found no satisfying
	// assignment.
	Solver
)

func (k Kind) String() string {
	switch k {
	case Registration:
		return "registration error"
	case Classification:
		return "classification error"
	case Solver:
		return "solver error"
	default:
		return "randomization error"
	}
}

// Error is the concrete error type returned by pkg/rand.
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

// Is reports whether err is a randomization Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if re, ok := err.(*Error); ok {
			e = re
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
