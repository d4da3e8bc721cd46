package ctype

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownType is the reason for a TypeError when a type name
	// is not registered, or the spec is malformed.
	ErrUnknownType = errors.New("unknown or invalid type name")
	// ErrInvalidDisposal is the reason for a TypeError when a
	// disposal hook is requested on a type that cannot carry one. The
	// "!" suffix accepts only string types; [Registry.Dispose] also
	// accepts callbacks and single level pointers.
	ErrInvalidDisposal = errors.New("invalid disposal target")
	// ErrNotTypeSpecifier is the reason for a TypeError when a value
	// that is neither a type nor a type spec is used as one.
	ErrNotTypeSpecifier = errors.New("expected string or type")
	// ErrNameTooLong is the reason for a TypeError when an
	// unregistered type name is too long to be retried with
	// normalized whitespace.
	ErrNameTooLong = errors.New("type name too long to normalize")
	// ErrArrayLength is the reason for a TypeError when an array
	// length is not positive, or the array would exceed the
	// registry's maximum type size.
	ErrArrayLength = errors.New("invalid array length")
	// ErrNotStorable is the reason for a TypeError when a type that
	// cannot be stored in memory, such as void, is used as an array
	// element or struct member.
	ErrNotStorable = errors.New("type cannot be stored")
	// ErrDuplicateName is the reason for a TypeError when a type is
	// registered under a name that is already taken.
	ErrDuplicateName = errors.New("duplicate type name")
)

// TypeError is the error returned when a type cannot be resolved or
// constructed.
type TypeError struct {
	// Spec is the type spec that caused the error, or a description
	// of the offending value if it was not a spec.
	Spec string
	// Reason is an explanation of what went wrong.
	Reason error
}

func (e TypeError) Error() string {
	return fmt.Sprintf("type %q: %s", e.Spec, e.Reason)
}

func (e TypeError) Unwrap() error {
	return e.Reason
}

func typeErr(spec string, reason error) error {
	return TypeError{spec, reason}
}

func typeErrf(spec string, reason error, msg string, args ...any) error {
	return TypeError{spec, fmt.Errorf("%w: %s", reason, fmt.Sprintf(msg, args...))}
}

// invariantError is the panic value for descriptors that no public
// constructor can produce, such as a void struct member.
type invariantError struct {
	what string
}

func (e invariantError) Error() string {
	return "ctype: broken type invariant: " + e.what
}

func invariant(msg string, args ...any) {
	panic(invariantError{fmt.Sprintf(msg, args...)})
}
