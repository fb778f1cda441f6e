package inject

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrorKind classifies an injection failure.
type ErrorKind string

const (
	// Decode-time kinds, raised while a signature is inspected.
	KindUnsupportedUnion ErrorKind = "UNSUPPORTED_UNION"
	KindMissingResolver  ErrorKind = "MISSING_RESOLVER"
	KindUnsupportedArity ErrorKind = "UNSUPPORTED_ARITY"
	KindTypeMismatch     ErrorKind = "TYPE_MISMATCH"
	KindInvalidCallable  ErrorKind = "INVALID_CALLABLE"

	// Resolve-time kinds, raised while a call is serviced.
	KindDependencyNotFound      ErrorKind = "DEPENDENCY_NOT_FOUND"
	KindDependencyRequiresValue ErrorKind = "DEPENDENCY_REQUIRES_VALUE"
	KindMissingContext          ErrorKind = "MISSING_CONTEXT"
	KindMaxDepthExceeded        ErrorKind = "MAX_DEPTH_EXCEEDED"
)

// Error is returned for every failure the engine itself detects. Errors
// returned by resolver callables are propagated wrapped, never replaced.
type Error struct {
	Kind    ErrorKind
	Param   string
	Type    reflect.Type
	Message string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (caused by: %v)", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUnsupportedUnion        = &Error{Kind: KindUnsupportedUnion, Message: "unsupported union"}
	ErrMissingResolver         = &Error{Kind: KindMissingResolver, Message: "missing resolver"}
	ErrUnsupportedArity        = &Error{Kind: KindUnsupportedArity, Message: "unsupported arity"}
	ErrTypeMismatch            = &Error{Kind: KindTypeMismatch, Message: "type mismatch"}
	ErrInvalidCallable         = &Error{Kind: KindInvalidCallable, Message: "invalid callable"}
	ErrDependencyNotFound      = &Error{Kind: KindDependencyNotFound, Message: "dependency not found"}
	ErrDependencyRequiresValue = &Error{Kind: KindDependencyRequiresValue, Message: "dependency requires value"}
	ErrMissingContext          = &Error{Kind: KindMissingContext, Message: "missing context"}
	ErrMaxDepthExceeded        = &Error{Kind: KindMaxDepthExceeded, Message: "max depth exceeded"}
)

// IsDecodeError reports whether err was raised while building descriptors,
// i.e. it is a configuration bug rather than a per-call failure.
func IsDecodeError(err error) bool {
	switch KindOf(err) {
	case KindUnsupportedUnion, KindMissingResolver, KindUnsupportedArity, KindTypeMismatch, KindInvalidCallable:
		return true
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newDependencyNotFound(d *Descriptor) *Error {
	return &Error{
		Kind:    KindDependencyNotFound,
		Param:   d.Name,
		Type:    d.Type,
		Message: fmt.Sprintf("cannot inject parameter %q: no resolver registered for type %q", d.Name, typeName(d.Type)),
	}
}

func newDependencyRequiresValue(d *Descriptor) *Error {
	return &Error{
		Kind:    KindDependencyRequiresValue,
		Param:   d.Name,
		Type:    d.Type,
		Message: fmt.Sprintf("dependency %q has nil value but it is not optional", d.Name),
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
