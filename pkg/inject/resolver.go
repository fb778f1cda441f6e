package inject

import (
	"context"
	"fmt"
	"reflect"
)

// Resolver produces the value of one descriptor from the prepared values.
// Implementations are shared by every call that uses their annotation.
type Resolver interface {
	Resolve(ctx context.Context, d *Descriptor, values Values) (any, error)
}

// ResolverFunc is an adapter to allow functions to be used as resolvers
type ResolverFunc func(ctx context.Context, d *Descriptor, values Values) (any, error)

// Resolve implements Resolver
func (f ResolverFunc) Resolve(ctx context.Context, d *Descriptor, values Values) (any, error) {
	return f(ctx, d, values)
}

// VariableResolver always returns the same value.
type VariableResolver struct {
	value any
}

// Value returns a resolver for a fixed value.
func Value(v any) *VariableResolver {
	return &VariableResolver{value: v}
}

// Resolve implements Resolver
func (r *VariableResolver) Resolve(context.Context, *Descriptor, Values) (any, error) {
	return r.value, nil
}

// ContextExtractor reads a value out of the root object of the prepared
// values (the request or connection) without declaring sub-dependencies.
type ContextExtractor struct {
	root  reflect.Type
	fn    reflect.Value
	arity int
}

// NewContextExtractor wraps fn, which must be one of
//
//	func() T
//	func(R) T
//	func(R, *Descriptor) T
//
// optionally returning a trailing error. R is the root object type looked up
// in the prepared values.
func NewContextExtractor[R any](fn any) (*ContextExtractor, error) {
	return newContextExtractor(reflect.TypeFor[R](), fn)
}

// MustContextExtractor is like NewContextExtractor but panics on error. It is
// meant for package-level annotation declarations.
func MustContextExtractor[R any](fn any) *ContextExtractor {
	e, err := NewContextExtractor[R](fn)
	if err != nil {
		panic(err)
	}
	return e
}

func newContextExtractor(root reflect.Type, fn any) (*ContextExtractor, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, &Error{Kind: KindInvalidCallable, Message: fmt.Sprintf("context extractor must be a function, got %T", fn)}
	}
	t := v.Type()
	if t.IsVariadic() || t.NumIn() > 2 {
		return nil, &Error{
			Kind:    KindUnsupportedArity,
			Message: fmt.Sprintf("context extractor %s must accept 0, 1 or 2 arguments, got %d", t, t.NumIn()),
		}
	}
	if t.NumIn() >= 1 && !root.AssignableTo(t.In(0)) {
		return nil, &Error{
			Kind:    KindTypeMismatch,
			Message: fmt.Sprintf("context extractor %s cannot accept root object %s", t, root),
		}
	}
	if t.NumIn() == 2 && !descriptorType.AssignableTo(t.In(1)) {
		return nil, &Error{
			Kind:    KindTypeMismatch,
			Message: fmt.Sprintf("context extractor %s must accept *inject.Descriptor as second argument", t),
		}
	}
	if err := checkResults(t); err != nil {
		return nil, err
	}
	return &ContextExtractor{root: root, fn: v, arity: t.NumIn()}, nil
}

// Resolve implements Resolver
func (e *ContextExtractor) Resolve(ctx context.Context, d *Descriptor, values Values) (any, error) {
	var args []reflect.Value
	switch e.arity {
	case 0:
	case 1, 2:
		root, ok := values[e.root]
		if !ok || isAbsent(root) {
			return nil, &Error{
				Kind:    KindMissingContext,
				Param:   d.Name,
				Type:    e.root,
				Message: fmt.Sprintf("cannot resolve %q: no %s found in prepared values", d.Name, e.root),
			}
		}
		args = append(args, reflect.ValueOf(root))
		if e.arity == 2 {
			args = append(args, reflect.ValueOf(d))
		}
	default:
		return nil, &Error{
			Kind:    KindUnsupportedArity,
			Param:   d.Name,
			Message: fmt.Sprintf("context extractor for %q has unsupported arity %d", d.Name, e.arity),
		}
	}
	return unpack(e.fn.Call(args))
}

// checkResults accepts functions returning T or (T, error).
func checkResults(t reflect.Type) error {
	switch t.NumOut() {
	case 1:
		return nil
	case 2:
		if t.Out(1) == errorType {
			return nil
		}
	}
	return &Error{
		Kind:    KindInvalidCallable,
		Message: fmt.Sprintf("%s must return T or (T, error)", t),
	}
}

var errorType = reflect.TypeFor[error]()

func unpack(out []reflect.Value) (any, error) {
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// isAbsent reports whether v is nil, including typed nils.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
