package inject

import (
	"context"
	"fmt"
	"reflect"
)

// Signature is the inspected parameter list of a callable: one descriptor
// per parameter, in declaration order. It is built once per callable and
// reused for every invocation.
type Signature struct {
	fn          reflect.Value
	descriptors []*Descriptor
	byName      map[string]*Descriptor
}

// Inspect builds the signature of fn with the default engine.
func Inspect(fn any, params ...Parameter) (*Signature, error) {
	return defaultEngine.Inspect(fn, params...)
}

// MustInspect is like Inspect but panics on error.
func MustInspect(fn any, params ...Parameter) *Signature {
	s, err := Inspect(fn, params...)
	if err != nil {
		panic(err)
	}
	return s
}

func inspect(dc decoder, fn any, params []Parameter) (*Signature, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, &Error{Kind: KindInvalidCallable, Message: fmt.Sprintf("expected a function, got %T", fn)}
	}
	t := v.Type()
	if t.IsVariadic() {
		return nil, &Error{Kind: KindInvalidCallable, Message: fmt.Sprintf("variadic function %s is not supported", t)}
	}
	if len(params) > t.NumIn() {
		return nil, &Error{
			Kind:    KindInvalidCallable,
			Message: fmt.Sprintf("%d parameters declared for %s which accepts %d", len(params), t, t.NumIn()),
		}
	}

	s := &Signature{
		fn:          v,
		descriptors: make([]*Descriptor, 0, t.NumIn()),
		byName:      make(map[string]*Descriptor, t.NumIn()),
	}
	for i := 0; i < t.NumIn(); i++ {
		in := t.In(i)
		p := Parameter{}
		if i < len(params) {
			p = params[i]
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("arg%d", i)
		}
		if p.Annotation == nil {
			p.Annotation = TypeOf(in)
		}
		if _, dup := s.byName[p.Name]; dup {
			return nil, &Error{Kind: KindInvalidCallable, Param: p.Name, Message: fmt.Sprintf("parameter %q declared twice", p.Name)}
		}

		d, err := dc.decode(p)
		if err != nil {
			return nil, err
		}
		if !d.Type.AssignableTo(in) {
			return nil, &Error{
				Kind:    KindTypeMismatch,
				Param:   d.Name,
				Type:    d.Type,
				Message: fmt.Sprintf("parameter %q declared as %s but %s accepts %s", d.Name, d.Type, t, in),
			}
		}
		s.descriptors = append(s.descriptors, d)
		s.byName[d.Name] = d
	}
	return s, nil
}

// Descriptors returns the descriptors in declaration order.
func (s *Signature) Descriptors() []*Descriptor {
	return s.descriptors
}

// Lookup returns the descriptor of the named parameter.
func (s *Signature) Lookup(name string) (*Descriptor, bool) {
	d, ok := s.byName[name]
	return d, ok
}

// Len returns the number of parameters.
func (s *Signature) Len() int {
	return len(s.descriptors)
}

// Resolve resolves every parameter against values.
func (s *Signature) Resolve(ctx context.Context, values Values) (map[string]any, error) {
	return ResolveAll(ctx, s.descriptors, values)
}

// Call resolves every parameter and invokes the callable with the result.
// Absent optional values are passed as the parameter type's zero value.
func (s *Signature) Call(ctx context.Context, values Values) ([]reflect.Value, error) {
	args, err := resolveArgs(ctx, s, values)
	if err != nil {
		return nil, err
	}
	return s.fn.Call(args), nil
}

// resolveArgs resolves s and lays the values out positionally.
func resolveArgs(ctx context.Context, s *Signature, values Values) ([]reflect.Value, error) {
	resolved, err := ResolveAll(ctx, s.descriptors, values)
	if err != nil {
		return nil, err
	}

	t := s.fn.Type()
	args := make([]reflect.Value, len(s.descriptors))
	for i, d := range s.descriptors {
		in := t.In(i)
		v := resolved[d.Name]
		if v == nil {
			args[i] = reflect.Zero(in)
			continue
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(in) {
			return nil, &Error{
				Kind:    KindTypeMismatch,
				Param:   d.Name,
				Type:    rv.Type(),
				Message: fmt.Sprintf("parameter %q resolved to %s which is not assignable to %s", d.Name, rv.Type(), in),
			}
		}
		args[i] = rv
	}
	return args, nil
}
