package inject

import (
	"fmt"
	"reflect"
)

// Descriptor is the normalized resolution metadata of one parameter. It is
// built once when a callable is inspected and never mutated afterwards.
type Descriptor struct {
	// Name is the parameter name, unique within a signature.
	Name string
	// Type is the type to resolve, after optional unwrapping.
	Type reflect.Type
	// Default is the declared default, if HasDefault.
	Default    any
	HasDefault bool
	// Optional is true iff the annotation was a "T | None" union.
	Optional bool
	// Annotation is the full declared annotation.
	Annotation Annotation
	// Resolver produces the value. Nil means the value is looked up in the
	// prepared values by Type.
	Resolver Resolver
	// Options holds the metadata found between the type and the resolver.
	Options []any
}

// Option returns the first option assignable to T.
func Option[T any](d *Descriptor) (T, bool) {
	for _, o := range d.Options {
		if v, ok := o.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s: %s", d.Name, d.Annotation)
}

var descriptorType = reflect.TypeFor[*Descriptor]()

// decoder turns declared parameters into descriptors.
type decoder struct {
	literalMetadata bool
}

func (dc decoder) decode(p Parameter) (*Descriptor, error) {
	d := &Descriptor{
		Name:       p.Name,
		Default:    p.Default,
		HasDefault: p.HasDefault,
		Annotation: p.Annotation,
	}

	a := p.Annotation
	if u, ok := a.(unionAnnotation); ok {
		inner, optional := splitUnion(u)
		if !optional || len(inner) != 1 {
			return nil, &Error{
				Kind:    KindUnsupportedUnion,
				Param:   p.Name,
				Message: fmt.Sprintf("only optional union types are supported (like T | None), got %q", u),
			}
		}
		d.Optional = true
		a = inner[0]
	}

	switch a := a.(type) {
	case plainAnnotation:
		d.Type = a.typ
	case taggedAnnotation:
		d.Type = a.typ
		if err := dc.bindResolver(d, a); err != nil {
			return nil, err
		}
	case noneAnnotation:
		return nil, &Error{
			Kind:    KindMissingResolver,
			Param:   p.Name,
			Message: fmt.Sprintf("dependency %q is declared as None only", p.Name),
		}
	default:
		return nil, &Error{
			Kind:    KindInvalidCallable,
			Param:   p.Name,
			Message: fmt.Sprintf("dependency %q has no annotation", p.Name),
		}
	}
	return d, nil
}

func (dc decoder) bindResolver(d *Descriptor, a taggedAnnotation) error {
	n := len(a.metadata)
	if n > 0 {
		if r, ok := a.metadata[n-1].(Resolver); ok {
			d.Resolver = r
			d.Options = a.metadata[:n-1]
			return nil
		}
	}
	if dc.literalMetadata && n == 1 {
		d.Resolver = Value(a.metadata[0])
		return nil
	}
	return &Error{
		Kind:    KindMissingResolver,
		Param:   d.Name,
		Type:    d.Type,
		Message: fmt.Sprintf("dependency %q does not contain factory in annotation", d.Name),
	}
}

func splitUnion(u unionAnnotation) (inner []Annotation, optional bool) {
	for _, m := range u.members {
		if _, ok := m.(noneAnnotation); ok {
			optional = true
			continue
		}
		inner = append(inner, m)
	}
	return inner, optional
}
