package inject

import (
	"fmt"
	"reflect"
	"strings"
)

// Annotation is the declared shape of a parameter: a plain type, a type
// tagged with metadata ending in a Resolver, the absent marker, or a union
// of those.
type Annotation interface {
	fmt.Stringer
	annotation()
}

type plainAnnotation struct {
	typ reflect.Type
}

type taggedAnnotation struct {
	typ      reflect.Type
	metadata []any
}

type noneAnnotation struct{}

type unionAnnotation struct {
	members []Annotation
}

func (plainAnnotation) annotation()  {}
func (taggedAnnotation) annotation() {}
func (noneAnnotation) annotation()   {}
func (unionAnnotation) annotation()  {}

func (a plainAnnotation) String() string { return typeName(a.typ) }

func (a taggedAnnotation) String() string {
	parts := make([]string, 0, len(a.metadata)+1)
	parts = append(parts, typeName(a.typ))
	for _, m := range a.metadata {
		parts = append(parts, fmt.Sprintf("%T", m))
	}
	return "Annotated[" + strings.Join(parts, ", ") + "]"
}

func (noneAnnotation) String() string { return "None" }

func (a unionAnnotation) String() string {
	parts := make([]string, len(a.members))
	for i, m := range a.members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

// None is the absent marker. Union(a, None) declares an optional parameter.
var None Annotation = noneAnnotation{}

// Type declares a parameter of type T without a resolver. Its value is looked
// up in the prepared values by T at call time.
func Type[T any]() Annotation {
	return plainAnnotation{typ: reflect.TypeFor[T]()}
}

// TypeOf is the non-generic form of Type.
func TypeOf(t reflect.Type) Annotation {
	return plainAnnotation{typ: t}
}

// Annotated declares a parameter of type T resolved by the trailing element
// of metadata, which must implement Resolver. Elements before it are passed
// to the resolver as Descriptor.Options.
//
//	var CurrentTime = inject.Annotated[time.Time](inject.MustFactory(time.Now))
//	var UserID = inject.Annotated[int]("user_id", rest.PathParam(""))
func Annotated[T any](metadata ...any) Annotation {
	return taggedAnnotation{typ: reflect.TypeFor[T](), metadata: metadata}
}

// Union combines annotations. Only "T or None" unions are decodable.
func Union(members ...Annotation) Annotation {
	flat := make([]Annotation, 0, len(members))
	for _, m := range members {
		if u, ok := m.(unionAnnotation); ok {
			flat = append(flat, u.members...)
			continue
		}
		flat = append(flat, m)
	}
	return unionAnnotation{members: flat}
}

// Optional is shorthand for Union(a, None).
func Optional(a Annotation) Annotation {
	return Union(a, None)
}

// Parameter binds a name to an annotation for one position of a callable.
type Parameter struct {
	Name       string
	Annotation Annotation
	Default    any
	HasDefault bool
}

// Param declares the parameter at the next position. A nil annotation means
// a plain parameter typed from the callable itself.
func Param(name string, a Annotation) Parameter {
	return Parameter{Name: name, Annotation: a}
}

// WithDefault records a default value on the parameter. The engine keeps it
// on the descriptor for resolvers that want it; it does not substitute it.
func (p Parameter) WithDefault(v any) Parameter {
	p.Default = v
	p.HasDefault = true
	return p
}
