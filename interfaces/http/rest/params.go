package rest

import (
	"context"
	"encoding"
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	apperrors "dispatch/pkg/errors"
	"dispatch/pkg/inject"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	requestType = reflect.TypeFor[*http.Request]()
	uuidType    = reflect.TypeFor[uuid.UUID]()
	validate    = validator.New()
)

// PathParamResolver reads a path segment captured by the router and converts
// it to the descriptor type. A segment that is missing or empty is absent.
type PathParamResolver struct {
	name string
}

// PathParam resolves the segment called name. With an empty name the
// segment is taken from the first string option of the annotation, or else
// from the parameter name.
func PathParam(name string) *PathParamResolver {
	return &PathParamResolver{name: name}
}

// FromPath annotates a parameter of type T read from the path. options may
// contain the segment name (a string) and Validate rules.
//
//	inject.Param("id", rest.FromPath[int]())
//	inject.Param("slug", rest.FromPath[string]("key", rest.Validate("alphanum")))
func FromPath[T any](options ...any) inject.Annotation {
	return inject.Annotated[T](append(options, PathParam(""))...)
}

// ValidateRule is a go-playground/validator tag applied to a converted path
// value.
type ValidateRule string

// Validate returns a ValidateRule option.
func Validate(tag string) ValidateRule {
	return ValidateRule(tag)
}

func (p *PathParamResolver) segment(d *inject.Descriptor) string {
	if name, ok := inject.Option[string](d); ok {
		return name
	}
	if p.name != "" {
		return p.name
	}
	return d.Name
}

// Resolve implements inject.Resolver
func (p *PathParamResolver) Resolve(_ context.Context, d *inject.Descriptor, values inject.Values) (any, error) {
	r, ok := inject.Lookup[*http.Request](values)
	if !ok || r == nil {
		return nil, &inject.Error{
			Kind:    inject.KindMissingContext,
			Param:   d.Name,
			Type:    requestType,
			Message: fmt.Sprintf("cannot resolve path parameter %q: no HTTP connection found", d.Name),
		}
	}

	name := p.segment(d)
	raw := chi.URLParam(r, name)
	if raw == "" {
		return nil, nil
	}

	v, err := convert(raw, d.Type)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid value %q for path parameter %q", raw, name)).
			WithCode("INVALID_PATH_PARAM").
			WithCause(err)
	}
	if rule, ok := inject.Option[ValidateRule](d); ok {
		if err := validate.Var(v, string(rule)); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("path parameter %q failed validation", name)).
				WithCode("INVALID_PATH_PARAM").
				WithDetails(map[string]any{"rule": string(rule), "value": raw}).
				WithCause(err)
		}
	}
	return v, nil
}

// convert parses raw into a value of type t. Pointer types are parsed into
// their element type.
func convert(raw string, t reflect.Type) (any, error) {
	if t.Kind() == reflect.Pointer {
		v, err := convert(raw, t.Elem())
		if err != nil {
			return nil, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(reflect.ValueOf(v))
		return ptr.Interface(), nil
	}

	if t == uuidType {
		return uuid.Parse(raw)
	}
	if reflect.PointerTo(t).Implements(reflect.TypeFor[encoding.TextUnmarshaler]()) {
		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return nil, err
		}
		return ptr.Elem().Interface(), nil
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		out.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return nil, err
		}
		out.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		out.SetBool(b)
	case reflect.Interface:
		if reflect.TypeFor[string]().AssignableTo(t) {
			return raw, nil
		}
		return nil, fmt.Errorf("cannot convert path segment to %s", t)
	default:
		return nil, fmt.Errorf("cannot convert path segment to %s", t)
	}
	return out.Interface(), nil
}
