package inject

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Observer receives one event per resolved descriptor.
type Observer interface {
	ObserveResolve(d *Descriptor, resolver string, elapsed time.Duration, err error)
	ObserveCacheHit(d *Descriptor)
}

type noopObserver struct{}

func (noopObserver) ObserveResolve(*Descriptor, string, time.Duration, error) {}
func (noopObserver) ObserveCacheHit(*Descriptor)                              {}

// Engine resolves descriptor mappings. It holds no per-call state, so one
// engine serves every concurrent call.
type Engine struct {
	logger          *zap.Logger
	observer        Observer
	tracer          trace.Tracer
	maxDepth        int
	literalMetadata bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver sets the resolution observer.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithTracer sets the tracer used for resolution spans.
func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithMaxDepth bounds nested factory resolution. Zero means unbounded, in
// which case a dependency cycle recurses until the stack is exhausted.
func WithMaxDepth(n int) EngineOption {
	return func(e *Engine) {
		e.maxDepth = n
	}
}

// WithLiteralMetadata makes Inspect accept Annotated[T](literal) with a
// single non-resolver element, resolving it to the literal.
func WithLiteralMetadata() EngineOption {
	return func(e *Engine) {
		e.literalMetadata = true
	}
}

// NewEngine creates an engine. Without options it logs nothing, observes
// nothing and traces through the global otel provider.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:   zap.NewNop(),
		observer: noopObserver{},
		tracer:   otel.Tracer("dispatch/inject"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Inspect builds the signature of fn.
func (e *Engine) Inspect(fn any, params ...Parameter) (*Signature, error) {
	s, err := inspect(decoder{literalMetadata: e.literalMetadata}, fn, params)
	if err != nil {
		e.logger.Debug("Signature inspection failed",
			zap.String("callable", fmt.Sprintf("%T", fn)),
			zap.Error(err),
		)
		return nil, err
	}
	e.logger.Debug("Signature inspected",
		zap.String("callable", fmt.Sprintf("%T", fn)),
		zap.Int("params", s.Len()),
	)
	return s, nil
}

// Resolve resolves the parameters of s on e.
func (e *Engine) Resolve(ctx context.Context, s *Signature, values Values) (map[string]any, error) {
	return s.Resolve(e.bind(ctx), values)
}

// Call resolves the parameters of s on e and invokes its callable.
func (e *Engine) Call(ctx context.Context, s *Signature, values Values) ([]reflect.Value, error) {
	return s.Call(e.bind(ctx), values)
}

func (e *Engine) bind(ctx context.Context) context.Context {
	sc := scopeFrom(ctx)
	if sc.engine == e {
		return ctx
	}
	return context.WithValue(ctx, scopeKey{}, scope{engine: e, depth: sc.depth})
}

// ResolveAll resolves descriptors with the engine carried by ctx, or the
// default engine. Factories use it for their own dependencies, so nested
// resolution stays on the engine that started the call.
func ResolveAll(ctx context.Context, descriptors []*Descriptor, values Values) (map[string]any, error) {
	return engineFrom(ctx).ResolveAll(ctx, descriptors, values)
}

// ResolveAll resolves every descriptor in order and returns name -> value.
// The first failure aborts the call.
func (e *Engine) ResolveAll(ctx context.Context, descriptors []*Descriptor, values Values) (map[string]any, error) {
	if len(descriptors) == 0 {
		return map[string]any{}, nil
	}
	sc := scopeFrom(ctx)
	depth := sc.depth + 1
	if e.maxDepth > 0 && depth > e.maxDepth {
		return nil, &Error{
			Kind:    KindMaxDepthExceeded,
			Message: fmt.Sprintf("dependency resolution exceeded depth %d", e.maxDepth),
		}
	}
	ctx = context.WithValue(ctx, scopeKey{}, scope{engine: e, depth: depth})

	if _, ok := values[contextType]; !ok {
		values = values.With(contextType, ctx)
	}

	resolved := make(map[string]any, len(descriptors))
	for _, d := range descriptors {
		v, err := e.resolve(ctx, d, values)
		if err != nil {
			return nil, err
		}
		resolved[d.Name] = v
	}
	return resolved, nil
}

func (e *Engine) resolve(ctx context.Context, d *Descriptor, values Values) (v any, err error) {
	kind := resolverKind(d.Resolver)
	ctx, span := e.tracer.Start(ctx, "inject.resolve",
		trace.WithAttributes(
			attribute.String("inject.param", d.Name),
			attribute.String("inject.type", typeName(d.Type)),
			attribute.String("inject.resolver", kind),
		),
	)
	start := time.Now()
	defer func() {
		e.observer.ObserveResolve(d, kind, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			e.logger.Debug("Dependency resolution failed",
				zap.String("param", d.Name),
				zap.String("type", typeName(d.Type)),
				zap.String("resolver", kind),
				zap.Error(err),
			)
		}
		span.End()
	}()

	augmented := values.With(descriptorType, d)
	if d.Resolver == nil {
		v, ok := augmented[d.Type]
		if !ok {
			return nil, newDependencyNotFound(d)
		}
		return e.check(d, v)
	}

	v, err = d.Resolver.Resolve(ctx, d, augmented)
	if err != nil {
		return nil, err
	}
	return e.check(d, v)
}

func (e *Engine) check(d *Descriptor, v any) (any, error) {
	if isAbsent(v) {
		if !d.Optional {
			return nil, newDependencyRequiresValue(d)
		}
		return nil, nil
	}
	return v, nil
}

func resolverKind(r Resolver) string {
	switch r.(type) {
	case nil:
		return "prepared"
	case *VariableResolver:
		return "variable"
	case *FactoryResolver:
		return "factory"
	case *ContextExtractor:
		return "context"
	default:
		return "custom"
	}
}

var contextType = reflect.TypeFor[context.Context]()

type scopeKey struct{}

type scope struct {
	engine *Engine
	depth  int
}

func scopeFrom(ctx context.Context) scope {
	if sc, ok := ctx.Value(scopeKey{}).(scope); ok {
		return sc
	}
	return scope{engine: defaultEngine}
}

func engineFrom(ctx context.Context) *Engine {
	return scopeFrom(ctx).engine
}
