// Package inject resolves the arguments of request-handling functions from
// declared parameter annotations.
//
// # Declaring dependencies
//
// Go has no parameter names or annotated types at runtime, so each parameter
// of a callable is declared explicitly with Param and an Annotation:
//
//	var CurrentTime = inject.Annotated[time.Time](inject.MustFactory(time.Now))
//	var CachedTime  = inject.Annotated[time.Time](inject.MustFactory(time.Now, inject.Cached()))
//	var Greeting    = inject.Annotated[string](inject.Value("hello"))
//
//	sig, err := inject.Inspect(func(now time.Time, greeting string, r *http.Request) string {
//	    ...
//	}, inject.Param("now", CurrentTime), inject.Param("greeting", Greeting))
//
// Parameters left undeclared (r above) are plain: their value is looked up in
// the prepared values by type at call time. Optional wraps an annotation so
// that a nil result is accepted instead of failing.
//
// # Resolvers
//
// Four resolver variants are provided:
//
//   - Value: a fixed value.
//   - FactoryResolver: a function whose own parameters are dependencies,
//     optionally memoized with Cached or SingleFlight. A factory returning a
//     receive-only channel is awaited.
//   - ContextExtractor: reads from the root object (request, connection) of
//     the prepared values.
//   - any type implementing Resolver, or a ResolverFunc.
//
// # Resolution
//
// Signature.Resolve and ResolveAll resolve descriptors sequentially in
// declaration order. The prepared values of a call are extended with the
// descriptor being resolved (keyed by *Descriptor) and with the call's
// context.Context when the caller did not supply one. A nil result for a
// non-optional parameter fails with ErrDependencyRequiresValue; a plain
// parameter without a prepared value fails with ErrDependencyNotFound.
//
// Decode errors (ErrUnsupportedUnion, ErrMissingResolver, ErrUnsupportedArity,
// ErrTypeMismatch, ErrInvalidCallable) are returned by Inspect and the
// resolver constructors, so they surface at registration.
//
// There is no cycle detection unless WithMaxDepth is set.
package inject
