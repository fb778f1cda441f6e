package inject

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FactoryResolver calls a function to produce the value. The function's own
// parameters are dependencies, inspected once at construction and resolved
// recursively on every call.
//
// A cached factory memoizes its first successful result for its whole
// lifetime. Without SingleFlight, concurrent first calls may each invoke the
// function; the first stored result wins and is returned from then on.
type FactoryResolver struct {
	fn           reflect.Value
	signature    *Signature
	async        bool
	cached       bool
	singleFlight bool

	mu    sync.RWMutex
	done  bool
	value any
	group singleflight.Group
}

type factoryConfig struct {
	params          []Parameter
	cached          bool
	singleFlight    bool
	literalMetadata bool
}

// FactoryOption configures a FactoryResolver.
type FactoryOption func(*factoryConfig)

// WithParams declares the factory's parameters positionally, as for Inspect.
func WithParams(params ...Parameter) FactoryOption {
	return func(c *factoryConfig) {
		c.params = append(c.params, params...)
	}
}

// Cached memoizes the first successful result.
func Cached() FactoryOption {
	return func(c *factoryConfig) {
		c.cached = true
	}
}

// SingleFlight memoizes like Cached and collapses concurrent first calls
// into one invocation.
func SingleFlight() FactoryOption {
	return func(c *factoryConfig) {
		c.cached = true
		c.singleFlight = true
	}
}

// LiteralMetadata lets the factory's own parameters use a single literal as
// their annotation metadata, resolved as a fixed value.
func LiteralMetadata() FactoryOption {
	return func(c *factoryConfig) {
		c.literalMetadata = true
	}
}

// NewFactory wraps fn, which returns T, (T, error), <-chan T or
// (<-chan T, error). A receive-only channel result is awaited; a channel
// closed without a value resolves to nil.
func NewFactory(fn any, opts ...FactoryOption) (*FactoryResolver, error) {
	var cfg factoryConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	signature, err := inspect(decoder{literalMetadata: cfg.literalMetadata}, fn, cfg.params)
	if err != nil {
		return nil, err
	}
	t := signature.fn.Type()
	if err := checkResults(t); err != nil {
		return nil, err
	}
	out := t.Out(0)

	return &FactoryResolver{
		fn:           signature.fn,
		signature:    signature,
		async:        out.Kind() == reflect.Chan && out.ChanDir() == reflect.RecvDir,
		cached:       cfg.cached,
		singleFlight: cfg.singleFlight,
	}, nil
}

// MustFactory is like NewFactory but panics on error. It is meant for
// package-level annotation declarations.
func MustFactory(fn any, opts ...FactoryOption) *FactoryResolver {
	f, err := NewFactory(fn, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Signature returns the factory's own dependency signature.
func (f *FactoryResolver) Signature() *Signature {
	return f.signature
}

// Resolve implements Resolver
func (f *FactoryResolver) Resolve(ctx context.Context, d *Descriptor, values Values) (any, error) {
	if !f.cached {
		return f.produce(ctx, d, values)
	}
	if v, ok := f.memo(); ok {
		engineFrom(ctx).observer.ObserveCacheHit(d)
		return v, nil
	}

	if f.singleFlight {
		// The shared call outlives any single caller, so it must not see
		// that caller's cancellation. Each caller still honours its own ctx.
		shared := context.WithoutCancel(ctx)
		ch := f.group.DoChan("", func() (any, error) {
			if v, ok := f.memo(); ok {
				return v, nil
			}
			v, err := f.produce(shared, d, values.With(contextType, shared))
			if err != nil {
				return nil, err
			}
			return f.store(v), nil
		})
		select {
		case res := <-ch:
			return res.Val, res.Err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	v, err := f.produce(ctx, d, values)
	if err != nil {
		return nil, err
	}
	return f.store(v), nil
}

func (f *FactoryResolver) produce(ctx context.Context, d *Descriptor, values Values) (any, error) {
	args, err := resolveArgs(ctx, f.signature, values.With(descriptorType, d))
	if err != nil {
		return nil, err
	}

	v, err := unpack(f.fn.Call(args))
	if err != nil {
		return nil, fmt.Errorf("factory for %q failed: %w", d.Name, err)
	}
	if f.async {
		return await(ctx, v)
	}
	return v, nil
}

func (f *FactoryResolver) memo() (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value, f.done
}

func (f *FactoryResolver) store(v any) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.done {
		f.value = v
		f.done = true
	}
	return f.value
}

func await(ctx context.Context, ch any) (any, error) {
	cv := reflect.ValueOf(ch)
	if !cv.IsValid() || cv.IsNil() {
		return nil, nil
	}
	chosen, recv, ok := reflect.Select([]reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: cv},
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
	})
	if chosen == 1 {
		return nil, ctx.Err()
	}
	if !ok {
		return nil, nil
	}
	return recv.Interface(), nil
}
