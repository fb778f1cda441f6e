package rest

import (
	"fmt"
	"net/http"
	"strings"

	apperrors "dispatch/pkg/errors"
	"dispatch/pkg/inject"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Middleware is the chi middleware signature.
type Middleware = func(http.Handler) http.Handler

// Route is one registered view.
type Route struct {
	Methods    []string
	Path       string
	Name       string
	middleware []Middleware
	view       *view
}

// Named sets the route name used by URLFor.
func (rt *Route) Named(name string) *Route {
	rt.Name = name
	return rt
}

// Use adds middleware that only wraps this route.
func (rt *Route) Use(mw ...Middleware) *Route {
	rt.middleware = append(rt.middleware, mw...)
	return rt
}

// RouteGroup collects views under a common prefix and middleware. Views are
// inspected when they are added, so a bad annotation fails at startup rather
// than on the first request.
type RouteGroup struct {
	prefix     string
	middleware []Middleware
	children   []*RouteGroup
	routes     []*Route

	engine *inject.Engine
	errors *apperrors.ErrorHandler
	logger *zap.Logger
}

// GroupOption configures a RouteGroup.
type GroupOption func(*RouteGroup)

// WithMiddleware wraps every route of the group, children included.
func WithMiddleware(mw ...Middleware) GroupOption {
	return func(g *RouteGroup) {
		g.middleware = append(g.middleware, mw...)
	}
}

// WithChildren nests groups under this one.
func WithChildren(children ...*RouteGroup) GroupOption {
	return func(g *RouteGroup) {
		g.children = append(g.children, children...)
	}
}

// WithEngine sets the engine that inspects and resolves views.
func WithEngine(e *inject.Engine) GroupOption {
	return func(g *RouteGroup) {
		if e != nil {
			g.engine = e
		}
	}
}

// WithErrorHandler sets the handler rendering view and resolution errors.
func WithErrorHandler(h *apperrors.ErrorHandler) GroupOption {
	return func(g *RouteGroup) {
		if h != nil {
			g.errors = h
		}
	}
}

// WithGroupLogger sets the logger.
func WithGroupLogger(logger *zap.Logger) GroupOption {
	return func(g *RouteGroup) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewRouteGroup creates a group mounted at prefix ("" for the root).
func NewRouteGroup(prefix string, opts ...GroupOption) *RouteGroup {
	g := &RouteGroup{
		prefix: strings.TrimSuffix(prefix, "/"),
		engine: inject.NewEngine(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.errors == nil {
		g.errors = apperrors.NewErrorHandler(g.logger, false)
	}
	return g
}

// Add registers view for methods at path. params declare the view's
// parameters positionally, as for inject.Inspect.
func (g *RouteGroup) Add(methods []string, path string, view any, params ...inject.Parameter) (*Route, error) {
	if len(methods) == 0 {
		return nil, fmt.Errorf("route %q: no methods", path)
	}
	v, err := newView(g.engine, g.errors, g.logger, view, params)
	if err != nil {
		return nil, fmt.Errorf("route %s %q: %w", strings.Join(methods, ","), path, err)
	}
	rt := &Route{Methods: methods, Path: path, view: v}
	g.routes = append(g.routes, rt)
	return rt, nil
}

func (g *RouteGroup) mustAdd(methods []string, path string, view any, params []inject.Parameter) *Route {
	rt, err := g.Add(methods, path, view, params...)
	if err != nil {
		panic(err)
	}
	return rt
}

// Get registers a GET view and panics if the view cannot be inspected.
func (g *RouteGroup) Get(path string, view any, params ...inject.Parameter) *Route {
	return g.mustAdd([]string{http.MethodGet}, path, view, params)
}

// Post registers a POST view.
func (g *RouteGroup) Post(path string, view any, params ...inject.Parameter) *Route {
	return g.mustAdd([]string{http.MethodPost}, path, view, params)
}

// GetOrPost registers a view answering both GET and POST.
func (g *RouteGroup) GetOrPost(path string, view any, params ...inject.Parameter) *Route {
	return g.mustAdd([]string{http.MethodGet, http.MethodPost}, path, view, params)
}

// Put registers a PUT view.
func (g *RouteGroup) Put(path string, view any, params ...inject.Parameter) *Route {
	return g.mustAdd([]string{http.MethodPut}, path, view, params)
}

// Patch registers a PATCH view.
func (g *RouteGroup) Patch(path string, view any, params ...inject.Parameter) *Route {
	return g.mustAdd([]string{http.MethodPatch}, path, view, params)
}

// Delete registers a DELETE view.
func (g *RouteGroup) Delete(path string, view any, params ...inject.Parameter) *Route {
	return g.mustAdd([]string{http.MethodDelete}, path, view, params)
}

// Include nests child groups.
func (g *RouteGroup) Include(children ...*RouteGroup) {
	g.children = append(g.children, children...)
}

// Routes returns every route of the group and its children with the full
// path, in registration order.
func (g *RouteGroup) Routes() []Route {
	var out []Route
	g.walk("", func(prefix string, rt *Route) {
		flat := *rt
		flat.Path = prefix + rt.Path
		out = append(out, flat)
	})
	return out
}

// Len returns the number of routes, children included.
func (g *RouteGroup) Len() int {
	return len(g.Routes())
}

func (g *RouteGroup) String() string {
	n := g.Len()
	if n == 1 {
		return "<RouteGroup: 1 route>"
	}
	return fmt.Sprintf("<RouteGroup: %d routes>", n)
}

func (g *RouteGroup) walk(prefix string, fn func(string, *Route)) {
	prefix += g.prefix
	for _, rt := range g.routes {
		fn(prefix, rt)
	}
	for _, child := range g.children {
		child.walk(prefix, fn)
	}
}

// URLFor returns the path of the named route with its {placeholders}
// replaced by pairs of name, value.
func (g *RouteGroup) URLFor(name string, pairs ...string) (string, error) {
	if len(pairs)%2 != 0 {
		return "", fmt.Errorf("url for %q: odd number of path parameters", name)
	}
	for _, rt := range g.Routes() {
		if rt.Name != name {
			continue
		}
		path := rt.Path
		for i := 0; i < len(pairs); i += 2 {
			path = strings.ReplaceAll(path, "{"+pairs[i]+"}", pairs[i+1])
		}
		if strings.Contains(path, "{") {
			return "", fmt.Errorf("url for %q: missing path parameters in %q", name, path)
		}
		return path, nil
	}
	return "", fmt.Errorf("no route named %q", name)
}

// Mount registers the group on r.
func (g *RouteGroup) Mount(r chi.Router) {
	g.mount(r, "")
}

func (g *RouteGroup) mount(r chi.Router, prefix string) {
	prefix += g.prefix
	r.Group(func(r chi.Router) {
		r.Use(g.middleware...)
		for _, rt := range g.routes {
			var h http.Handler = rt.view
			if len(rt.middleware) > 0 {
				h = chi.Chain(rt.middleware...).Handler(h)
			}
			path := prefix + rt.Path
			if path == "" {
				path = "/"
			}
			for _, method := range rt.Methods {
				r.Method(method, path, h)
			}
		}
		for _, child := range g.children {
			child.mount(r, prefix)
		}
	})
}

// Handler returns a chi router serving the group.
func (g *RouteGroup) Handler() http.Handler {
	r := chi.NewRouter()
	g.Mount(r)
	return r
}
