package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dispatch/application/ports"
	"dispatch/interfaces/http/rest"
	"dispatch/interfaces/http/rest/middleware"
	"dispatch/pkg/auth"
	apperrors "dispatch/pkg/errors"
	"dispatch/pkg/inject"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Options tunes the demo application.
type Options struct {
	// SingleFlight collapses concurrent first loads of cached dependencies.
	SingleFlight bool
}

// App is the demo application: one view per kind of dependency plus a small
// item API backed by an ItemStore.
type App struct {
	store    ports.ItemStore
	engine   *inject.Engine
	errors   *apperrors.ErrorHandler
	logger   *zap.Logger
	validate *validator.Validate

	storedItem inject.Annotation
	itemInput  inject.Annotation
}

// NewApp creates the application and builds its store-backed dependencies.
func NewApp(store ports.ItemStore, engine *inject.Engine, errs *apperrors.ErrorHandler, logger *zap.Logger, opts Options) *App {
	a := &App{
		store:    store,
		engine:   engine,
		errors:   errs,
		logger:   logger,
		validate: validator.New(),
	}

	cache := inject.Cached()
	if opts.SingleFlight {
		cache = inject.SingleFlight()
	}
	storeDependency := inject.Annotated[ports.ItemStore](inject.MustFactory(
		func() ports.ItemStore { return a.store },
		cache,
	))

	a.storedItem = inject.Annotated[*ports.Item](inject.MustFactory(loadItem,
		inject.WithParams(
			inject.Param("ctx", nil),
			inject.Param("store", storeDependency),
			inject.Param("key", rest.FromPath[string](rest.Validate("max=64"))),
		),
	))
	a.itemInput = inject.Annotated[*ItemInput](inject.MustFactory(a.decodeItemInput,
		inject.WithParams(inject.Param("request", nil)),
	))
	return a
}

func loadItem(ctx context.Context, store ports.ItemStore, key string) (*ports.Item, error) {
	item, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("item %q", key))
	}
	return item, nil
}

// ItemInput is the body of PUT /items/{key}.
type ItemInput struct {
	Value string `json:"value" validate:"required,max=1024"`
}

func (a *App) decodeItemInput(r *http.Request) (*ItemInput, error) {
	var in ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return nil, apperrors.NewValidationError("Invalid request body: " + err.Error())
	}
	if err := a.validate.Struct(in); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return &in, nil
}

// ProvideUser attaches user to every request below it.
func ProvideUser(user *User) func(http.Handler) http.Handler {
	return middleware.ProvideState(userStateKey, user)
}

func (a *App) group(prefix string, opts ...rest.GroupOption) *rest.RouteGroup {
	opts = append([]rest.GroupOption{
		rest.WithEngine(a.engine),
		rest.WithErrorHandler(a.errors),
		rest.WithGroupLogger(a.logger),
	}, opts...)
	return rest.NewRouteGroup(prefix, opts...)
}

// Routes builds the route tree of the application.
func (a *App) Routes() *rest.RouteGroup {
	views := a.group("")

	views.Get("/", func() rest.Responder {
		return rest.Text("dispatch demo")
	}).Named("index")

	views.Get("/request-dependency", func(user *User) rest.Responder {
		return rest.Text(fmt.Sprintf("Hello, %s!", user.Username))
	}, inject.Param("user", CurrentUser))

	views.Get("/factory-dependency", func(now, cached float64) rest.Responder {
		return rest.JSON(map[string]float64{"time": now, "cached_time": cached})
	}, inject.Param("time", CurrentTime), inject.Param("cached_time", CachedCurrentTime))

	views.Get("/async-dependency", textView, inject.Param("value", AsyncValue))
	views.Get("/factory-dependency-dependency", textView, inject.Param("value", ChildValue))
	views.Get("/complex-dependency", textView, inject.Param("value", ComplexValue))
	views.Get("/custom-resolver-dependency", textView, inject.Param("value", CustomResolverValue))
	views.Get("/variable-dependency", textView, inject.Param("value", Variable))

	for _, path := range []string{"/path-dependency", "/path-dependency/{value}"} {
		views.Get(path, textView, inject.Param("value", rest.FromPath[string]()))
	}
	for _, path := range []string{"/path-dependency-optional", "/path-dependency-optional/{value}"} {
		views.Get(path, optionalTextView, inject.Param("value", inject.Optional(rest.FromPath[*string]())))
	}
	for _, path := range []string{"/multi-one", "/multi-two"} {
		views.Get(path, func() rest.Responder { return rest.Text("multiple_routes_view") })
	}

	views.Get("/me", func(claims *auth.Claims) rest.Responder {
		if claims == nil {
			return rest.JSON(map[string]any{"authenticated": false})
		}
		return rest.JSON(map[string]any{"authenticated": true, "user_id": claims.UserID, "roles": claims.Roles})
	}, inject.Param("claims", inject.Optional(rest.CurrentClaims)))

	items := a.group("/items")
	items.Get("/{key}", func(item *ports.Item) rest.Responder {
		return rest.JSON(item)
	}, inject.Param("item", a.storedItem)).Named("item")

	items.Put("/{key}", a.putItem,
		inject.Param("ctx", nil),
		inject.Param("key", rest.FromPath[string](rest.Validate("max=64"))),
		inject.Param("input", a.itemInput),
		inject.Param("claims", inject.Optional(rest.CurrentClaims)),
	)

	items.Delete("/{key}", func(ctx context.Context, key string) error {
		return a.store.Delete(ctx, key)
	}, inject.Param("ctx", nil), inject.Param("key", rest.FromPath[string]()))

	admin := a.group("/admin", rest.WithMiddleware(ProvideUser(&User{Username: "admin"})))
	admin.Get("/", func(user *User) rest.Responder {
		return rest.Text(fmt.Sprintf("Hello, %s!", user.Username))
	}, inject.Param("user", CurrentUser))

	return a.group("",
		rest.WithMiddleware(ProvideUser(&User{Username: "test"})),
		rest.WithChildren(views, items, admin),
	)
}

func (a *App) putItem(ctx context.Context, key string, in *ItemInput, claims *auth.Claims) (rest.Responder, error) {
	item := &ports.Item{Key: key, Value: in.Value, UpdatedAt: time.Now().UTC()}
	if claims != nil {
		item.Owner = claims.UserID
	}
	if err := a.store.Put(ctx, item); err != nil {
		return nil, err
	}
	a.logger.Debug("Item stored", zap.String("key", key), zap.String("owner", item.Owner))
	return rest.JSON(item).WithStatus(http.StatusCreated), nil
}

func textView(value string) rest.Responder {
	return rest.Text(value)
}

func optionalTextView(value *string) rest.Responder {
	if value == nil {
		return rest.Text("None")
	}
	return rest.Text(*value)
}
