package rest

import (
	"net/http"

	"dispatch/infrastructure/observability"
	"dispatch/interfaces/http/rest/middleware"
	"dispatch/pkg/auth"
	"dispatch/pkg/common"
	apperrors "dispatch/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router assembles the HTTP handler: global middleware, operational
// endpoints and the application's route groups.
type Router struct {
	app         *RouteGroup
	errors      *apperrors.ErrorHandler
	validator   *auth.JWTValidator
	metrics     *observability.Collector
	corsOrigins []string
	logger      *zap.Logger
}

// NewRouter creates a router for app. validator and metrics may be nil to
// disable authentication and metrics.
func NewRouter(
	app *RouteGroup,
	errs *apperrors.ErrorHandler,
	validator *auth.JWTValidator,
	metrics *observability.Collector,
	corsOrigins []string,
	logger *zap.Logger,
) *Router {
	return &Router{
		app:         app,
		errors:      errs,
		validator:   validator,
		metrics:     metrics,
		corsOrigins: corsOrigins,
		logger:      logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(rt.logger))
	router.Use(rt.errors.Middleware)
	if rt.metrics != nil {
		router.Use(rt.metrics.Middleware)
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	router.Group(func(r chi.Router) {
		if rt.validator != nil {
			r.Use(middleware.Authenticate(rt.validator, rt.errors, rt.logger, false))
		}
		rt.app.Mount(r)
	})

	rt.logger.Info("Routes mounted", zap.Stringer("app", rt.app))
	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (rt *Router) readinessCheck(w http.ResponseWriter, _ *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"routes": rt.app.Len(),
	})
}
