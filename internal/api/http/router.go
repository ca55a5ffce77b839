package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/movie-catalog/internal/api/http/handlers"
	"github.com/spec-kit/movie-catalog/internal/auth"
	"github.com/spec-kit/movie-catalog/internal/domain"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Users           *handlers.UsersHandler
	Movies          *handlers.MoviesHandler
	AuthMiddleware  *auth.Middleware
	MetricsGatherer prometheus.Gatherer
	LoginThrottle   *LoginThrottle
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.MetricsGatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	api.Post("/users", cfg.Users.Register)
	api.Post("/auth/login", cfg.LoginThrottle.Handler(), cfg.Users.Login)

	movies := api.Group("/movies")
	requireAny := cfg.AuthMiddleware.Require()
	requireUser := cfg.AuthMiddleware.Require(domain.RoleUser)
	requireAdmin := cfg.AuthMiddleware.Require(domain.RoleAdmin)

	movies.Get("/", requireAny, cfg.Movies.List)
	movies.Post("/", requireAdmin, cfg.Movies.Create)
	movies.Post("/sync", requireAdmin, cfg.Movies.Sync)
	movies.Get("/sync/status", requireAdmin, cfg.Movies.SyncStatus)
	movies.Get("/:id", requireUser, cfg.Movies.Get)
	movies.Patch("/:id", requireAdmin, cfg.Movies.Update)
	movies.Delete("/:id", requireAdmin, cfg.Movies.Delete)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewRouteNotFound(c.Method(), c.OriginalURL())
	})
}
