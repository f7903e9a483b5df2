package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/unrolled/secure"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/membership-site/internal/api/cookie"
	"github.com/99minutos/membership-site/internal/api/handler"
	"github.com/99minutos/membership-site/internal/api/middleware"
	"github.com/99minutos/membership-site/internal/core/domain"
	"github.com/99minutos/membership-site/internal/core/ports"
	"github.com/99minutos/membership-site/internal/core/validation"
	"github.com/99minutos/membership-site/internal/infrastructure/http/handlers"
	"github.com/99minutos/membership-site/web"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Log         zerolog.Logger
	AuthService ports.AuthService
	UserService ports.UserService
	Validator   *validation.Validator
	Cookies     *cookie.Codec
	Renderer    echo.Renderer
	// Mongo is pinged by the readiness probe; Redis only when non-nil.
	Mongo      *mongo.Database
	Redis      *redis.Client
	Production bool
	// Registry receives the HTTP metrics and backs /metrics. Defaults to
	// the global Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = d.Renderer
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	secureHeaders := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		IsDevelopment:         !d.Production,
	})

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echo.WrapMiddleware(secureHeaders.Handler))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "membership",
		Registerer: registerer,
	}))

	// --- Probes and metrics (no session) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.StaticFS("/static", echo.MustSubFS(web.Static, "static"))

	// --- Site ---
	site := e.Group("",
		echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
			TokenLookup:    "form:csrf",
			CookieName:     "_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   d.Production,
			CookieSameSite: http.SameSiteStrictMode,
		}),
		middleware.Session(d.AuthService, d.Cookies),
	)

	homeHandler := handler.NewHomeHandler()
	authHandler := handler.NewAuthHandler(d.AuthService, d.Validator, d.Cookies, d.Log)
	adminHandler := handler.NewAdminHandler(d.UserService)

	// Logout reads the cookie itself and must work with the session store down.
	e.GET("/logout", authHandler.Logout)

	site.GET("/", homeHandler.Index)
	site.GET("/signup", authHandler.SignupForm)
	site.POST("/signupSubmit", authHandler.SignupSubmit)
	site.GET("/login", authHandler.LoginForm)
	site.POST("/loginSubmit", authHandler.LoginSubmit)
	site.GET("/members", homeHandler.Members, middleware.RequireSession("/"))

	requireAdmin := middleware.RequireAdmin("/login")
	site.GET("/admin", adminHandler.Panel, requireAdmin)
	site.GET("/promote/:email", adminHandler.ConfirmRole(domain.RoleAdmin), requireAdmin)
	site.POST("/promote/:email", adminHandler.ChangeRole(domain.RoleAdmin), requireAdmin)
	site.GET("/demote/:email", adminHandler.ConfirmRole(domain.RoleUser), requireAdmin)
	site.POST("/demote/:email", adminHandler.ChangeRole(domain.RoleUser), requireAdmin)

	// Unmatched paths still pass through the session so the 404 page keeps
	// the caller's navigation.
	site.RouteNotFound("/*", func(c echo.Context) error {
		return echo.ErrNotFound
	})

	return e
}
