package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/microsharks/dealroom/docs"
	"github.com/microsharks/dealroom/internal/api/handler"
	"github.com/microsharks/dealroom/internal/api/middleware"
	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
	"github.com/microsharks/dealroom/internal/view"
)

// Deps is everything the router needs to serve the dashboard.
type Deps struct {
	Dashboard     ports.DashboardService
	Offers        ports.OfferService
	Notifications ports.NotificationService
	Admin         ports.AdminService

	// Health lists the dependencies checked by /health/ready.
	Health map[string]handler.Pinger

	// Auth configures session token checks. LoginURL applies to the HTML
	// routes only; the JSON API always answers 401.
	Auth middleware.AuthOptions

	// ChartAssetsHost overrides where the chart page loads echarts from.
	ChartAssetsHost string
	// SecureCookies marks the CSRF cookie Secure.
	SecureCookies bool

	// Metrics receives the HTTP request metrics. Nil uses the default registry.
	Metrics *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Renderer = renderer
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Metrics != nil {
		registerer, gatherer = d.Metrics, d.Metrics
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "dealroom",
		Registerer: registerer,
	}))

	// --- Handlers ---
	dash := handler.NewDashboardHandler(d.Dashboard, d.Notifications, d.ChartAssetsHost, d.Log)
	offers := handler.NewOfferHandler(d.Offers)
	notes := handler.NewNotificationHandler(d.Notifications)
	admin := handler.NewAdminHandler(d.Admin)
	health := handler.NewHealthHandler(d.Health)

	// --- Operational routes (no auth required) ---
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.StaticFS("/static", view.StaticFS())
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/dashboard")
	})

	session := middleware.LoadSession(d.Dashboard)
	entrepreneurOnly := middleware.RBAC(domain.RoleEntrepreneur)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- HTML dashboard ---
	page := e.Group("/dashboard",
		middleware.Auth(d.Auth),
		session,
		echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
			TokenLookup:    "form:_csrf",
			CookiePath:     "/dashboard",
			CookieHTTPOnly: true,
			CookieSecure:   d.SecureCookies,
			CookieSameSite: http.SameSiteLaxMode,
		}),
	)
	page.GET("", dash.Page)
	page.GET("/tabs/:tab", dash.Tab)
	page.GET("/charts/funding", dash.FundingChart, entrepreneurOnly)
	page.GET("/notifications", notes.Panel)
	page.GET("/notifications/:id/open", notes.Open)
	page.POST("/notifications/read-all", notes.ReadAll)
	page.POST("/offers/:id/accept", offers.Accept, entrepreneurOnly)
	page.POST("/offers/:id/reject", offers.Reject, entrepreneurOnly)
	page.POST("/admin/users/:id/verify", admin.VerifyUser, adminOnly)
	page.POST("/admin/proposals/:id/verify", admin.VerifyProposal, adminOnly)

	// --- JSON API ---
	// Bearer only. The session cookie would let a cross-site POST act on
	// the user's behalf, and this group carries no csrf token.
	apiAuth := d.Auth
	apiAuth.LoginURL = ""
	apiAuth.Cookie = ""
	v1 := e.Group("/v1", middleware.Auth(apiAuth), session)
	v1.GET("/dashboard", dash.Get)
	v1.GET("/notifications", notes.List)
	v1.POST("/notifications/read-all", notes.ReadAll)
	v1.POST("/notifications/:id/read", notes.Read)
	v1.POST("/offers/:id/accept", offers.Accept, entrepreneurOnly)
	v1.POST("/offers/:id/reject", offers.Reject, entrepreneurOnly)
	v1.POST("/admin/users/:id/verify", admin.VerifyUser, adminOnly)
	v1.POST("/admin/proposals/:id/verify", admin.VerifyProposal, adminOnly)

	return e, nil
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				ev = log.Error().Err(v.Error)
			case v.Error != nil:
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
