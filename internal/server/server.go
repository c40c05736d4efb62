package server

import (
	"context"
	"digital-storefront/internal/config"
	"digital-storefront/internal/handler"
	"digital-storefront/internal/metrics"
	appmw "digital-storefront/internal/middleware"
	"digital-storefront/internal/service"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// Services are the collaborators the HTTP layer dispatches to.
type Services struct {
	Catalog   service.CatalogService
	Purchases service.PurchaseService
	Downloads service.DownloadService
	Tracker   service.AccessTracker
	Evaluator service.EligibilityEvaluator
	Refunds   service.RefundRegistry
}

type Server struct {
	echo            *echo.Echo
	cfg             *config.Config
	metrics         *metrics.Metrics
	accessHandler   *handler.AccessHandler
	refundHandler   *handler.RefundHandler
	catalogHandler  *handler.CatalogHandler
	purchaseHandler *handler.PurchaseHandler
}

func NewServer(cfg *config.Config, services Services, policy config.Policy, m *metrics.Metrics, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(logger)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(appmw.Metrics(m))

	s := &Server{
		echo:            e,
		cfg:             cfg,
		metrics:         m,
		accessHandler:   handler.NewAccessHandler(services.Tracker, services.Evaluator),
		refundHandler:   handler.NewRefundHandler(services.Refunds, policy),
		catalogHandler:  handler.NewCatalogHandler(services.Catalog),
		purchaseHandler: handler.NewPurchaseHandler(services.Purchases, services.Downloads),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	public := api.Group("")
	if rps := s.cfg.RateLimit.RequestsPerSecond; rps > 0 {
		public.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(rps))))
	}

	// -------- catalog --------
	public.GET("/products", s.catalogHandler.List)
	public.GET("/products/:id", s.catalogHandler.Get)
	public.GET("/refund-policy", s.refundHandler.Policy)

	// -------- access & refunds --------
	public.POST("/access", s.accessHandler.RecordAccess)
	public.GET("/eligibility", s.accessHandler.Eligibility)
	public.POST("/downloads", s.purchaseHandler.Download)
	public.POST("/refund-requests", s.refundHandler.CreateRequest)

	// -------- admin --------
	admin := api.Group("/admin", appmw.AdminAuth([]byte(s.cfg.Auth.AdminJWTSecret)))
	admin.GET("/refund-requests", s.refundHandler.List)
	admin.GET("/refund-requests/:id", s.refundHandler.Get)
	admin.POST("/refund-requests/:id/decide", s.refundHandler.Decide)
	admin.POST("/refund-requests/:id/processed", s.refundHandler.MarkProcessed)
	admin.POST("/orders/:id/complete", s.purchaseHandler.CompleteOrder)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
