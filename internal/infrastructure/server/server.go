package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/acrylic/tracker/docs"
	httpHandlers "github.com/acrylic/tracker/internal/adapters/http"
	"github.com/acrylic/tracker/internal/application/services"
	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/infrastructure/config"
	"github.com/acrylic/tracker/internal/infrastructure/logger"
	"github.com/acrylic/tracker/internal/infrastructure/metrics"
	"github.com/acrylic/tracker/internal/ports"
)

// Services are the application services the HTTP API exposes
type Services struct {
	Assignments *services.AssignmentService
	Courses     *services.CourseService
	Hidden      *services.HiddenService
	Profile     *services.ProfileService
	Auth        *services.AuthService
	Store       ports.Store
}

// Server represents the HTTP server
type Server struct {
	echo     *echo.Echo
	config   *config.Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
	services Services
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance
func New(cfg *config.Config, svc Services, m *metrics.Metrics, appLogger *logger.Logger) (*Server, error) {
	if svc.Assignments == nil || svc.Courses == nil || svc.Hidden == nil || svc.Profile == nil || svc.Auth == nil {
		return nil, errors.New("server: every service must be provided")
	}

	e := echo.New()

	e.Validator = &CustomValidator{validator: validator.New()}

	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = customErrorHandler(appLogger)

	server := &Server{
		echo:     e,
		config:   cfg,
		logger:   appLogger.WithComponent("http"),
		metrics:  m,
		services: svc,
	}

	prefixes := svc.Assignments.Options().Prefixes
	assignmentHandler := httpHandlers.NewAssignmentHandler(svc.Assignments, svc.Profile, server.logger)
	courseHandler := httpHandlers.NewCourseHandler(svc.Courses, prefixes, server.logger)
	hiddenHandler := httpHandlers.NewHiddenHandler(svc.Hidden, svc.Assignments, server.logger)

	server.setupMiddleware()

	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	server.setupRoutes(assignmentHandler, courseHandler, hiddenHandler)

	return server, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Debugw("HTTP request", fields...)
			}

			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.POST, echo.DELETE},
	}))

	if s.config.Security.RateLimitRequests > 0 {
		window := s.config.Security.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      rate.Limit(float64(s.config.Security.RateLimitRequests) / window.Seconds()),
					Burst:     s.config.Security.RateLimitRequests,
					ExpiresIn: window,
				},
			),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(context echo.Context, err error) error {
				return context.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
			},
			DenyHandler: func(context echo.Context, identifier string, err error) error {
				return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
			},
		}))
	}

	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	}))

	s.echo.Use(middleware.RequestID())
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(assignmentHandler *httpHandlers.AssignmentHandler, courseHandler *httpHandlers.CourseHandler, hiddenHandler *httpHandlers.HiddenHandler) {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)

	s.echo.GET("/docs/*", echoSwagger.WrapHandler)

	auth := s.authMiddleware(s.services.Auth)
	appOnly := s.requireSurface(SurfaceApp)

	v1 := s.echo.Group("/api/v1", auth)

	// Readable by every surface
	v1.GET("/assignments", assignmentHandler.ListAssignments)
	v1.GET("/assignments.ics", assignmentHandler.ExportCalendar)
	v1.GET("/widget", assignmentHandler.Widget)
	v1.GET("/profile/image", assignmentHandler.ProfileImage)
	v1.GET("/courses", courseHandler.ListCourses)
	v1.GET("/hidden", hiddenHandler.ListHidden)

	v1.POST("/assignments/refresh", assignmentHandler.RefreshAssignments, appOnly)
	v1.POST("/profile/refresh", assignmentHandler.RefreshProfile, appOnly)

	v1.POST("/courses", courseHandler.CreateCourse, appOnly)
	v1.DELETE("/courses", courseHandler.DeleteAllCourses, appOnly)
	v1.POST("/courses/move", courseHandler.MoveCourse, appOnly)
	v1.POST("/courses/import", courseHandler.ImportCourses, appOnly)
	v1.PUT("/courses/:code", courseHandler.UpdateCourse, appOnly)
	v1.DELETE("/courses/:code", courseHandler.DeleteCourse, appOnly)

	v1.POST("/hidden", hiddenHandler.Hide, appOnly)
	v1.DELETE("/hidden", hiddenHandler.ClearHidden, appOnly)
	v1.DELETE("/hidden/:index", hiddenHandler.Unhide, appOnly)
}

// setupMetrics installs the request metrics middleware and the /metrics endpoint
func (s *Server) setupMetrics() {
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			}

			s.metrics.HTTPRequests.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			s.metrics.HTTPDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	metricsHandler := promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	if s.services.Store != nil {
		_, err := s.services.Store.Get(c.Request().Context(), ports.KeyCourses)
		if err != nil && !errors.Is(err, entities.ErrKeyNotFound) {
			status = "error"
			checks["store"] = map[string]interface{}{
				"status": "error",
				"driver": s.config.Storage.Driver,
				"error":  err.Error(),
			}
		} else {
			checks["store"] = map[string]interface{}{
				"status": "ok",
				"driver": s.config.Storage.Driver,
			}
		}
	}

	if db, ok := databaseOf(s.services.Store); ok {
		database := map[string]interface{}{
			"status":      "ok",
			"connections": db.GetConnectionInfo(),
		}
		if err := db.HealthCheck(c.Request().Context()); err != nil {
			status = "error"
			database["status"] = "error"
			database["error"] = err.Error()
		}
		checks["database"] = database
	}

	_, fetchedAt := s.services.Assignments.Current()
	refresh := map[string]interface{}{
		"prefixes": len(s.services.Assignments.Options().Prefixes),
	}
	if !fetchedAt.IsZero() {
		refresh["fetched_at"] = fetchedAt.UTC().Format(time.RFC3339)
	}
	checks["assignments"] = refresh

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

// databaseOf finds the SQL pool behind a possibly wrapped store
func databaseOf(store ports.Store) (ports.DatabaseHealth, bool) {
	for store != nil {
		if db, ok := store.(ports.DatabaseHealth); ok {
			return db, true
		}
		wrapper, ok := store.(interface{ Unwrap() ports.Store })
		if !ok {
			break
		}
		store = wrapper.Unwrap()
	}
	return nil, false
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout
	s.echo.Server.IdleTimeout = s.config.Server.IdleTimeout
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		var he *echo.HTTPError
		var ve validator.ValidationErrors
		if errors.As(err, &he) {
			code = he.Code
			msg = httpHandlers.ErrorResponse{Error: fmt.Sprint(he.Message)}
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if errors.As(err, &ve) {
			code = http.StatusBadRequest
			msg = httpHandlers.ErrorResponse{Error: "validation failed", Details: ve.Error()}
		} else {
			msg = httpHandlers.ErrorResponse{Error: http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
