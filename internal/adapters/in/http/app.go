package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"optideliver/internal/pkg/metrics"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Options configure the echo instance built by NewEcho.
type Options struct {
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
	Authenticator *Authenticator

	// BookingRate and BookingBurst bound booking writes per caller.
	BookingRate  float64
	BookingBurst int

	// Health reports whether the service can take traffic. Nil means always.
	Health func(ctx context.Context) error
}

// NewEcho assembles the HTTP surface: the API routes behind request
// validation, plus /health, /metrics and the swagger UI.
func NewEcho(ctx context.Context, si ServerInterface, opts Options) (*echo.Echo, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	doc, err := LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}
	validator, err := RequestValidator(doc)
	if err != nil {
		return nil, err
	}
	if err = registerSwaggerDoc(doc); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewErrorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(RequestLogger(logger, opts.Metrics))
	e.Use(middleware.Recover())
	e.Use(validator)

	e.GET("/health", func(c echo.Context) error {
		if opts.Health != nil {
			if err := opts.Health(c.Request().Context()); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, Error{
					Code:    http.StatusServiceUnavailable,
					Message: "unhealthy",
				})
			}
		}
		return c.String(http.StatusOK, "Healthy")
	})

	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	limiter := RateLimiter(opts.BookingRate, opts.BookingBurst)
	RegisterHandlers(e, si, opts.Authenticator, limiter)

	return e, nil
}

// openAPIDoc serves the embedded description to the swagger UI.
type openAPIDoc struct {
	json string
}

func (d openAPIDoc) ReadDoc() string {
	return d.json
}

var swaggerOnce sync.Once

// registerSwaggerDoc publishes the description under swag's default name.
// swag panics on a second registration, so only the first call counts.
func registerSwaggerDoc(doc *openapi3.T) error {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal openapi document: %w", err)
	}

	swaggerOnce.Do(func() {
		swag.Register(swag.Name, openAPIDoc{json: string(raw)})
	})
	return nil
}
