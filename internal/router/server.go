package router

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/tourism-gateway/internal/config"
	"github.com/iliyamo/tourism-gateway/internal/handler"
	"github.com/iliyamo/tourism-gateway/internal/middleware"
)

// Options carries the ambient settings of the HTTP server. Redis may be nil,
// which disables rate limiting.
type Options struct {
	BodyLimit string
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	Log       *zap.Logger
}

// New builds the echo instance with middleware, the error handler and every
// route.
func New(h *handler.EntityHandler, opts Options) *echo.Echo {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	if opts.BodyLimit != "" {
		e.Use(echomw.BodyLimit(opts.BodyLimit))
	}
	e.Use(middleware.NewTokenBucket(opts.RateLimit, opts.Redis, log))

	RegisterRoutes(e)
	RegisterEntities(e, h)
	return e
}
