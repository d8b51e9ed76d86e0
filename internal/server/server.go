package server

import (
	"context"
	"errors"

	"inventario/internal/config"
	"inventario/internal/inventory"
	"inventario/internal/metrics"
	"inventario/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pinger is satisfied by *inventory.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Config *config.Config
	Repo   inventory.Repository
	Health Pinger
	Log    *zap.Logger
}

func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "inventario",
		Views:                 web.NewEngine(),
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(d.Log),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: !d.Config.IsProduction()}))
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(RequestLogger(d.Log))

	if d.Config.MetricsEnabled {
		app.Use(metrics.Middleware())
		app.Get("/metrics", metrics.Handler())
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := d.Health.Ping(c.UserContext()); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "database unavailable")
		}
		return c.SendString("ok")
	})

	inventory.NewHandler(d.Repo, d.Log).Register(app)
	return app
}

// ErrorHandler answers *fiber.Error with its status and message as plain
// text and hides everything else behind a 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).SendString(fe.Message)
		}
		log.Error("unexpected error",
			zap.String("path", c.Path()),
			zap.String("request_id", requestID(c)),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).SendString("Error inesperado del servidor")
	}
}
