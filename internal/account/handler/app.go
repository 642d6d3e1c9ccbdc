package handler

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

type AppConfig struct {
	CORSAllowOrigins string
	// AccessLog receives one line per request. Defaults to os.Stdout.
	AccessLog io.Writer
	Logger    *slog.Logger
}

// NewApp builds the Fiber app with the shared middleware stack. Routes are
// mounted separately with RegisterRoutes and RegisterOpsRoutes.
func NewApp(cfg AppConfig) *fiber.App {
	if cfg.CORSAllowOrigins == "" {
		cfg.CORSAllowOrigins = "*"
	}
	if cfg.AccessLog == nil {
		cfg.AccessLog = os.Stdout
	}

	app := fiber.New(fiber.Config{
		AppName:               "account-service",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(cfg.Logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} ${latency} ${method} ${path}\n",
		Output: cfg.AccessLog,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	return app
}

// errorHandler keeps the {"error": ...} body shape for errors raised by
// Fiber itself, such as unknown routes or recovered panics.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := msgInternal

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else if logger != nil {
			logger.ErrorContext(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
		}

		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}
