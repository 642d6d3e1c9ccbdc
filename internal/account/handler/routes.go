package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/IslamMhareeq/sha-256/internal/account/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// Pinger reports whether the account store is reachable. *pgxpool.Pool
// satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

func RegisterRoutes(app *fiber.App, h *AccountHandler) {
	api := app.Group("/api")
	api.Post("/register", h.Register)
	api.Post("/login", h.Login)
	api.Post("/forgot-password", h.ForgotPassword)
	api.Post("/reset-password", h.ResetPassword)

	// Admin-only endpoints
	api.Get("/users", h.RequireRole(domain.RoleAdmin), h.ListUsers)
}

// RegisterOpsRoutes mounts /healthz and, when metricsHandler is not nil, /metrics.
func RegisterOpsRoutes(app *fiber.App, db Pinger, metricsHandler http.Handler) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if metricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metricsHandler))
	}
}
