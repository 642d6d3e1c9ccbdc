package handler

import (
	"slices"
	"strings"

	"github.com/IslamMhareeq/sha-256/internal/account/domain"
	autherror "github.com/IslamMhareeq/sha-256/internal/errors"
	"github.com/gofiber/fiber/v2"
)

// ClaimsKey is the c.Locals key holding the verified *service.SessionClaims.
const ClaimsKey = "claims"

// RequireRole admits requests carrying a valid session token whose role is
// one of roles. A missing bearer token is 401; any other rejection is 403.
func (h *AccountHandler) RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		token, found := strings.CutPrefix(authHeader, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			return h.respondError(c, autherror.ErrUnauthenticated)
		}

		claims, err := h.tokenService.VerifySession(token)
		if err != nil {
			h.logger.DebugContext(c.UserContext(), "bearer token rejected", "reason", err)
			return h.respondError(c, autherror.ErrForbidden)
		}

		if !slices.Contains(roles, claims.Role) {
			return h.respondError(c, autherror.ErrForbidden)
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}
