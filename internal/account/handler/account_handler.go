package handler

import (
	"errors"
	"log/slog"

	"github.com/IslamMhareeq/sha-256/internal/account/dto"
	"github.com/IslamMhareeq/sha-256/internal/account/service"
	autherror "github.com/IslamMhareeq/sha-256/internal/errors"
	"github.com/IslamMhareeq/sha-256/internal/logging"
	"github.com/gofiber/fiber/v2"
)

// Wire messages for errors whose sentinel text is not meant for callers.
const (
	msgInvalidInput       = "invalid input"
	msgUsernameTaken      = "Username already exists."
	msgInvalidCredentials = "Invalid credentials."
	msgInvalidResetToken  = "Invalid or expired token."
	msgUnauthenticated    = "Unauthorized"
	msgForbidden          = "Forbidden"
	msgInternal           = "internal server error"
)

type AccountHandler struct {
	accountService *service.AccountService
	tokenService   service.TokenGenerator
	logger         *slog.Logger
}

type HandlerOption func(*AccountHandler)

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *AccountHandler) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewAccountHandler(accountService *service.AccountService, tokenService service.TokenGenerator, opts ...HandlerOption) *AccountHandler {
	h := &AccountHandler{
		accountService: accountService,
		tokenService:   tokenService,
		logger:         logging.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *AccountHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": msgInvalidInput,
		})
	}

	resp, err := h.accountService.Register(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AccountHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": msgInvalidInput,
		})
	}

	resp, err := h.accountService.Login(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AccountHandler) ForgotPassword(c *fiber.Ctx) error {
	var input dto.ForgotPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidInput})
	}

	resp, err := h.accountService.ForgotPassword(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AccountHandler) ResetPassword(c *fiber.Ctx) error {
	var input dto.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidInput})
	}

	resp, err := h.accountService.ResetPassword(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// ListUsers must run behind RequireRole, which stores the caller's claims.
func (h *AccountHandler) ListUsers(c *fiber.Ctx) error {
	claims, ok := c.Locals(ClaimsKey).(*service.SessionClaims)
	if !ok || claims == nil {
		return h.respondError(c, autherror.ErrUnauthenticated)
	}

	accounts, err := h.accountService.ListAccounts(c.UserContext(), claims.Role)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(accounts)
}

// respondError maps service errors onto status codes. Store failures are
// logged and answered with a generic message.
func (h *AccountHandler) respondError(c *fiber.Ctx, err error) error {
	status, message := statusFor(err)
	if status == fiber.StatusInternalServerError {
		h.logger.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func statusFor(err error) (int, string) {
	var vErr *autherror.ValidationError
	switch {
	case errors.As(err, &vErr):
		return fiber.StatusBadRequest, vErr.Error()
	case errors.Is(err, autherror.ErrValidation):
		return fiber.StatusBadRequest, msgInvalidInput
	case errors.Is(err, autherror.ErrUsernameTaken):
		return fiber.StatusConflict, msgUsernameTaken
	case errors.Is(err, autherror.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, autherror.ErrUnauthenticated):
		return fiber.StatusUnauthorized, msgUnauthenticated
	case errors.Is(err, autherror.ErrForbidden):
		return fiber.StatusForbidden, msgForbidden
	case errors.Is(err, autherror.ErrInvalidResetToken):
		return fiber.StatusBadRequest, msgInvalidResetToken
	default:
		return fiber.StatusInternalServerError, msgInternal
	}
}
