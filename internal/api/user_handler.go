package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"olymatch/internal/domain"
	"olymatch/internal/store"
)

// UserHandler handles HTTP requests for profile management.
type UserHandler struct {
	users  store.UserRepository
	logger *slog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users store.UserRepository, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// Create handles POST /v1/users
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var user domain.User
	if err := c.BodyParser(&user); err != nil {
		return BadRequest(c, "invalid request body")
	}

	if err := user.Validate(); err != nil {
		return ValidationError(c, err.Error())
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := h.users.Create(c.Context(), &user); err != nil {
		h.logger.Error("failed to create user", "error", err, "tg_id", user.TelegramID)
		return InternalError(c, "failed to create user")
	}

	return Created(c, user)
}

// GetByTelegramID handles GET /v1/users/:tgID
func (h *UserHandler) GetByTelegramID(c *fiber.Ctx) error {
	tgID, err := parseTelegramID(c.Params("tgID"))
	if err != nil {
		return BadRequest(c, "invalid telegram id")
	}

	user, err := h.users.GetByTelegramID(c.Context(), tgID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NotFound(c, "user not found")
		}
		h.logger.Error("failed to get user", "error", err, "tg_id", tgID)
		return InternalError(c, "failed to get user")
	}

	return Success(c, user)
}

// Update handles PUT /v1/users/:tgID
func (h *UserHandler) Update(c *fiber.Ctx) error {
	tgID, err := parseTelegramID(c.Params("tgID"))
	if err != nil {
		return BadRequest(c, "invalid telegram id")
	}

	var user domain.User
	if err := c.BodyParser(&user); err != nil {
		return BadRequest(c, "invalid request body")
	}

	user.TelegramID = tgID
	if err := user.Validate(); err != nil {
		return ValidationError(c, err.Error())
	}
	user.UpdatedAt = time.Now().UTC()

	if err := h.users.Update(c.Context(), &user); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NotFound(c, "user not found")
		}
		h.logger.Error("failed to update user", "error", err, "tg_id", tgID)
		return InternalError(c, "failed to update user")
	}

	return Success(c, user)
}

// Delete handles DELETE /v1/users/:tgID
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	tgID, err := parseTelegramID(c.Params("tgID"))
	if err != nil {
		return BadRequest(c, "invalid telegram id")
	}

	if err := h.users.Delete(c.Context(), tgID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NotFound(c, "user not found")
		}
		h.logger.Error("failed to delete user", "error", err, "tg_id", tgID)
		return InternalError(c, "failed to delete user")
	}

	return NoContent(c)
}

// List handles GET /v1/users
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		return InternalError(c, "failed to list users")
	}

	return Success(c, users)
}
