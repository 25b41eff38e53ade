package api

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"olymatch/internal/domain"
	"olymatch/internal/store"
)

// OlympiadHandler handles HTTP requests for achievement management.
type OlympiadHandler struct {
	olympiads store.OlympiadRepository
	logger    *slog.Logger
}

// NewOlympiadHandler creates a new olympiad handler.
func NewOlympiadHandler(olympiads store.OlympiadRepository, logger *slog.Logger) *OlympiadHandler {
	return &OlympiadHandler{
		olympiads: olympiads,
		logger:    logger,
	}
}

// Create handles POST /v1/olympiads
func (h *OlympiadHandler) Create(c *fiber.Ctx) error {
	var o domain.Olympiad
	if err := c.BodyParser(&o); err != nil {
		return BadRequest(c, "invalid request body")
	}

	if err := o.Validate(); err != nil {
		return ValidationError(c, err.Error())
	}

	if err := h.olympiads.Create(c.Context(), &o); err != nil {
		h.logger.Error("failed to create olympiad", "error", err, "tg_id", o.UserTelegramID)
		return InternalError(c, "failed to create olympiad")
	}

	return Created(c, o)
}

// ListByUser handles GET /v1/users/:tgID/olympiads
func (h *OlympiadHandler) ListByUser(c *fiber.Ctx) error {
	tgID, err := parseTelegramID(c.Params("tgID"))
	if err != nil {
		return BadRequest(c, "invalid telegram id")
	}

	olympiads, err := h.olympiads.ListByUser(c.Context(), tgID)
	if err != nil {
		h.logger.Error("failed to list olympiads", "error", err, "tg_id", tgID)
		return InternalError(c, "failed to list olympiads")
	}

	return Success(c, olympiads)
}

// Update handles PUT /v1/olympiads/:id
func (h *OlympiadHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return BadRequest(c, "invalid olympiad id")
	}

	var o domain.Olympiad
	if err := c.BodyParser(&o); err != nil {
		return BadRequest(c, "invalid request body")
	}

	o.ID = id
	if err := o.Validate(); err != nil {
		return ValidationError(c, err.Error())
	}

	if err := h.olympiads.Update(c.Context(), &o); err != nil {
		if errors.Is(err, domain.ErrOlympiadNotFound) {
			return NotFound(c, "olympiad not found")
		}
		h.logger.Error("failed to update olympiad", "error", err, "olympiad_id", id)
		return InternalError(c, "failed to update olympiad")
	}

	return Success(c, o)
}

// Delete handles DELETE /v1/olympiads/:id
func (h *OlympiadHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return BadRequest(c, "invalid olympiad id")
	}

	if err := h.olympiads.Delete(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrOlympiadNotFound) {
			return NotFound(c, "olympiad not found")
		}
		h.logger.Error("failed to delete olympiad", "error", err, "olympiad_id", id)
		return InternalError(c, "failed to delete olympiad")
	}

	return NoContent(c)
}
