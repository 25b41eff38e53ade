package api

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"olymatch/internal/domain"
	"olymatch/internal/intake"
	"olymatch/internal/store"
)

// LikeHandler handles HTTP requests for like submission and reading.
type LikeHandler struct {
	service *intake.Service
	likes   store.LikeRepository
	logger  *slog.Logger
}

// NewLikeHandler creates a new like handler.
func NewLikeHandler(service *intake.Service, likes store.LikeRepository, logger *slog.Logger) *LikeHandler {
	return &LikeHandler{
		service: service,
		likes:   likes,
		logger:  logger,
	}
}

// Submit handles POST /v1/likes
// Validates the intent and enqueues it for asynchronous persistence.
// Returns 202 Accepted immediately - the record is written by the worker.
func (h *LikeHandler) Submit(c *fiber.Ctx) error {
	var intent domain.LikeIntent
	if err := c.BodyParser(&intent); err != nil {
		h.logger.Debug("failed to parse like body", "error", err)
		return BadRequest(c, "invalid request body")
	}

	if err := h.service.SubmitLike(c.Context(), &intent); err != nil {
		if errors.Is(err, intake.ErrPublishUnavailable) {
			h.logger.Error("like queue unavailable", "error", err)
			return Unavailable(c, "like submission is temporarily unavailable")
		}
		h.logger.Debug("like validation failed", "error", err)
		return ValidationError(c, err.Error())
	}

	// 202 Accepted - the like will be persisted asynchronously.
	return Accepted(c, map[string]string{
		"status": "enqueued",
	})
}

// ListReceived handles GET /v1/users/:tgID/likes
// Returns the likes addressed to a user, newest first.
func (h *LikeHandler) ListReceived(c *fiber.Ctx) error {
	tgID, err := parseTelegramID(c.Params("tgID"))
	if err != nil {
		return BadRequest(c, "invalid telegram id")
	}

	likes, err := h.likes.ListReceived(c.Context(), tgID)
	if err != nil {
		h.logger.Error("failed to list likes", "error", err, "tg_id", tgID)
		return InternalError(c, "failed to list likes")
	}

	return Success(c, likes)
}

// MarkRead handles PATCH /v1/likes/:id/read
// Flips is_readed once the target has viewed the like.
func (h *LikeHandler) MarkRead(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return BadRequest(c, "invalid like id")
	}

	if err := h.likes.MarkRead(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrLikeNotFound) {
			return NotFound(c, "like not found")
		}
		h.logger.Error("failed to mark like read", "error", err, "like_id", id)
		return InternalError(c, "failed to mark like read")
	}

	return NoContent(c)
}

// parseTelegramID parses a positive external id from a path parameter.
func parseTelegramID(raw string) (domain.TelegramID, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	tgID := domain.TelegramID(v)
	if !tgID.IsValid() {
		return 0, domain.ErrInvalidTelegramID
	}
	return tgID, nil
}
