package handlers

import (
	"errors"
	"log/slog"

	"github.com/fra-atlas/atlas-backend/internal/apperr"
	"github.com/fra-atlas/atlas-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// writeError maps service errors onto HTTP responses. Anything unclassified
// is a 500 and its details stay in the logs.
func writeError(c *fiber.Ctx, err error) error {
	resp := dto.ErrorResponse{Error: true, Message: err.Error()}
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, apperr.ErrAuthenticationFailed):
		status = fiber.StatusUnauthorized
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	case errors.Is(err, apperr.ErrAuthorizationDenied):
		status = fiber.StatusForbidden
		resp.Reason = apperr.Reason(err)
		resp.Message = "Forbidden"
	case errors.Is(err, apperr.ErrNotFound):
		status = fiber.StatusNotFound
		resp.Message = "Not found"
	case errors.Is(err, apperr.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrConflict):
		status = fiber.StatusConflict
	default:
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", requestID(c),
			"error", err,
		)
		resp.Message = "Internal server error"
	}

	return c.Status(status).JSON(resp)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
