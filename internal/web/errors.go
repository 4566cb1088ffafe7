package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/classgroups/classgroups/internal/fault"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusOf maps an error to its HTTP status.
func StatusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}

	switch fault.KindOf(err) {
	case fault.ErrNotFound:
		return fiber.StatusNotFound
	case fault.ErrForbidden:
		return fiber.StatusForbidden
	case fault.ErrConflict:
		return fiber.StatusConflict
	case fault.ErrValidationFailed:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders errors returned by handlers as JSON.
// Unclassified errors are logged and hidden behind a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := StatusOf(err)
	msg := err.Error()

	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("uri", c.OriginalURL()).Msg("request failed")
		msg = "Internal Server Error"
	}

	return c.Status(status).JSON(ErrorResponse{Error: msg})
}
