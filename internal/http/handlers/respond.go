package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"webshop/internal/domain"
	applog "webshop/internal/log"
)

// respondErr maps the error taxonomy onto HTTP statuses. Unknown errors
// become a 500 without leaking internals.
func respondErr(c *fiber.Ctx, action string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInsufficientStock):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = fiber.StatusConflict
	}

	if status == fiber.StatusInternalServerError {
		applog.Error(c, action, err, nil)
		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}
	if status == fiber.StatusForbidden || status == fiber.StatusUnauthorized {
		applog.Security(c, action, map[string]any{"error": err.Error()})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
