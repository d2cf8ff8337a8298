package handlers

import (
	"errors"

	"shirtcatalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// respondError maps service errors to status codes. Errors outside the known
// taxonomy get fallback and a generic message; their detail only goes to the log.
func respondError(c *fiber.Ctx, err error, fallback int, message string) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": validationErr.Fields,
		})
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed"})
	case errors.Is(err, services.ErrInvalidID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg(message)
	return c.Status(fallback).JSON(fiber.Map{"error": message})
}
