package controller

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Lucifer21-lab/synchro-ai-sub000/services"
)

// paramID parses a numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be numeric")
	}
	return uint(id), nil
}

// respondServiceError maps service error kinds onto HTTP statuses. The
// wrapped message is returned verbatim; it is written for end users.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrInvalidState):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrService):
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
