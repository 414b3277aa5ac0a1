package middleware

import (
	"errors"
	"lms/services/apperr"

	"github.com/gofiber/fiber/v2"
)

// ServiceError maps service-layer sentinel errors onto HTTP responses.
// Anything unrecognized is a plain server error; the detail stays out of
// the response body.
func ServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return JsonResponse(c, fiber.StatusNotFound, false, "Not found!", nil)
	case errors.Is(err, apperr.ErrValidation):
		return JsonResponse(c, fiber.StatusUnprocessableEntity, false, err.Error(), nil)
	case errors.Is(err, apperr.ErrInvalidState):
		return JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	case errors.Is(err, apperr.ErrLimitExceeded):
		return JsonResponse(c, fiber.StatusForbidden, false, "Attempt limit reached!", nil)
	case errors.Is(err, apperr.ErrConflict):
		return JsonResponse(c, fiber.StatusConflict, false, "Please retry, the record was updated concurrently!", nil)
	default:
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error!", nil)
	}
}
