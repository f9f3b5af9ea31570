package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"soutenancecore/internal/console"
	"soutenancecore/internal/export"
	"soutenancecore/pkg/domain"
)

// StatusOf maps workflow and backend errors to HTTP status codes.
func StatusOf(err error) int {
	var fe *fiber.Error
	var ve *console.ValidationError
	var rv domain.RuleViolationError
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve),
		errors.Is(err, console.ErrEmptySelection),
		errors.Is(err, export.ErrUnsupportedFormat):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateEmail), errors.Is(err, domain.ErrDuplicateAssignment):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &rv):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, export.ErrQueueFull), errors.Is(err, export.ErrWorkerStopped):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the envelope for err. Validation failures carry their
// field map, rule violations their violations.
func respondError(c *fiber.Ctx, err error) error {
	code := StatusOf(err)
	var ve *console.ValidationError
	if errors.As(err, &ve) {
		return ErrorWithDetails(c, code, "Validation failed", ve.Fields)
	}
	var rv domain.RuleViolationError
	if errors.As(err, &rv) {
		return ErrorWithDetails(c, code, rv.Error(), rv.Result.Violations)
	}
	if code == fiber.StatusInternalServerError {
		return Error(c, code, "Internal server error")
	}
	return Error(c, code, err.Error())
}

// errorHandler is installed as the fiber ErrorHandler so panics recovered by
// middleware and unmatched routes share the envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err)
}
