package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Success writes a 200 envelope.
func Success(c *fiber.Ctx, message string, data any) error {
	return SuccessWithCode(c, fiber.StatusOK, message, data)
}

// SuccessWithCode writes a success envelope with an explicit status code.
func SuccessWithCode(c *fiber.Ctx, code int, message string, data any) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  statusSuccess,
		"message": message,
		"data":    data,
	})
}

// Error writes an error envelope.
func Error(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  statusError,
		"message": message,
	})
}

// ErrorWithDetails writes an error envelope carrying per-field details.
func ErrorWithDetails(c *fiber.Ctx, code int, message string, details any) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  statusError,
		"message": message,
		"errors":  details,
	})
}
