package utils

import (
	"errors"
	"time"

	"dailytracker/backend/services"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the standardized error envelope: machine code, human
// message, and enough context for audit correlation.
type ErrorResponse struct {
	Code          string      `json:"code"`
	Message       string      `json:"message"`
	Details       interface{} `json:"details,omitempty"`
	CorrelationID string      `json:"correlationId,omitempty"`
	Path          string      `json:"path"`
	Timestamp     string      `json:"timestamp"`
}

// SuccessResponse wraps successful payloads.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(SuccessResponse{Success: true, Data: data})
}

func Message(c *fiber.Ctx, message string) error {
	return c.JSON(SuccessResponse{Success: true, Message: message})
}

func Error(c *fiber.Ctx, status int, code, message string, details interface{}) error {
	corrID, _ := c.Locals("request_id").(string)
	return c.Status(status).JSON(ErrorResponse{
		Code:          code,
		Message:       message,
		Details:       details,
		CorrelationID: corrID,
		Path:          c.Path(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, "ERR_BAD_REQUEST", message, nil)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, "ERR_UNAUTHORIZED", message, nil)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, "ERR_FORBIDDEN", message, nil)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, "ERR_NOT_FOUND", message, nil)
}

func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, "ERR_INTERNAL", message, nil)
}

// ServiceError maps a service error to its HTTP status and envelope.
// Unclassified errors surface as a generic internal error; the original
// message is never forwarded to the client.
func ServiceError(c *fiber.Ctx, err error) error {
	var se *services.Error
	if errors.As(err, &se) {
		return Error(c, statusFor(se.Kind), se.Code, se.Message, se.Details)
	}
	return InternalServerError(c, "internal server error")
}

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return fiber.StatusUnprocessableEntity
	case services.KindUnauthorized:
		return fiber.StatusUnauthorized
	case services.KindForbidden:
		return fiber.StatusForbidden
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
