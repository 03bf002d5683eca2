package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	RequestIDHeader       = "X-Request-Id"
	CorrelationHeader     = "X-Correlation-Id"
	requestIDContextKey   = "request_id"
)

// RequestIDMiddleware propagates a per-request correlation ID: incoming
// X-Request-Id is honored, otherwise a UUID is generated. The ID ends up
// in the response header, the logs, and error envelopes.
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(requestIDContextKey, requestID)
		c.Set(CorrelationHeader, requestID)
		return c.Next()
	}
}

// RequestID returns the correlation ID for the current request.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDContextKey).(string)
	return id
}
