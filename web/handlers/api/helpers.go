package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/busview/busview/internal/core/display"
	"github.com/busview/busview/internal/core/explorer"
	"github.com/busview/busview/internal/core/models"
)

// errStatus maps coordinator errors onto HTTP statuses: validation failures
// are the caller's fault, unknown display states are gone, everything else
// is a broker-side failure.
func errStatus(err error) int {
	switch {
	case errors.Is(err, explorer.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, explorer.ErrUnknownState):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(errStatus(err)).JSON(models.ErrorResponse{Error: err.Error()})
}

// peekContext bounds a peek call by the configured timeout; zero or negative
// means unbounded.
func peekContext(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return c.Context(), func() {}
	}
	return context.WithTimeout(c.Context(), timeout)
}

// messageKind resolves the ?deadletter query flag shared by peek and purge
// routes.
func messageKind(c *fiber.Ctx) display.MessageKind {
	if c.Query("deadletter") == "true" {
		return display.DeadLetter
	}
	return display.Normal
}
