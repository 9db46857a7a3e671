package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/busview/busview/internal/core/explorer"
	"github.com/busview/busview/internal/core/models"
	"github.com/busview/busview/internal/core/options"
	"github.com/busview/busview/internal/settingsdb"
)

func GetConnection(c *fiber.Ctx, svc *explorer.Service) error {
	return c.Status(fiber.StatusOK).JSON(models.ChangeConnectionRequest{
		ConnectionString: svc.ConnectionString(),
	})
}

// ChangeConnection swaps the broker connection and persists the descriptor
// so the next start reuses it. A reload failure after a successful swap is
// reported to the caller, not just logged.
func ChangeConnection(c *fiber.Ctx, svc *explorer.Service) error {
	var request models.ChangeConnectionRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
	}
	changeErr := svc.ChangeConnection(c.Context(), request.ConnectionString)
	if changeErr != nil && !errors.Is(changeErr, explorer.ErrReload) {
		return fail(c, changeErr)
	}
	if err := settingsdb.PutSetting(settingsdb.KeyConnectionString, request.ConnectionString); err != nil {
		log.Warn().Err(err).Msg("Failed to persist connection string")
	}
	if changeErr != nil {
		return c.Status(fiber.StatusOK).JSON(models.SuccessResponse{
			Message: "Connection changed, but the initial load failed: " + changeErr.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(models.SuccessResponse{
		Message: "Connection changed successfully",
	})
}

type optionDTO struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// GetCreateOptions returns the create-option table for an entity kind, so
// clients can render the create form without hardcoding it.
func GetCreateOptions(c *fiber.Ctx) error {
	set, ok := options.ForKindName(c.Params("kind"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "unknown entity kind '" + c.Params("kind") + "'",
		})
	}
	out := make([]optionDTO, len(set))
	for i, opt := range set {
		out[i] = optionDTO{Key: opt.Key, Label: opt.Label, Description: opt.Description}
	}
	return c.Status(fiber.StatusOK).JSON(out)
}
