package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/busview/busview/internal/core/explorer"
	"github.com/busview/busview/internal/core/models"
)

// GetActiveView returns the display state currently shown, if any.
func GetActiveView(c *fiber.Ctx, svc *explorer.Service) error {
	state := svc.ActiveView()
	if state == nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "no active view",
		})
	}
	return c.Status(fiber.StatusOK).JSON(state)
}

func GetViewState(c *fiber.Ctx, svc *explorer.Service) error {
	state, err := svc.ViewState(c.Params("stateId"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(state)
}

// SetViewUI echoes free-form detail-view fields into the addressed state.
func SetViewUI(c *fiber.Ctx, svc *explorer.Service) error {
	var request models.SetUIRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
	}
	if err := svc.HandleSetUI(c.Params("stateId"), request.Fields); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.SuccessResponse{
		Message: "Fields stored",
	})
}

// SendViewMessage sends to whatever entity the addressed state is showing.
func SendViewMessage(c *fiber.Ctx, svc *explorer.Service) error {
	var request models.SendMessageRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
	}
	if err := svc.HandleSendMessage(c.Context(), c.Params("stateId"), request); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.SuccessResponse{
		Message: "Message sent successfully",
	})
}

func PeekView(c *fiber.Ctx, svc *explorer.Service, timeout time.Duration) error {
	var request models.PeekRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
	}
	ctx, cancel := peekContext(c, timeout)
	defer cancel()
	msgs, err := svc.HandlePeek(ctx, c.Params("stateId"), request.Count)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.MessageListResponse{Messages: msgs})
}

func PeekViewDeadLetter(c *fiber.Ctx, svc *explorer.Service, timeout time.Duration) error {
	var request models.PeekRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
	}
	ctx, cancel := peekContext(c, timeout)
	defer cancel()
	msgs, err := svc.HandlePeekDeadLetter(ctx, c.Params("stateId"), request.Count)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.MessageListResponse{Messages: msgs})
}
