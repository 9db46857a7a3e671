package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/busview/busview/internal/core/explorer"
	"github.com/busview/busview/internal/core/models"
)

func ListQueues(c *fiber.Ctx, svc *explorer.Service) error {
	queues, err := svc.ListQueues(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.QueueListResponse{Queues: queues})
}

func GetQueue(c *fiber.Ctx, svc *explorer.Service) error {
	name := c.Params("queue")
	queue, err := svc.RefreshQueue(c.Context(), name)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(queue)
}

func CreateQueue(c *fiber.Ctx, svc *explorer.Service) error {
	var request models.CreateEntityRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
	}
	queue, err := svc.CreateQueue(c.Context(), request.Name, request.Options)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(queue)
}

func DeleteQueue(c *fiber.Ctx, svc *explorer.Service) error {
	if err := svc.DeleteQueue(c.Context(), c.Params("queue")); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

func SendToQueue(c *fiber.Ctx, svc *explorer.Service) error {
	var request models.SendMessageRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
	}
	if err := svc.SendToQueue(c.Context(), c.Params("queue"), request); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.SuccessResponse{
		Message: "Message sent successfully",
	})
}

func PeekQueue(c *fiber.Ctx, svc *explorer.Service, timeout time.Duration) error {
	var request models.PeekRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
	}
	ctx, cancel := peekContext(c, timeout)
	defer cancel()
	msgs, err := svc.PeekQueue(ctx, c.Params("queue"), request.Count, messageKind(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.MessageListResponse{Messages: msgs})
}

func PurgeQueue(c *fiber.Ctx, svc *explorer.Service) error {
	purged, err := svc.PurgeQueue(c.Context(), c.Params("queue"), messageKind(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.PurgeResponse{Purged: purged})
}

func ViewQueue(c *fiber.Ctx, svc *explorer.Service) error {
	state, err := svc.ViewQueue(c.Params("queue"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(state)
}
