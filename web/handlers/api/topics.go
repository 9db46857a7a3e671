package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/busview/busview/internal/core/explorer"
	"github.com/busview/busview/internal/core/models"
)

func ListTopics(c *fiber.Ctx, svc *explorer.Service) error {
	topics, err := svc.ListTopics(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.TopicListResponse{Topics: topics})
}

func GetTopic(c *fiber.Ctx, svc *explorer.Service) error {
	topic, err := svc.RefreshTopic(c.Context(), c.Params("topic"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(topic)
}

func CreateTopic(c *fiber.Ctx, svc *explorer.Service) error {
	var request models.CreateEntityRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
	}
	topic, err := svc.CreateTopic(c.Context(), request.Name, request.Options)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(topic)
}

func DeleteTopic(c *fiber.Ctx, svc *explorer.Service) error {
	if err := svc.DeleteTopic(c.Context(), c.Params("topic")); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

func SendToTopic(c *fiber.Ctx, svc *explorer.Service) error {
	var request models.SendMessageRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
	}
	if err := svc.SendToTopic(c.Context(), c.Params("topic"), request); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.SuccessResponse{
		Message: "Message sent successfully",
	})
}

func ViewTopic(c *fiber.Ctx, svc *explorer.Service) error {
	state, err := svc.ViewTopic(c.Params("topic"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(state)
}
