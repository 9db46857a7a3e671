package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/busview/busview/internal/core/explorer"
	"github.com/busview/busview/internal/core/models"
)

func ListSubscriptions(c *fiber.Ctx, svc *explorer.Service) error {
	subs, err := svc.ListSubscriptions(c.Context(), c.Params("topic"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.SubscriptionListResponse{Subscriptions: subs})
}

func GetSubscription(c *fiber.Ctx, svc *explorer.Service) error {
	sub, err := svc.RefreshSubscription(c.Context(), c.Params("topic"), c.Params("subscription"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(sub)
}

func CreateSubscription(c *fiber.Ctx, svc *explorer.Service) error {
	var request models.CreateEntityRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
	}
	sub, err := svc.CreateSubscription(c.Context(), c.Params("topic"), request.Name, request.Options)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

func DeleteSubscription(c *fiber.Ctx, svc *explorer.Service) error {
	if err := svc.DeleteSubscription(c.Context(), c.Params("topic"), c.Params("subscription")); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

func PeekSubscription(c *fiber.Ctx, svc *explorer.Service, timeout time.Duration) error {
	var request models.PeekRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
	}
	ctx, cancel := peekContext(c, timeout)
	defer cancel()
	msgs, err := svc.PeekSubscription(ctx, c.Params("topic"), c.Params("subscription"),
		request.Count, messageKind(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.MessageListResponse{Messages: msgs})
}

func PurgeSubscription(c *fiber.Ctx, svc *explorer.Service) error {
	purged, err := svc.PurgeSubscription(c.Context(), c.Params("topic"), c.Params("subscription"), messageKind(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.PurgeResponse{Purged: purged})
}

func ViewSubscription(c *fiber.Ctx, svc *explorer.Service) error {
	state, err := svc.ViewSubscription(c.Params("topic"), c.Params("subscription"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(state)
}
