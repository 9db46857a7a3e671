package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/busview/busview/internal/core/explorer"
	"github.com/busview/busview/internal/core/models"
)

func ListRules(c *fiber.Ctx, svc *explorer.Service) error {
	rules, err := svc.ListRules(c.Context(), c.Params("topic"), c.Params("subscription"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.RuleListResponse{Rules: rules})
}

func GetRule(c *fiber.Ctx, svc *explorer.Service) error {
	rule, err := svc.RefreshRule(c.Context(), c.Params("topic"), c.Params("subscription"), c.Params("rule"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(rule)
}

func CreateRule(c *fiber.Ctx, svc *explorer.Service) error {
	var request models.CreateEntityRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
	}
	rule, err := svc.CreateRule(c.Context(), c.Params("topic"), c.Params("subscription"),
		request.Name, request.Options)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rule)
}

func DeleteRule(c *fiber.Ctx, svc *explorer.Service) error {
	err := svc.DeleteRule(c.Context(), c.Params("topic"), c.Params("subscription"), c.Params("rule"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

func ViewRule(c *fiber.Ctx, svc *explorer.Service) error {
	state, err := svc.ViewRule(c.Params("topic"), c.Params("subscription"), c.Params("rule"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(state)
}
