package controllers

import (
	"wms-core/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
)

type ReturnController struct {
	returns *services.ReturnService
}

func NewReturnController(returns *services.ReturnService) *ReturnController {
	return &ReturnController{returns: returns}
}

func (c *ReturnController) CreateReturn(ctx *fiber.Ctx) error {
	var input services.CreateReturnRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	r, err := c.returns.CreateReturn(scopeFrom(ctx), input)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondCreated(ctx, "Return created", r)
}

func (c *ReturnController) GetReturn(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}
	r, err := c.returns.GetReturn(scopeFrom(ctx), id)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "OK", r)
}

func (c *ReturnController) ListReturns(ctx *fiber.Ctx) error {
	return respondOK(ctx, "OK", c.returns.ListReturns(scopeFrom(ctx)))
}

func (c *ReturnController) InspectUnit(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	var input struct {
		Code      string `json:"code" validate:"required"`
		Condition string `json:"condition" validate:"required"`
		Location  string `json:"location"`
		Notes     string `json:"notes"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	r, err := c.returns.InspectUnit(scopeFrom(ctx), id, input.Code, input.Condition, input.Location, input.Notes)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Unit inspected", r)
}

func (c *ReturnController) CompleteReturn(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}
	r, err := c.returns.CompleteReturn(scopeFrom(ctx), id)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Return completed", r)
}
