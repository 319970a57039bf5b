package controllers

import (
	"wms-core/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type InboundController struct {
	inbound *services.InboundService
}

func NewInboundController(inbound *services.InboundService) *InboundController {
	return &InboundController{inbound: inbound}
}

func (c *InboundController) CreateReceipt(ctx *fiber.Ctx) error {
	var input services.CreateReceiptRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	r, err := c.inbound.CreateReceipt(scopeFrom(ctx), input)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondCreated(ctx, "Receipt created", r)
}

func (c *InboundController) GetReceipt(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}
	r, err := c.inbound.GetReceipt(scopeFrom(ctx), id)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "OK", r)
}

func (c *InboundController) ListReceipts(ctx *fiber.Ctx) error {
	return respondOK(ctx, "OK", c.inbound.ListReceipts(scopeFrom(ctx)))
}

func (c *InboundController) ReceiveItem(ctx *fiber.Ctx) error {
	receiptID, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}
	itemID, err := parseID(ctx, "itemId")
	if err != nil {
		return respondError(ctx, err)
	}

	var input struct {
		Quantity int             `json:"quantity" validate:"required,min=1"`
		BatchNo  string          `json:"batch_no" validate:"required"`
		DotCode  string          `json:"dot_code" validate:"required,len=4"`
		UnitCost decimal.Decimal `json:"unit_cost"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	r, err := c.inbound.ReceiveItem(scopeFrom(ctx), receiptID, itemID, input.Quantity, input.BatchNo, input.DotCode, input.UnitCost)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Item received", r)
}

func (c *InboundController) PutawayItem(ctx *fiber.Ctx) error {
	receiptID, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}
	lineID, err := parseID(ctx, "lineId")
	if err != nil {
		return respondError(ctx, err)
	}

	var input struct {
		Quantity int    `json:"quantity"` // 0 = whole line remainder
		Location string `json:"location" validate:"required"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	r, err := c.inbound.PutawayItem(scopeFrom(ctx), receiptID, lineID, input.Quantity, input.Location)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Item put away", r)
}

func (c *InboundController) CancelReceipt(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}
	r, err := c.inbound.CancelReceipt(scopeFrom(ctx), id)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Receipt cancelled", r)
}
