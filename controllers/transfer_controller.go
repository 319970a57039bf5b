package controllers

import (
	"wms-core/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
)

type TransferController struct {
	transfer *services.TransferService
}

func NewTransferController(transfer *services.TransferService) *TransferController {
	return &TransferController{transfer: transfer}
}

func (c *TransferController) CreateTransfer(ctx *fiber.Ctx) error {
	var input services.CreateTransferRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	t, err := c.transfer.CreateTransfer(scopeFrom(ctx), input)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondCreated(ctx, "Transfer created", t)
}

func (c *TransferController) GetTransfer(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}
	t, err := c.transfer.GetTransfer(scopeFrom(ctx), id)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "OK", t)
}

func (c *TransferController) ListTransfers(ctx *fiber.Ctx) error {
	return respondOK(ctx, "OK", c.transfer.ListTransfers(scopeFrom(ctx)))
}

func (c *TransferController) ExecuteTransfer(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}
	t, err := c.transfer.ExecuteTransfer(scopeFrom(ctx), id)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Transfer executed", t)
}

func (c *TransferController) CancelTransfer(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}
	t, err := c.transfer.CancelTransfer(scopeFrom(ctx), id)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Transfer cancelled", t)
}
