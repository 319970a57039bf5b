package controllers

import (
	"wms-core/pkg/mailer"
	"wms-core/services"
	"wms-core/types"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
)

type OutboundController struct {
	outbound *services.OutboundService
	mail     *mailer.Mailer
}

func NewOutboundController(outbound *services.OutboundService, mail *mailer.Mailer) *OutboundController {
	return &OutboundController{outbound: outbound, mail: mail}
}

func (c *OutboundController) CreateOrder(ctx *fiber.Ctx) error {
	var input services.CreateOrderRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	o, err := c.outbound.CreateOrder(scopeFrom(ctx), input)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondCreated(ctx, "Order created", o)
}

func (c *OutboundController) GetOrder(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}
	o, err := c.outbound.GetOrder(scopeFrom(ctx), id)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "OK", o)
}

func (c *OutboundController) ListOrders(ctx *fiber.Ctx) error {
	return respondOK(ctx, "OK", c.outbound.ListOrders(scopeFrom(ctx)))
}

func (c *OutboundController) PickItem(ctx *fiber.Ctx) error {
	orderID, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}
	itemID, err := parseID(ctx, "itemId")
	if err != nil {
		return respondError(ctx, err)
	}

	var input struct {
		LotID    types.SnowflakeID `json:"lot_id" validate:"required"`
		Quantity int               `json:"quantity" validate:"required,min=1"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	o, err := c.outbound.PickItem(scopeFrom(ctx), orderID, itemID, input.LotID, input.Quantity)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Item picked", o)
}

func (c *OutboundController) StageOrder(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	var input struct {
		StagingLocation string `json:"staging_location" validate:"required"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	o, err := c.outbound.StageOrder(scopeFrom(ctx), id, input.StagingLocation)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Order staged", o)
}

func (c *OutboundController) AssignDriver(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	var input struct {
		DriverName string `json:"driver_name" validate:"required"`
		DriverType string `json:"driver_type" validate:"omitempty,oneof=internal third_party"`
		VehicleNo  string `json:"vehicle_no"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	o, err := c.outbound.AssignDriver(scopeFrom(ctx), id, input.DriverName, input.DriverType, input.VehicleNo)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Driver assigned", o)
}

func (c *OutboundController) ScanPickupUnit(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	var input struct {
		Code string `json:"code" validate:"required"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	st, err := c.outbound.ScanPickupUnit(scopeFrom(ctx), id, input.Code)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Unit scanned", st)
}

func (c *OutboundController) ShipOrder(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}
	o, err := c.outbound.ShipOrder(scopeFrom(ctx), id)
	if err != nil {
		return respondError(ctx, err)
	}
	go c.mail.OrderShipped(o.OrderNo, o.CustomerCode, o.DriverName)
	return respondOK(ctx, "Order shipped", o)
}

func (c *OutboundController) StartDelivery(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}
	o, err := c.outbound.StartDelivery(scopeFrom(ctx), id)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Delivery started", o)
}

func (c *OutboundController) ConfirmDelivery(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	var input struct {
		ReceiverName  string `json:"receiver_name" validate:"required"`
		ReceiverPhone string `json:"receiver_phone"`
		PhotoURL      string `json:"photo_url"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	o, err := c.outbound.ConfirmDelivery(scopeFrom(ctx), id, input.ReceiverName, input.ReceiverPhone, input.PhotoURL)
	if err != nil {
		return respondError(ctx, err)
	}
	go c.mail.OrderDelivered(o.OrderNo, o.CustomerCode, o.ReceiverName)
	return respondOK(ctx, "Delivery confirmed", o)
}

func (c *OutboundController) RecordDeliveryFailure(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	var input struct {
		Reason string `json:"reason" validate:"required"`
		Notes  string `json:"notes"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	o, err := c.outbound.RecordDeliveryFailure(scopeFrom(ctx), id, input.Reason, input.Notes)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Delivery failure recorded", o)
}

func (c *OutboundController) CancelOrder(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}
	o, err := c.outbound.CancelOrder(scopeFrom(ctx), id)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Order cancelled", o)
}
