package controllers

import (
	"wms-core/repositories"
	"wms-core/services"
	"wms-core/types"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
)

type InventoryController struct {
	ledger  *services.Ledger
	reports *repositories.ReportRepository
}

func NewInventoryController(ledger *services.Ledger, reports *repositories.ReportRepository) *InventoryController {
	return &InventoryController{ledger: ledger, reports: reports}
}

// AdjustLot applies a signed manual stock correction.
func (c *InventoryController) AdjustLot(ctx *fiber.Ctx) error {
	var input struct {
		ItemCode string `json:"item_code" validate:"required"`
		BatchNo  string `json:"batch_no"`
		DotCode  string `json:"dot_code"`
		Location string `json:"location" validate:"required"`
		Delta    int    `json:"delta" validate:"required"`
		Reason   string `json:"reason" validate:"required"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	lot, err := c.ledger.AdjustLot(scopeFrom(ctx), input.ItemCode, input.BatchNo, input.DotCode, input.Location, input.Delta, input.Reason)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Stock adjusted", lot)
}

func (c *InventoryController) MoveLot(ctx *fiber.Ctx) error {
	var input struct {
		LotID      types.SnowflakeID `json:"lot_id" validate:"required"`
		ToWhsCode  string            `json:"to_whs_code"`
		ToLocation string            `json:"to_location" validate:"required"`
		Quantity   int               `json:"quantity" validate:"required,min=1"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	lot, err := c.ledger.MoveLot(scopeFrom(ctx), input.LotID, input.ToWhsCode, input.ToLocation, input.Quantity)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Stock moved", lot)
}

// QueryAvailable lists the active lots for a product oldest DOT first.
// batch_no, dot_code and location narrow the result.
func (c *InventoryController) QueryAvailable(ctx *fiber.Ctx) error {
	itemCode := ctx.Params("itemCode")
	if itemCode == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "item code is required"})
	}

	filter := services.AvailabilityFilter{
		BatchNo:  ctx.Query("batch_no"),
		DotCode:  ctx.Query("dot_code"),
		Location: ctx.Query("location"),
	}
	views := c.ledger.QueryAvailable(scopeFrom(ctx), itemCode, filter)

	total := 0
	for _, v := range views {
		total += v.Quantity
	}
	return respondOK(ctx, "OK", fiber.Map{"total": total, "lots": views})
}

func (c *InventoryController) StockReport(ctx *fiber.Ctx) error {
	rows, err := c.reports.StockReport(scopeFrom(ctx).WhsCode)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "OK", rows)
}

func (c *InventoryController) Movements(ctx *fiber.Ctx) error {
	rows, err := c.reports.Movements(scopeFrom(ctx).WhsCode, ctx.Query("item_code"), ctx.QueryInt("limit"))
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "OK", rows)
}
