package controllers

import (
	"wms-core/services"
	"wms-core/types"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
)

type StickerController struct {
	stickers *services.StickerRegistry
	ledger   *services.Ledger
}

func NewStickerController(stickers *services.StickerRegistry, ledger *services.Ledger) *StickerController {
	return &StickerController{stickers: stickers, ledger: ledger}
}

// ResolveSticker looks up a scanned code and the lot it is bound to.
func (c *StickerController) ResolveSticker(ctx *fiber.Ctx) error {
	code := ctx.Params("code")
	view, err := c.stickers.Resolve(code)
	if err != nil {
		return respondError(ctx, err)
	}

	lot, err := c.ledger.LotByID(view.LotID)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "OK", fiber.Map{"sticker": view, "lot": lot})
}

// IssueStickers mints unit codes against an existing lot. Used to bring
// manually adjusted stock under unit tracking.
func (c *StickerController) IssueStickers(ctx *fiber.Ctx) error {
	var input struct {
		LotID types.SnowflakeID `json:"lot_id" validate:"required"`
		Count int               `json:"count" validate:"required,min=1"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	lot, err := c.ledger.LotByID(input.LotID)
	if err != nil {
		return respondError(ctx, err)
	}
	if lot.Quantity < input.Count {
		return respondError(ctx, &services.InsufficientStockError{
			ItemCode: lot.ItemCode, Requested: input.Count, Available: lot.Quantity,
		})
	}

	codes, err := c.stickers.Issue(scopeFrom(ctx), input.LotID, input.Count)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondCreated(ctx, "Stickers issued", fiber.Map{"codes": codes})
}
