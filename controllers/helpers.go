package controllers

import (
	"strconv"

	"wms-core/services"
	"wms-core/types"

	"github.com/gofiber/fiber/v2"
)

// scopeFrom pulls the warehouse scope and actor set by the auth middleware.
func scopeFrom(ctx *fiber.Ctx) services.Scope {
	scope := services.Scope{}
	if v, ok := ctx.Locals("userID").(int); ok {
		scope.UserID = v
	}
	if v, ok := ctx.Locals("whsCode").(string); ok {
		scope.WhsCode = v
	}
	return scope
}

func parseID(ctx *fiber.Ctx, param string) (types.SnowflakeID, error) {
	raw := ctx.Params(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id "+raw)
	}
	return types.SnowflakeID(id), nil
}

// respondError maps the engine's error taxonomy onto HTTP statuses.
func respondError(ctx *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch err.(type) {
	case *services.ValidationError:
		status = fiber.StatusBadRequest
	case *services.NotFoundError:
		status = fiber.StatusNotFound
	case *services.InsufficientStockError,
		*services.CapacityExceededError,
		*services.InvalidStateTransitionError,
		*services.ConcurrencyConflictError:
		status = fiber.StatusConflict
	}
	if fe, ok := err.(*fiber.Error); ok {
		status = fe.Code
	}
	return ctx.Status(status).JSON(fiber.Map{"success": false, "message": err.Error()})
}

func respondOK(ctx *fiber.Ctx, message string, data interface{}) error {
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func respondCreated(ctx *fiber.Ctx, message string, data interface{}) error {
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}
