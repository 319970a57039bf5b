package controllers

import (
	"fmt"
	"strconv"
	"strings"

	"wms-core/models"
	"wms-core/repositories"
	"wms-core/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

type LocationController struct {
	repo     *repositories.LocationRepository
	capacity *services.CapacityRegistry
}

func NewLocationController(repo *repositories.LocationRepository, capacity *services.CapacityRegistry) *LocationController {
	return &LocationController{repo: repo, capacity: capacity}
}

type locationInput struct {
	LocationCode string `json:"location_code" validate:"required"`
	WhsCode      string `json:"whs_code" validate:"required"`
	LocationType string `json:"location_type" validate:"omitempty,oneof=bin dock staging"`
	Row          string `json:"row"`
	Bay          string `json:"bay"`
	Level        string `json:"level"`
	Bin          string `json:"bin"`
	Capacity     int    `json:"capacity" validate:"min=0"`
}

func (c *LocationController) CreateLocation(ctx *fiber.Ctx) error {
	var input locationInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	code := strings.ToUpper(strings.TrimSpace(input.LocationCode))
	existing, err := c.repo.GetByCode(code)
	if err != nil {
		return respondError(ctx, err)
	}
	if existing != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "message": "location already exists"})
	}

	locType := input.LocationType
	if locType == "" {
		locType = "bin"
	}
	location := models.Location{
		LocationCode: code,
		WhsCode:      strings.ToUpper(input.WhsCode),
		LocationType: locType,
		Row:          input.Row,
		Bay:          input.Bay,
		Level:        input.Level,
		Bin:          input.Bin,
		Capacity:     input.Capacity,
		IsActive:     true,
		CreatedBy:    scopeFrom(ctx).UserID,
	}
	if err := c.repo.Create(&location); err != nil {
		return respondError(ctx, err)
	}

	c.capacity.Register(services.LocationInfo{
		Code:     location.LocationCode,
		WhsCode:  location.WhsCode,
		Type:     location.LocationType,
		Capacity: location.Capacity,
	})
	return respondCreated(ctx, "Location created", location)
}

func (c *LocationController) UpdateLocation(ctx *fiber.Ctx) error {
	code := strings.ToUpper(ctx.Params("code"))
	location, err := c.repo.GetByCode(code)
	if err != nil {
		return respondError(ctx, err)
	}
	if location == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "location not found"})
	}

	var input struct {
		LocationType string `json:"location_type" validate:"omitempty,oneof=bin dock staging"`
		Capacity     *int   `json:"capacity" validate:"omitempty,min=0"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	if input.LocationType != "" {
		location.LocationType = input.LocationType
	}
	if input.Capacity != nil {
		location.Capacity = *input.Capacity
	}
	location.UpdatedBy = scopeFrom(ctx).UserID
	if err := c.repo.Update(location); err != nil {
		return respondError(ctx, err)
	}

	c.capacity.Register(services.LocationInfo{
		Code:     location.LocationCode,
		WhsCode:  location.WhsCode,
		Type:     location.LocationType,
		Capacity: location.Capacity,
		Blocked:  location.IsBlocked,
	})
	return respondOK(ctx, "Location updated", location)
}

func (c *LocationController) GetLocation(ctx *fiber.Ctx) error {
	code := strings.ToUpper(ctx.Params("code"))
	location, err := c.repo.GetByCode(code)
	if err != nil {
		return respondError(ctx, err)
	}
	if location == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "location not found"})
	}

	occupied, err := c.capacity.Occupied(location.LocationCode)
	if err != nil {
		occupied = 0
	}
	return respondOK(ctx, "OK", fiber.Map{"location": location, "occupied": occupied})
}

func (c *LocationController) ListLocations(ctx *fiber.Ctx) error {
	locations, err := c.repo.List(scopeFrom(ctx).WhsCode)
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "OK", locations)
}

// SetBlocked toggles a location in and out of service. Blocked locations
// reject any new stock but existing stock stays countable.
func (c *LocationController) SetBlocked(ctx *fiber.Ctx) error {
	code := strings.ToUpper(ctx.Params("code"))
	location, err := c.repo.GetByCode(code)
	if err != nil {
		return respondError(ctx, err)
	}
	if location == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "location not found"})
	}

	var input struct {
		Blocked bool `json:"blocked"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	location.IsBlocked = input.Blocked
	location.UpdatedBy = scopeFrom(ctx).UserID
	if err := c.repo.Update(location); err != nil {
		return respondError(ctx, err)
	}
	if err := c.capacity.SetBlocked(location.LocationCode, input.Blocked); err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "Location updated", location)
}

type LocationUploadResult struct {
	TotalRows     int      `json:"total_rows"`
	SuccessCount  int      `json:"success_count"`
	SkippedCount  int      `json:"skipped_count"`
	ErrorCount    int      `json:"error_count"`
	SkippedItems  []string `json:"skipped_items"`
	ErrorMessages []string `json:"error_messages"`
}

// CreateLocationsFromExcel bulk loads locations from an uploaded workbook.
// Expected columns: LOCATION_CODE, WHS_CODE, TYPE, ROW, BAY, LEVEL, BIN, CAPACITY.
func (c *LocationController) CreateLocationsFromExcel(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "File is required",
		})
	}

	if !strings.HasSuffix(strings.ToLower(file.Filename), ".xlsx") &&
		!strings.HasSuffix(strings.ToLower(file.Filename), ".xls") {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Only Excel files (.xlsx, .xls) are allowed",
		})
	}

	fileContent, err := file.Open()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to open file",
		})
	}
	defer fileContent.Close()

	f, err := excelize.OpenReader(fileContent)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to read Excel file",
		})
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "No sheets found in Excel file",
		})
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to read rows",
		})
	}

	if len(rows) < 2 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Excel file must contain header and at least one data row",
		})
	}

	result := LocationUploadResult{
		TotalRows:     len(rows) - 1,
		SkippedItems:  []string{},
		ErrorMessages: []string{},
	}
	userID := scopeFrom(ctx).UserID

	registered := []services.LocationInfo{}
	for i, row := range rows[1:] {
		rowNum := i + 2

		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < 2 {
			result.ErrorCount++
			result.ErrorMessages = append(result.ErrorMessages,
				fmt.Sprintf("Row %d: Insufficient columns (expected at least 2)", rowNum))
			continue
		}

		cell := func(idx int) string {
			if idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		code := strings.ToUpper(cell(0))
		whsCode := strings.ToUpper(cell(1))
		if code == "" || whsCode == "" {
			result.ErrorCount++
			result.ErrorMessages = append(result.ErrorMessages,
				fmt.Sprintf("Row %d: LOCATION_CODE and WHS_CODE are required", rowNum))
			continue
		}

		locType := strings.ToLower(cell(2))
		if locType == "" {
			locType = "bin"
		}
		if locType != "bin" && locType != "dock" && locType != "staging" {
			result.ErrorCount++
			result.ErrorMessages = append(result.ErrorMessages,
				fmt.Sprintf("Row %d: Invalid location type '%s'", rowNum, locType))
			continue
		}

		capacity := 0
		if raw := cell(7); raw != "" {
			capacity, err = strconv.Atoi(raw)
			if err != nil || capacity < 0 {
				result.ErrorCount++
				result.ErrorMessages = append(result.ErrorMessages,
					fmt.Sprintf("Row %d: Invalid capacity '%s'", rowNum, raw))
				continue
			}
		}

		existing, err := c.repo.GetByCode(code)
		if err != nil {
			result.ErrorCount++
			result.ErrorMessages = append(result.ErrorMessages,
				fmt.Sprintf("Row %d: %s", rowNum, err.Error()))
			continue
		}
		if existing != nil {
			result.SkippedCount++
			result.SkippedItems = append(result.SkippedItems, code)
			continue
		}

		location := models.Location{
			LocationCode: code,
			WhsCode:      whsCode,
			LocationType: locType,
			Row:          cell(3),
			Bay:          cell(4),
			Level:        cell(5),
			Bin:          cell(6),
			Capacity:     capacity,
			IsActive:     true,
			CreatedBy:    userID,
		}
		if err := c.repo.Create(&location); err != nil {
			result.ErrorCount++
			result.ErrorMessages = append(result.ErrorMessages,
				fmt.Sprintf("Row %d: %s", rowNum, err.Error()))
			continue
		}

		registered = append(registered, services.LocationInfo{
			Code:     code,
			WhsCode:  whsCode,
			Type:     locType,
			Capacity: capacity,
		})
		result.SuccessCount++
	}

	for _, info := range registered {
		c.capacity.Register(info)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Upload processed",
		"data":    result,
	})
}
