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

type ProductController struct {
	repo    *repositories.ProductRepository
	catalog *services.Catalog
}

func NewProductController(repo *repositories.ProductRepository, catalog *services.Catalog) *ProductController {
	return &ProductController{repo: repo, catalog: catalog}
}

type productInput struct {
	ItemCode        string `json:"item_code" validate:"required"`
	ArticleNo       string `json:"article_no"`
	ItemName        string `json:"item_name" validate:"required"`
	Uom             string `json:"uom"`
	ShelfLifeMonths int    `json:"shelf_life_months" validate:"min=0"`
}

func (c *ProductController) CreateProduct(ctx *fiber.Ctx) error {
	var input productInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	code := strings.ToUpper(strings.TrimSpace(input.ItemCode))
	existing, err := c.repo.GetByCode(code)
	if err != nil {
		return respondError(ctx, err)
	}
	if existing != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "message": "item code already exists"})
	}

	uom := input.Uom
	if uom == "" {
		uom = "PCS"
	}
	product := models.Product{
		ItemCode:        code,
		ArticleNo:       input.ArticleNo,
		ItemName:        input.ItemName,
		Uom:             uom,
		ShelfLifeMonths: input.ShelfLifeMonths,
		CreatedBy:       scopeFrom(ctx).UserID,
	}
	if err := c.repo.Create(&product); err != nil {
		return respondError(ctx, err)
	}

	c.catalog.Register(services.ProductInfo{
		ItemCode:        product.ItemCode,
		Uom:             product.Uom,
		ShelfLifeMonths: product.ShelfLifeMonths,
	})
	return respondCreated(ctx, "Product created", product)
}

func (c *ProductController) UpdateProduct(ctx *fiber.Ctx) error {
	code := strings.ToUpper(ctx.Params("code"))
	product, err := c.repo.GetByCode(code)
	if err != nil {
		return respondError(ctx, err)
	}
	if product == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "product not found"})
	}

	var input struct {
		ArticleNo       string `json:"article_no"`
		ItemName        string `json:"item_name"`
		Uom             string `json:"uom"`
		ShelfLifeMonths *int   `json:"shelf_life_months" validate:"omitempty,min=0"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	if input.ArticleNo != "" {
		product.ArticleNo = input.ArticleNo
	}
	if input.ItemName != "" {
		product.ItemName = input.ItemName
	}
	if input.Uom != "" {
		product.Uom = input.Uom
	}
	if input.ShelfLifeMonths != nil {
		product.ShelfLifeMonths = *input.ShelfLifeMonths
	}
	product.UpdatedBy = scopeFrom(ctx).UserID
	if err := c.repo.Update(product); err != nil {
		return respondError(ctx, err)
	}

	c.catalog.Register(services.ProductInfo{
		ItemCode:        product.ItemCode,
		Uom:             product.Uom,
		ShelfLifeMonths: product.ShelfLifeMonths,
	})
	return respondOK(ctx, "Product updated", product)
}

func (c *ProductController) GetProduct(ctx *fiber.Ctx) error {
	code := strings.ToUpper(ctx.Params("code"))
	product, err := c.repo.GetByCode(code)
	if err != nil {
		return respondError(ctx, err)
	}
	if product == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "product not found"})
	}
	return respondOK(ctx, "OK", product)
}

func (c *ProductController) ListProducts(ctx *fiber.Ctx) error {
	products, err := c.repo.List()
	if err != nil {
		return respondError(ctx, err)
	}
	return respondOK(ctx, "OK", products)
}

type ProductUploadResult struct {
	TotalRows     int      `json:"total_rows"`
	SuccessCount  int      `json:"success_count"`
	SkippedCount  int      `json:"skipped_count"`
	ErrorCount    int      `json:"error_count"`
	SkippedItems  []string `json:"skipped_items"`
	ErrorMessages []string `json:"error_messages"`
}

// CreateProductsFromExcel bulk loads products from an uploaded workbook.
// Expected columns: ITEM_CODE, ITEM_NAME, ARTICLE_NO, UOM, SHELF_LIFE_MONTHS.
func (c *ProductController) CreateProductsFromExcel(ctx *fiber.Ctx) error {
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

	result := ProductUploadResult{
		TotalRows:     len(rows) - 1,
		SkippedItems:  []string{},
		ErrorMessages: []string{},
	}
	userID := scopeFrom(ctx).UserID

	registered := []services.ProductInfo{}
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

		itemCode := strings.ToUpper(cell(0))
		itemName := cell(1)
		if itemCode == "" || itemName == "" {
			result.ErrorCount++
			result.ErrorMessages = append(result.ErrorMessages,
				fmt.Sprintf("Row %d: ITEM_CODE and ITEM_NAME are required", rowNum))
			continue
		}

		uom := strings.ToUpper(cell(3))
		if uom == "" {
			uom = "PCS"
		}

		shelfLife := 0
		if raw := cell(4); raw != "" {
			shelfLife, err = strconv.Atoi(raw)
			if err != nil || shelfLife < 0 {
				result.ErrorCount++
				result.ErrorMessages = append(result.ErrorMessages,
					fmt.Sprintf("Row %d: Invalid shelf life '%s'", rowNum, raw))
				continue
			}
		}

		existing, err := c.repo.GetByCode(itemCode)
		if err != nil {
			result.ErrorCount++
			result.ErrorMessages = append(result.ErrorMessages,
				fmt.Sprintf("Row %d: %s", rowNum, err.Error()))
			continue
		}
		if existing != nil {
			result.SkippedCount++
			result.SkippedItems = append(result.SkippedItems, itemCode)
			continue
		}

		product := models.Product{
			ItemCode:        itemCode,
			ItemName:        itemName,
			ArticleNo:       cell(2),
			Uom:             uom,
			ShelfLifeMonths: shelfLife,
			CreatedBy:       userID,
		}
		if err := c.repo.Create(&product); err != nil {
			result.ErrorCount++
			result.ErrorMessages = append(result.ErrorMessages,
				fmt.Sprintf("Row %d: %s", rowNum, err.Error()))
			continue
		}

		registered = append(registered, services.ProductInfo{
			ItemCode:        itemCode,
			Uom:             uom,
			ShelfLifeMonths: shelfLife,
		})
		result.SuccessCount++
	}

	for _, info := range registered {
		c.catalog.Register(info)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Upload processed",
		"data":    result,
	})
}
