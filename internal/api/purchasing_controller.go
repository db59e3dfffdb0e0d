package api

import (
	"errors"
	"net/http"
	"time"

	"restaubot/server/internal/config"
	"restaubot/server/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PurchasingController отдает рекомендации по закупкам и управляет каталогом
type PurchasingController struct {
	purchasingService *services.PurchasingService
	cfg               *config.Config
}

// NewPurchasingController создает новый контроллер
func NewPurchasingController(purchasingService *services.PurchasingService, cfg *config.Config) *PurchasingController {
	return &PurchasingController{
		purchasingService: purchasingService,
		cfg:               cfg,
	}
}

// GetIngredients возвращает рекомендации по закупке для всех ингредиентов
// GET /api/purchasing/ingredients?date_from=...&date_to=...&reorder_cycle_days=...
func (c *PurchasingController) GetIngredients(ctx *gin.Context) {
	restaurantID, ok := restaurantIDFromHeader(ctx)
	if !ok {
		return
	}
	dateFrom, dateTo, ok := parseDateRange(ctx)
	if !ok {
		return
	}
	reorderCycleDays, ok := parseIntQuery(ctx, "reorder_cycle_days", c.cfg.ReorderCycleDays)
	if !ok {
		return
	}
	defaultLeadTimeDays, ok := parseIntQuery(ctx, "default_lead_time_days", c.cfg.DefaultLeadTimeDays)
	if !ok {
		return
	}

	recommendations, err := c.purchasingService.GetRecommendations(
		restaurantID, dateFrom, dateTo, reorderCycleDays, defaultLeadTimeDays)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrInvalidDateRange) || errors.Is(err, services.ErrIngredientWithoutID) {
			status = http.StatusBadRequest
		}
		ctx.JSON(status, gin.H{
			"error":   "Ошибка расчета рекомендаций",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"date_from":   dateFrom.Format(dateLayout),
		"date_to":     dateTo.Format(dateLayout),
		"ingredients": recommendations,
	})
}

// GetSummary возвращает сводку закупок для дашборда
// GET /api/purchasing/summary?date_from=...&date_to=...
func (c *PurchasingController) GetSummary(ctx *gin.Context) {
	restaurantID, ok := restaurantIDFromHeader(ctx)
	if !ok {
		return
	}
	dateFrom, dateTo, ok := parseDateRange(ctx)
	if !ok {
		return
	}
	reorderCycleDays, ok := parseIntQuery(ctx, "reorder_cycle_days", c.cfg.ReorderCycleDays)
	if !ok {
		return
	}
	defaultLeadTimeDays, ok := parseIntQuery(ctx, "default_lead_time_days", c.cfg.DefaultLeadTimeDays)
	if !ok {
		return
	}

	summary, err := c.purchasingService.GetSummary(
		restaurantID, dateFrom, dateTo, reorderCycleDays, defaultLeadTimeDays)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrInvalidDateRange) || errors.Is(err, services.ErrIngredientWithoutID) {
			status = http.StatusBadRequest
		}
		ctx.JSON(status, gin.H{
			"error":   "Ошибка построения сводки закупок",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

// GetCatalog возвращает каталог ингредиентов
// GET /api/purchasing/ingredients/catalog
func (c *PurchasingController) GetCatalog(ctx *gin.Context) {
	restaurantID, ok := restaurantIDFromHeader(ctx)
	if !ok {
		return
	}

	ingredients, err := c.purchasingService.ListCatalog(restaurantID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка загрузки каталога",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"ingredients": ingredients,
	})
}

// CreateIngredientRequest тело запроса создания ингредиента
type CreateIngredientRequest struct {
	Name              string  `json:"name" binding:"required"`
	Unit              string  `json:"unit" binding:"required"`
	DefaultSupplierID *string `json:"default_supplier_id"`
	CurrentStock      float64 `json:"current_stock" binding:"gte=0"`
	SafetyStock       float64 `json:"safety_stock" binding:"gte=0"`
}

// CreateIngredient добавляет ингредиент в каталог
// POST /api/purchasing/ingredients
func (c *PurchasingController) CreateIngredient(ctx *gin.Context) {
	restaurantID, ok := restaurantIDFromHeader(ctx)
	if !ok {
		return
	}

	var req CreateIngredientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	ingredient, err := c.purchasingService.CreateIngredient(restaurantID, services.IngredientCreateInput{
		Name:              req.Name,
		Unit:              req.Unit,
		DefaultSupplierID: req.DefaultSupplierID,
		CurrentStock:      req.CurrentStock,
		SafetyStock:       req.SafetyStock,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка создания ингредиента",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, ingredient)
}

// UpdateStockRequest тело запроса обновления неснижаемого запаса
type UpdateStockRequest struct {
	SafetyStock float64 `json:"safety_stock" binding:"gte=0"`
}

// UpdateStock обновляет неснижаемый запас ингредиента
// PUT /api/purchasing/ingredients/:id/stock
func (c *PurchasingController) UpdateStock(ctx *gin.Context) {
	restaurantID, ok := restaurantIDFromHeader(ctx)
	if !ok {
		return
	}
	ingredientID := ctx.Param("id")

	var req UpdateStockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	stock, err := c.purchasingService.UpdateSafetyStock(restaurantID, ingredientID, req.SafetyStock)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, gin.H{
			"error":   "Ошибка обновления остатков",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, stock)
}

// DeleteIngredient удаляет ингредиент из каталога
// DELETE /api/purchasing/ingredients/:id
func (c *PurchasingController) DeleteIngredient(ctx *gin.Context) {
	restaurantID, ok := restaurantIDFromHeader(ctx)
	if !ok {
		return
	}
	ingredientID := ctx.Param("id")

	if err := c.purchasingService.DeleteIngredient(restaurantID, ingredientID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, gin.H{
			"error":   "Ошибка удаления ингредиента",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Ингредиент удален",
	})
}

// GetMenuItems возвращает активные позиции меню
// GET /api/purchasing/menu-items
func (c *PurchasingController) GetMenuItems(ctx *gin.Context) {
	restaurantID, ok := restaurantIDFromHeader(ctx)
	if !ok {
		return
	}

	items, err := c.purchasingService.ListMenuItems(restaurantID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка загрузки меню",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"menu_items": items,
	})
}

// GetRecipes возвращает технологическую карту блюда
// GET /api/purchasing/menu-items/:id/recipes
func (c *PurchasingController) GetRecipes(ctx *gin.Context) {
	restaurantID, ok := restaurantIDFromHeader(ctx)
	if !ok {
		return
	}
	menuItemID := ctx.Param("id")

	lines, err := c.purchasingService.ListRecipeLines(restaurantID, menuItemID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка загрузки технологической карты",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"recipes": lines,
	})
}

// UpsertRecipeRequest тело запроса сохранения строки технологической карты
type UpsertRecipeRequest struct {
	MenuItemID      string  `json:"menu_item_id" binding:"required"`
	IngredientID    string  `json:"ingredient_id" binding:"required"`
	QuantityPerUnit float64 `json:"quantity_per_unit" binding:"required,gt=0"`
}

// UpsertRecipe создает или обновляет строку технологической карты
// POST /api/purchasing/recipes
func (c *PurchasingController) UpsertRecipe(ctx *gin.Context) {
	restaurantID, ok := restaurantIDFromHeader(ctx)
	if !ok {
		return
	}

	var req UpsertRecipeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	err := c.purchasingService.UpsertRecipeLine(restaurantID, req.MenuItemID, req.IngredientID, req.QuantityPerUnit)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, gin.H{
			"error":   "Ошибка сохранения технологической карты",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Технологическая карта сохранена",
	})
}

// RecordSaleRequest тело запроса ручной фиксации продажи
type RecordSaleRequest struct {
	MenuItemID string     `json:"menu_item_id" binding:"required"`
	Quantity   float64    `json:"quantity" binding:"required,gt=0"`
	OrderedAt  *time.Time `json:"ordered_at"`
}

// RecordSale фиксирует продажу, введенную вручную
// POST /api/purchasing/sales
func (c *PurchasingController) RecordSale(ctx *gin.Context) {
	restaurantID, ok := restaurantIDFromHeader(ctx)
	if !ok {
		return
	}

	var req RecordSaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	order, err := c.purchasingService.RecordManualSale(restaurantID, req.MenuItemID, req.Quantity, req.OrderedAt)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, gin.H{
			"error":   "Ошибка сохранения продажи",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, order)
}

// GetSuppliers возвращает справочник поставщиков
// GET /api/purchasing/suppliers
func (c *PurchasingController) GetSuppliers(ctx *gin.Context) {
	restaurantID, ok := restaurantIDFromHeader(ctx)
	if !ok {
		return
	}

	suppliers, err := c.purchasingService.ListSuppliers(restaurantID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка загрузки поставщиков",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"suppliers": suppliers,
	})
}
