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

// PurchaseOrderController управляет заказами поставщикам
type PurchaseOrderController struct {
	orderService *services.PurchaseOrderService
	cfg          *config.Config
}

// NewPurchaseOrderController создает новый контроллер
func NewPurchaseOrderController(orderService *services.PurchaseOrderService, cfg *config.Config) *PurchaseOrderController {
	return &PurchaseOrderController{
		orderService: orderService,
		cfg:          cfg,
	}
}

// PurchaseOrderLineRequest строка создаваемого заказа
type PurchaseOrderLineRequest struct {
	IngredientID    string  `json:"ingredient_id" binding:"required"`
	QuantityOrdered float64 `json:"quantity_ordered" binding:"required,gt=0"`
}

// CreatePurchaseOrderRequest тело запроса создания заказа поставщику
type CreatePurchaseOrderRequest struct {
	SupplierID           string                     `json:"supplier_id" binding:"required"`
	ExpectedDeliveryDate *string                    `json:"expected_delivery_date"`
	ReorderCycleDays     *int                       `json:"reorder_cycle_days"`
	Notes                *string                    `json:"notes"`
	Lines                []PurchaseOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// Create создает черновик заказа поставщику
// POST /api/purchasing/purchase-orders
func (c *PurchaseOrderController) Create(ctx *gin.Context) {
	restaurantID, ok := restaurantIDFromHeader(ctx)
	if !ok {
		return
	}

	var req CreatePurchaseOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	input := services.PurchaseOrderCreateInput{
		SupplierID:       req.SupplierID,
		ReorderCycleDays: c.cfg.ReorderCycleDays,
		Notes:            req.Notes,
	}
	if req.ReorderCycleDays != nil {
		if *req.ReorderCycleDays < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error": "reorder_cycle_days должен быть неотрицательным",
			})
			return
		}
		input.ReorderCycleDays = *req.ReorderCycleDays
	}
	if req.ExpectedDeliveryDate != nil && *req.ExpectedDeliveryDate != "" {
		parsed, err := time.Parse(dateLayout, *req.ExpectedDeliveryDate)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Неверный формат expected_delivery_date, ожидается YYYY-MM-DD",
				"details": err.Error(),
			})
			return
		}
		input.ExpectedDeliveryDate = &parsed
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, services.PurchaseOrderLineInput{
			IngredientID:    line.IngredientID,
			QuantityOrdered: line.QuantityOrdered,
		})
	}

	order, err := c.orderService.CreatePurchaseOrder(restaurantID, input)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, gin.H{
			"error":   "Ошибка создания заказа поставщику",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"order":      order,
		"email_body": services.ComposeEmailBody(order),
	})
}

// List возвращает последние заказы поставщикам
// GET /api/purchasing/orders?limit=...
func (c *PurchaseOrderController) List(ctx *gin.Context) {
	restaurantID, ok := restaurantIDFromHeader(ctx)
	if !ok {
		return
	}
	limit, ok := parseIntQuery(ctx, "limit", 20)
	if !ok {
		return
	}
	if limit < 1 || limit > 50 {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Параметр limit должен быть от 1 до 50",
		})
		return
	}

	orders, err := c.orderService.ListPurchaseOrders(restaurantID, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка загрузки заказов поставщикам",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"orders": orders,
	})
}

// Get возвращает заказ поставщику со строками и текстом письма
// GET /api/purchasing/purchase-orders/:id
func (c *PurchaseOrderController) Get(ctx *gin.Context) {
	restaurantID, ok := restaurantIDFromHeader(ctx)
	if !ok {
		return
	}
	orderID := ctx.Param("id")

	order, err := c.orderService.GetPurchaseOrder(restaurantID, orderID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, gin.H{
			"error":   "Ошибка загрузки заказа поставщику",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"order":      order,
		"email_body": services.ComposeEmailBody(order),
	})
}
