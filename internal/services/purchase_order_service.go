package services

import (
	"fmt"
	"strings"
	"time"

	"restaubot/server/internal/models"

	"gorm.io/gorm"
)

// PurchaseOrderService управляет заказами поставщикам
type PurchaseOrderService struct {
	db     *gorm.DB
	events *PurchasingEventProducer
}

// NewPurchaseOrderService создает новый экземпляр PurchaseOrderService
func NewPurchaseOrderService(db *gorm.DB, events *PurchasingEventProducer) *PurchaseOrderService {
	return &PurchaseOrderService{db: db, events: events}
}

// PurchaseOrderLineInput одна строка создаваемого заказа
type PurchaseOrderLineInput struct {
	IngredientID    string
	QuantityOrdered float64
}

// PurchaseOrderCreateInput параметры создания заказа поставщику
type PurchaseOrderCreateInput struct {
	SupplierID           string
	ExpectedDeliveryDate *time.Time
	ReorderCycleDays     int
	Notes                *string
	Lines                []PurchaseOrderLineInput
}

// CreatePurchaseOrder создает черновик заказа поставщику
// Названия ингредиентов снимаются снапшотом в строки заказа,
// а дата и объем последнего заказа проставляются на сами ингредиенты
func (s *PurchaseOrderService) CreatePurchaseOrder(restaurantID string, input PurchaseOrderCreateInput) (*models.PurchaseOrder, error) {
	var supplier models.Supplier
	err := s.db.Where("restaurant_id = ? AND id = ?", restaurantID, input.SupplierID).
		First(&supplier).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("поставщик не найден: %w", err)
	} else if err != nil {
		return nil, fmt.Errorf("ошибка поиска поставщика: %w", err)
	}

	ingredientIDs := make([]string, 0, len(input.Lines))
	for _, line := range input.Lines {
		ingredientIDs = append(ingredientIDs, line.IngredientID)
	}

	var ingredients []models.Ingredient
	if err := s.db.Where("restaurant_id = ? AND id IN ?", restaurantID, ingredientIDs).
		Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки ингредиентов заказа: %w", err)
	}
	byID := make(map[string]models.Ingredient, len(ingredients))
	for _, ingredient := range ingredients {
		byID[ingredient.ID] = ingredient
	}
	for _, line := range input.Lines {
		if _, ok := byID[line.IngredientID]; !ok {
			return nil, fmt.Errorf("ингредиент %s не найден: %w", line.IngredientID, gorm.ErrRecordNotFound)
		}
	}

	order := models.PurchaseOrder{
		RestaurantID:         restaurantID,
		SupplierID:           input.SupplierID,
		Status:               models.PurchaseOrderStatusDraft,
		ExpectedDeliveryDate: input.ExpectedDeliveryDate,
		ReorderCycleDays:     input.ReorderCycleDays,
		Notes:                input.Notes,
	}
	for _, line := range input.Lines {
		ingredient := byID[line.IngredientID]
		order.Lines = append(order.Lines, models.PurchaseOrderLine{
			IngredientID:    line.IngredientID,
			IngredientName:  ingredient.Name,
			QuantityOrdered: line.QuantityOrdered,
			Unit:            ingredient.Unit,
		})
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("ошибка создания заказа поставщику: %w", err)
		}
		for _, line := range input.Lines {
			quantity := line.QuantityOrdered
			if err := tx.Model(&models.Ingredient{}).
				Where("restaurant_id = ? AND id = ?", restaurantID, line.IngredientID).
				Updates(map[string]interface{}{
					"last_order_date":     today,
					"last_order_quantity": quantity,
				}).Error; err != nil {
				return fmt.Errorf("ошибка обновления последнего заказа ингредиента: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(EventPurchaseOrderCreated, restaurantID, map[string]interface{}{
		"purchase_order_id": order.ID,
		"supplier_id":       order.SupplierID,
		"supplier_name":     supplier.Name,
		"line_count":        len(order.Lines),
	})

	order.Supplier = &supplier
	return &order, nil
}

// GetPurchaseOrder возвращает заказ поставщику со строками
func (s *PurchaseOrderService) GetPurchaseOrder(restaurantID, orderID string) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := s.db.Where("restaurant_id = ? AND id = ?", restaurantID, orderID).
		Preload("Supplier").
		Preload("Lines").
		First(&order).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("заказ поставщику не найден: %w", err)
	} else if err != nil {
		return nil, fmt.Errorf("ошибка загрузки заказа поставщику: %w", err)
	}
	return &order, nil
}

// ListPurchaseOrders возвращает последние заказы поставщикам
func (s *PurchaseOrderService) ListPurchaseOrders(restaurantID string, limit int) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	if err := s.db.Where("restaurant_id = ?", restaurantID).
		Preload("Supplier").
		Preload("Lines").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки заказов поставщикам: %w", err)
	}
	return orders, nil
}

// ComposeEmailBody собирает текст письма поставщику по заказу
func ComposeEmailBody(order *models.PurchaseOrder) string {
	supplierName := "notre fournisseur"
	if order.Supplier != nil && order.Supplier.Name != "" {
		supplierName = order.Supplier.Name
	}

	expectedText := ""
	if order.ExpectedDeliveryDate != nil {
		expectedText = fmt.Sprintf(" avec livraison souhaitée le %s", order.ExpectedDeliveryDate.Format("02/01/2006"))
	}

	var lines []string
	for _, line := range order.Lines {
		lines = append(lines, fmt.Sprintf("- %s : %g %s", line.IngredientName, line.QuantityOrdered, line.Unit))
	}

	return fmt.Sprintf(
		"Bonjour %s,\n\nMerci de confirmer la commande %s%s.\nVoici le détail :\n%s\n\nBien cordialement,\nL'équipe RestauBot",
		supplierName,
		order.ID,
		expectedText,
		strings.Join(lines, "\n"),
	)
}
