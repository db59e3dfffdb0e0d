package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"restaubot/server/internal/models"
	"restaubot/server/internal/utils"

	"gorm.io/gorm"
)

// PurchasingService загружает данные закупочного контура и считает рекомендации
// Сами расчеты чистые, сервис отвечает только за выборку данных
type PurchasingService struct {
	db               *gorm.DB
	redis            *utils.RedisClient
	events           *PurchasingEventProducer
	supplierCacheTTL time.Duration
}

// NewPurchasingService создает новый экземпляр PurchasingService
// redisClient и events могут быть nil, тогда кэш и события отключены
func NewPurchasingService(db *gorm.DB, redisClient *utils.RedisClient, events *PurchasingEventProducer, supplierCacheTTL time.Duration) *PurchasingService {
	return &PurchasingService{
		db:               db,
		redis:            redisClient,
		events:           events,
		supplierCacheTTL: supplierCacheTTL,
	}
}

// supplierDirectory объединяет привязки ингредиентов и справочник поставщиков
type supplierDirectory struct {
	Overrides map[string]SupplierOverride `json:"overrides"`
	Suppliers map[string]SupplierDefault  `json:"suppliers"`
}

// purchasingDataset содержит четыре независимых набора данных для расчета
type purchasingDataset struct {
	ingredients []CatalogIngredient
	stock       map[string]StockLevel
	directory   supplierDirectory
	aggregate   ConsumptionAggregate
}

// GetRecommendations возвращает рекомендации по закупке для всех ингредиентов каталога
func (s *PurchasingService) GetRecommendations(
	restaurantID string,
	dateFrom time.Time,
	dateTo time.Time,
	reorderCycleDays int,
	defaultLeadTimeDays int,
) ([]IngredientRecommendation, error) {
	dataset, err := s.loadDataset(restaurantID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	return ComputePurchaseRecommendations(
		dataset.ingredients,
		dataset.aggregate.Consumption,
		dataset.stock,
		dataset.directory.Overrides,
		dataset.directory.Suppliers,
		dateFrom,
		dateTo,
		reorderCycleDays,
		defaultLeadTimeDays,
	)
}

// GetSummary возвращает сводку закупок для дашборда
func (s *PurchasingService) GetSummary(
	restaurantID string,
	dateFrom time.Time,
	dateTo time.Time,
	reorderCycleDays int,
	defaultLeadTimeDays int,
) (*PurchasingSummary, error) {
	dataset, err := s.loadDataset(restaurantID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	recommendations, err := ComputePurchaseRecommendations(
		dataset.ingredients,
		dataset.aggregate.Consumption,
		dataset.stock,
		dataset.directory.Overrides,
		dataset.directory.Suppliers,
		dateFrom,
		dateTo,
		reorderCycleDays,
		defaultLeadTimeDays,
	)
	if err != nil {
		return nil, err
	}

	summary := BuildPurchasingSummary(recommendations, &dataset.aggregate, dateFrom, dateTo)
	return &summary, nil
}

// loadDataset загружает четыре независимых набора данных параллельно
func (s *PurchasingService) loadDataset(restaurantID string, dateFrom, dateTo time.Time) (*purchasingDataset, error) {
	var (
		wg      sync.WaitGroup
		dataset purchasingDataset
		errs    [4]error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		dataset.ingredients, errs[0] = s.fetchIngredientCatalog(restaurantID)
	}()
	go func() {
		defer wg.Done()
		dataset.stock, errs[1] = s.fetchStockLevels(restaurantID)
	}()
	go func() {
		defer wg.Done()
		dataset.directory, errs[2] = s.fetchSupplierDirectory(restaurantID)
	}()
	go func() {
		defer wg.Done()
		dataset.aggregate, errs[3] = s.fetchConsumption(restaurantID, dateFrom, dateTo)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return &dataset, nil
}

// fetchIngredientCatalog загружает каталог ингредиентов ресторана
func (s *PurchasingService) fetchIngredientCatalog(restaurantID string) ([]CatalogIngredient, error) {
	var rows []models.Ingredient
	if err := s.db.Where("restaurant_id = ?", restaurantID).
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки каталога ингредиентов: %w", err)
	}

	catalog := make([]CatalogIngredient, 0, len(rows))
	for _, row := range rows {
		catalog = append(catalog, CatalogIngredient{
			ID:                row.ID,
			Name:              row.Name,
			Unit:              row.Unit,
			DefaultSupplierID: row.DefaultSupplierID,
			LastOrderDate:     row.LastOrderDate,
			LastOrderQuantity: row.LastOrderQuantity,
		})
	}
	return catalog, nil
}

// fetchStockLevels загружает остатки, ключ - канонический id ингредиента
func (s *PurchasingService) fetchStockLevels(restaurantID string) (map[string]StockLevel, error) {
	var rows []models.IngredientStock
	if err := s.db.Where("restaurant_id = ?", restaurantID).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки остатков: %w", err)
	}

	stock := make(map[string]StockLevel, len(rows))
	for _, row := range rows {
		key := canonicalKey(row.IngredientID)
		if key == "" {
			continue
		}
		stock[key] = StockLevel{
			CurrentStock: row.CurrentStock,
			SafetyStock:  row.SafetyStock,
		}
	}
	return stock, nil
}

// fetchSupplierDirectory загружает справочник поставщиков и привязки ингредиентов
// Справочник меняется редко, поэтому кэшируется в Redis с коротким TTL
func (s *PurchasingService) fetchSupplierDirectory(restaurantID string) (supplierDirectory, error) {
	cacheKey := fmt.Sprintf("purchasing:suppliers:%s", restaurantID)
	if s.redis != nil {
		var cached supplierDirectory
		if err := s.redis.GetJSON(cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	var supplierRows []models.Supplier
	if err := s.db.Where("restaurant_id = ?", restaurantID).
		Order("name").
		Find(&supplierRows).Error; err != nil {
		return supplierDirectory{}, fmt.Errorf("ошибка загрузки поставщиков: %w", err)
	}

	var overrideRows []models.IngredientSupplier
	if err := s.db.Where("restaurant_id = ?", restaurantID).
		Find(&overrideRows).Error; err != nil {
		return supplierDirectory{}, fmt.Errorf("ошибка загрузки привязок поставщиков: %w", err)
	}

	suppliers := make(map[string]SupplierDefault, len(supplierRows))
	for _, row := range supplierRows {
		key := canonicalKey(row.ID)
		if key == "" {
			continue
		}
		suppliers[key] = SupplierDefault{
			ID:                  row.ID,
			Name:                row.Name,
			ContactEmail:        row.ContactEmail,
			DefaultLeadTimeDays: row.DefaultLeadTimeDays,
		}
	}

	overrides := make(map[string]SupplierOverride, len(overrideRows))
	for _, row := range overrideRows {
		key := canonicalKey(row.IngredientID)
		if key == "" || row.SupplierID == nil {
			continue
		}
		override := SupplierOverride{
			SupplierID:   row.SupplierID,
			LeadTimeDays: row.LeadTimeDays,
		}
		// Кэшируем имя поставщика прямо в привязке, чтобы не искать его повторно
		if entry, ok := suppliers[canonicalKey(*row.SupplierID)]; ok {
			name := entry.Name
			override.SupplierName = &name
		}
		overrides[key] = override
	}

	directory := supplierDirectory{Overrides: overrides, Suppliers: suppliers}
	if s.redis != nil {
		if err := s.redis.Set(cacheKey, directory, s.supplierCacheTTL); err != nil {
			log.Printf("⚠️ Не удалось закэшировать справочник поставщиков: %v", err)
		}
	}
	return directory, nil
}

// fetchConsumption загружает продажи и технологические карты за период
// и сворачивает их в расход по ингредиентам
func (s *PurchasingService) fetchConsumption(restaurantID string, dateFrom, dateTo time.Time) (ConsumptionAggregate, error) {
	windowStart, windowEnd := consumptionWindow(dateFrom, dateTo)

	var orderRows []models.Order
	if err := s.db.Where("restaurant_id = ? AND ordered_at >= ? AND ordered_at <= ?",
		restaurantID, windowStart, windowEnd).
		Find(&orderRows).Error; err != nil {
		return ConsumptionAggregate{}, fmt.Errorf("ошибка загрузки продаж: %w", err)
	}

	if len(orderRows) == 0 {
		return AggregateConsumption(nil, nil, nil, dateFrom, dateTo), nil
	}

	menuItemIDs := make([]string, 0, len(orderRows))
	seen := make(map[string]bool, len(orderRows))
	for _, row := range orderRows {
		if row.MenuItemID != "" && !seen[row.MenuItemID] {
			seen[row.MenuItemID] = true
			menuItemIDs = append(menuItemIDs, row.MenuItemID)
		}
	}

	var recipeRows []models.RecipeLine
	if len(menuItemIDs) > 0 {
		if err := s.db.Where("restaurant_id = ? AND menu_item_id IN ?", restaurantID, menuItemIDs).
			Find(&recipeRows).Error; err != nil {
			return ConsumptionAggregate{}, fmt.Errorf("ошибка загрузки технологических карт: %w", err)
		}
	}

	var menuItems []models.MenuItem
	if len(menuItemIDs) > 0 {
		if err := s.db.Where("restaurant_id = ? AND id IN ?", restaurantID, menuItemIDs).
			Find(&menuItems).Error; err != nil {
			return ConsumptionAggregate{}, fmt.Errorf("ошибка загрузки позиций меню: %w", err)
		}
	}

	menuItemNames := make(map[string]string, len(menuItems))
	for i := range menuItems {
		menuItemNames[menuItems[i].ID] = menuItems[i].ResolvedName()
	}

	orders := make([]OrderRow, 0, len(orderRows))
	for _, row := range orderRows {
		orders = append(orders, OrderRow{
			MenuItemID: row.MenuItemID,
			Quantity:   row.Quantity,
			OrderedAt:  row.OrderedAt,
		})
	}

	recipes := make([]RecipeRow, 0, len(recipeRows))
	for _, row := range recipeRows {
		recipes = append(recipes, RecipeRow{
			MenuItemID:      row.MenuItemID,
			IngredientID:    row.IngredientID,
			QuantityPerUnit: row.QuantityPerUnit,
		})
	}

	return AggregateConsumption(orders, recipes, menuItemNames, dateFrom, dateTo), nil
}

// ListCatalog возвращает каталог ингредиентов ресторана
func (s *PurchasingService) ListCatalog(restaurantID string) ([]models.Ingredient, error) {
	var rows []models.Ingredient
	if err := s.db.Where("restaurant_id = ?", restaurantID).
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки каталога: %w", err)
	}
	return rows, nil
}

// IngredientCreateInput параметры создания ингредиента вместе с остатками
type IngredientCreateInput struct {
	Name              string
	Unit              string
	DefaultSupplierID *string
	CurrentStock      float64
	SafetyStock       float64
}

// CreateIngredient создает ингредиент и его запись остатков одной транзакцией
func (s *PurchasingService) CreateIngredient(restaurantID string, input IngredientCreateInput) (*models.Ingredient, error) {
	ingredient := models.Ingredient{
		RestaurantID:      restaurantID,
		Name:              input.Name,
		Unit:              input.Unit,
		DefaultSupplierID: input.DefaultSupplierID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ingredient).Error; err != nil {
			return fmt.Errorf("ошибка создания ингредиента: %w", err)
		}
		stock := models.IngredientStock{
			RestaurantID: restaurantID,
			IngredientID: ingredient.ID,
			CurrentStock: input.CurrentStock,
			SafetyStock:  input.SafetyStock,
		}
		if err := tx.Create(&stock).Error; err != nil {
			return fmt.Errorf("ошибка создания записи остатков: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// UpdateSafetyStock обновляет неснижаемый запас ингредиента
func (s *PurchasingService) UpdateSafetyStock(restaurantID, ingredientID string, safetyStock float64) (*models.IngredientStock, error) {
	var stock models.IngredientStock
	err := s.db.Where("restaurant_id = ? AND ingredient_id = ?", restaurantID, ingredientID).
		First(&stock).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("остатки ингредиента не найдены: %w", err)
	} else if err != nil {
		return nil, fmt.Errorf("ошибка поиска остатков: %w", err)
	}

	now := time.Now().UTC()
	stock.SafetyStock = safetyStock
	stock.LastManualUpdateAt = &now
	if err := s.db.Save(&stock).Error; err != nil {
		return nil, fmt.Errorf("ошибка обновления остатков: %w", err)
	}
	return &stock, nil
}

// DeleteIngredient удаляет ингредиент вместе с остатками, привязками
// поставщиков и строками технологических карт
func (s *PurchasingService) DeleteIngredient(restaurantID, ingredientID string) error {
	var ingredient models.Ingredient
	err := s.db.Where("restaurant_id = ? AND id = ?", restaurantID, ingredientID).
		First(&ingredient).Error
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("ингредиент не найден: %w", err)
	} else if err != nil {
		return fmt.Errorf("ошибка поиска ингредиента: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("restaurant_id = ? AND ingredient_id = ?", restaurantID, ingredientID).
			Delete(&models.IngredientStock{}).Error; err != nil {
			return fmt.Errorf("ошибка удаления остатков: %w", err)
		}
		if err := tx.Where("restaurant_id = ? AND ingredient_id = ?", restaurantID, ingredientID).
			Delete(&models.IngredientSupplier{}).Error; err != nil {
			return fmt.Errorf("ошибка удаления привязок поставщиков: %w", err)
		}
		if err := tx.Where("restaurant_id = ? AND ingredient_id = ?", restaurantID, ingredientID).
			Delete(&models.RecipeLine{}).Error; err != nil {
			return fmt.Errorf("ошибка удаления строк технологических карт: %w", err)
		}
		if err := tx.Delete(&ingredient).Error; err != nil {
			return fmt.Errorf("ошибка удаления ингредиента: %w", err)
		}
		return nil
	})
}

// ListMenuItems возвращает позиции меню ресторана
func (s *PurchasingService) ListMenuItems(restaurantID string) ([]models.MenuItem, error) {
	var rows []models.MenuItem
	if err := s.db.Where("restaurant_id = ? AND is_active = true", restaurantID).
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки меню: %w", err)
	}
	return rows, nil
}

// ListRecipeLines возвращает технологическую карту одного блюда
func (s *PurchasingService) ListRecipeLines(restaurantID, menuItemID string) ([]models.RecipeLine, error) {
	var rows []models.RecipeLine
	if err := s.db.Where("restaurant_id = ? AND menu_item_id = ?", restaurantID, menuItemID).
		Preload("Ingredient").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки технологической карты: %w", err)
	}
	return rows, nil
}

// UpsertRecipeLine создает или обновляет строку технологической карты
func (s *PurchasingService) UpsertRecipeLine(restaurantID, menuItemID, ingredientID string, quantityPerUnit float64) error {
	var menuItem models.MenuItem
	if err := s.db.Where("restaurant_id = ? AND id = ?", restaurantID, menuItemID).
		First(&menuItem).Error; err != nil {
		return fmt.Errorf("позиция меню не найдена: %w", err)
	}
	var ingredient models.Ingredient
	if err := s.db.Where("restaurant_id = ? AND id = ?", restaurantID, ingredientID).
		First(&ingredient).Error; err != nil {
		return fmt.Errorf("ингредиент не найден: %w", err)
	}

	var line models.RecipeLine
	err := s.db.Where("restaurant_id = ? AND menu_item_id = ? AND ingredient_id = ?",
		restaurantID, menuItemID, ingredientID).
		First(&line).Error
	if err == gorm.ErrRecordNotFound {
		line = models.RecipeLine{
			RestaurantID:    restaurantID,
			MenuItemID:      menuItemID,
			IngredientID:    ingredientID,
			QuantityPerUnit: quantityPerUnit,
		}
		if err := s.db.Create(&line).Error; err != nil {
			return fmt.Errorf("ошибка создания строки технологической карты: %w", err)
		}
		return nil
	} else if err != nil {
		return fmt.Errorf("ошибка поиска строки технологической карты: %w", err)
	}

	line.QuantityPerUnit = quantityPerUnit
	if err := s.db.Save(&line).Error; err != nil {
		return fmt.Errorf("ошибка обновления строки технологической карты: %w", err)
	}
	return nil
}

// RecordManualSale фиксирует продажу, введенную вручную
func (s *PurchasingService) RecordManualSale(restaurantID, menuItemID string, quantity float64, orderedAt *time.Time) (*models.Order, error) {
	var menuItem models.MenuItem
	if err := s.db.Where("restaurant_id = ? AND id = ?", restaurantID, menuItemID).
		First(&menuItem).Error; err != nil {
		return nil, fmt.Errorf("позиция меню не найдена: %w", err)
	}

	order := models.Order{
		RestaurantID: restaurantID,
		MenuItemID:   menuItemID,
		Quantity:     quantity,
		Source:       "manual",
	}
	if orderedAt != nil {
		order.OrderedAt = orderedAt.UTC()
	}
	if err := s.db.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("ошибка сохранения продажи: %w", err)
	}

	s.events.Publish(EventSaleRecorded, restaurantID, map[string]interface{}{
		"order_id":       order.ID,
		"menu_item_id":   order.MenuItemID,
		"menu_item_name": menuItem.ResolvedName(),
		"quantity":       order.Quantity,
		"ordered_at":     order.OrderedAt,
	})

	return &order, nil
}

// ListSuppliers возвращает справочник поставщиков ресторана
func (s *PurchasingService) ListSuppliers(restaurantID string) ([]models.Supplier, error) {
	var rows []models.Supplier
	if err := s.db.Where("restaurant_id = ?", restaurantID).
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки поставщиков: %w", err)
	}
	return rows, nil
}
