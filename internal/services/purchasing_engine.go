package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Статусы рекомендации по ингредиенту
const (
	StatusOK       = "OK"       // Запаса хватает на весь горизонт планирования
	StatusLow      = "LOW"      // Запас закончится до конца цикла заказа
	StatusCritical = "CRITICAL" // Запас закончится раньше, чем приедет поставка
	StatusNoData   = "NO_DATA"  // Нет истории продаж за период
)

var (
	// ErrInvalidDateRange возвращается, когда конец периода раньше начала
	ErrInvalidDateRange = errors.New("date_to должен быть не раньше date_from")
	// ErrIngredientWithoutID возвращается для записи каталога без идентификатора
	ErrIngredientWithoutID = errors.New("у ингредиента отсутствует id")
)

// SupplierReference минимальная информация о поставщике в составе рекомендации
type SupplierReference struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CatalogIngredient представляет запись каталога ингредиентов,
// уже загруженную из хранилища (только чтение)
type CatalogIngredient struct {
	ID                string
	Name              string
	Unit              string
	DefaultSupplierID *string
	LastOrderDate     *time.Time
	LastOrderQuantity *float64
}

// StockLevel представляет текущий и неснижаемый остаток ингредиента
// Отсутствие записи трактуется как нулевые остатки, а не как ошибка
type StockLevel struct {
	CurrentStock float64 `json:"current_stock"`
	SafetyStock  float64 `json:"safety_stock"`
}

// SupplierOverride представляет индивидуальную привязку ингредиента к поставщику
// Поля-указатели означают "не задано, взять следующий уровень приоритета"
type SupplierOverride struct {
	SupplierID   *string `json:"supplier_id"`
	LeadTimeDays *int    `json:"lead_time_days"`
	SupplierName *string `json:"supplier_name"`
}

// SupplierDefault представляет запись справочника поставщиков
type SupplierDefault struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	ContactEmail        *string `json:"contact_email"`
	DefaultLeadTimeDays *int    `json:"default_lead_time_days"`
}

// IngredientRecommendation представляет рекомендацию по закупке одного ингредиента
type IngredientRecommendation struct {
	IngredientID             string             `json:"ingredient_id"`
	IngredientName           string             `json:"ingredient_name"`
	Unit                     string             `json:"unit"`
	CurrentStock             float64            `json:"current_stock"`
	SafetyStock              float64            `json:"safety_stock"`
	TotalQuantityConsumed    float64            `json:"total_quantity_consumed"`
	AvgDailyConsumption      float64            `json:"avg_daily_consumption"`
	LeadTimeDays             int                `json:"lead_time_days"`
	PlanningHorizonDays      int                `json:"planning_horizon_days"`
	ProjectedNeed            float64            `json:"projected_need"`
	RecommendedOrderQuantity float64            `json:"recommended_order_quantity"`
	CoverageDays             *float64           `json:"coverage_days"`
	Status                   string             `json:"status"`
	DefaultSupplier          *SupplierReference `json:"default_supplier"`
	LastOrderDate            *string            `json:"last_order_date"`
	LastOrderQuantity        *float64           `json:"last_order_quantity"`
}

// canonicalKey приводит идентификатор к каноническому виду
// UUID может прийти и как типизированное значение, и как строка в другом регистре,
// поэтому все четыре входных словаря сравниваются по канонической форме
func canonicalKey(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if parsed, err := uuid.Parse(trimmed); err == nil {
		return parsed.String()
	}
	return trimmed
}

// normalizeKeys перекладывает словарь под канонические ключи
func normalizeKeys[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for key, value := range in {
		out[canonicalKey(key)] = value
	}
	return out
}

// ComputePurchaseRecommendations рассчитывает рекомендацию по закупке
// для каждого ингредиента каталога. Чистая функция: никакого I/O,
// безопасно вызывать из любого числа обработчиков одновременно.
func ComputePurchaseRecommendations(
	ingredients []CatalogIngredient,
	consumption map[string]float64,
	stock map[string]StockLevel,
	overrides map[string]SupplierOverride,
	suppliers map[string]SupplierDefault,
	dateFrom time.Time,
	dateTo time.Time,
	reorderCycleDays int,
	defaultLeadTimeDays int,
) ([]IngredientRecommendation, error) {
	if dateTo.Before(dateFrom) {
		return nil, ErrInvalidDateRange
	}

	daysInRange := int(dateTo.Sub(dateFrom).Hours()/24) + 1
	if daysInRange < 1 {
		daysInRange = 1
	}

	consumption = normalizeKeys(consumption)
	stock = normalizeKeys(stock)
	overrides = normalizeKeys(overrides)
	suppliers = normalizeKeys(suppliers)

	cycleDays := reorderCycleDays
	if cycleDays < 0 {
		cycleDays = 0
	}

	recommendations := make([]IngredientRecommendation, 0, len(ingredients))

	for _, ingredient := range ingredients {
		key := canonicalKey(ingredient.ID)
		if key == "" {
			return nil, fmt.Errorf("%w (ингредиент %q)", ErrIngredientWithoutID, ingredient.Name)
		}

		stockEntry := stock[key]

		// Наличие ключа и его значение - разные сигналы: отсутствие ключа
		// означает "нет данных о продажах", а не нулевой спрос
		totalConsumed, hasConsumptionData := consumption[key]

		avgDailyConsumption := 0.0
		if hasConsumptionData {
			avgDailyConsumption = totalConsumed / float64(daysInRange)
		}

		leadTimeDays, supplierRef := resolveSupplierContext(ingredient, overrides[key], suppliers, defaultLeadTimeDays)

		planningHorizonDays := leadTimeDays + cycleDays
		projectedNeed := avgDailyConsumption * float64(planningHorizonDays)

		recommendedQuantity := projectedNeed + stockEntry.SafetyStock - stockEntry.CurrentStock
		if recommendedQuantity < 0 {
			recommendedQuantity = 0
		}

		// Покрытие не определено (а не бесконечно), если измеренного расхода нет
		var coverageDays *float64
		if avgDailyConsumption > 0 {
			coverage := stockEntry.CurrentStock / avgDailyConsumption
			coverageDays = &coverage
		}

		recommendation := IngredientRecommendation{
			IngredientID:             key,
			IngredientName:           ingredient.Name,
			Unit:                     ingredient.Unit,
			CurrentStock:             stockEntry.CurrentStock,
			SafetyStock:              stockEntry.SafetyStock,
			TotalQuantityConsumed:    totalConsumed,
			AvgDailyConsumption:      avgDailyConsumption,
			LeadTimeDays:             leadTimeDays,
			PlanningHorizonDays:      planningHorizonDays,
			ProjectedNeed:            projectedNeed,
			RecommendedOrderQuantity: recommendedQuantity,
			CoverageDays:             coverageDays,
			Status:                   determineStatus(hasConsumptionData, coverageDays, recommendedQuantity, leadTimeDays, planningHorizonDays),
			DefaultSupplier:          supplierRef,
			LastOrderQuantity:        ingredient.LastOrderQuantity,
		}
		if ingredient.LastOrderDate != nil {
			formatted := ingredient.LastOrderDate.Format("2006-01-02")
			recommendation.LastOrderDate = &formatted
		}

		recommendations = append(recommendations, recommendation)
	}

	return recommendations, nil
}

// resolveSupplierContext определяет срок поставки и поставщика для ингредиента
// Приоритет поставщика: привязка ингредиента, затем поставщик по умолчанию из каталога
// Приоритет срока: явный срок привязки, затем типовой срок поставщика, затем глобальный fallback
func resolveSupplierContext(
	ingredient CatalogIngredient,
	override SupplierOverride,
	suppliers map[string]SupplierDefault,
	defaultLeadTimeDays int,
) (int, *SupplierReference) {
	supplierID := ""
	if override.SupplierID != nil && strings.TrimSpace(*override.SupplierID) != "" {
		supplierID = canonicalKey(*override.SupplierID)
	} else if ingredient.DefaultSupplierID != nil && strings.TrimSpace(*ingredient.DefaultSupplierID) != "" {
		supplierID = canonicalKey(*ingredient.DefaultSupplierID)
	}

	var record *SupplierDefault
	if supplierID != "" {
		if entry, ok := suppliers[supplierID]; ok {
			record = &entry
		}
	}

	leadTimeDays := defaultLeadTimeDays
	switch {
	case override.LeadTimeDays != nil:
		leadTimeDays = *override.LeadTimeDays
	case record != nil && record.DefaultLeadTimeDays != nil:
		leadTimeDays = *record.DefaultLeadTimeDays
	}

	supplierName := ""
	if override.SupplierName != nil && *override.SupplierName != "" {
		supplierName = *override.SupplierName
	} else if record != nil {
		supplierName = record.Name
	}

	// Поставщик без имени не попадает в рекомендацию
	var reference *SupplierReference
	if supplierID != "" && supplierName != "" {
		reference = &SupplierReference{ID: supplierID, Name: supplierName}
	}

	return leadTimeDays, reference
}

// determineStatus классифицирует срочность закупки
// Порядок проверок фиксирован: отсутствие истории продаж всегда побеждает
func determineStatus(
	hasConsumptionData bool,
	coverageDays *float64,
	recommendedOrderQuantity float64,
	leadTimeDays int,
	planningHorizonDays int,
) string {
	if !hasConsumptionData {
		return StatusNoData
	}

	if recommendedOrderQuantity <= 0 {
		return StatusOK
	}

	if coverageDays == nil {
		return StatusLow
	}

	if *coverageDays <= float64(leadTimeDays) {
		return StatusCritical
	}

	if *coverageDays <= float64(planningHorizonDays) {
		return StatusLow
	}

	return StatusOK
}
