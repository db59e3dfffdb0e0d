package services

import (
	"sort"
	"time"
)

// Лимит лидерборда блюд на дашборде
const topMenuItemsLimit = 5

// Имя блюда для дашборда, если позиция меню не нашлась
const fallbackMenuItemName = "Plat"

// OrderRow представляет строку продажи за период анализа
type OrderRow struct {
	MenuItemID string
	Quantity   float64
	OrderedAt  time.Time
}

// RecipeRow представляет строку технологической карты:
// расход ингредиента на одну единицу блюда
type RecipeRow struct {
	MenuItemID      string
	IngredientID    string
	QuantityPerUnit float64
}

// TopMenuItem представляет позицию лидерборда продаж
type TopMenuItem struct {
	MenuItemID   string  `json:"menu_item_id"`
	MenuItemName string  `json:"menu_item_name"`
	QuantitySold float64 `json:"quantity_sold"`
}

// ConsumptionAggregate представляет результат разворачивания продаж
// через технологические карты в расход по ингредиентам
type ConsumptionAggregate struct {
	// Расход по ингредиентам за период. Отсутствие ключа означает
	// "о расходе ничего не известно", а не нулевой расход
	Consumption  map[string]float64 `json:"consumption"`
	TotalDishes  float64            `json:"total_dishes"`
	TopMenuItems []TopMenuItem      `json:"top_menu_items"`
}

// consumptionAccumulator накапливает расход при проходе по продажам
// Выделен в отдельную структуру, чтобы свертку можно было шардировать,
// если объем продаж вырастет
type consumptionAccumulator struct {
	consumption map[string]float64
	menuTotals  map[string]float64
	menuSeen    []string // Порядок первого появления, для стабильного ранжирования при равенстве
	totalDishes float64
}

func newConsumptionAccumulator() *consumptionAccumulator {
	return &consumptionAccumulator{
		consumption: make(map[string]float64),
		menuTotals:  make(map[string]float64),
	}
}

// addOrder учитывает одну строку продажи и ее технологическую карту
func (a *consumptionAccumulator) addOrder(order OrderRow, recipeLines []RecipeRow) {
	menuKey := canonicalKey(order.MenuItemID)
	if menuKey == "" || order.Quantity <= 0 {
		return
	}

	if _, seen := a.menuTotals[menuKey]; !seen {
		a.menuSeen = append(a.menuSeen, menuKey)
	}
	a.menuTotals[menuKey] += order.Quantity
	// Блюдо без технологической карты все равно считается в проданных порциях
	a.totalDishes += order.Quantity

	for _, line := range recipeLines {
		ingredientKey := canonicalKey(line.IngredientID)
		if ingredientKey == "" || line.QuantityPerUnit <= 0 {
			continue
		}
		a.consumption[ingredientKey] += order.Quantity * line.QuantityPerUnit
	}
}

// result собирает итоговый агрегат и лидерборд топ-5 блюд
func (a *consumptionAccumulator) result(menuItemNames map[string]string) ConsumptionAggregate {
	ranked := make([]string, len(a.menuSeen))
	copy(ranked, a.menuSeen)
	sort.SliceStable(ranked, func(i, j int) bool {
		return a.menuTotals[ranked[i]] > a.menuTotals[ranked[j]]
	})

	top := make([]TopMenuItem, 0, topMenuItemsLimit)
	for _, menuKey := range ranked {
		if len(top) == topMenuItemsLimit {
			break
		}
		name := menuItemNames[menuKey]
		if name == "" {
			name = fallbackMenuItemName
		}
		top = append(top, TopMenuItem{
			MenuItemID:   menuKey,
			MenuItemName: name,
			QuantitySold: a.menuTotals[menuKey],
		})
	}

	return ConsumptionAggregate{
		Consumption:  a.consumption,
		TotalDishes:  a.totalDishes,
		TopMenuItems: top,
	}
}

// consumptionWindow возвращает границы закрытого окна анализа:
// [начало первого дня, конец последнего дня] в UTC
func consumptionWindow(dateFrom, dateTo time.Time) (time.Time, time.Time) {
	start := time.Date(dateFrom.Year(), dateFrom.Month(), dateFrom.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(dateTo.Year(), dateTo.Month(), dateTo.Day(), 23, 59, 59, 999000000, time.UTC)
	return start, end
}

// AggregateConsumption разворачивает продажи за период через технологические
// карты в расход по ингредиентам. Чистая функция над уже загруженными данными.
//
// Ингредиент, ни разу не встретившийся в картах проданных блюд, не попадает
// в итоговый словарь, это сигнал "нет данных" для расчета рекомендаций.
func AggregateConsumption(
	orders []OrderRow,
	recipes []RecipeRow,
	menuItemNames map[string]string,
	dateFrom time.Time,
	dateTo time.Time,
) ConsumptionAggregate {
	windowStart, windowEnd := consumptionWindow(dateFrom, dateTo)

	recipesByMenuItem := make(map[string][]RecipeRow, len(recipes))
	for _, line := range recipes {
		menuKey := canonicalKey(line.MenuItemID)
		if menuKey == "" {
			continue
		}
		recipesByMenuItem[menuKey] = append(recipesByMenuItem[menuKey], line)
	}

	accumulator := newConsumptionAccumulator()
	for _, order := range orders {
		if order.OrderedAt.Before(windowStart) || order.OrderedAt.After(windowEnd) {
			continue
		}
		accumulator.addOrder(order, recipesByMenuItem[canonicalKey(order.MenuItemID)])
	}

	return accumulator.result(normalizeKeys(menuItemNames))
}
