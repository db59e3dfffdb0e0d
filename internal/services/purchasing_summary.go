package services

import (
	"sort"
	"time"
)

// Лимит лидерборда ингредиентов на дашборде
const topIngredientsLimit = 5

// TopIngredientSummary представляет позицию лидерборда закупок
type TopIngredientSummary struct {
	IngredientID             string  `json:"ingredient_id"`
	IngredientName           string  `json:"ingredient_name"`
	Status                   string  `json:"status"`
	RecommendedOrderQuantity float64 `json:"recommended_order_quantity"`
}

// PurchasingSummary представляет сводку закупок для дашборда
type PurchasingSummary struct {
	DateFrom        string                 `json:"date_from"`
	DateTo          string                 `json:"date_to"`
	TotalDishesSold float64                `json:"total_dishes_sold"`
	CountOK         int                    `json:"count_ok"`
	CountLow        int                    `json:"count_low"`
	CountCritical   int                    `json:"count_critical"`
	CountNoData     int                    `json:"count_no_data"`
	TopIngredients  []TopIngredientSummary `json:"top_ingredients"`
	TopMenuItems    []TopMenuItem          `json:"top_menu_items"`
}

// BuildPurchasingSummary сводит рекомендации и агрегат продаж в KPI дашборда
// Только чтение: счетчики статусов, топ-5 ингредиентов по рекомендованному
// объему и топ-5 блюд из агрегата
func BuildPurchasingSummary(
	recommendations []IngredientRecommendation,
	aggregate *ConsumptionAggregate,
	dateFrom time.Time,
	dateTo time.Time,
) PurchasingSummary {
	summary := PurchasingSummary{
		DateFrom:       dateFrom.Format("2006-01-02"),
		DateTo:         dateTo.Format("2006-01-02"),
		TopIngredients: make([]TopIngredientSummary, 0, topIngredientsLimit),
		TopMenuItems:   []TopMenuItem{},
	}

	for _, recommendation := range recommendations {
		switch recommendation.Status {
		case StatusOK:
			summary.CountOK++
		case StatusLow:
			summary.CountLow++
		case StatusCritical:
			summary.CountCritical++
		case StatusNoData:
			summary.CountNoData++
		}
	}

	ranked := make([]IngredientRecommendation, len(recommendations))
	copy(ranked, recommendations)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RecommendedOrderQuantity > ranked[j].RecommendedOrderQuantity
	})
	for _, recommendation := range ranked {
		if len(summary.TopIngredients) == topIngredientsLimit {
			break
		}
		summary.TopIngredients = append(summary.TopIngredients, TopIngredientSummary{
			IngredientID:             recommendation.IngredientID,
			IngredientName:           recommendation.IngredientName,
			Status:                   recommendation.Status,
			RecommendedOrderQuantity: recommendation.RecommendedOrderQuantity,
		})
	}

	if aggregate != nil {
		summary.TotalDishesSold = aggregate.TotalDishes
		if len(aggregate.TopMenuItems) > topMenuItemsLimit {
			summary.TopMenuItems = aggregate.TopMenuItems[:topMenuItemsLimit]
		} else {
			summary.TopMenuItems = aggregate.TopMenuItems
		}
	} else {
		// Fallback, если агрегат продаж недоступен: суммарный расход по рекомендациям
		for _, recommendation := range recommendations {
			summary.TotalDishesSold += recommendation.TotalQuantityConsumed
		}
	}

	return summary
}
