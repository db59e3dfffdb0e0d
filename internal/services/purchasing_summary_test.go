package services

import (
	"testing"
)

func recommendationWithStatus(id, name, status string, quantity float64) IngredientRecommendation {
	return IngredientRecommendation{
		IngredientID:             id,
		IngredientName:           name,
		Status:                   status,
		RecommendedOrderQuantity: quantity,
		TotalQuantityConsumed:    quantity * 2,
	}
}

func TestBuildPurchasingSummaryCounts(t *testing.T) {
	recommendations := []IngredientRecommendation{
		recommendationWithStatus("i1", "Tomates", StatusCritical, 23),
		recommendationWithStatus("i2", "Mozzarella", StatusOK, 0),
		recommendationWithStatus("i3", "Basilic", StatusNoData, 0),
		recommendationWithStatus("i4", "Farine", StatusLow, 12),
		recommendationWithStatus("i5", "Huile", StatusOK, 0),
	}
	aggregate := &ConsumptionAggregate{
		TotalDishes: 42,
		TopMenuItems: []TopMenuItem{
			{MenuItemID: pizzaID, MenuItemName: "Pizza Margherita", QuantitySold: 30},
		},
	}

	summary := BuildPurchasingSummary(recommendations, aggregate, date(2025, 1, 1), date(2025, 1, 7))

	if summary.DateFrom != "2025-01-01" || summary.DateTo != "2025-01-07" {
		t.Errorf("период = %s..%s", summary.DateFrom, summary.DateTo)
	}
	if summary.CountOK != 2 || summary.CountLow != 1 || summary.CountCritical != 1 || summary.CountNoData != 1 {
		t.Errorf("счетчики статусов: OK=%d LOW=%d CRITICAL=%d NO_DATA=%d",
			summary.CountOK, summary.CountLow, summary.CountCritical, summary.CountNoData)
	}
	if !approx(summary.TotalDishesSold, 42) {
		t.Errorf("всего порций = %v, ожидалось 42", summary.TotalDishesSold)
	}
	if len(summary.TopMenuItems) != 1 || summary.TopMenuItems[0].MenuItemName != "Pizza Margherita" {
		t.Errorf("топ блюд = %+v", summary.TopMenuItems)
	}
}

func TestBuildPurchasingSummaryTopIngredients(t *testing.T) {
	recommendations := []IngredientRecommendation{
		recommendationWithStatus("i1", "A", StatusLow, 5),
		recommendationWithStatus("i2", "B", StatusCritical, 50),
		recommendationWithStatus("i3", "C", StatusLow, 20),
		recommendationWithStatus("i4", "D", StatusOK, 0),
		recommendationWithStatus("i5", "E", StatusCritical, 35),
		recommendationWithStatus("i6", "F", StatusLow, 10),
	}

	summary := BuildPurchasingSummary(recommendations, &ConsumptionAggregate{}, date(2025, 1, 1), date(2025, 1, 7))

	if len(summary.TopIngredients) != 5 {
		t.Fatalf("топ ингредиентов: %d позиций, ожидалось 5", len(summary.TopIngredients))
	}
	expectedOrder := []string{"B", "E", "C", "F", "A"}
	for i, name := range expectedOrder {
		if summary.TopIngredients[i].IngredientName != name {
			t.Errorf("позиция %d: %s, ожидалась %s", i, summary.TopIngredients[i].IngredientName, name)
		}
	}
}

func TestBuildPurchasingSummaryWithoutAggregate(t *testing.T) {
	recommendations := []IngredientRecommendation{
		recommendationWithStatus("i1", "Tomates", StatusLow, 10), // TotalQuantityConsumed = 20
		recommendationWithStatus("i2", "Farine", StatusLow, 5),   // TotalQuantityConsumed = 10
	}

	summary := BuildPurchasingSummary(recommendations, nil, date(2025, 1, 1), date(2025, 1, 7))

	// Без агрегата продаж fallback - суммарный расход по рекомендациям
	if !approx(summary.TotalDishesSold, 30) {
		t.Errorf("всего порций = %v, ожидалось 30", summary.TotalDishesSold)
	}
	if len(summary.TopMenuItems) != 0 {
		t.Errorf("топ блюд = %+v, ожидался пустой", summary.TopMenuItems)
	}
}
