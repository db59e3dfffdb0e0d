package services

import (
	"errors"
	"math"
	"testing"
	"time"
)

const (
	tomatoID     = "11111111-1111-1111-1111-111111111111"
	mozzarellaID = "22222222-2222-2222-2222-222222222222"
	basilID      = "33333333-3333-3333-3333-333333333333"
	supplierAID  = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	supplierBID  = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func findRecommendation(t *testing.T, recs []IngredientRecommendation, id string) IngredientRecommendation {
	t.Helper()
	for _, rec := range recs {
		if rec.IngredientID == id {
			return rec
		}
	}
	t.Fatalf("рекомендация для %s не найдена", id)
	return IngredientRecommendation{}
}

func TestComputePurchaseRecommendationsScenario(t *testing.T) {
	ingredients := []CatalogIngredient{
		{ID: tomatoID, Name: "Tomates", Unit: "kg"},
		{ID: mozzarellaID, Name: "Mozzarella", Unit: "kg", DefaultSupplierID: strPtr(supplierBID)},
	}
	consumption := map[string]float64{
		tomatoID:     14,
		mozzarellaID: 7,
	}
	stock := map[string]StockLevel{
		tomatoID:     {CurrentStock: 2, SafetyStock: 1},
		mozzarellaID: {CurrentStock: 120, SafetyStock: 0},
	}
	overrides := map[string]SupplierOverride{
		tomatoID: {SupplierID: strPtr(supplierAID), LeadTimeDays: intPtr(5), SupplierName: strPtr("Primeur Sud")},
	}
	suppliers := map[string]SupplierDefault{
		supplierAID: {ID: supplierAID, Name: "Primeur Sud", DefaultLeadTimeDays: intPtr(3)},
		supplierBID: {ID: supplierBID, Name: "Laiterie Nord", DefaultLeadTimeDays: intPtr(4)},
	}

	recs, err := ComputePurchaseRecommendations(
		ingredients, consumption, stock, overrides, suppliers,
		date(2025, 1, 1), date(2025, 1, 7), 7, 2)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("ожидалось 2 рекомендации, получено %d", len(recs))
	}

	tomato := findRecommendation(t, recs, tomatoID)
	if !approx(tomato.AvgDailyConsumption, 2) {
		t.Errorf("Tomates: средний расход = %v, ожидалось 2", tomato.AvgDailyConsumption)
	}
	if tomato.LeadTimeDays != 5 {
		t.Errorf("Tomates: срок поставки = %d, ожидалось 5 (из привязки)", tomato.LeadTimeDays)
	}
	if tomato.PlanningHorizonDays != 12 {
		t.Errorf("Tomates: горизонт = %d, ожидалось 12", tomato.PlanningHorizonDays)
	}
	if !approx(tomato.ProjectedNeed, 24) {
		t.Errorf("Tomates: потребность = %v, ожидалось 24", tomato.ProjectedNeed)
	}
	if !approx(tomato.RecommendedOrderQuantity, 23) {
		t.Errorf("Tomates: рекомендация = %v, ожидалось 23", tomato.RecommendedOrderQuantity)
	}
	if tomato.CoverageDays == nil || !approx(*tomato.CoverageDays, 1) {
		t.Errorf("Tomates: покрытие = %v, ожидалось 1", tomato.CoverageDays)
	}
	if tomato.Status != StatusCritical {
		t.Errorf("Tomates: статус = %s, ожидался CRITICAL", tomato.Status)
	}
	if tomato.DefaultSupplier == nil || tomato.DefaultSupplier.ID != supplierAID || tomato.DefaultSupplier.Name != "Primeur Sud" {
		t.Errorf("Tomates: поставщик = %+v, ожидался Primeur Sud", tomato.DefaultSupplier)
	}

	mozzarella := findRecommendation(t, recs, mozzarellaID)
	if !approx(mozzarella.AvgDailyConsumption, 1) {
		t.Errorf("Mozzarella: средний расход = %v, ожидалось 1", mozzarella.AvgDailyConsumption)
	}
	if mozzarella.LeadTimeDays != 4 {
		t.Errorf("Mozzarella: срок поставки = %d, ожидалось 4 (типовой срок поставщика)", mozzarella.LeadTimeDays)
	}
	if !approx(mozzarella.RecommendedOrderQuantity, 0) {
		t.Errorf("Mozzarella: рекомендация = %v, ожидалось 0", mozzarella.RecommendedOrderQuantity)
	}
	if mozzarella.CoverageDays == nil || !approx(*mozzarella.CoverageDays, 120) {
		t.Errorf("Mozzarella: покрытие = %v, ожидалось 120", mozzarella.CoverageDays)
	}
	if mozzarella.Status != StatusOK {
		t.Errorf("Mozzarella: статус = %s, ожидался OK", mozzarella.Status)
	}
	if mozzarella.DefaultSupplier == nil || mozzarella.DefaultSupplier.Name != "Laiterie Nord" {
		t.Errorf("Mozzarella: поставщик = %+v, ожидалась Laiterie Nord", mozzarella.DefaultSupplier)
	}
}

func TestComputePurchaseRecommendationsNoData(t *testing.T) {
	ingredients := []CatalogIngredient{
		{ID: basilID, Name: "Basilic", Unit: "botte"},
	}
	stock := map[string]StockLevel{
		basilID: {CurrentStock: 0, SafetyStock: 10},
	}

	recs, err := ComputePurchaseRecommendations(
		ingredients, map[string]float64{}, stock, nil, nil,
		date(2025, 1, 1), date(2025, 1, 7), 7, 2)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	rec := findRecommendation(t, recs, basilID)
	// Отсутствие истории продаж побеждает любое состояние остатков
	if rec.Status != StatusNoData {
		t.Errorf("статус = %s, ожидался NO_DATA", rec.Status)
	}
	if rec.CoverageDays != nil {
		t.Errorf("покрытие = %v, ожидалось nil", *rec.CoverageDays)
	}
	if !approx(rec.AvgDailyConsumption, 0) {
		t.Errorf("средний расход = %v, ожидалось 0", rec.AvgDailyConsumption)
	}
}

func TestComputePurchaseRecommendationsNeverNegative(t *testing.T) {
	ingredients := []CatalogIngredient{
		{ID: tomatoID, Name: "Tomates", Unit: "kg"},
	}
	consumption := map[string]float64{tomatoID: 7}
	stock := map[string]StockLevel{
		tomatoID: {CurrentStock: 1000, SafetyStock: 0},
	}

	recs, err := ComputePurchaseRecommendations(
		ingredients, consumption, stock, nil, nil,
		date(2025, 1, 1), date(2025, 1, 7), 7, 2)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	rec := findRecommendation(t, recs, tomatoID)
	if rec.RecommendedOrderQuantity < 0 {
		t.Errorf("рекомендация отрицательная: %v", rec.RecommendedOrderQuantity)
	}
	if rec.Status != StatusOK {
		t.Errorf("статус = %s, ожидался OK", rec.Status)
	}
}

func TestLeadTimeResolutionPriority(t *testing.T) {
	ingredients := []CatalogIngredient{
		{ID: tomatoID, Name: "Override", Unit: "kg", DefaultSupplierID: strPtr(supplierAID)},
		{ID: mozzarellaID, Name: "SupplierDefault", Unit: "kg", DefaultSupplierID: strPtr(supplierAID)},
		{ID: basilID, Name: "GlobalFallback", Unit: "kg"},
	}
	overrides := map[string]SupplierOverride{
		tomatoID: {SupplierID: strPtr(supplierAID), LeadTimeDays: intPtr(9)},
	}
	suppliers := map[string]SupplierDefault{
		supplierAID: {ID: supplierAID, Name: "Primeur Sud", DefaultLeadTimeDays: intPtr(6)},
	}
	consumption := map[string]float64{
		tomatoID:     7,
		mozzarellaID: 7,
		basilID:      7,
	}

	recs, err := ComputePurchaseRecommendations(
		ingredients, consumption, map[string]StockLevel{}, overrides, suppliers,
		date(2025, 1, 1), date(2025, 1, 7), 7, 2)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if rec := findRecommendation(t, recs, tomatoID); rec.LeadTimeDays != 9 {
		t.Errorf("срок из привязки = %d, ожидалось 9", rec.LeadTimeDays)
	}
	if rec := findRecommendation(t, recs, mozzarellaID); rec.LeadTimeDays != 6 {
		t.Errorf("типовой срок поставщика = %d, ожидалось 6", rec.LeadTimeDays)
	}
	if rec := findRecommendation(t, recs, basilID); rec.LeadTimeDays != 2 {
		t.Errorf("глобальный fallback = %d, ожидалось 2", rec.LeadTimeDays)
	}
}

func TestSupplierWithoutNameOmitted(t *testing.T) {
	ingredients := []CatalogIngredient{
		{ID: tomatoID, Name: "Tomates", Unit: "kg", DefaultSupplierID: strPtr(supplierAID)},
	}
	// Поставщика нет в справочнике, имя взять неоткуда
	recs, err := ComputePurchaseRecommendations(
		ingredients, nil, nil, nil, nil,
		date(2025, 1, 1), date(2025, 1, 7), 7, 2)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if rec := findRecommendation(t, recs, tomatoID); rec.DefaultSupplier != nil {
		t.Errorf("поставщик = %+v, ожидался nil", rec.DefaultSupplier)
	}
}

func TestInvalidDateRange(t *testing.T) {
	_, err := ComputePurchaseRecommendations(
		nil, nil, nil, nil, nil,
		date(2025, 1, 7), date(2025, 1, 1), 7, 2)
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("ошибка = %v, ожидалась ErrInvalidDateRange", err)
	}
}

func TestIngredientWithoutID(t *testing.T) {
	ingredients := []CatalogIngredient{
		{ID: "   ", Name: "Sans ID", Unit: "kg"},
	}
	_, err := ComputePurchaseRecommendations(
		ingredients, nil, nil, nil, nil,
		date(2025, 1, 1), date(2025, 1, 7), 7, 2)
	if !errors.Is(err, ErrIngredientWithoutID) {
		t.Fatalf("ошибка = %v, ожидалась ErrIngredientWithoutID", err)
	}
}

func TestKeyNormalization(t *testing.T) {
	lowerID := "abcdefab-1111-1111-1111-abcdefabcdef"
	upperID := "ABCDEFAB-1111-1111-1111-ABCDEFABCDEF"
	ingredients := []CatalogIngredient{
		{ID: lowerID, Name: "Tomates", Unit: "kg"},
	}
	// Ключи словарей приходят в верхнем регистре и с пробелами
	consumption := map[string]float64{upperID: 7}
	stock := map[string]StockLevel{
		"  " + upperID + "  ": {CurrentStock: 3, SafetyStock: 1},
	}

	recs, err := ComputePurchaseRecommendations(
		ingredients, consumption, stock, nil, nil,
		date(2025, 1, 1), date(2025, 1, 7), 7, 2)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	rec := findRecommendation(t, recs, lowerID)
	if !approx(rec.TotalQuantityConsumed, 7) {
		t.Errorf("расход по UUID в верхнем регистре не сматчился: %v", rec.TotalQuantityConsumed)
	}
	if !approx(rec.CurrentStock, 3) {
		t.Errorf("остаток не сматчился: %v", rec.CurrentStock)
	}
}

func TestNegativeReorderCycleClamped(t *testing.T) {
	ingredients := []CatalogIngredient{
		{ID: tomatoID, Name: "Tomates", Unit: "kg"},
	}
	consumption := map[string]float64{tomatoID: 7}

	recs, err := ComputePurchaseRecommendations(
		ingredients, consumption, nil, nil, nil,
		date(2025, 1, 1), date(2025, 1, 7), -3, 2)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	rec := findRecommendation(t, recs, tomatoID)
	// Горизонт не может быть короче срока поставки
	if rec.PlanningHorizonDays != 2 {
		t.Errorf("горизонт = %d, ожидалось 2", rec.PlanningHorizonDays)
	}
}
