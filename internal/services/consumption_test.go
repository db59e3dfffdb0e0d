package services

import (
	"fmt"
	"testing"
	"time"
)

const (
	pizzaID  = "44444444-4444-4444-4444-444444444444"
	saladID  = "55555555-5555-5555-5555-555555555555"
	coffeeID = "66666666-6666-6666-6666-666666666666"
)

func orderAt(menuItemID string, quantity float64, day time.Time) OrderRow {
	return OrderRow{
		MenuItemID: menuItemID,
		Quantity:   quantity,
		OrderedAt:  day.Add(12 * time.Hour),
	}
}

func TestAggregateConsumptionExpandsRecipes(t *testing.T) {
	from := date(2025, 1, 1)
	to := date(2025, 1, 7)

	orders := []OrderRow{
		orderAt(pizzaID, 3, date(2025, 1, 2)),
		orderAt(pizzaID, 1, date(2025, 1, 4)),
		orderAt(saladID, 2, date(2025, 1, 5)),
	}
	recipes := []RecipeRow{
		{MenuItemID: pizzaID, IngredientID: tomatoID, QuantityPerUnit: 0.2},
		{MenuItemID: pizzaID, IngredientID: mozzarellaID, QuantityPerUnit: 0.15},
		{MenuItemID: saladID, IngredientID: tomatoID, QuantityPerUnit: 0.1},
	}
	names := map[string]string{
		pizzaID: "Pizza Margherita",
		saladID: "Salade Caprese",
	}

	aggregate := AggregateConsumption(orders, recipes, names, from, to)

	if !approx(aggregate.Consumption[tomatoID], 4*0.2+2*0.1) {
		t.Errorf("расход томатов = %v, ожидалось 1.0", aggregate.Consumption[tomatoID])
	}
	if !approx(aggregate.Consumption[mozzarellaID], 4*0.15) {
		t.Errorf("расход моцареллы = %v, ожидалось 0.6", aggregate.Consumption[mozzarellaID])
	}
	if !approx(aggregate.TotalDishes, 6) {
		t.Errorf("всего порций = %v, ожидалось 6", aggregate.TotalDishes)
	}
	if len(aggregate.TopMenuItems) != 2 {
		t.Fatalf("лидерборд: %d позиций, ожидалось 2", len(aggregate.TopMenuItems))
	}
	if aggregate.TopMenuItems[0].MenuItemName != "Pizza Margherita" || !approx(aggregate.TopMenuItems[0].QuantitySold, 4) {
		t.Errorf("первая позиция лидерборда: %+v", aggregate.TopMenuItems[0])
	}
}

func TestAggregateConsumptionSkipsNonPositive(t *testing.T) {
	from := date(2025, 1, 1)
	to := date(2025, 1, 7)

	orders := []OrderRow{
		orderAt(pizzaID, 0, date(2025, 1, 2)),
		orderAt(pizzaID, -5, date(2025, 1, 3)),
		orderAt(pizzaID, 2, date(2025, 1, 4)),
	}
	recipes := []RecipeRow{
		{MenuItemID: pizzaID, IngredientID: tomatoID, QuantityPerUnit: 0.2},
		{MenuItemID: pizzaID, IngredientID: mozzarellaID, QuantityPerUnit: 0}, // Мусорная строка карты
	}

	aggregate := AggregateConsumption(orders, recipes, nil, from, to)

	if !approx(aggregate.TotalDishes, 2) {
		t.Errorf("всего порций = %v, ожидалось 2", aggregate.TotalDishes)
	}
	if !approx(aggregate.Consumption[tomatoID], 0.4) {
		t.Errorf("расход томатов = %v, ожидалось 0.4", aggregate.Consumption[tomatoID])
	}
	if _, ok := aggregate.Consumption[mozzarellaID]; ok {
		t.Error("строка карты с нулевым расходом не должна давать запись")
	}
}

func TestAggregateConsumptionRecipelessItem(t *testing.T) {
	from := date(2025, 1, 1)
	to := date(2025, 1, 7)

	// Кофе без технологической карты: считается в порциях и лидерборде,
	// но не дает расхода ингредиентов
	orders := []OrderRow{
		orderAt(coffeeID, 5, date(2025, 1, 2)),
	}

	aggregate := AggregateConsumption(orders, nil, nil, from, to)

	if !approx(aggregate.TotalDishes, 5) {
		t.Errorf("всего порций = %v, ожидалось 5", aggregate.TotalDishes)
	}
	if len(aggregate.Consumption) != 0 {
		t.Errorf("расход = %v, ожидался пустой", aggregate.Consumption)
	}
	if len(aggregate.TopMenuItems) != 1 {
		t.Fatalf("лидерборд: %d позиций, ожидалась 1", len(aggregate.TopMenuItems))
	}
	if aggregate.TopMenuItems[0].MenuItemName != "Plat" {
		t.Errorf("имя без карты = %s, ожидалось Plat", aggregate.TopMenuItems[0].MenuItemName)
	}
}

func TestAggregateConsumptionEmptyOrders(t *testing.T) {
	aggregate := AggregateConsumption(nil, nil, nil, date(2025, 1, 1), date(2025, 1, 7))

	if len(aggregate.Consumption) != 0 {
		t.Errorf("расход = %v, ожидался пустой", aggregate.Consumption)
	}
	if !approx(aggregate.TotalDishes, 0) {
		t.Errorf("всего порций = %v, ожидалось 0", aggregate.TotalDishes)
	}
	if len(aggregate.TopMenuItems) != 0 {
		t.Errorf("лидерборд = %v, ожидался пустой", aggregate.TopMenuItems)
	}
}

func TestAggregateConsumptionWindowBounds(t *testing.T) {
	from := date(2025, 1, 10)
	to := date(2025, 1, 12)

	orders := []OrderRow{
		{MenuItemID: pizzaID, Quantity: 1, OrderedAt: time.Date(2025, 1, 9, 23, 59, 59, 0, time.UTC)},  // До окна
		{MenuItemID: pizzaID, Quantity: 1, OrderedAt: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},    // Первая секунда окна
		{MenuItemID: pizzaID, Quantity: 1, OrderedAt: time.Date(2025, 1, 12, 23, 59, 59, 0, time.UTC)}, // Последняя секунда окна
		{MenuItemID: pizzaID, Quantity: 1, OrderedAt: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)},    // После окна
	}

	aggregate := AggregateConsumption(orders, nil, nil, from, to)

	if !approx(aggregate.TotalDishes, 2) {
		t.Errorf("всего порций = %v, ожидалось 2 (границы окна включительно)", aggregate.TotalDishes)
	}
}

func TestTopMenuItemsLimitAndStableTies(t *testing.T) {
	from := date(2025, 1, 1)
	to := date(2025, 1, 7)

	// Семь блюд с равными продажами: в топ-5 попадают первые пять
	// в порядке появления в продажах
	var orders []OrderRow
	ids := make([]string, 7)
	for i := 0; i < 7; i++ {
		ids[i] = fmt.Sprintf("77777777-7777-7777-7777-%012d", i)
		orders = append(orders, orderAt(ids[i], 3, date(2025, 1, 2)))
	}

	aggregate := AggregateConsumption(orders, nil, nil, from, to)

	if len(aggregate.TopMenuItems) != 5 {
		t.Fatalf("лидерборд: %d позиций, ожидалось 5", len(aggregate.TopMenuItems))
	}
	for i := 0; i < 5; i++ {
		if aggregate.TopMenuItems[i].MenuItemID != ids[i] {
			t.Errorf("позиция %d: %s, ожидалась %s (стабильный порядок при равенстве)",
				i, aggregate.TopMenuItems[i].MenuItemID, ids[i])
		}
	}
}
