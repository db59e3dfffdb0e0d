package models

import (
	"log"

	"gorm.io/gorm"
)

// AutoMigrate создает таблицы в БД
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Ingredient{},
		&IngredientStock{},
		&MenuItem{},
		&RecipeLine{},
		&Order{},
		&Supplier{},
		&IngredientSupplier{},
		&PurchaseOrder{},
		&PurchaseOrderLine{},
	)
	if err != nil {
		log.Printf("❌ AutoMigrate failed: %v", err)
		return err
	}
	log.Println("✅ Таблицы закупок мигрированы успешно")
	return nil
}
