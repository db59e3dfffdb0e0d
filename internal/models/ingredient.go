package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingredient представляет ингредиент в каталоге ресторана
type Ingredient struct {
	ID                string     `json:"id" gorm:"type:uuid;primaryKey"`
	RestaurantID      string     `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	Name              string     `json:"name" gorm:"type:varchar(255);not null"`
	Unit              string     `json:"unit" gorm:"type:varchar(20);not null"` // kg, L, pcs и т.д.
	DefaultSupplierID *string    `json:"default_supplier_id" gorm:"type:uuid;index"`
	// Метаданные последнего заказа (заполняются при создании заказа поставщику)
	LastOrderDate     *time.Time `json:"last_order_date" gorm:"type:date"`
	LastOrderQuantity *float64   `json:"last_order_quantity" gorm:"type:decimal(10,2)"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName указывает имя таблицы
func (Ingredient) TableName() string {
	return "ingredients"
}

// BeforeCreate генерирует UUID
func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// IngredientStock представляет текущий остаток ингредиента
// Одна запись на ингредиент в рамках ресторана
type IngredientStock struct {
	ID                 string     `json:"id" gorm:"type:uuid;primaryKey"`
	RestaurantID       string     `json:"restaurant_id" gorm:"type:uuid;not null;uniqueIndex:idx_stock_restaurant_ingredient,priority:1"`
	IngredientID       string     `json:"ingredient_id" gorm:"type:uuid;not null;uniqueIndex:idx_stock_restaurant_ingredient,priority:2"`
	CurrentStock       float64    `json:"current_stock" gorm:"type:decimal(10,2);default:0"`
	SafetyStock        float64    `json:"safety_stock" gorm:"type:decimal(10,2);default:0"` // Неснижаемый запас
	LastManualUpdateAt *time.Time `json:"last_manual_update_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы
func (IngredientStock) TableName() string {
	return "ingredient_stock"
}

// BeforeCreate генерирует UUID
func (s *IngredientStock) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
