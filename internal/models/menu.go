package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuItem представляет позицию меню (блюдо)
type MenuItem struct {
	ID           string  `json:"id" gorm:"type:uuid;primaryKey"`
	RestaurantID string  `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	Name         string  `json:"name" gorm:"type:varchar(200);not null"`
	DisplayName  string  `json:"display_name" gorm:"type:varchar(200)"` // Название для дашборда (может отличаться от внутреннего)
	Category     *string `json:"category" gorm:"type:varchar(100)"`
	Instructions *string `json:"instructions" gorm:"type:text"`
	IsActive     bool    `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName указывает имя таблицы
func (MenuItem) TableName() string {
	return "menu_items"
}

// BeforeCreate генерирует UUID
func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// ResolvedName возвращает имя для отображения с fallback на внутреннее
func (m *MenuItem) ResolvedName() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Name
}

// RecipeLine представляет строку технологической карты (BOM):
// сколько ингредиента уходит на одну единицу блюда
type RecipeLine struct {
	ID              string  `json:"id" gorm:"type:uuid;primaryKey"`
	RestaurantID    string  `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	MenuItemID      string  `json:"menu_item_id" gorm:"type:uuid;not null;uniqueIndex:idx_recipe_menu_ingredient,priority:1"`
	IngredientID    string  `json:"ingredient_id" gorm:"type:uuid;not null;uniqueIndex:idx_recipe_menu_ingredient,priority:2"`
	QuantityPerUnit float64 `json:"quantity_per_unit" gorm:"type:decimal(10,4);not null"` // В единицах измерения ингредиента

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы
func (RecipeLine) TableName() string {
	return "recipes"
}

// BeforeCreate генерирует UUID
func (r *RecipeLine) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
