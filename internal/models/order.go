package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order представляет строку продажи: блюдо и количество
// Источник — POS интеграция или ручной ввод через API
type Order struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	RestaurantID string    `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	MenuItemID   string    `json:"menu_item_id" gorm:"type:uuid;not null;index"`
	Quantity     float64   `json:"quantity" gorm:"type:decimal(10,2);not null"`
	OrderedAt    time.Time `json:"ordered_at" gorm:"not null;index"` // UTC
	Source       string    `json:"source" gorm:"type:varchar(20);default:'pos'"` // 'pos' или 'manual'

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate генерирует UUID
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.OrderedAt.IsZero() {
		o.OrderedAt = time.Now().UTC()
	}
	return nil
}
