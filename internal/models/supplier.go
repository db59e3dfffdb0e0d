package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier представляет поставщика ресторана
type Supplier struct {
	ID           string  `json:"id" gorm:"type:uuid;primaryKey"`
	RestaurantID string  `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	Name         string  `json:"name" gorm:"type:varchar(255);not null"`
	ContactEmail *string `json:"contact_email" gorm:"type:varchar(255)"`
	// Типовой срок поставки в днях; NULL означает "не указан",
	// тогда применяется глобальный fallback из конфигурации
	DefaultLeadTimeDays *int `json:"default_lead_time_days" gorm:"type:integer"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName указывает имя таблицы
func (Supplier) TableName() string {
	return "suppliers"
}

// BeforeCreate генерирует UUID
func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// IngredientSupplier представляет привязку ингредиента к поставщику
// с индивидуальным сроком поставки, который перекрывает типовой срок поставщика
type IngredientSupplier struct {
	ID           string  `json:"id" gorm:"type:uuid;primaryKey"`
	RestaurantID string  `json:"restaurant_id" gorm:"type:uuid;not null;uniqueIndex:idx_ingredient_supplier,priority:1"`
	IngredientID string  `json:"ingredient_id" gorm:"type:uuid;not null;uniqueIndex:idx_ingredient_supplier,priority:2"`
	SupplierID   *string `json:"supplier_id" gorm:"type:uuid;index"`
	LeadTimeDays *int    `json:"lead_time_days" gorm:"type:integer"` // NULL — брать срок поставщика

	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы
func (IngredientSupplier) TableName() string {
	return "ingredient_suppliers"
}

// BeforeCreate генерирует UUID
func (is *IngredientSupplier) BeforeCreate(tx *gorm.DB) error {
	if is.ID == "" {
		is.ID = uuid.New().String()
	}
	return nil
}
