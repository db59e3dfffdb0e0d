package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseOrderStatus представляет статус заказа поставщику
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "draft"     // Черновик
	PurchaseOrderStatusSent      PurchaseOrderStatus = "sent"      // Отправлен поставщику
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"  // Получен
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled" // Отменен
)

// PurchaseOrder представляет заказ поставщику
type PurchaseOrder struct {
	ID           string              `json:"id" gorm:"type:uuid;primaryKey"`
	RestaurantID string              `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	SupplierID   string              `json:"supplier_id" gorm:"type:uuid;not null;index"`
	Supplier     *Supplier           `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Status       PurchaseOrderStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`

	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date" gorm:"type:date"`
	ReorderCycleDays     int        `json:"reorder_cycle_days" gorm:"type:integer;default:7"` // С каким интервалом планировался заказ
	Notes                *string    `json:"notes" gorm:"type:varchar(800)"`

	Lines []PurchaseOrderLine `json:"lines" gorm:"foreignKey:PurchaseOrderID"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName указывает имя таблицы
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// BeforeCreate генерирует UUID
func (po *PurchaseOrder) BeforeCreate(tx *gorm.DB) error {
	if po.ID == "" {
		po.ID = uuid.New().String()
	}
	if po.Status == "" {
		po.Status = PurchaseOrderStatusDraft
	}
	return nil
}

// PurchaseOrderLine представляет позицию заказа поставщику
type PurchaseOrderLine struct {
	ID              string  `json:"id" gorm:"type:uuid;primaryKey"`
	PurchaseOrderID string  `json:"purchase_order_id" gorm:"type:uuid;not null;index"`
	IngredientID    string  `json:"ingredient_id" gorm:"type:uuid;not null;index"`
	IngredientName  string  `json:"ingredient_name" gorm:"type:varchar(255)"` // Снимок имени на момент заказа
	QuantityOrdered float64 `json:"quantity_ordered" gorm:"type:decimal(10,2);not null"`
	Unit            string  `json:"unit" gorm:"type:varchar(20);not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// BeforeCreate генерирует UUID
func (l *PurchaseOrderLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
