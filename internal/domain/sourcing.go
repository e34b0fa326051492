package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SupplierModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FactoryID   uuid.UUID `gorm:"type:uuid;index;not null" json:"factory_id"`
	Name        string    `gorm:"size:180;not null" json:"name"`
	NodeID      uuid.UUID `gorm:"type:uuid;index;not null" json:"node_id"`
	ModelStatus string    `gorm:"size:30" json:"model_status,omitempty"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CustomerModel is the customer facing SKU.
type CustomerModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SKU          string    `gorm:"size:80;uniqueIndex;not null" json:"sku"`
	Name         string    `gorm:"size:180;not null" json:"name"`
	NodeID       uuid.UUID `gorm:"type:uuid;index;not null" json:"node_id"`
	Requirements string    `gorm:"type:text" json:"requirements,omitempty"`
	Status       string    `gorm:"size:30" json:"status,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type CustomerAccessory struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerModelID uuid.UUID `gorm:"type:uuid;index;not null" json:"customer_model_id"`
	AccessoryID     uuid.UUID `gorm:"type:uuid;index;not null" json:"accessory_id"`
	Qty             int       `gorm:"not null;default:1" json:"qty"`
	Notes           string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Link pairs a customer SKU with a candidate supplier model.
type Link struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerModelID uuid.UUID           `gorm:"type:uuid;index;not null" json:"customer_model_id"`
	SupplierModelID uuid.UUID           `gorm:"type:uuid;index;not null" json:"supplier_model_id"`
	Status          string              `gorm:"size:30" json:"status,omitempty"`
	LastPrice       decimal.NullDecimal `gorm:"type:decimal(14,4)" json:"last_price"`
	Currency        string              `gorm:"size:3" json:"currency,omitempty"`
	Notes           string              `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}
