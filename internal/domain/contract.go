package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Contract struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code               string    `gorm:"size:60;uniqueIndex;not null" json:"code"`
	FactoryID          uuid.UUID `gorm:"type:uuid;index;not null" json:"factory_id"`
	Status             string    `gorm:"size:30" json:"status,omitempty"`
	PaymentData        string    `gorm:"type:text" json:"payment_data,omitempty"`
	BankData           string    `gorm:"type:text" json:"bank_data,omitempty"`
	SignedContractFile string    `gorm:"size:255" json:"signed_contract_file,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

type ContractLine struct {
	ID           uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID   uuid.UUID           `gorm:"type:uuid;index;not null" json:"contract_id"`
	LinkID       uuid.UUID           `gorm:"type:uuid;index;not null" json:"link_id"`
	Qty          int                 `gorm:"not null" json:"qty"`
	Region       string              `gorm:"size:60" json:"region,omitempty"`
	DeliveryDate *datatypes.Date     `json:"delivery_date,omitempty"`
	Price        decimal.NullDecimal `gorm:"type:decimal(14,4)" json:"price"`
	Currency     string              `gorm:"size:3" json:"currency,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

const TechTaskStatusGenerated = "generated"

// TechTask is one generated version of a contract's technical specification.
// (ContractID, Version) is unique.
type TechTask struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tech_task_contract_version" json:"contract_id"`
	Version       int       `gorm:"not null;uniqueIndex:idx_tech_task_contract_version" json:"version"`
	Status        string    `gorm:"size:30" json:"status"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	ContentSHA256 string    `gorm:"size:64" json:"content_sha256"`
	GeneratedAt   time.Time `json:"generated_at"`
}
