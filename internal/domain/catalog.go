package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Factory struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code       string    `gorm:"size:60;uniqueIndex;not null" json:"code"`
	Name       string    `gorm:"size:180;not null" json:"name"`
	AuditScore *int      `json:"audit_score,omitempty"`
	RiskScore  *int      `json:"risk_score,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProductNode is a category in the product taxonomy. A nil ParentID marks a root.
type ProductNode struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Code      string     `gorm:"size:80;uniqueIndex;not null" json:"code"`
	Name      string     `gorm:"size:180;not null" json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type ValueType string

const (
	ValueNumeric ValueType = "numeric"
	ValueText    ValueType = "text"
	ValueEnum    ValueType = "enum"
)

func (t ValueType) Valid() bool {
	switch t {
	case ValueNumeric, ValueText, ValueEnum:
		return true
	}
	return false
}

type Param struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string                      `gorm:"size:80;uniqueIndex;not null" json:"code"`
	Name        string                      `gorm:"size:180;not null" json:"name"`
	ValueType   ValueType                   `gorm:"type:varchar(10);not null" json:"value_type"`
	UOMDefault  string                      `gorm:"size:30" json:"uom_default,omitempty"`
	EnumOptions datatypes.JSONSlice[string] `json:"enum_options,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
}

// ParamAssignment declares that a param applies to a node and everything below it.
type ParamAssignment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	NodeID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_param_assignment_node_param" json:"node_id"`
	ParamID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_param_assignment_node_param" json:"param_id"`
	Required  bool      `gorm:"not null;default:false" json:"required"`
	CreatedAt time.Time `json:"created_at"`
}

type TestMethod struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	NodeID    uuid.UUID `gorm:"type:uuid;index;not null" json:"node_id"`
	Title     string    `gorm:"size:180;not null" json:"title"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Tolerance struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParamID   uuid.UUID `gorm:"type:uuid;index;not null" json:"param_id"`
	Rule      string    `gorm:"size:120;not null" json:"rule"`
	CreatedAt time.Time `json:"created_at"`
}

type Accessory struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PartNumber string     `gorm:"size:80;not null" json:"part_number"`
	Name       string     `gorm:"size:180;not null" json:"name"`
	Spec       string     `gorm:"type:text" json:"spec,omitempty"`
	FactoryID  *uuid.UUID `gorm:"type:uuid;index" json:"factory_id,omitempty"`
	Status     string     `gorm:"size:30" json:"status,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// EffectiveParam is a param that applies to a node once inheritance is resolved.
// Depth is 0 when the assignment is declared on the queried node itself.
type EffectiveParam struct {
	Param        Param     `json:"param"`
	Required     bool      `json:"required"`
	SourceNodeID uuid.UUID `json:"source_node_id"`
	Depth        int       `json:"depth"`
}

type EffectiveMethod struct {
	Method       TestMethod `json:"method"`
	SourceNodeID uuid.UUID  `json:"source_node_id"`
	Depth        int        `json:"depth"`
}
