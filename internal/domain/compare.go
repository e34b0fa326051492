package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CompareStatus string

const (
	CompareStatusDraft    CompareStatus = "draft"
	CompareStatusSent     CompareStatus = "sent_to_engineer"
	CompareStatusReviewed CompareStatus = "reviewed"
)

func (s CompareStatus) Valid() bool {
	switch s {
	case CompareStatusDraft, CompareStatusSent, CompareStatusReviewed:
		return true
	}
	return false
}

// CanTransition reports whether a table may move from s to next. Moving to
// the current status is allowed and is a no-op.
func (s CompareStatus) CanTransition(next CompareStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case CompareStatusDraft:
		return next == CompareStatusSent
	case CompareStatusSent:
		return next == CompareStatusReviewed
	}
	return false
}

type CompareTable struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string        `gorm:"size:180" json:"name"`
	CustomerModelID  uuid.UUID     `gorm:"type:uuid;index;not null" json:"customer_model_id"`
	Status           CompareStatus `gorm:"type:varchar(30);index;not null;default:draft" json:"status"`
	SentToEngineerAt *time.Time    `json:"sent_to_engineer_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type CompareLine struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompareTableID   uuid.UUID `gorm:"type:uuid;index;not null" json:"compare_table_id"`
	LinkID           uuid.UUID `gorm:"type:uuid;index;not null" json:"link_id"`
	EngineerPriority *int      `json:"engineer_priority,omitempty"`
	EngineerComments *string   `gorm:"type:text" json:"engineer_comments,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (l *CompareLine) Reviewed() bool {
	return l.EngineerPriority != nil || (l.EngineerComments != nil && strings.TrimSpace(*l.EngineerComments) != "")
}

// Matrix is the side-by-side view of a compare table: one column per
// effective param of the customer model's node, one row per compare line.
type Matrix struct {
	CompareTableID  uuid.UUID        `json:"compare_table_id"`
	CustomerModelID uuid.UUID        `json:"customer_model_id"`
	Status          CompareStatus    `json:"status"`
	Params          []EffectiveParam `json:"params"`
	Rows            []MatrixRow      `json:"rows"`
}

type MatrixRow struct {
	CompareLineID    uuid.UUID           `json:"compare_line_id"`
	LinkID           uuid.UUID           `json:"link_id"`
	SupplierModelID  uuid.UUID           `json:"supplier_model_id"`
	SupplierModel    string              `json:"supplier_model"`
	FactoryName      string              `json:"factory_name"`
	LinkStatus       string              `json:"link_status,omitempty"`
	LastPrice        decimal.NullDecimal `json:"last_price"`
	Currency         string              `json:"currency,omitempty"`
	EngineerPriority *int                `json:"engineer_priority,omitempty"`
	EngineerComments *string             `json:"engineer_comments,omitempty"`
	// Values is keyed by param code. A param without any measurement has no entry.
	Values map[string]Cell `json:"values"`
}

type Cell struct {
	MeasurementID uuid.UUID `json:"measurement_id"`
	Type          ValueType `json:"type"`
	Value         string    `json:"value"`
	UOM           string    `json:"uom,omitempty"`
	ConditionTag  string    `json:"condition_tag,omitempty"`
	MeasuredAt    time.Time `json:"measured_at"`
}
