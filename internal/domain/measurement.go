package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Measurement rows are append-only. A later correction is a new row.
type Measurement struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	SupplierModelID uuid.UUID           `gorm:"type:uuid;index;not null" json:"supplier_model_id"`
	ParamID         uuid.UUID           `gorm:"type:uuid;index;not null" json:"param_id"`
	ValueType       ValueType           `gorm:"type:varchar(10);not null" json:"value_type"`
	NumValue        decimal.NullDecimal `gorm:"type:decimal(24,6)" json:"num_value"`
	TextValue       string              `gorm:"type:text" json:"text_value,omitempty"`
	UOM             string              `gorm:"size:30" json:"uom,omitempty"`
	ConditionTag    string              `gorm:"size:60" json:"condition_tag,omitempty"`
	MeasuredAt      time.Time           `gorm:"index" json:"measured_at"`
	CreatedAt       time.Time           `json:"created_at"`
}

func (m *Measurement) Value() Value {
	return Value{Type: m.ValueType, Num: m.NumValue.Decimal, Text: m.TextValue}
}

func (m *Measurement) SetValue(v Value) {
	m.ValueType = v.Type
	m.NumValue = decimal.NullDecimal{}
	m.TextValue = ""
	if v.Type == ValueNumeric {
		m.NumValue = decimal.NewNullDecimal(v.Num)
		return
	}
	m.TextValue = v.Text
}

// Newer reports whether m should replace o as the current reading.
func (m *Measurement) Newer(o *Measurement) bool {
	if !m.MeasuredAt.Equal(o.MeasuredAt) {
		return m.MeasuredAt.After(o.MeasuredAt)
	}
	if !m.CreatedAt.Equal(o.CreatedAt) {
		return m.CreatedAt.After(o.CreatedAt)
	}
	return strings.Compare(m.ID.String(), o.ID.String()) > 0
}

// Numeric readings must fit the num_value column: at most NumericScale
// fractional digits and an absolute value below 10^NumericIntDigits.
const (
	NumericScale     = 6
	NumericIntDigits = 18
)

var numericLimit = decimal.New(1, NumericIntDigits)

// Value is a measurement value tagged with the param value type it was
// validated against. Num is only meaningful for numeric values.
type Value struct {
	Type ValueType
	Num  decimal.Decimal
	Text string
}

func NumericValue(d decimal.Decimal) Value { return Value{Type: ValueNumeric, Num: d} }
func TextValue(s string) Value            { return Value{Type: ValueText, Text: s} }
func EnumValue(s string) Value            { return Value{Type: ValueEnum, Text: s} }

func (v Value) String() string {
	if v.Type == ValueNumeric {
		return v.Num.String()
	}
	return v.Text
}

func (v Value) Validate(p *Param) error {
	if v.Type != p.ValueType {
		return Errorf(ErrValidation, "param", p.ID, "%s expects %s value, got %s", p.Code, p.ValueType, v.Type)
	}
	switch v.Type {
	case ValueText:
		if strings.TrimSpace(v.Text) == "" {
			return Errorf(ErrValidation, "param", p.ID, "%s: empty text value", p.Code)
		}
	case ValueEnum:
		if !slices.Contains([]string(p.EnumOptions), v.Text) {
			return Errorf(ErrValidation, "param", p.ID, "%s: %q is not one of %v", p.Code, v.Text, []string(p.EnumOptions))
		}
	case ValueNumeric:
		if !v.Num.Equal(v.Num.Truncate(NumericScale)) {
			return Errorf(ErrValidation, "param", p.ID, "%s: %s has more than %d decimal places", p.Code, v.Num, NumericScale)
		}
		if v.Num.Abs().GreaterThanOrEqual(numericLimit) {
			return Errorf(ErrValidation, "param", p.ID, "%s: %s is out of range", p.Code, v.Num)
		}
	default:
		return Errorf(ErrValidation, "param", p.ID, "unknown value type %q", v.Type)
	}
	return nil
}

// ParseValue reads raw input as a value of the param's declared type.
func ParseValue(p *Param, raw string) (Value, error) {
	s := strings.TrimSpace(raw)
	var v Value
	switch p.ValueType {
	case ValueNumeric:
		d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
		if err != nil {
			return Value{}, Errorf(ErrValidation, "param", p.ID, "%s: %q is not numeric", p.Code, raw)
		}
		v = NumericValue(d)
	case ValueEnum:
		v = EnumValue(s)
	case ValueText:
		v = TextValue(s)
	default:
		return Value{}, Errorf(ErrValidation, "param", p.ID, "unknown value type %q", p.ValueType)
	}
	if err := v.Validate(p); err != nil {
		return Value{}, err
	}
	return v, nil
}
