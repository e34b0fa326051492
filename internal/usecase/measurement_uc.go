package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/sourcing/internal/domain"
)

type MeasurementUC struct {
	Measurements domain.MeasurementRepo
	Params       domain.ParamRepo
	Sourcing     domain.SourcingRepo
}

type RecordMeasurement struct {
	SupplierModelID uuid.UUID  `json:"supplier_model_id"`
	ParamID         uuid.UUID  `json:"param_id"`
	ParamCode       string     `json:"param_code"`
	Value           string     `json:"value"`
	UOM             string     `json:"uom"`
	ConditionTag    string     `json:"condition_tag"`
	MeasuredAt      *time.Time `json:"measured_at"`
}

// Record appends a reading after checking the value against the param's
// declared type. The param is looked up by id, or by code when no id is given.
func (uc *MeasurementUC) Record(ctx context.Context, in RecordMeasurement) (*domain.Measurement, error) {
	sm, err := uc.Sourcing.GetSupplierModel(ctx, in.SupplierModelID)
	if err != nil {
		return nil, err
	}
	var p *domain.Param
	if in.ParamID != uuid.Nil {
		p, err = uc.Params.GetParam(ctx, in.ParamID)
	} else {
		p, err = uc.Params.FindParamByCode(ctx, in.ParamCode)
	}
	if err != nil {
		return nil, err
	}
	v, err := domain.ParseValue(p, in.Value)
	if err != nil {
		return nil, err
	}
	m := &domain.Measurement{
		SupplierModelID: sm.ID,
		ParamID:         p.ID,
		UOM:             in.UOM,
		ConditionTag:    in.ConditionTag,
	}
	if m.UOM == "" {
		m.UOM = p.UOMDefault
	}
	if in.MeasuredAt != nil {
		m.MeasuredAt = in.MeasuredAt.UTC()
	}
	m.SetValue(v)
	if err := uc.Measurements.AppendMeasurement(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (uc *MeasurementUC) History(ctx context.Context, supplierModelID uuid.UUID) ([]domain.Measurement, error) {
	if _, err := uc.Sourcing.GetSupplierModel(ctx, supplierModelID); err != nil {
		return nil, err
	}
	return uc.Measurements.GetMeasurements(ctx, supplierModelID)
}
