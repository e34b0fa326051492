package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/sourcing/internal/domain"
)

type MeasurementRepo struct{ db *gorm.DB }

func NewMeasurementRepo(db *gorm.DB) *MeasurementRepo { return &MeasurementRepo{db: db} }

var _ domain.MeasurementRepo = (*MeasurementRepo)(nil)

// GetMeasurements returns the history of a supplier model oldest first.
func (r *MeasurementRepo) GetMeasurements(ctx context.Context, supplierModelID uuid.UUID) ([]domain.Measurement, error) {
	list := []domain.Measurement{}
	if err := r.db.WithContext(ctx).
		Where("supplier_model_id = ?", supplierModelID).
		Order("measured_at asc").Order("created_at asc").Order("id asc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *MeasurementRepo) AppendMeasurement(ctx context.Context, m *domain.Measurement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.MeasuredAt.IsZero() {
		m.MeasuredAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(m).Error
}
