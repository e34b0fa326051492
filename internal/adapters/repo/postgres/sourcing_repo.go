package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/sourcing/internal/domain"
)

// SourcingRepo covers the flat sourcing records: factories, supplier and
// customer models, accessories and links.
type SourcingRepo struct{ db *gorm.DB }

func NewSourcingRepo(db *gorm.DB) *SourcingRepo { return &SourcingRepo{db: db} }

var _ domain.SourcingRepo = (*SourcingRepo)(nil)

func (r *SourcingRepo) GetFactory(ctx context.Context, id uuid.UUID) (*domain.Factory, error) {
	return first[domain.Factory](ctx, r.db, "factory", id)
}

func (r *SourcingRepo) ListFactories(ctx context.Context) ([]domain.Factory, error) {
	return list[domain.Factory](ctx, r.db, "")
}

func (r *SourcingRepo) SaveFactory(ctx context.Context, f *domain.Factory) error {
	return save(ctx, r.db, "factory", &f.ID, f)
}

func (r *SourcingRepo) GetSupplierModel(ctx context.Context, id uuid.UUID) (*domain.SupplierModel, error) {
	return first[domain.SupplierModel](ctx, r.db, "supplier model", id)
}

func (r *SourcingRepo) ListSupplierModels(ctx context.Context) ([]domain.SupplierModel, error) {
	return list[domain.SupplierModel](ctx, r.db, "")
}

func (r *SourcingRepo) SaveSupplierModel(ctx context.Context, m *domain.SupplierModel) error {
	return save(ctx, r.db, "supplier model", &m.ID, m)
}

func (r *SourcingRepo) GetCustomerModel(ctx context.Context, id uuid.UUID) (*domain.CustomerModel, error) {
	return first[domain.CustomerModel](ctx, r.db, "customer model", id)
}

func (r *SourcingRepo) ListCustomerModels(ctx context.Context) ([]domain.CustomerModel, error) {
	return list[domain.CustomerModel](ctx, r.db, "")
}

func (r *SourcingRepo) SaveCustomerModel(ctx context.Context, m *domain.CustomerModel) error {
	return save(ctx, r.db, "customer model", &m.ID, m)
}

func (r *SourcingRepo) GetAccessory(ctx context.Context, id uuid.UUID) (*domain.Accessory, error) {
	return first[domain.Accessory](ctx, r.db, "accessory", id)
}

func (r *SourcingRepo) ListAccessories(ctx context.Context) ([]domain.Accessory, error) {
	return list[domain.Accessory](ctx, r.db, "")
}

func (r *SourcingRepo) SaveAccessory(ctx context.Context, a *domain.Accessory) error {
	return save(ctx, r.db, "accessory", &a.ID, a)
}

func (r *SourcingRepo) ListCustomerAccessories(ctx context.Context, customerModelID uuid.UUID) ([]domain.CustomerAccessory, error) {
	return list[domain.CustomerAccessory](ctx, r.db, "customer_model_id = ?", customerModelID)
}

func (r *SourcingRepo) SaveCustomerAccessory(ctx context.Context, a *domain.CustomerAccessory) error {
	return save(ctx, r.db, "customer accessory", &a.ID, a)
}

func (r *SourcingRepo) GetLink(ctx context.Context, id uuid.UUID) (*domain.Link, error) {
	return first[domain.Link](ctx, r.db, "link", id)
}

func (r *SourcingRepo) ListLinks(ctx context.Context) ([]domain.Link, error) {
	return list[domain.Link](ctx, r.db, "")
}

func (r *SourcingRepo) SaveLink(ctx context.Context, l *domain.Link) error {
	return save(ctx, r.db, "link", &l.ID, l)
}
