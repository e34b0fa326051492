package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/sourcing/internal/domain"
)

type ParamRepo struct{ db *gorm.DB }

func NewParamRepo(db *gorm.DB) *ParamRepo { return &ParamRepo{db: db} }

var _ domain.ParamRepo = (*ParamRepo)(nil)

func (r *ParamRepo) GetParam(ctx context.Context, id uuid.UUID) (*domain.Param, error) {
	return first[domain.Param](ctx, r.db, "param", id)
}

func (r *ParamRepo) FindParamByCode(ctx context.Context, code string) (*domain.Param, error) {
	var p domain.Param
	c := strings.TrimSpace(code)
	if c == "" {
		return nil, domain.Invalid("empty param code")
	}
	if err := r.db.WithContext(ctx).First(&p, "code = ?", c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.Errorf(domain.ErrNotFound, "param", uuid.Nil, "code %q", c)
		}
		return nil, err
	}
	return &p, nil
}

func (r *ParamRepo) ListParams(ctx context.Context) ([]domain.Param, error) {
	list := []domain.Param{}
	if err := r.db.WithContext(ctx).Order("code asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ParamRepo) ListParamsByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Param, error) {
	list := []domain.Param{}
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("code asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ParamRepo) SaveParam(ctx context.Context, p *domain.Param) error {
	return save(ctx, r.db, "param", &p.ID, p)
}

func (r *ParamRepo) ListTolerances(ctx context.Context, paramID uuid.UUID) ([]domain.Tolerance, error) {
	return list[domain.Tolerance](ctx, r.db, "param_id = ?", paramID)
}

func (r *ParamRepo) SaveTolerance(ctx context.Context, t *domain.Tolerance) error {
	return save(ctx, r.db, "tolerance", &t.ID, t)
}
