package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/sourcing/internal/domain"
)

// Models lists every table the repositories in this package own, in
// dependency order for AutoMigrate.
func Models() []any {
	return []any{
		&domain.Factory{}, &domain.ProductNode{}, &domain.Param{}, &domain.ParamAssignment{},
		&domain.TestMethod{}, &domain.Tolerance{}, &domain.Accessory{},
		&domain.SupplierModel{}, &domain.Measurement{}, &domain.CustomerModel{}, &domain.CustomerAccessory{},
		&domain.Link{}, &domain.CompareTable{}, &domain.CompareLine{},
		&domain.Contract{}, &domain.ContractLine{}, &domain.TechTask{},
	}
}

func first[T any](ctx context.Context, db *gorm.DB, entity string, id uuid.UUID) (*T, error) {
	var v T
	if err := db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(entity, id)
		}
		return nil, err
	}
	return &v, nil
}

func list[T any](ctx context.Context, db *gorm.DB, where string, args ...any) ([]T, error) {
	out := []T{}
	q := db.WithContext(ctx)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Order("created_at asc").Order("id asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// save inserts when id is unset and upserts otherwise.
func save[T any](ctx context.Context, db *gorm.DB, entity string, id *uuid.UUID, v *T) error {
	q := db.WithContext(ctx)
	var err error
	if *id == uuid.Nil {
		*id = uuid.New()
		err = q.Create(v).Error
	} else {
		err = q.Save(v).Error
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.Errorf(domain.ErrValidation, entity, *id, "duplicate key")
	}
	return err
}
