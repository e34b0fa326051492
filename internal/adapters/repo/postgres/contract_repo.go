package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/sourcing/internal/domain"
)

type ContractRepo struct{ db *gorm.DB }

func NewContractRepo(db *gorm.DB) *ContractRepo { return &ContractRepo{db: db} }

var _ domain.ContractRepo = (*ContractRepo)(nil)

func (r *ContractRepo) GetContract(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	return first[domain.Contract](ctx, r.db, "contract", id)
}

func (r *ContractRepo) ListContracts(ctx context.Context) ([]domain.Contract, error) {
	return list[domain.Contract](ctx, r.db, "")
}

func (r *ContractRepo) SaveContract(ctx context.Context, c *domain.Contract) error {
	return save(ctx, r.db, "contract", &c.ID, c)
}

func (r *ContractRepo) ListContractLines(ctx context.Context, contractID uuid.UUID) ([]domain.ContractLine, error) {
	return list[domain.ContractLine](ctx, r.db, "contract_id = ?", contractID)
}

func (r *ContractRepo) SaveContractLine(ctx context.Context, l *domain.ContractLine) error {
	return save(ctx, r.db, "contract line", &l.ID, l)
}

func (r *ContractRepo) GetMaxTechTaskVersion(ctx context.Context, contractID uuid.UUID) (int, error) {
	return maxTechTaskVersion(r.db.WithContext(ctx), contractID)
}

func maxTechTaskVersion(db *gorm.DB, contractID uuid.UUID) (int, error) {
	var v int
	if err := db.Model(&domain.TechTask{}).
		Where("contract_id = ?", contractID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&v).Error; err != nil {
		return 0, err
	}
	return v, nil
}

// InsertTechTask locks the contract row (postgres) so concurrent generations
// for one contract queue up behind each other. The unique
// (contract_id, version) index is the backstop for every other dialect.
func (r *ContractRepo) InsertTechTask(ctx context.Context, t *domain.TechTask) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.GeneratedAt.IsZero() {
		t.GeneratedAt = time.Now().UTC()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			var c domain.Contract
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&c, "id = ?", t.ContractID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.NotFound("contract", t.ContractID)
				}
				return err
			}
		}
		latest, err := maxTechTaskVersion(tx, t.ContractID)
		if err != nil {
			return err
		}
		t.Version = latest + 1
		return tx.Create(t).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.Errorf(domain.ErrConcurrencyConflict, "contract", t.ContractID, "tech task version %d already taken, retry", t.Version)
	}
	return err
}

func (r *ContractRepo) ListTechTasks(ctx context.Context, contractID uuid.UUID) ([]domain.TechTask, error) {
	list := []domain.TechTask{}
	if err := r.db.WithContext(ctx).Where("contract_id = ?", contractID).Order("version asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
