package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/sourcing/internal/domain"
)

type CompareRepo struct{ db *gorm.DB }

func NewCompareRepo(db *gorm.DB) *CompareRepo { return &CompareRepo{db: db} }

var _ domain.CompareRepo = (*CompareRepo)(nil)

func (r *CompareRepo) GetCompareTable(ctx context.Context, id uuid.UUID) (*domain.CompareTable, error) {
	return first[domain.CompareTable](ctx, r.db, "compare table", id)
}

func (r *CompareRepo) ListCompareTables(ctx context.Context) ([]domain.CompareTable, error) {
	return list[domain.CompareTable](ctx, r.db, "")
}

func (r *CompareRepo) SaveCompareTable(ctx context.Context, t *domain.CompareTable) error {
	if t.Status == "" {
		t.Status = domain.CompareStatusDraft
	}
	return save(ctx, r.db, "compare table", &t.ID, t)
}

// ListCompareLines returns the lines of a table in the order they were added.
func (r *CompareRepo) ListCompareLines(ctx context.Context, tableID uuid.UUID) ([]domain.CompareLine, error) {
	return list[domain.CompareLine](ctx, r.db, "compare_table_id = ?", tableID)
}

func (r *CompareRepo) GetCompareLine(ctx context.Context, id uuid.UUID) (*domain.CompareLine, error) {
	return first[domain.CompareLine](ctx, r.db, "compare line", id)
}

func (r *CompareRepo) SaveCompareLine(ctx context.Context, l *domain.CompareLine) error {
	return save(ctx, r.db, "compare line", &l.ID, l)
}

// MarkCompareTableReviewed is a single UPDATE guarded by NOT EXISTS, matching
// CompareLine.Reviewed: a line counts once it has a priority or a non-blank
// comment.
func (r *CompareRepo) MarkCompareTableReviewed(ctx context.Context, tableID uuid.UUID) (bool, error) {
	pending := r.db.Model(&domain.CompareLine{}).Select("1").
		Where("compare_table_id = ? AND engineer_priority IS NULL AND TRIM(COALESCE(engineer_comments, '')) = ''", tableID)
	res := r.db.WithContext(ctx).Model(&domain.CompareTable{}).
		Where("id = ? AND status = ?", tableID, domain.CompareStatusSent).
		Where("EXISTS (?)", r.db.Model(&domain.CompareLine{}).Select("1").Where("compare_table_id = ?", tableID)).
		Where("NOT EXISTS (?)", pending).
		Update("status", domain.CompareStatusReviewed)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
