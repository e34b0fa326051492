package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/sourcing/internal/domain"
)

type NodeRepo struct{ db *gorm.DB }

func NewNodeRepo(db *gorm.DB) *NodeRepo { return &NodeRepo{db: db} }

var (
	_ domain.ProductNodeRepo = (*NodeRepo)(nil)
	_ domain.AssignmentRepo  = (*NodeRepo)(nil)
)

func (r *NodeRepo) GetProductNode(ctx context.Context, id uuid.UUID) (*domain.ProductNode, error) {
	return first[domain.ProductNode](ctx, r.db, "product node", id)
}

func (r *NodeRepo) CountProductNodes(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.ProductNode{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *NodeRepo) ListProductNodes(ctx context.Context) ([]domain.ProductNode, error) {
	return list[domain.ProductNode](ctx, r.db, "")
}

func (r *NodeRepo) SaveProductNode(ctx context.Context, n *domain.ProductNode) error {
	return save(ctx, r.db, "product node", &n.ID, n)
}

func (r *NodeRepo) ListParamAssignments(ctx context.Context, nodeID uuid.UUID) ([]domain.ParamAssignment, error) {
	return list[domain.ParamAssignment](ctx, r.db, "node_id = ?", nodeID)
}

func (r *NodeRepo) SaveParamAssignment(ctx context.Context, a *domain.ParamAssignment) error {
	return save(ctx, r.db, "param assignment", &a.ID, a)
}

func (r *NodeRepo) ListTestMethods(ctx context.Context, nodeID uuid.UUID) ([]domain.TestMethod, error) {
	return list[domain.TestMethod](ctx, r.db, "node_id = ?", nodeID)
}

func (r *NodeRepo) SaveTestMethod(ctx context.Context, m *domain.TestMethod) error {
	return save(ctx, r.db, "test method", &m.ID, m)
}
