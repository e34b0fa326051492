package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/phenrril/sourcing/internal/domain"
)

// ProductTree answers hierarchy questions over the product node records.
type ProductTree struct {
	Nodes domain.ProductNodeRepo
}

// Ancestors returns the chain from the node up to its root, the node itself
// first. The walk is iterative and bounded by the number of stored nodes, so
// malformed parent data ends in ErrInvalidHierarchy instead of a loop.
func (t *ProductTree) Ancestors(ctx context.Context, id uuid.UUID) ([]domain.ProductNode, error) {
	node, err := t.Nodes.GetProductNode(ctx, id)
	if err != nil {
		return nil, err
	}
	total, err := t.Nodes.CountProductNodes(ctx)
	if err != nil {
		return nil, err
	}
	chain := []domain.ProductNode{*node}
	seen := map[uuid.UUID]struct{}{node.ID: {}}
	for cur := node; cur.ParentID != nil; {
		pid := *cur.ParentID
		if _, ok := seen[pid]; ok {
			return nil, domain.Errorf(domain.ErrInvalidHierarchy, "product node", id, "cycle: %s points back to %s", cur.ID, pid)
		}
		if int64(len(chain)) >= total {
			return nil, domain.Errorf(domain.ErrInvalidHierarchy, "product node", id, "ancestor chain exceeds %d nodes", total)
		}
		parent, err := t.Nodes.GetProductNode(ctx, pid)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.Errorf(domain.ErrInvalidHierarchy, "product node", cur.ID, "parent %s does not exist", pid)
			}
			return nil, err
		}
		seen[pid] = struct{}{}
		chain = append(chain, *parent)
		cur = parent
	}
	return chain, nil
}

// CheckParent verifies that nodeID may hang under parentID: the parent must
// exist, its own chain must be sound, and nodeID must not be among its
// ancestors. nodeID may be uuid.Nil for a node that is not stored yet.
func (t *ProductTree) CheckParent(ctx context.Context, nodeID, parentID uuid.UUID) error {
	if nodeID != uuid.Nil && nodeID == parentID {
		return domain.Errorf(domain.ErrInvalidHierarchy, "product node", nodeID, "node cannot be its own parent")
	}
	chain, err := t.Ancestors(ctx, parentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Errorf(domain.ErrInvalidHierarchy, "product node", nodeID, "parent %s does not exist", parentID)
		}
		return err
	}
	if nodeID == uuid.Nil {
		return nil
	}
	for _, n := range chain {
		if n.ID == nodeID {
			return domain.Errorf(domain.ErrInvalidHierarchy, "product node", nodeID, "parent %s is a descendant", parentID)
		}
	}
	return nil
}
