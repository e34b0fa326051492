package usecase

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/phenrril/sourcing/internal/domain"
)

// ParamUC resolves which params and test methods apply to a product node
// once inheritance down the taxonomy is applied. It keeps no state between
// calls and is safe for concurrent use.
type ParamUC struct {
	Tree        *ProductTree
	Assignments domain.AssignmentRepo
	Params      domain.ParamRepo
}

// EffectiveParams merges the assignments declared on the node and on every
// ancestor. The nearest declaration of a param decides its required flag.
// Params declared on the node itself come first, then inherited ones by
// ancestor proximity; within one node they are ordered by code.
func (uc *ParamUC) EffectiveParams(ctx context.Context, nodeID uuid.UUID) ([]domain.EffectiveParam, error) {
	chain, err := uc.Tree.Ancestors(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	type pick struct {
		a     domain.ParamAssignment
		depth int
	}
	picks := []pick{}
	seen := map[uuid.UUID]struct{}{}
	for depth, n := range chain {
		list, err := uc.Assignments.ListParamAssignments(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range list {
			if _, ok := seen[a.ParamID]; ok {
				continue
			}
			seen[a.ParamID] = struct{}{}
			picks = append(picks, pick{a: a, depth: depth})
		}
	}

	ids := make([]uuid.UUID, 0, len(picks))
	for _, p := range picks {
		ids = append(ids, p.a.ParamID)
	}
	params, err := uc.Params.ListParamsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]domain.Param, len(params))
	for _, p := range params {
		byID[p.ID] = p
	}

	out := make([]domain.EffectiveParam, 0, len(picks))
	for _, p := range picks {
		param, ok := byID[p.a.ParamID]
		if !ok {
			return nil, domain.Errorf(domain.ErrInvalidReference, "param assignment", p.a.ID, "param %s does not exist", p.a.ParamID)
		}
		out = append(out, domain.EffectiveParam{
			Param:        param,
			Required:     p.a.Required,
			SourceNodeID: p.a.NodeID,
			Depth:        p.depth,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return out[i].Param.Code < out[j].Param.Code
	})
	return out, nil
}

// EffectiveMethods collects the test methods of the node and its ancestors,
// nearest node first and by title within a node.
func (uc *ParamUC) EffectiveMethods(ctx context.Context, nodeID uuid.UUID) ([]domain.EffectiveMethod, error) {
	chain, err := uc.Tree.Ancestors(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	out := []domain.EffectiveMethod{}
	for depth, n := range chain {
		list, err := uc.Assignments.ListTestMethods(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Title != list[j].Title {
				return list[i].Title < list[j].Title
			}
			return list[i].ID.String() < list[j].ID.String()
		})
		for _, m := range list {
			out = append(out, domain.EffectiveMethod{Method: m, SourceNodeID: n.ID, Depth: depth})
		}
	}
	return out, nil
}
