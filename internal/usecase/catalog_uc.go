package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/sourcing/internal/domain"
)

// CatalogUC is the pass-through record layer. It checks references before
// writing and otherwise hands records straight to the repositories, which
// callers may also use directly for reads.
type CatalogUC struct {
	Tree        *ProductTree
	Nodes       domain.ProductNodeRepo
	Assignments domain.AssignmentRepo
	Params      domain.ParamRepo
	Sourcing    domain.SourcingRepo
	Compare     domain.CompareRepo
	Contracts   domain.ContractRepo
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return domain.Invalid("%s is required", field)
	}
	return nil
}

func (uc *CatalogUC) CreateFactory(ctx context.Context, f *domain.Factory) error {
	if err := required("code", f.Code); err != nil {
		return err
	}
	if err := required("name", f.Name); err != nil {
		return err
	}
	f.ID = uuid.Nil
	return uc.Sourcing.SaveFactory(ctx, f)
}

func (uc *CatalogUC) CreateNode(ctx context.Context, n *domain.ProductNode) error {
	if err := required("code", n.Code); err != nil {
		return err
	}
	if err := required("name", n.Name); err != nil {
		return err
	}
	n.ID = uuid.Nil
	if n.ParentID != nil {
		if err := uc.Tree.CheckParent(ctx, uuid.Nil, *n.ParentID); err != nil {
			return err
		}
	}
	return uc.Nodes.SaveProductNode(ctx, n)
}

// UpdateNode renames or re-parents a node. A parent change that would make
// the node its own ancestor is rejected.
func (uc *CatalogUC) UpdateNode(ctx context.Context, id uuid.UUID, code, name *string, parentID *uuid.UUID, clearParent bool) (*domain.ProductNode, error) {
	n, err := uc.Nodes.GetProductNode(ctx, id)
	if err != nil {
		return nil, err
	}
	if code != nil {
		if err := required("code", *code); err != nil {
			return nil, err
		}
		n.Code = *code
	}
	if name != nil {
		if err := required("name", *name); err != nil {
			return nil, err
		}
		n.Name = *name
	}
	switch {
	case clearParent:
		n.ParentID = nil
	case parentID != nil:
		if err := uc.Tree.CheckParent(ctx, n.ID, *parentID); err != nil {
			return nil, err
		}
		pid := *parentID
		n.ParentID = &pid
	}
	if err := uc.Nodes.SaveProductNode(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (uc *CatalogUC) CreateParam(ctx context.Context, p *domain.Param) error {
	if err := required("code", p.Code); err != nil {
		return err
	}
	if err := required("name", p.Name); err != nil {
		return err
	}
	if !p.ValueType.Valid() {
		return domain.Invalid("value_type must be numeric, text or enum, got %q", p.ValueType)
	}
	if p.ValueType == domain.ValueEnum && len(p.EnumOptions) == 0 {
		return domain.Invalid("enum param %s needs enum_options", p.Code)
	}
	p.ID = uuid.Nil
	return uc.Params.SaveParam(ctx, p)
}

func (uc *CatalogUC) AssignParam(ctx context.Context, a *domain.ParamAssignment) error {
	if _, err := uc.Nodes.GetProductNode(ctx, a.NodeID); err != nil {
		return err
	}
	if _, err := uc.Params.GetParam(ctx, a.ParamID); err != nil {
		return err
	}
	a.ID = uuid.Nil
	return uc.Assignments.SaveParamAssignment(ctx, a)
}

func (uc *CatalogUC) CreateTestMethod(ctx context.Context, m *domain.TestMethod) error {
	if _, err := uc.Nodes.GetProductNode(ctx, m.NodeID); err != nil {
		return err
	}
	if err := required("title", m.Title); err != nil {
		return err
	}
	m.ID = uuid.Nil
	return uc.Assignments.SaveTestMethod(ctx, m)
}

func (uc *CatalogUC) CreateTolerance(ctx context.Context, t *domain.Tolerance) error {
	if _, err := uc.Params.GetParam(ctx, t.ParamID); err != nil {
		return err
	}
	if err := required("rule", t.Rule); err != nil {
		return err
	}
	t.ID = uuid.Nil
	return uc.Params.SaveTolerance(ctx, t)
}

func (uc *CatalogUC) CreateAccessory(ctx context.Context, a *domain.Accessory) error {
	if err := required("part_number", a.PartNumber); err != nil {
		return err
	}
	if a.FactoryID != nil {
		if _, err := uc.Sourcing.GetFactory(ctx, *a.FactoryID); err != nil {
			return err
		}
	}
	a.ID = uuid.Nil
	return uc.Sourcing.SaveAccessory(ctx, a)
}

func (uc *CatalogUC) CreateSupplierModel(ctx context.Context, m *domain.SupplierModel) error {
	if err := required("name", m.Name); err != nil {
		return err
	}
	if _, err := uc.Sourcing.GetFactory(ctx, m.FactoryID); err != nil {
		return err
	}
	if _, err := uc.Nodes.GetProductNode(ctx, m.NodeID); err != nil {
		return err
	}
	m.ID = uuid.Nil
	return uc.Sourcing.SaveSupplierModel(ctx, m)
}

func (uc *CatalogUC) CreateCustomerModel(ctx context.Context, m *domain.CustomerModel) error {
	if err := required("sku", m.SKU); err != nil {
		return err
	}
	if _, err := uc.Nodes.GetProductNode(ctx, m.NodeID); err != nil {
		return err
	}
	m.ID = uuid.Nil
	return uc.Sourcing.SaveCustomerModel(ctx, m)
}

func (uc *CatalogUC) AddCustomerAccessory(ctx context.Context, a *domain.CustomerAccessory) error {
	if _, err := uc.Sourcing.GetCustomerModel(ctx, a.CustomerModelID); err != nil {
		return err
	}
	if _, err := uc.Sourcing.GetAccessory(ctx, a.AccessoryID); err != nil {
		return err
	}
	if a.Qty <= 0 {
		a.Qty = 1
	}
	a.ID = uuid.Nil
	return uc.Sourcing.SaveCustomerAccessory(ctx, a)
}

func (uc *CatalogUC) CreateLink(ctx context.Context, l *domain.Link) error {
	if _, err := uc.Sourcing.GetCustomerModel(ctx, l.CustomerModelID); err != nil {
		return err
	}
	if _, err := uc.Sourcing.GetSupplierModel(ctx, l.SupplierModelID); err != nil {
		return err
	}
	l.Currency = strings.ToUpper(strings.TrimSpace(l.Currency))
	l.ID = uuid.Nil
	return uc.Sourcing.SaveLink(ctx, l)
}

func (uc *CatalogUC) CreateCompareTable(ctx context.Context, t *domain.CompareTable) error {
	if _, err := uc.Sourcing.GetCustomerModel(ctx, t.CustomerModelID); err != nil {
		return err
	}
	t.ID = uuid.Nil
	t.Status = domain.CompareStatusDraft
	t.SentToEngineerAt = nil
	return uc.Compare.SaveCompareTable(ctx, t)
}

func (uc *CatalogUC) CreateContract(ctx context.Context, c *domain.Contract) error {
	if err := required("code", c.Code); err != nil {
		return err
	}
	if _, err := uc.Sourcing.GetFactory(ctx, c.FactoryID); err != nil {
		return err
	}
	c.ID = uuid.Nil
	return uc.Contracts.SaveContract(ctx, c)
}

func (uc *CatalogUC) AddContractLine(ctx context.Context, l *domain.ContractLine) error {
	if _, err := uc.Contracts.GetContract(ctx, l.ContractID); err != nil {
		return err
	}
	if _, err := uc.Sourcing.GetLink(ctx, l.LinkID); err != nil {
		return err
	}
	if l.Qty <= 0 {
		return domain.Invalid("qty must be positive, got %d", l.Qty)
	}
	l.Currency = strings.ToUpper(strings.TrimSpace(l.Currency))
	l.ID = uuid.Nil
	return uc.Contracts.SaveContractLine(ctx, l)
}
