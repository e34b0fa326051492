package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/sourcing/internal/adapters/repo/postgres"
	"github.com/phenrril/sourcing/internal/domain"
	"github.com/phenrril/sourcing/internal/testutil"
)

type fixture struct {
	t   *testing.T
	ctx context.Context

	nodes        *postgres.NodeRepo
	params       *postgres.ParamRepo
	sourcing     *postgres.SourcingRepo
	compare      *postgres.CompareRepo
	contracts    *postgres.ContractRepo
	measurements *postgres.MeasurementRepo

	tree      *ProductTree
	paramUC   *ParamUC
	catalog   *CatalogUC
	compareUC *CompareUC
	techUC    *TechTaskUC
	measureUC *MeasurementUC
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t, postgres.Models()...)
	f := &fixture{
		t:            t,
		ctx:          context.Background(),
		nodes:        postgres.NewNodeRepo(db),
		params:       postgres.NewParamRepo(db),
		sourcing:     postgres.NewSourcingRepo(db),
		compare:      postgres.NewCompareRepo(db),
		contracts:    postgres.NewContractRepo(db),
		measurements: postgres.NewMeasurementRepo(db),
	}
	f.tree = &ProductTree{Nodes: f.nodes}
	f.paramUC = &ParamUC{Tree: f.tree, Assignments: f.nodes, Params: f.params}
	f.catalog = &CatalogUC{
		Tree:        f.tree,
		Nodes:       f.nodes,
		Assignments: f.nodes,
		Params:      f.params,
		Sourcing:    f.sourcing,
		Compare:     f.compare,
		Contracts:   f.contracts,
	}
	f.compareUC = &CompareUC{Compare: f.compare, Sourcing: f.sourcing, Measurements: f.measurements, Params: f.paramUC}
	f.techUC = &TechTaskUC{Contracts: f.contracts, Sourcing: f.sourcing, Measurements: f.measurements, Params: f.paramUC}
	f.measureUC = &MeasurementUC{Measurements: f.measurements, Params: f.params, Sourcing: f.sourcing}
	return f
}

func (f *fixture) node(code string, parent *domain.ProductNode) *domain.ProductNode {
	f.t.Helper()
	n := &domain.ProductNode{Code: code, Name: code}
	if parent != nil {
		n.ParentID = &parent.ID
	}
	if err := f.catalog.CreateNode(f.ctx, n); err != nil {
		f.t.Fatalf("CreateNode %s: %v", code, err)
	}
	return n
}

func (f *fixture) param(code string, vt domain.ValueType, opts ...string) *domain.Param {
	f.t.Helper()
	p := &domain.Param{Code: code, Name: code, ValueType: vt, EnumOptions: opts}
	if err := f.catalog.CreateParam(f.ctx, p); err != nil {
		f.t.Fatalf("CreateParam %s: %v", code, err)
	}
	return p
}

func (f *fixture) assign(n *domain.ProductNode, p *domain.Param, required bool) {
	f.t.Helper()
	if err := f.catalog.AssignParam(f.ctx, &domain.ParamAssignment{NodeID: n.ID, ParamID: p.ID, Required: required}); err != nil {
		f.t.Fatalf("AssignParam %s -> %s: %v", p.Code, n.Code, err)
	}
}

func (f *fixture) factory(code string) *domain.Factory {
	f.t.Helper()
	fa := &domain.Factory{Code: code, Name: code + " Ltd"}
	if err := f.catalog.CreateFactory(f.ctx, fa); err != nil {
		f.t.Fatalf("CreateFactory: %v", err)
	}
	return fa
}

func (f *fixture) supplierModel(name string, fa *domain.Factory, n *domain.ProductNode) *domain.SupplierModel {
	f.t.Helper()
	sm := &domain.SupplierModel{Name: name, FactoryID: fa.ID, NodeID: n.ID}
	if err := f.catalog.CreateSupplierModel(f.ctx, sm); err != nil {
		f.t.Fatalf("CreateSupplierModel: %v", err)
	}
	return sm
}

func (f *fixture) customerModel(sku string, n *domain.ProductNode) *domain.CustomerModel {
	f.t.Helper()
	cm := &domain.CustomerModel{SKU: sku, Name: sku + " model", NodeID: n.ID, Requirements: "Black frame"}
	if err := f.catalog.CreateCustomerModel(f.ctx, cm); err != nil {
		f.t.Fatalf("CreateCustomerModel: %v", err)
	}
	return cm
}

func (f *fixture) link(cm *domain.CustomerModel, sm *domain.SupplierModel, price string) *domain.Link {
	f.t.Helper()
	l := &domain.Link{CustomerModelID: cm.ID, SupplierModelID: sm.ID, Currency: "usd"}
	if price != "" {
		l.LastPrice = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	if err := f.catalog.CreateLink(f.ctx, l); err != nil {
		f.t.Fatalf("CreateLink: %v", err)
	}
	return l
}

func (f *fixture) measure(sm *domain.SupplierModel, p *domain.Param, value string) *domain.Measurement {
	f.t.Helper()
	m, err := f.measureUC.Record(f.ctx, RecordMeasurement{SupplierModelID: sm.ID, ParamID: p.ID, Value: value})
	if err != nil {
		f.t.Fatalf("Record %s=%s: %v", p.Code, value, err)
	}
	return m
}

func codes(eps []domain.EffectiveParam) []string {
	out := make([]string, 0, len(eps))
	for _, ep := range eps {
		out = append(out, ep.Param.Code)
	}
	return out
}

var missing = uuid.MustParse("00000000-0000-0000-0000-0000000000ff")
