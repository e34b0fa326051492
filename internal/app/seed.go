package app

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/phenrril/sourcing/internal/domain"
	"github.com/phenrril/sourcing/internal/usecase"
)

//go:embed demo_seed.yaml
var demoSeed []byte

// Seed file layout. Records refer to each other by code, sku or name.
type seedFile struct {
	Factories []struct {
		Code       string `yaml:"code"`
		Name       string `yaml:"name"`
		AuditScore *int   `yaml:"audit_score"`
		RiskScore  *int   `yaml:"risk_score"`
	} `yaml:"factories"`
	Nodes []struct {
		Code   string `yaml:"code"`
		Name   string `yaml:"name"`
		Parent string `yaml:"parent"`
	} `yaml:"nodes"`
	Params []struct {
		Code        string   `yaml:"code"`
		Name        string   `yaml:"name"`
		ValueType   string   `yaml:"value_type"`
		UOM         string   `yaml:"uom"`
		EnumOptions []string `yaml:"enum_options"`
		Tolerance   string   `yaml:"tolerance"`
	} `yaml:"params"`
	Assignments []struct {
		Node     string `yaml:"node"`
		Param    string `yaml:"param"`
		Required bool   `yaml:"required"`
	} `yaml:"assignments"`
	TestMethods []struct {
		Node  string `yaml:"node"`
		Title string `yaml:"title"`
		Text  string `yaml:"text"`
	} `yaml:"test_methods"`
	Accessories []struct {
		PartNumber string `yaml:"part_number"`
		Name       string `yaml:"name"`
		Spec       string `yaml:"spec"`
		Factory    string `yaml:"factory"`
	} `yaml:"accessories"`
	SupplierModels []struct {
		Name         string `yaml:"name"`
		Factory      string `yaml:"factory"`
		Node         string `yaml:"node"`
		Status       string `yaml:"status"`
		Notes        string `yaml:"notes"`
		Measurements []struct {
			Param      string    `yaml:"param"`
			Value      string    `yaml:"value"`
			UOM        string    `yaml:"uom"`
			Condition  string    `yaml:"condition"`
			MeasuredAt time.Time `yaml:"measured_at"`
		} `yaml:"measurements"`
	} `yaml:"supplier_models"`
	CustomerModels []struct {
		SKU          string `yaml:"sku"`
		Name         string `yaml:"name"`
		Node         string `yaml:"node"`
		Requirements string `yaml:"requirements"`
		Accessories  []struct {
			PartNumber string `yaml:"part_number"`
			Qty        int    `yaml:"qty"`
		} `yaml:"accessories"`
	} `yaml:"customer_models"`
	Links []struct {
		SKU           string `yaml:"sku"`
		SupplierModel string `yaml:"supplier_model"`
		Status        string `yaml:"status"`
		Price         string `yaml:"price"`
		Currency      string `yaml:"currency"`
	} `yaml:"links"`
	CompareTables []struct {
		Name           string   `yaml:"name"`
		SKU            string   `yaml:"sku"`
		SupplierModels []string `yaml:"supplier_models"`
	} `yaml:"compare_tables"`
	Contracts []struct {
		Code    string `yaml:"code"`
		Factory string `yaml:"factory"`
		Status  string `yaml:"status"`
		Payment string `yaml:"payment"`
		Bank    string `yaml:"bank"`
		Lines   []struct {
			SKU           string `yaml:"sku"`
			SupplierModel string `yaml:"supplier_model"`
			Qty           int    `yaml:"qty"`
			Region        string `yaml:"region"`
			Delivery      string `yaml:"delivery"`
			Price         string `yaml:"price"`
			Currency      string `yaml:"currency"`
		} `yaml:"lines"`
	} `yaml:"contracts"`
}

// Seed loads a YAML catalog through the same use cases the API uses. It does
// nothing when product nodes already exist. The whole file is written in one
// transaction: a failing record leaves the database as it was.
func (a *App) Seed(ctx context.Context, data []byte) error {
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	err := a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txApp := wire(tx, a.Config)
		n, err := txApp.CatalogUC.Nodes.CountProductNodes(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Debug().Int64("nodes", n).Msg("catalog not empty, seed skipped")
			return nil
		}
		s := &seeder{
			app:       txApp,
			factories: map[string]*domain.Factory{},
			nodes:     map[string]*domain.ProductNode{},
			params:    map[string]*domain.Param{},
			acc:       map[string]*domain.Accessory{},
			sms:       map[string]*domain.SupplierModel{},
			cms:       map[string]*domain.CustomerModel{},
			links:     map[string]*domain.Link{},
		}
		if err := s.run(ctx, &sf); err != nil {
			return err
		}
		log.Info().Int("factories", len(s.factories)).Int("nodes", len(s.nodes)).Int("params", len(s.params)).Msg("catalog seeded")
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}

type seeder struct {
	app       *App
	factories map[string]*domain.Factory
	nodes     map[string]*domain.ProductNode
	params    map[string]*domain.Param
	acc       map[string]*domain.Accessory
	sms       map[string]*domain.SupplierModel
	cms       map[string]*domain.CustomerModel
	links     map[string]*domain.Link
}

func lookup[T any](m map[string]*T, kind, key string) (*T, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("unknown %s %q", kind, key)
	}
	return v, nil
}

func linkKey(sku, supplierModel string) string { return sku + "|" + supplierModel }

func optPrice(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("price %q: %w", s, err)
	}
	return decimal.NewNullDecimal(d), nil
}

func (s *seeder) run(ctx context.Context, sf *seedFile) error {
	cat := s.app.CatalogUC

	for _, f := range sf.Factories {
		rec := &domain.Factory{Code: f.Code, Name: f.Name, AuditScore: f.AuditScore, RiskScore: f.RiskScore}
		if err := cat.CreateFactory(ctx, rec); err != nil {
			return err
		}
		s.factories[f.Code] = rec
	}
	// parents must be listed before their children
	for _, n := range sf.Nodes {
		rec := &domain.ProductNode{Code: n.Code, Name: n.Name}
		if n.Parent != "" {
			p, err := lookup(s.nodes, "node", n.Parent)
			if err != nil {
				return err
			}
			rec.ParentID = &p.ID
		}
		if err := cat.CreateNode(ctx, rec); err != nil {
			return err
		}
		s.nodes[n.Code] = rec
	}
	for _, p := range sf.Params {
		rec := &domain.Param{Code: p.Code, Name: p.Name, ValueType: domain.ValueType(p.ValueType), UOMDefault: p.UOM, EnumOptions: p.EnumOptions}
		if err := cat.CreateParam(ctx, rec); err != nil {
			return err
		}
		s.params[p.Code] = rec
		if p.Tolerance != "" {
			if err := cat.CreateTolerance(ctx, &domain.Tolerance{ParamID: rec.ID, Rule: p.Tolerance}); err != nil {
				return err
			}
		}
	}
	for _, as := range sf.Assignments {
		n, err := lookup(s.nodes, "node", as.Node)
		if err != nil {
			return err
		}
		p, err := lookup(s.params, "param", as.Param)
		if err != nil {
			return err
		}
		if err := cat.AssignParam(ctx, &domain.ParamAssignment{NodeID: n.ID, ParamID: p.ID, Required: as.Required}); err != nil {
			return err
		}
	}
	for _, tm := range sf.TestMethods {
		n, err := lookup(s.nodes, "node", tm.Node)
		if err != nil {
			return err
		}
		if err := cat.CreateTestMethod(ctx, &domain.TestMethod{NodeID: n.ID, Title: tm.Title, Text: tm.Text}); err != nil {
			return err
		}
	}
	for _, a := range sf.Accessories {
		rec := &domain.Accessory{PartNumber: a.PartNumber, Name: a.Name, Spec: a.Spec}
		if a.Factory != "" {
			f, err := lookup(s.factories, "factory", a.Factory)
			if err != nil {
				return err
			}
			rec.FactoryID = &f.ID
		}
		if err := cat.CreateAccessory(ctx, rec); err != nil {
			return err
		}
		s.acc[a.PartNumber] = rec
	}
	for _, sm := range sf.SupplierModels {
		f, err := lookup(s.factories, "factory", sm.Factory)
		if err != nil {
			return err
		}
		n, err := lookup(s.nodes, "node", sm.Node)
		if err != nil {
			return err
		}
		rec := &domain.SupplierModel{Name: sm.Name, FactoryID: f.ID, NodeID: n.ID, ModelStatus: sm.Status, Notes: sm.Notes}
		if err := cat.CreateSupplierModel(ctx, rec); err != nil {
			return err
		}
		s.sms[sm.Name] = rec
		for _, m := range sm.Measurements {
			in := usecase.RecordMeasurement{SupplierModelID: rec.ID, ParamCode: m.Param, Value: m.Value, UOM: m.UOM, ConditionTag: m.Condition}
			if !m.MeasuredAt.IsZero() {
				at := m.MeasuredAt
				in.MeasuredAt = &at
			}
			if _, err := s.app.MeasurementUC.Record(ctx, in); err != nil {
				return err
			}
		}
	}
	for _, cm := range sf.CustomerModels {
		n, err := lookup(s.nodes, "node", cm.Node)
		if err != nil {
			return err
		}
		rec := &domain.CustomerModel{SKU: cm.SKU, Name: cm.Name, NodeID: n.ID, Requirements: cm.Requirements}
		if err := cat.CreateCustomerModel(ctx, rec); err != nil {
			return err
		}
		s.cms[cm.SKU] = rec
		for _, ca := range cm.Accessories {
			a, err := lookup(s.acc, "accessory", ca.PartNumber)
			if err != nil {
				return err
			}
			if err := cat.AddCustomerAccessory(ctx, &domain.CustomerAccessory{CustomerModelID: rec.ID, AccessoryID: a.ID, Qty: ca.Qty}); err != nil {
				return err
			}
		}
	}
	for _, l := range sf.Links {
		cm, err := lookup(s.cms, "customer model", l.SKU)
		if err != nil {
			return err
		}
		sm, err := lookup(s.sms, "supplier model", l.SupplierModel)
		if err != nil {
			return err
		}
		price, err := optPrice(l.Price)
		if err != nil {
			return err
		}
		rec := &domain.Link{CustomerModelID: cm.ID, SupplierModelID: sm.ID, Status: l.Status, LastPrice: price, Currency: l.Currency}
		if err := cat.CreateLink(ctx, rec); err != nil {
			return err
		}
		s.links[linkKey(l.SKU, l.SupplierModel)] = rec
	}
	for _, ct := range sf.CompareTables {
		cm, err := lookup(s.cms, "customer model", ct.SKU)
		if err != nil {
			return err
		}
		tbl := &domain.CompareTable{Name: ct.Name, CustomerModelID: cm.ID}
		if err := cat.CreateCompareTable(ctx, tbl); err != nil {
			return err
		}
		for _, smName := range ct.SupplierModels {
			l, err := lookup(s.links, "link", linkKey(ct.SKU, smName))
			if err != nil {
				return err
			}
			if _, err := s.app.CompareUC.AddLine(ctx, tbl.ID, l.ID); err != nil {
				return err
			}
		}
	}
	for _, c := range sf.Contracts {
		f, err := lookup(s.factories, "factory", c.Factory)
		if err != nil {
			return err
		}
		rec := &domain.Contract{Code: c.Code, FactoryID: f.ID, Status: c.Status, PaymentData: c.Payment, BankData: c.Bank}
		if err := cat.CreateContract(ctx, rec); err != nil {
			return err
		}
		for _, cl := range c.Lines {
			l, err := lookup(s.links, "link", linkKey(cl.SKU, cl.SupplierModel))
			if err != nil {
				return err
			}
			price, err := optPrice(cl.Price)
			if err != nil {
				return err
			}
			line := &domain.ContractLine{ContractID: rec.ID, LinkID: l.ID, Qty: cl.Qty, Region: cl.Region, Price: price, Currency: cl.Currency}
			if cl.Delivery != "" {
				t, err := time.Parse("2006-01-02", cl.Delivery)
				if err != nil {
					return fmt.Errorf("contract %s delivery %q: %w", c.Code, cl.Delivery, err)
				}
				d := datatypes.Date(t)
				line.DeliveryDate = &d
			}
			if err := cat.AddContractLine(ctx, line); err != nil {
				return err
			}
		}
	}
	return nil
}
