package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/sourcing/internal/domain"
)

type TechTaskUC struct {
	Contracts    domain.ContractRepo
	Sourcing     domain.SourcingRepo
	Measurements domain.MeasurementRepo
	Params       *ParamUC
	// Locker is optional. When set, generations for one contract are
	// serialized across processes before the version is assigned.
	Locker domain.Locker
}

// Generate stores a new version of the contract's tech task. Every call adds
// a row; unchanged source data yields byte-identical content under a new
// version.
func (uc *TechTaskUC) Generate(ctx context.Context, contractID uuid.UUID) (*domain.TechTask, error) {
	c, err := uc.Contracts.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	lines, err := uc.Contracts.ListContractLines(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.Errorf(domain.ErrValidation, "contract", c.ID, "contract has no lines")
	}
	doc, err := uc.assemble(ctx, c, lines)
	if err != nil {
		return nil, err
	}
	content := doc.Render()
	sum := sha256.Sum256([]byte(content))

	if uc.Locker != nil {
		unlock, err := uc.Locker.Lock(ctx, "tech-task:"+c.ID.String())
		if err != nil {
			return nil, err
		}
		defer unlock()
	}
	t := &domain.TechTask{
		ContractID:    c.ID,
		Status:        domain.TechTaskStatusGenerated,
		Content:       content,
		ContentSHA256: hex.EncodeToString(sum[:]),
		GeneratedAt:   time.Now().UTC(),
	}
	if err := uc.Contracts.InsertTechTask(ctx, t); err != nil {
		return nil, err
	}
	log.Info().Str("contract_id", c.ID.String()).Str("contract", c.Code).Int("version", t.Version).Int("lines", len(lines)).Msg("tech task generated")
	return t, nil
}

func (uc *TechTaskUC) List(ctx context.Context, contractID uuid.UUID) ([]domain.TechTask, error) {
	if _, err := uc.Contracts.GetContract(ctx, contractID); err != nil {
		return nil, err
	}
	return uc.Contracts.ListTechTasks(ctx, contractID)
}

// assemble gathers everything the document shows. Lookups are memoized for
// the duration of one generation only.
func (uc *TechTaskUC) assemble(ctx context.Context, c *domain.Contract, lines []domain.ContractLine) (*TechTaskDoc, error) {
	factory, err := uc.Sourcing.GetFactory(ctx, c.FactoryID)
	if err != nil {
		return nil, err
	}
	doc := &TechTaskDoc{
		ContractCode:   c.Code,
		ContractStatus: c.Status,
		FactoryName:    factory.Name,
		FactoryCode:    factory.Code,
		PaymentData:    c.PaymentData,
		BankData:       c.BankData,
	}

	factories := map[uuid.UUID]*domain.Factory{factory.ID: factory}
	latest := map[uuid.UUID]map[uuid.UUID]*domain.Measurement{}
	tolerances := map[uuid.UUID]string{}

	for i, line := range lines {
		link, err := uc.Sourcing.GetLink(ctx, line.LinkID)
		if err != nil {
			return nil, err
		}
		cm, err := uc.Sourcing.GetCustomerModel(ctx, link.CustomerModelID)
		if err != nil {
			return nil, err
		}
		sm, err := uc.Sourcing.GetSupplierModel(ctx, link.SupplierModelID)
		if err != nil {
			return nil, err
		}
		smFactory, ok := factories[sm.FactoryID]
		if !ok {
			if smFactory, err = uc.Sourcing.GetFactory(ctx, sm.FactoryID); err != nil {
				return nil, err
			}
			factories[sm.FactoryID] = smFactory
		}

		ld := TechTaskLine{
			Ordinal:       i + 1,
			Qty:           line.Qty,
			Region:        line.Region,
			Price:         line.Price,
			Currency:      line.Currency,
			SKU:           cm.SKU,
			CustomerModel: cm.Name,
			Requirements:  cm.Requirements,
			SupplierModel: sm.Name,
			FactoryName:   smFactory.Name,
		}
		if line.DeliveryDate != nil {
			ld.Delivery = time.Time(*line.DeliveryDate).Format("2006-01-02")
		}

		accs, err := uc.Sourcing.ListCustomerAccessories(ctx, cm.ID)
		if err != nil {
			return nil, err
		}
		for _, ca := range accs {
			a, err := uc.Sourcing.GetAccessory(ctx, ca.AccessoryID)
			if err != nil {
				return nil, err
			}
			ld.Accessories = append(ld.Accessories, TechTaskAccessory{Name: a.Name, PartNumber: a.PartNumber, Qty: ca.Qty})
		}

		params, err := uc.Params.EffectiveParams(ctx, sm.NodeID)
		if err != nil {
			return nil, err
		}
		cur, ok := latest[sm.ID]
		if !ok {
			ms, err := uc.Measurements.GetMeasurements(ctx, sm.ID)
			if err != nil {
				return nil, err
			}
			cur = LatestByParam(ms)
			latest[sm.ID] = cur
		}
		for _, ep := range params {
			rule, ok := tolerances[ep.Param.ID]
			if !ok {
				if rule, err = uc.toleranceRule(ctx, &ep.Param); err != nil {
					return nil, err
				}
				tolerances[ep.Param.ID] = rule
			}
			row := TechTaskParam{Name: ep.Param.Name, Required: ep.Required, UOM: ep.Param.UOMDefault, Tolerance: rule}
			if m, ok := cur[ep.Param.ID]; ok {
				row.Value = m.Value().String()
				if m.UOM != "" {
					row.UOM = m.UOM
				}
				row.Condition = m.ConditionTag
			}
			ld.Params = append(ld.Params, row)
		}

		methods, err := uc.Params.EffectiveMethods(ctx, sm.NodeID)
		if err != nil {
			return nil, err
		}
		for _, m := range methods {
			ld.Methods = append(ld.Methods, TechTaskMethod{Title: m.Method.Title, Text: m.Method.Text})
		}
		doc.Lines = append(doc.Lines, ld)
	}
	return doc, nil
}

func (uc *TechTaskUC) toleranceRule(ctx context.Context, p *domain.Param) (string, error) {
	list, err := uc.Params.Params.ListTolerances(ctx, p.ID)
	if err != nil {
		return "", err
	}
	if len(list) > 0 {
		return list[0].Rule, nil
	}
	return DefaultTolerance(p.Code), nil
}

// DefaultTolerance is the rule used for a param without a stored tolerance.
func DefaultTolerance(code string) string {
	switch code {
	case "VOLTAGE", "CURRENT":
		return "±5%"
	case "PF":
		return "±0.02"
	case "DUTY":
		return ">= measured - 5% abs"
	}
	return "default"
}
