package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/sourcing/internal/domain"
)

type CompareUC struct {
	Compare      domain.CompareRepo
	Sourcing     domain.SourcingRepo
	Measurements domain.MeasurementRepo
	Params       *ParamUC
}

// BuildMatrix pivots the measurements of every candidate in the table into
// one row per compare line and one column per effective param of the
// table's customer model node. Nothing is cached: every call reads the
// current records.
func (uc *CompareUC) BuildMatrix(ctx context.Context, tableID uuid.UUID) (*domain.Matrix, error) {
	tbl, err := uc.Compare.GetCompareTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	cm, err := uc.Sourcing.GetCustomerModel(ctx, tbl.CustomerModelID)
	if err != nil {
		return nil, err
	}
	params, err := uc.Params.EffectiveParams(ctx, cm.NodeID)
	if err != nil {
		return nil, err
	}
	lines, err := uc.Compare.ListCompareLines(ctx, tbl.ID)
	if err != nil {
		return nil, err
	}

	latest := map[uuid.UUID]map[uuid.UUID]*domain.Measurement{}
	factories := map[uuid.UUID]*domain.Factory{}
	rows := make([]domain.MatrixRow, 0, len(lines))
	for _, line := range lines {
		link, err := uc.Sourcing.GetLink(ctx, line.LinkID)
		if err != nil {
			return nil, err
		}
		sm, err := uc.Sourcing.GetSupplierModel(ctx, link.SupplierModelID)
		if err != nil {
			return nil, err
		}
		f, ok := factories[sm.FactoryID]
		if !ok {
			if f, err = uc.Sourcing.GetFactory(ctx, sm.FactoryID); err != nil {
				return nil, err
			}
			factories[sm.FactoryID] = f
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

		values := make(map[string]domain.Cell, len(params))
		for _, ep := range params {
			if m, ok := cur[ep.Param.ID]; ok {
				values[ep.Param.Code] = cellOf(m)
			}
		}
		rows = append(rows, domain.MatrixRow{
			CompareLineID:    line.ID,
			LinkID:           link.ID,
			SupplierModelID:  sm.ID,
			SupplierModel:    sm.Name,
			FactoryName:      f.Name,
			LinkStatus:       link.Status,
			LastPrice:        link.LastPrice,
			Currency:         link.Currency,
			EngineerPriority: line.EngineerPriority,
			EngineerComments: line.EngineerComments,
			Values:           values,
		})
	}
	return &domain.Matrix{
		CompareTableID:  tbl.ID,
		CustomerModelID: cm.ID,
		Status:          tbl.Status,
		Params:          params,
		Rows:            rows,
	}, nil
}

// LatestByParam keeps the newest reading per param. See Measurement.Newer
// for the ordering; input order does not matter.
func LatestByParam(ms []domain.Measurement) map[uuid.UUID]*domain.Measurement {
	out := make(map[uuid.UUID]*domain.Measurement, len(ms))
	for i := range ms {
		m := &ms[i]
		if cur, ok := out[m.ParamID]; !ok || m.Newer(cur) {
			out[m.ParamID] = m
		}
	}
	return out
}

func cellOf(m *domain.Measurement) domain.Cell {
	return domain.Cell{
		MeasurementID: m.ID,
		Type:          m.ValueType,
		Value:         m.Value().String(),
		UOM:           m.UOM,
		ConditionTag:  m.ConditionTag,
		MeasuredAt:    m.MeasuredAt,
	}
}

// Transition moves a table to next. Asking for the current status is a
// no-op that returns the table unchanged.
func (uc *CompareUC) Transition(ctx context.Context, tableID uuid.UUID, next domain.CompareStatus) (*domain.CompareTable, error) {
	if !next.Valid() {
		return nil, domain.Invalid("unknown compare table status %q", next)
	}
	tbl, err := uc.Compare.GetCompareTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if !tbl.Status.CanTransition(next) {
		return nil, domain.Errorf(domain.ErrInvalidTransition, "compare table", tbl.ID, "%s -> %s", tbl.Status, next)
	}
	if tbl.Status == next {
		return tbl, nil
	}
	prev := tbl.Status
	tbl.Status = next
	if next == domain.CompareStatusSent && tbl.SentToEngineerAt == nil {
		now := time.Now().UTC()
		tbl.SentToEngineerAt = &now
	}
	if err := uc.Compare.SaveCompareTable(ctx, tbl); err != nil {
		return nil, err
	}
	log.Info().Str("compare_table_id", tbl.ID.String()).Str("from", string(prev)).Str("to", string(next)).Msg("compare table transition")
	return tbl, nil
}

// Send hands the table to the engineer. Any existing table can be sent,
// a reviewed one goes back to sent_to_engineer. The first send time is kept.
func (uc *CompareUC) Send(ctx context.Context, tableID uuid.UUID) (*domain.CompareTable, error) {
	tbl, err := uc.Compare.GetCompareTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if tbl.Status == domain.CompareStatusSent && tbl.SentToEngineerAt != nil {
		return tbl, nil
	}
	prev := tbl.Status
	tbl.Status = domain.CompareStatusSent
	if tbl.SentToEngineerAt == nil {
		now := time.Now().UTC()
		tbl.SentToEngineerAt = &now
	}
	if err := uc.Compare.SaveCompareTable(ctx, tbl); err != nil {
		return nil, err
	}
	log.Info().Str("compare_table_id", tbl.ID.String()).Str("from", string(prev)).Msg("compare table sent to engineer")
	return tbl, nil
}

// AddLine puts a candidate link under evaluation. The link must pair the
// same customer model the table compares.
func (uc *CompareUC) AddLine(ctx context.Context, tableID, linkID uuid.UUID) (*domain.CompareLine, error) {
	tbl, err := uc.Compare.GetCompareTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	link, err := uc.Sourcing.GetLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link.CustomerModelID != tbl.CustomerModelID {
		return nil, domain.Errorf(domain.ErrInvalidReference, "link", link.ID,
			"customer model %s does not match compare table %s customer model %s",
			link.CustomerModelID, tbl.ID, tbl.CustomerModelID)
	}
	line := &domain.CompareLine{CompareTableID: tbl.ID, LinkID: link.ID}
	if err := uc.Compare.SaveCompareLine(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// ReviewLine records the engineer's priority and comments on one line.
// Review is not gated by table status; once every line of a sent table is
// reviewed the table moves to reviewed. That check and the status change run
// as one conditional update, so a line added concurrently keeps the table in
// sent_to_engineer.
func (uc *CompareUC) ReviewLine(ctx context.Context, lineID uuid.UUID, priority *int, comments *string) (*domain.CompareLine, error) {
	line, err := uc.Compare.GetCompareLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if priority != nil {
		line.EngineerPriority = priority
	}
	if comments != nil {
		line.EngineerComments = comments
	}
	if err := uc.Compare.SaveCompareLine(ctx, line); err != nil {
		return nil, err
	}

	done, err := uc.Compare.MarkCompareTableReviewed(ctx, line.CompareTableID)
	if err != nil {
		return nil, err
	}
	if done {
		log.Info().Str("compare_table_id", line.CompareTableID.String()).Msg("compare table reviewed")
	}
	return line, nil
}
