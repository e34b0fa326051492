package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/phenrril/sourcing/internal/adapters/export"
	"github.com/phenrril/sourcing/internal/domain"
	"github.com/phenrril/sourcing/internal/usecase"
)

func (s *Server) apiUpdateNode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Code        *string    `json:"code"`
		Name        *string    `json:"name"`
		ParentID    *uuid.UUID `json:"parent_id"`
		ClearParent bool       `json:"clear_parent"`
	}
	if !decode(w, r, &req) {
		return
	}
	n, err := s.catalog.UpdateNode(r.Context(), id, req.Code, req.Name, req.ParentID, req.ClearParent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// apiRecordMeasurement accepts the value as a JSON string or a bare number.
func (s *Server) apiRecordMeasurement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SupplierModelID uuid.UUID       `json:"supplier_model_id"`
		ParamID         uuid.UUID       `json:"param_id"`
		ParamCode       string          `json:"param_code"`
		Value           json.RawMessage `json:"value"`
		UOM             string          `json:"uom"`
		ConditionTag    string          `json:"condition_tag"`
		MeasuredAt      *time.Time      `json:"measured_at"`
	}
	if !decode(w, r, &req) {
		return
	}
	raw := strings.TrimSpace(string(req.Value))
	if raw == "" || raw == "null" {
		badRequest(w, "value is required")
		return
	}
	if strings.HasPrefix(raw, `"`) {
		var sv string
		if err := json.Unmarshal(req.Value, &sv); err != nil {
			badRequest(w, "invalid value")
			return
		}
		raw = sv
	}
	m, err := s.measurements.Record(r.Context(), usecase.RecordMeasurement{
		SupplierModelID: req.SupplierModelID,
		ParamID:         req.ParamID,
		ParamCode:       req.ParamCode,
		Value:           raw,
		UOM:             req.UOM,
		ConditionTag:    req.ConditionTag,
		MeasuredAt:      req.MeasuredAt,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) apiMatrixXLSX(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, err := s.compare.BuildMatrix(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteMatrix(&buf, m); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="compare-%s.xlsx"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) apiTransition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status domain.CompareStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	t, err := s.compare.Transition(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) apiAddCompareLine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompareTableID uuid.UUID `json:"compare_table_id"`
		LinkID         uuid.UUID `json:"link_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	line, err := s.compare.AddLine(r.Context(), req.CompareTableID, req.LinkID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

func (s *Server) apiReviewLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		EngineerPriority *int    `json:"engineer_priority"`
		EngineerComments *string `json:"engineer_comments"`
	}
	if !decode(w, r, &req) {
		return
	}
	line, err := s.compare.ReviewLine(r.Context(), id, req.EngineerPriority, req.EngineerComments)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

func (s *Server) apiAddContractLine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContractID   uuid.UUID           `json:"contract_id"`
		LinkID       uuid.UUID           `json:"link_id"`
		Qty          int                 `json:"qty"`
		Region       string              `json:"region"`
		DeliveryDate string              `json:"delivery_date"`
		Price        decimal.NullDecimal `json:"price"`
		Currency     string              `json:"currency"`
	}
	if !decode(w, r, &req) {
		return
	}
	l := &domain.ContractLine{
		ContractID: req.ContractID,
		LinkID:     req.LinkID,
		Qty:        req.Qty,
		Region:     req.Region,
		Price:      req.Price,
		Currency:   req.Currency,
	}
	if req.DeliveryDate != "" {
		t, err := time.Parse("2006-01-02", req.DeliveryDate)
		if err != nil {
			badRequest(w, "delivery_date must be YYYY-MM-DD")
			return
		}
		d := datatypes.Date(t)
		l.DeliveryDate = &d
	}
	if err := s.catalog.AddContractLine(r.Context(), l); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) apiGenerateTechTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := s.techTasks.Generate(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}
