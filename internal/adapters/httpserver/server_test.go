package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/phenrril/sourcing/internal/adapters/repo/postgres"
	"github.com/phenrril/sourcing/internal/domain"
	"github.com/phenrril/sourcing/internal/testutil"
	"github.com/phenrril/sourcing/internal/usecase"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.OpenDB(t, postgres.Models()...)
	nodes := postgres.NewNodeRepo(db)
	params := postgres.NewParamRepo(db)
	sourcing := postgres.NewSourcingRepo(db)
	compare := postgres.NewCompareRepo(db)
	contracts := postgres.NewContractRepo(db)
	measurements := postgres.NewMeasurementRepo(db)

	tree := &usecase.ProductTree{Nodes: nodes}
	paramUC := &usecase.ParamUC{Tree: tree, Assignments: nodes, Params: params}
	catalog := &usecase.CatalogUC{Tree: tree, Nodes: nodes, Assignments: nodes, Params: params, Sourcing: sourcing, Compare: compare, Contracts: contracts}
	compareUC := &usecase.CompareUC{Compare: compare, Sourcing: sourcing, Measurements: measurements, Params: paramUC}
	techUC := &usecase.TechTaskUC{Contracts: contracts, Sourcing: sourcing, Measurements: measurements, Params: paramUC}
	measureUC := &usecase.MeasurementUC{Measurements: measurements, Params: params, Sourcing: sourcing}
	return New(catalog, paramUC, compareUC, techUC, measureUC)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// mustDo runs the request, checks the status and decodes the body into out.
func mustDo(t *testing.T, h http.Handler, method, path string, body any, want int, out any) {
	t.Helper()
	rec := do(t, h, method, path, body)
	if rec.Code != want {
		t.Fatalf("%s %s: want=%d got=%d body=%s", method, path, want, rec.Code, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
}

type idOnly struct {
	ID uuid.UUID `json:"id"`
}

func TestHealthAndRequestID(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: want=200 got=%d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("X-Request-Id should be set")
	}
}

func TestErrorMapping(t *testing.T) {
	h := newTestHandler(t)
	mustDo(t, h, http.MethodGet, "/product-nodes/"+uuid.NewString(), nil, http.StatusNotFound, nil)
	mustDo(t, h, http.MethodGet, "/product-nodes/not-a-uuid", nil, http.StatusBadRequest, nil)
	mustDo(t, h, http.MethodPost, "/params", map[string]any{"code": "X", "name": "X", "value_type": "blob"}, http.StatusBadRequest, nil)
	mustDo(t, h, http.MethodPost, "/product-nodes", map[string]any{"code": "N", "name": "N", "parent_id": uuid.NewString()}, http.StatusUnprocessableEntity, nil)

	var body errorBody
	mustDo(t, h, http.MethodPost, "/contracts/"+uuid.NewString()+"/generate-tech-task", nil, http.StatusNotFound, &body)
	if body.Kind != "not_found" {
		t.Fatalf("kind: want=not_found got=%q", body.Kind)
	}
}

func TestSourcingFlow(t *testing.T) {
	h := newTestHandler(t)

	var chairs, office idOnly
	mustDo(t, h, http.MethodPost, "/product-nodes", map[string]any{"code": "CHAIRS", "name": "Chairs"}, http.StatusCreated, &chairs)
	mustDo(t, h, http.MethodPost, "/product-nodes", map[string]any{"code": "OFFICE", "name": "Office Chairs", "parent_id": chairs.ID}, http.StatusCreated, &office)

	var seat, wheels idOnly
	mustDo(t, h, http.MethodPost, "/params", map[string]any{"code": "seat_height", "name": "Seat height", "value_type": "numeric", "uom_default": "mm"}, http.StatusCreated, &seat)
	mustDo(t, h, http.MethodPost, "/params", map[string]any{"code": "wheel_count", "name": "Wheel count", "value_type": "numeric"}, http.StatusCreated, &wheels)
	mustDo(t, h, http.MethodPost, "/param-assignments", map[string]any{"node_id": chairs.ID, "param_id": seat.ID, "required": true}, http.StatusCreated, nil)
	mustDo(t, h, http.MethodPost, "/param-assignments", map[string]any{"node_id": office.ID, "param_id": wheels.ID}, http.StatusCreated, nil)

	var eps []domain.EffectiveParam
	mustDo(t, h, http.MethodGet, "/product-nodes/"+office.ID.String()+"/effective-params", nil, http.StatusOK, &eps)
	if len(eps) != 2 || eps[0].Param.Code != "wheel_count" || eps[0].Required || eps[1].Param.Code != "seat_height" || !eps[1].Required {
		t.Fatalf("effective params: got=%+v", eps)
	}

	var factory, sm, cm, otherCM, link, foreign idOnly
	mustDo(t, h, http.MethodPost, "/factories", map[string]any{"code": "F1", "name": "Acme"}, http.StatusCreated, &factory)
	mustDo(t, h, http.MethodPost, "/supplier-models", map[string]any{"factory_id": factory.ID, "name": "A-100", "node_id": office.ID}, http.StatusCreated, &sm)
	mustDo(t, h, http.MethodPost, "/customer-models", map[string]any{"sku": "SKU-1", "name": "Task chair", "node_id": office.ID}, http.StatusCreated, &cm)
	mustDo(t, h, http.MethodPost, "/customer-models", map[string]any{"sku": "SKU-2", "name": "Stool", "node_id": office.ID}, http.StatusCreated, &otherCM)
	mustDo(t, h, http.MethodPost, "/links", map[string]any{"customer_model_id": cm.ID, "supplier_model_id": sm.ID, "last_price": "49.9", "currency": "USD"}, http.StatusCreated, &link)
	mustDo(t, h, http.MethodPost, "/links", map[string]any{"customer_model_id": otherCM.ID, "supplier_model_id": sm.ID}, http.StatusCreated, &foreign)

	mustDo(t, h, http.MethodPost, "/measurements", map[string]any{"supplier_model_id": sm.ID, "param_id": seat.ID, "value": 480}, http.StatusCreated, nil)
	mustDo(t, h, http.MethodPost, "/measurements", map[string]any{"supplier_model_id": sm.ID, "param_code": "wheel_count", "value": "5"}, http.StatusCreated, nil)
	mustDo(t, h, http.MethodPost, "/measurements", map[string]any{"supplier_model_id": sm.ID, "param_id": seat.ID, "value": "tall"}, http.StatusBadRequest, nil)

	var table idOnly
	mustDo(t, h, http.MethodPost, "/compare-tables", map[string]any{"name": "Chairs Q3", "customer_model_id": cm.ID}, http.StatusCreated, &table)
	var line idOnly
	mustDo(t, h, http.MethodPost, "/compare-lines", map[string]any{"compare_table_id": table.ID, "link_id": link.ID}, http.StatusCreated, &line)
	mustDo(t, h, http.MethodPost, "/compare-lines", map[string]any{"compare_table_id": table.ID, "link_id": foreign.ID}, http.StatusUnprocessableEntity, nil)

	var m domain.Matrix
	mustDo(t, h, http.MethodGet, "/compare-tables/"+table.ID.String()+"/matrix", nil, http.StatusOK, &m)
	if len(m.Rows) != 1 || m.Rows[0].Values["seat_height"].Value != "480" || m.Rows[0].Values["wheel_count"].Value != "5" {
		t.Fatalf("matrix: got=%+v", m)
	}
	rec := do(t, h, http.MethodGet, "/compare-tables/"+table.ID.String()+"/matrix.xlsx", nil)
	if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
		t.Fatalf("matrix.xlsx: want=200 got=%d len=%d", rec.Code, rec.Body.Len())
	}

	mustDo(t, h, http.MethodPost, "/compare-tables/"+table.ID.String()+"/status", map[string]any{"status": "reviewed"}, http.StatusConflict, nil)
	var tbl domain.CompareTable
	mustDo(t, h, http.MethodPost, "/compare-tables/"+table.ID.String()+"/send", nil, http.StatusOK, &tbl)
	if tbl.Status != domain.CompareStatusSent {
		t.Fatalf("send: want=sent_to_engineer got=%s", tbl.Status)
	}
	mustDo(t, h, http.MethodPut, "/compare-lines/"+line.ID.String(), map[string]any{"engineer_priority": 1, "engineer_comments": "ok"}, http.StatusOK, nil)
	mustDo(t, h, http.MethodGet, "/compare-tables/"+table.ID.String(), nil, http.StatusOK, &tbl)
	if tbl.Status != domain.CompareStatusReviewed {
		t.Fatalf("after review: want=reviewed got=%s", tbl.Status)
	}

	var contract idOnly
	mustDo(t, h, http.MethodPost, "/contracts", map[string]any{"code": "C-1", "factory_id": factory.ID}, http.StatusCreated, &contract)
	mustDo(t, h, http.MethodPost, "/contracts/"+contract.ID.String()+"/generate-tech-task", nil, http.StatusBadRequest, nil)
	mustDo(t, h, http.MethodPost, "/contract-lines", map[string]any{"contract_id": contract.ID, "link_id": link.ID, "qty": 100, "delivery_date": "2025-03-01", "price": "45"}, http.StatusCreated, nil)
	mustDo(t, h, http.MethodPost, "/contract-lines", map[string]any{"contract_id": contract.ID, "link_id": link.ID, "qty": 1, "delivery_date": "03/01/2025"}, http.StatusBadRequest, nil)

	var v1, v2 domain.TechTask
	mustDo(t, h, http.MethodPost, "/contracts/"+contract.ID.String()+"/generate-tech-task", nil, http.StatusCreated, &v1)
	mustDo(t, h, http.MethodPost, "/contracts/"+contract.ID.String()+"/generate-tech-task", nil, http.StatusCreated, &v2)
	if v1.Version != 1 || v2.Version != 2 || v1.Content != v2.Content {
		t.Fatalf("tech tasks: got versions %d,%d same content=%v", v1.Version, v2.Version, v1.Content == v2.Content)
	}
	var tasks []domain.TechTask
	mustDo(t, h, http.MethodGet, "/contracts/"+contract.ID.String()+"/tech-tasks", nil, http.StatusOK, &tasks)
	if len(tasks) != 2 {
		t.Fatalf("tech tasks list: want=2 got=%d", len(tasks))
	}
}
