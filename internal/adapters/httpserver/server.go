package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/sourcing/internal/domain"
	"github.com/phenrril/sourcing/internal/usecase"
)

type Server struct {
	mux          *http.ServeMux
	catalog      *usecase.CatalogUC
	params       *usecase.ParamUC
	compare      *usecase.CompareUC
	techTasks    *usecase.TechTaskUC
	measurements *usecase.MeasurementUC
}

func New(catalog *usecase.CatalogUC, params *usecase.ParamUC, compare *usecase.CompareUC, techTasks *usecase.TechTaskUC, measurements *usecase.MeasurementUC) http.Handler {
	s := &Server{
		mux:          http.NewServeMux(),
		catalog:      catalog,
		params:       params,
		compare:      compare,
		techTasks:    techTasks,
		measurements: measurements,
	}
	s.routes()
	return Chain(s.mux,
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// hierarchy and inheritance
	s.mux.HandleFunc("POST /product-nodes", create(s.catalog.CreateNode))
	s.mux.HandleFunc("GET /product-nodes", list(s.catalog.Nodes.ListProductNodes))
	s.mux.HandleFunc("GET /product-nodes/{id}", get(s.catalog.Nodes.GetProductNode))
	s.mux.HandleFunc("PUT /product-nodes/{id}", s.apiUpdateNode)
	s.mux.HandleFunc("GET /product-nodes/{id}/effective-params", get(s.params.EffectiveParams))
	s.mux.HandleFunc("GET /product-nodes/{id}/effective-methods", get(s.params.EffectiveMethods))
	s.mux.HandleFunc("GET /product-nodes/{id}/param-assignments", get(s.catalog.Assignments.ListParamAssignments))
	s.mux.HandleFunc("GET /product-nodes/{id}/test-methods", get(s.catalog.Assignments.ListTestMethods))
	s.mux.HandleFunc("POST /params", create(s.catalog.CreateParam))
	s.mux.HandleFunc("GET /params", list(s.catalog.Params.ListParams))
	s.mux.HandleFunc("GET /params/{id}", get(s.catalog.Params.GetParam))
	s.mux.HandleFunc("GET /params/{id}/tolerances", get(s.catalog.Params.ListTolerances))
	s.mux.HandleFunc("POST /param-assignments", create(s.catalog.AssignParam))
	s.mux.HandleFunc("POST /test-methods", create(s.catalog.CreateTestMethod))
	s.mux.HandleFunc("POST /tolerances", create(s.catalog.CreateTolerance))

	// sourcing records
	s.mux.HandleFunc("POST /factories", create(s.catalog.CreateFactory))
	s.mux.HandleFunc("GET /factories", list(s.catalog.Sourcing.ListFactories))
	s.mux.HandleFunc("GET /factories/{id}", get(s.catalog.Sourcing.GetFactory))
	s.mux.HandleFunc("POST /accessories", create(s.catalog.CreateAccessory))
	s.mux.HandleFunc("GET /accessories", list(s.catalog.Sourcing.ListAccessories))
	s.mux.HandleFunc("POST /supplier-models", create(s.catalog.CreateSupplierModel))
	s.mux.HandleFunc("GET /supplier-models", list(s.catalog.Sourcing.ListSupplierModels))
	s.mux.HandleFunc("GET /supplier-models/{id}", get(s.catalog.Sourcing.GetSupplierModel))
	s.mux.HandleFunc("GET /supplier-models/{id}/measurements", get(s.measurements.History))
	s.mux.HandleFunc("POST /measurements", s.apiRecordMeasurement)
	s.mux.HandleFunc("POST /customer-models", create(s.catalog.CreateCustomerModel))
	s.mux.HandleFunc("GET /customer-models", list(s.catalog.Sourcing.ListCustomerModels))
	s.mux.HandleFunc("GET /customer-models/{id}", get(s.catalog.Sourcing.GetCustomerModel))
	s.mux.HandleFunc("GET /customer-models/{id}/accessories", get(s.catalog.Sourcing.ListCustomerAccessories))
	s.mux.HandleFunc("POST /customer-model-accessories", create(s.catalog.AddCustomerAccessory))
	s.mux.HandleFunc("POST /links", create(s.catalog.CreateLink))
	s.mux.HandleFunc("GET /links", list(s.catalog.Sourcing.ListLinks))
	s.mux.HandleFunc("GET /links/{id}", get(s.catalog.Sourcing.GetLink))

	// comparison
	s.mux.HandleFunc("POST /compare-tables", create(s.catalog.CreateCompareTable))
	s.mux.HandleFunc("GET /compare-tables", list(s.catalog.Compare.ListCompareTables))
	s.mux.HandleFunc("GET /compare-tables/{id}", get(s.catalog.Compare.GetCompareTable))
	s.mux.HandleFunc("GET /compare-tables/{id}/lines", get(s.catalog.Compare.ListCompareLines))
	s.mux.HandleFunc("GET /compare-tables/{id}/matrix", get(s.compare.BuildMatrix))
	s.mux.HandleFunc("GET /compare-tables/{id}/matrix.xlsx", s.apiMatrixXLSX)
	s.mux.HandleFunc("POST /compare-tables/{id}/send", get(s.compare.Send))
	s.mux.HandleFunc("POST /compare-tables/{id}/status", s.apiTransition)
	s.mux.HandleFunc("POST /compare-lines", s.apiAddCompareLine)
	s.mux.HandleFunc("PUT /compare-lines/{id}", s.apiReviewLine)

	// contracts
	s.mux.HandleFunc("POST /contracts", create(s.catalog.CreateContract))
	s.mux.HandleFunc("GET /contracts", list(s.catalog.Contracts.ListContracts))
	s.mux.HandleFunc("GET /contracts/{id}", get(s.catalog.Contracts.GetContract))
	s.mux.HandleFunc("GET /contracts/{id}/lines", get(s.catalog.Contracts.ListContractLines))
	s.mux.HandleFunc("POST /contract-lines", s.apiAddContractLine)
	s.mux.HandleFunc("POST /contracts/{id}/generate-tech-task", s.apiGenerateTechTask)
	s.mux.HandleFunc("GET /contracts/{id}/tech-tasks", get(s.techTasks.List))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

var errorStatus = []struct {
	kind   error
	status int
	name   string
}{
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrInvalidHierarchy, http.StatusUnprocessableEntity, "invalid_hierarchy"},
	{domain.ErrInvalidReference, http.StatusUnprocessableEntity, "invalid_reference"},
	{domain.ErrConcurrencyConflict, http.StatusConflict, "concurrency_conflict"},
	{domain.ErrValidation, http.StatusBadRequest, "validation"},
	{domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.kind) {
			if e.kind == domain.ErrConcurrencyConflict {
				w.Header().Set("Retry-After", "1")
			}
			writeJSON(w, e.status, errorBody{Error: err.Error(), Kind: e.name})
			return
		}
	}
	log.Error().Err(err).Str("request_id", RequestIDFrom(r.Context())).Str("path", r.URL.Path).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Kind: "validation"})
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid json: "+err.Error())
		return false
	}
	return true
}

// create decodes the body into a T, hands it to fn and echoes the stored record.
func create[T any](fn func(context.Context, *T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v T
		if !decode(w, r, &v) {
			return
		}
		if err := fn(r.Context(), &v); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, &v)
	}
}

func list[T any](fn func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := fn(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
	}
}

// get serves any lookup keyed by the {id} path segment.
func get[T any](fn func(context.Context, uuid.UUID) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		v, err := fn(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}
