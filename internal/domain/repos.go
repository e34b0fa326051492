package domain

import (
	"context"

	"github.com/google/uuid"
)

type ProductNodeRepo interface {
	GetProductNode(ctx context.Context, id uuid.UUID) (*ProductNode, error)
	CountProductNodes(ctx context.Context) (int64, error)
	ListProductNodes(ctx context.Context) ([]ProductNode, error)
	SaveProductNode(ctx context.Context, n *ProductNode) error
}

// AssignmentRepo stores what is declared on a single node: param
// assignments and test methods. Inheritance is resolved by the caller.
type AssignmentRepo interface {
	ListParamAssignments(ctx context.Context, nodeID uuid.UUID) ([]ParamAssignment, error)
	SaveParamAssignment(ctx context.Context, a *ParamAssignment) error
	ListTestMethods(ctx context.Context, nodeID uuid.UUID) ([]TestMethod, error)
	SaveTestMethod(ctx context.Context, m *TestMethod) error
}

type ParamRepo interface {
	GetParam(ctx context.Context, id uuid.UUID) (*Param, error)
	FindParamByCode(ctx context.Context, code string) (*Param, error)
	ListParams(ctx context.Context) ([]Param, error)
	ListParamsByIDs(ctx context.Context, ids []uuid.UUID) ([]Param, error)
	SaveParam(ctx context.Context, p *Param) error
	ListTolerances(ctx context.Context, paramID uuid.UUID) ([]Tolerance, error)
	SaveTolerance(ctx context.Context, t *Tolerance) error
}

// MeasurementRepo is read by the matrix and tech task builders, which never
// write to it. AppendMeasurement is used by the recording use case only.
type MeasurementRepo interface {
	GetMeasurements(ctx context.Context, supplierModelID uuid.UUID) ([]Measurement, error)
	AppendMeasurement(ctx context.Context, m *Measurement) error
}

type SourcingRepo interface {
	GetFactory(ctx context.Context, id uuid.UUID) (*Factory, error)
	ListFactories(ctx context.Context) ([]Factory, error)
	SaveFactory(ctx context.Context, f *Factory) error

	GetSupplierModel(ctx context.Context, id uuid.UUID) (*SupplierModel, error)
	ListSupplierModels(ctx context.Context) ([]SupplierModel, error)
	SaveSupplierModel(ctx context.Context, m *SupplierModel) error

	GetCustomerModel(ctx context.Context, id uuid.UUID) (*CustomerModel, error)
	ListCustomerModels(ctx context.Context) ([]CustomerModel, error)
	SaveCustomerModel(ctx context.Context, m *CustomerModel) error

	GetAccessory(ctx context.Context, id uuid.UUID) (*Accessory, error)
	ListAccessories(ctx context.Context) ([]Accessory, error)
	SaveAccessory(ctx context.Context, a *Accessory) error
	ListCustomerAccessories(ctx context.Context, customerModelID uuid.UUID) ([]CustomerAccessory, error)
	SaveCustomerAccessory(ctx context.Context, a *CustomerAccessory) error

	GetLink(ctx context.Context, id uuid.UUID) (*Link, error)
	ListLinks(ctx context.Context) ([]Link, error)
	SaveLink(ctx context.Context, l *Link) error
}

type CompareRepo interface {
	GetCompareTable(ctx context.Context, id uuid.UUID) (*CompareTable, error)
	ListCompareTables(ctx context.Context) ([]CompareTable, error)
	SaveCompareTable(ctx context.Context, t *CompareTable) error
	ListCompareLines(ctx context.Context, tableID uuid.UUID) ([]CompareLine, error)
	GetCompareLine(ctx context.Context, id uuid.UUID) (*CompareLine, error)
	SaveCompareLine(ctx context.Context, l *CompareLine) error
	// MarkCompareTableReviewed moves a sent table to reviewed when none of
	// its lines is left unreviewed. It reports whether the status changed.
	MarkCompareTableReviewed(ctx context.Context, tableID uuid.UUID) (bool, error)
}

type ContractRepo interface {
	GetContract(ctx context.Context, id uuid.UUID) (*Contract, error)
	ListContracts(ctx context.Context) ([]Contract, error)
	SaveContract(ctx context.Context, c *Contract) error
	ListContractLines(ctx context.Context, contractID uuid.UUID) ([]ContractLine, error)
	SaveContractLine(ctx context.Context, l *ContractLine) error

	GetMaxTechTaskVersion(ctx context.Context, contractID uuid.UUID) (int, error)
	// InsertTechTask assigns t.Version = max+1 for the contract and stores t
	// as one atomic step. A lost race surfaces as ErrConcurrencyConflict.
	InsertTechTask(ctx context.Context, t *TechTask) error
	ListTechTasks(ctx context.Context, contractID uuid.UUID) ([]TechTask, error)
}

// Locker serializes work on a key across processes. Lock fails with
// ErrConcurrencyConflict when the key is already held.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
