package usecase

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/phenrril/sourcing/internal/domain"
)

func TestEffectiveParamsSelfFirstThenAncestors(t *testing.T) {
	f := newFixture(t)
	chairs := f.node("CHAIRS", nil)
	office := f.node("OFFICE_CHAIRS", chairs)
	seat := f.param("seat_height", domain.ValueNumeric)
	wheels := f.param("wheel_count", domain.ValueNumeric)
	f.assign(chairs, seat, true)
	f.assign(office, wheels, false)

	got, err := f.paramUC.EffectiveParams(f.ctx, office.ID)
	if err != nil {
		t.Fatalf("EffectiveParams: %v", err)
	}
	if want := []string{"wheel_count", "seat_height"}; !reflect.DeepEqual(codes(got), want) {
		t.Fatalf("order: want=%v got=%v", want, codes(got))
	}
	if got[0].Required || !got[1].Required {
		t.Fatalf("required flags: want=[false true] got=[%v %v]", got[0].Required, got[1].Required)
	}
	if got[0].Depth != 0 || got[1].Depth != 1 || got[1].SourceNodeID != chairs.ID {
		t.Fatalf("sources: got=%+v", got)
	}

	again, err := f.paramUC.EffectiveParams(f.ctx, office.ID)
	if err != nil || !reflect.DeepEqual(codes(again), codes(got)) {
		t.Fatalf("second call: want=%v got=%v err=%v", codes(got), codes(again), err)
	}
}

func TestEffectiveParamsNearestDeclarationWins(t *testing.T) {
	f := newFixture(t)
	root := f.node("LIGHTING", nil)
	mid := f.node("LED", root)
	leaf := f.node("LED_PANEL", mid)
	volt := f.param("VOLTAGE", domain.ValueNumeric)
	pf := f.param("PF", domain.ValueNumeric)
	f.assign(root, volt, false)
	f.assign(root, pf, true)
	f.assign(mid, volt, true)

	got, err := f.paramUC.EffectiveParams(f.ctx, leaf.ID)
	if err != nil {
		t.Fatalf("EffectiveParams: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("each param once: want=2 got=%d (%v)", len(got), codes(got))
	}
	if got[0].Param.Code != "VOLTAGE" || !got[0].Required || got[0].SourceNodeID != mid.ID {
		t.Fatalf("VOLTAGE should come from LED as required, got=%+v", got[0])
	}
	if got[1].Param.Code != "PF" || got[1].Depth != 2 {
		t.Fatalf("PF should be inherited from the root, got=%+v", got[1])
	}
}

func TestEffectiveParamsIgnoresSiblingsAndDescendants(t *testing.T) {
	f := newFixture(t)
	root := f.node("ROOT", nil)
	a := f.node("A", root)
	b := f.node("B", root)
	aChild := f.node("A_CHILD", a)
	onRoot := f.param("ON_ROOT", domain.ValueText)
	onB := f.param("ON_B", domain.ValueText)
	onChild := f.param("ON_CHILD", domain.ValueText)
	f.assign(root, onRoot, false)
	f.assign(b, onB, false)
	f.assign(aChild, onChild, false)

	got, err := f.paramUC.EffectiveParams(f.ctx, a.ID)
	if err != nil {
		t.Fatalf("EffectiveParams: %v", err)
	}
	if want := []string{"ON_ROOT"}; !reflect.DeepEqual(codes(got), want) {
		t.Fatalf("want=%v got=%v", want, codes(got))
	}
}

func TestEffectiveParamsWithinNodeByCode(t *testing.T) {
	f := newFixture(t)
	n := f.node("N", nil)
	for _, c := range []string{"ZETA", "ALPHA", "MID"} {
		f.assign(n, f.param(c, domain.ValueText), false)
	}
	got, err := f.paramUC.EffectiveParams(f.ctx, n.ID)
	if err != nil {
		t.Fatalf("EffectiveParams: %v", err)
	}
	if want := []string{"ALPHA", "MID", "ZETA"}; !reflect.DeepEqual(codes(got), want) {
		t.Fatalf("want=%v got=%v", want, codes(got))
	}
}

func TestEffectiveParamsUnknownNode(t *testing.T) {
	f := newFixture(t)
	if _, err := f.paramUC.EffectiveParams(f.ctx, missing); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound got=%v", err)
	}
}

func TestAncestorsCycleIsInvalidHierarchy(t *testing.T) {
	f := newFixture(t)
	a := f.node("A", nil)
	b := f.node("B", a)
	a.ParentID = &b.ID
	if err := f.nodes.SaveProductNode(f.ctx, a); err != nil {
		t.Fatalf("SaveProductNode: %v", err)
	}
	if _, err := f.tree.Ancestors(f.ctx, b.ID); !errors.Is(err, domain.ErrInvalidHierarchy) {
		t.Fatalf("cycle: want ErrInvalidHierarchy got=%v", err)
	}
	if _, err := f.paramUC.EffectiveParams(f.ctx, a.ID); !errors.Is(err, domain.ErrInvalidHierarchy) {
		t.Fatalf("EffectiveParams over cycle: want ErrInvalidHierarchy got=%v", err)
	}
}

func TestAncestorsDanglingParent(t *testing.T) {
	f := newFixture(t)
	gone := uuid.New()
	n := &domain.ProductNode{Code: "ORPHAN", Name: "Orphan", ParentID: &gone}
	if err := f.nodes.SaveProductNode(f.ctx, n); err != nil {
		t.Fatalf("SaveProductNode: %v", err)
	}
	if _, err := f.tree.Ancestors(f.ctx, n.ID); !errors.Is(err, domain.ErrInvalidHierarchy) {
		t.Fatalf("dangling parent: want ErrInvalidHierarchy got=%v", err)
	}
}

func TestUpdateNodeRejectsDescendantParent(t *testing.T) {
	f := newFixture(t)
	a := f.node("A", nil)
	b := f.node("B", a)
	c := f.node("C", b)
	if _, err := f.catalog.UpdateNode(f.ctx, a.ID, nil, nil, &c.ID, false); !errors.Is(err, domain.ErrInvalidHierarchy) {
		t.Fatalf("descendant parent: want ErrInvalidHierarchy got=%v", err)
	}
	if _, err := f.catalog.UpdateNode(f.ctx, a.ID, nil, nil, &a.ID, false); !errors.Is(err, domain.ErrInvalidHierarchy) {
		t.Fatalf("self parent: want ErrInvalidHierarchy got=%v", err)
	}
	other := f.node("OTHER", nil)
	got, err := f.catalog.UpdateNode(f.ctx, c.ID, nil, nil, &other.ID, false)
	if err != nil {
		t.Fatalf("UpdateNode: %v", err)
	}
	if got.ParentID == nil || *got.ParentID != other.ID {
		t.Fatalf("parent: want=%s got=%v", other.ID, got.ParentID)
	}
	if err := f.catalog.CreateNode(f.ctx, &domain.ProductNode{Code: "X", Name: "X", ParentID: &missing}); !errors.Is(err, domain.ErrInvalidHierarchy) {
		t.Fatalf("missing parent on create: want ErrInvalidHierarchy got=%v", err)
	}
}

func TestEffectiveMethodsNearestFirst(t *testing.T) {
	f := newFixture(t)
	root := f.node("ROOT", nil)
	leaf := f.node("LEAF", root)
	for _, m := range []domain.TestMethod{
		{NodeID: root.ID, Title: "Drop test", Text: "1m onto concrete"},
		{NodeID: leaf.ID, Title: "Load test", Text: "120kg for 24h"},
		{NodeID: leaf.ID, Title: "Colour check", Text: "RAL 9005"},
	} {
		m := m
		if err := f.catalog.CreateTestMethod(f.ctx, &m); err != nil {
			t.Fatalf("CreateTestMethod: %v", err)
		}
	}
	got, err := f.paramUC.EffectiveMethods(f.ctx, leaf.ID)
	if err != nil {
		t.Fatalf("EffectiveMethods: %v", err)
	}
	var titles []string
	for _, m := range got {
		titles = append(titles, m.Method.Title)
	}
	if want := []string{"Colour check", "Load test", "Drop test"}; !reflect.DeepEqual(titles, want) {
		t.Fatalf("want=%v got=%v", want, titles)
	}
}

func TestCreateParamValidation(t *testing.T) {
	f := newFixture(t)
	if err := f.catalog.CreateParam(f.ctx, &domain.Param{Code: "X", Name: "X", ValueType: "blob"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("bad type: want ErrValidation got=%v", err)
	}
	if err := f.catalog.CreateParam(f.ctx, &domain.Param{Code: "Y", Name: "Y", ValueType: domain.ValueEnum}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("enum without options: want ErrValidation got=%v", err)
	}
	if err := f.catalog.AssignParam(f.ctx, &domain.ParamAssignment{NodeID: missing, ParamID: missing}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("assign to missing node: want ErrNotFound got=%v", err)
	}
}
