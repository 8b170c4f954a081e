package device

import (
	"errors"
	"testing"

	errs "github.com/matzehuels/tipscan/pkg/errors"
	"github.com/matzehuels/tipscan/pkg/lattice"
)

func stripLead(t *testing.T, lat *lattice.Square, x, y0, y1 int, period lattice.Vec) *Lead {
	t.Helper()
	l, err := NewLead(period)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.SetSites(Column(lat, x, y0, y1), Const(0)); err != nil {
		t.Fatal(err)
	}
	if err := l.SetHoppings(Neighbors(lat), Const(-1)); err != nil {
		t.Fatal(err)
	}
	return l
}

func TestNewLeadRejectsPeriod(t *testing.T) {
	for _, v := range []lattice.Vec{{0, 0}, {1, 1}, {2, 0}} {
		if _, err := NewLead(v); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("NewLead(%v) error = %v, want INVALID_INPUT", v, err)
		}
	}
}

func TestLeadNeighborHoppings(t *testing.T) {
	lat := lattice.NewSquare("a", 1)
	l := stripLead(t, lat, -2, 0, 3, lattice.Vec{-1, 0})
	intra, inter := l.NumHoppings()
	if intra != 2 || inter != 3 {
		t.Fatalf("NumHoppings() = %d, %d; want 2, 3", intra, inter)
	}
	// Sites given in any cell fold into the reference cell.
	if err := l.SetSites(Sites(lat.Site(7, 1)), Const(4)); err != nil {
		t.Fatal(err)
	}
	if got := l.NumSites(); got != 3 {
		t.Errorf("NumSites() = %d, want 3", got)
	}
	if _, ok := l.Hopping(lat.Site(-2, 0), lat.Site(-2, 0), 1); !ok {
		t.Error("missing hopping to the next cell")
	}
	if _, ok := l.Hopping(lat.Site(-2, 0), lat.Site(-2, 0), -1); !ok {
		t.Error("missing hopping to the previous cell")
	}
}

func TestLeadPairSpanningCells(t *testing.T) {
	lat := lattice.NewSquare("a", 1)
	l, _ := NewLead(lattice.Vec{1, 0})
	if err := l.SetSites(Column(lat, 0, 0, 2), Const(0)); err != nil {
		t.Fatal(err)
	}
	if err := l.SetHoppings(Pair(lat.Site(0, 0), lat.Site(2, 0)), Const(-1)); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("two-period hopping error = %v, want INVALID_INPUT", err)
	}
	if err := l.SetHoppings(Pair(lat.Site(0, 0), lat.Site(1, 1)), Const(-1)); err != nil {
		t.Fatal(err)
	}
	if _, ok := l.Hopping(lat.Site(0, 0), lat.Site(0, 1), 1); !ok {
		t.Error("diagonal inter-cell hopping not recorded")
	}
	if err := l.SetHoppings(Pair(lat.Site(0, 5), lat.Site(1, 5)), Const(-1)); !errors.Is(err, ErrUnknownSite) {
		t.Errorf("hopping outside the cell error = %v, want unknown site", err)
	}
}

func TestAttachLeadAndReversed(t *testing.T) {
	lat := lattice.NewSquare("a", 1)
	b := NewBuilder()
	mustApply(t, b,
		SitesOp{Pattern: Rect(lat, -1, 2, 0, 3), Value: Const(0)},
		HoppingsOp{Pattern: Neighbors(lat), Value: Const(-1)},
	)
	l := stripLead(t, lat, -2, 0, 3, lattice.Vec{-1, 0})

	i0, err := b.AttachLead(l, 0)
	if err != nil {
		t.Fatal(err)
	}
	i1, err := b.AttachLead(l.Reversed(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if i0 != 0 || i1 != 1 {
		t.Fatalf("lead indices = %d, %d; want 0, 1", i0, i1)
	}
	if b.NumSites() != 9 {
		t.Errorf("attachment added sites: %d", b.NumSites())
	}

	m, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	left, _ := m.Lead(0)
	right, _ := m.Lead(1)
	if left.Period != right.Period.Neg() {
		t.Errorf("periods %v and %v are not opposite", left.Period, right.Period)
	}
	if got := left.Cell[0]; got != lat.Site(-2, 0) {
		t.Errorf("left lead starts at %v, want a(-2,0)", got)
	}
	if got := right.Cell[0]; got != lat.Site(2, 0) {
		t.Errorf("right lead starts at %v, want a(2,0)", got)
	}
	for i, s := range right.Cell {
		want, _ := m.Index(s.Add(lattice.Vec{-1, 0}))
		if right.Interface[i] != want {
			t.Errorf("right interface[%d] = %d, want %d", i, right.Interface[i], want)
		}
	}
}

func TestAttachLeadFillsGaps(t *testing.T) {
	lat := lattice.NewSquare("a", 1)
	b := NewBuilder()
	mustApply(t, b,
		SitesOp{Pattern: Column(lat, 0, 0, 3), Value: Const(0)},
		SitesOp{Pattern: Sites(lat.Site(5, 0)), Value: Const(2)},
		HoppingsOp{Pattern: Neighbors(lat), Value: Const(-1)},
	)
	l := stripLead(t, lat, 0, 0, 3, lattice.Vec{1, 0})
	if _, err := b.AttachLead(l, 0); err != nil {
		t.Fatal(err)
	}
	if got := b.NumSites(); got != 18 {
		t.Fatalf("NumSites() = %d, want 18", got)
	}
	if v, _ := b.Site(lat.Site(5, 0)); v.String() != "2" {
		t.Errorf("existing site value overwritten: %v", v)
	}
	for _, pr := range [][2]lattice.Site{
		{lat.Site(0, 1), lat.Site(1, 1)},
		{lat.Site(4, 0), lat.Site(5, 0)},
		{lat.Site(5, 0), lat.Site(5, 1)},
	} {
		if _, ok := b.Hopping(pr[0], pr[1]); !ok {
			t.Errorf("missing filled hopping %v-%v", pr[0], pr[1])
		}
	}
	m, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	ld, _ := m.Lead(0)
	if ld.Cell[0].X() != 6 {
		t.Errorf("lead starts at x=%d, want 6", ld.Cell[0].X())
	}
}

func TestAttachLeadExtraCells(t *testing.T) {
	lat := lattice.NewSquare("a", 1)
	b := NewBuilder()
	mustApply(t, b,
		SitesOp{Pattern: Column(lat, 0, 0, 2), Value: Const(0)},
		HoppingsOp{Pattern: Neighbors(lat), Value: Const(-1)},
	)
	if _, err := b.AttachLead(stripLead(t, lat, 0, 0, 2, lattice.Vec{1, 0}), 2); err != nil {
		t.Fatal(err)
	}
	if got := b.NumSites(); got != 6 {
		t.Errorf("NumSites() = %d, want 6", got)
	}
	m, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	ld, _ := m.Lead(0)
	if ld.Cell[0].X() != 3 {
		t.Errorf("lead starts at x=%d, want 3", ld.Cell[0].X())
	}
}

func TestAttachLeadMismatch(t *testing.T) {
	lat := lattice.NewSquare("a", 1)
	other := lattice.NewSquare("b", 1)
	region := func() *Builder {
		b := NewBuilder()
		mustApply(t, b, SitesOp{Pattern: Column(lat, 0, 0, 3), Value: Const(0)})
		return b
	}
	empty, _ := NewLead(lattice.Vec{1, 0})
	noInter, _ := NewLead(lattice.Vec{1, 0})
	_ = noInter.SetSites(Column(lat, 0, 0, 3), Const(0))

	tests := []struct {
		name string
		lead *Lead
	}{
		{"disjoint rows", stripLead(t, lat, 0, 100, 103, lattice.Vec{1, 0})},
		{"other lattice", stripLead(t, other, 0, 0, 3, lattice.Vec{1, 0})},
		{"empty lead", empty},
		{"no inter-cell hoppings", noInter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := region()
			_, err := b.AttachLead(tt.lead, 0)
			if !errors.Is(err, ErrLeadMismatch) {
				t.Fatalf("AttachLead() error = %v, want lead mismatch", err)
			}
			if b.NumLeads() != 0 || b.NumSites() != 3 {
				t.Error("failed attachment changed the builder")
			}
		})
	}
}

func TestFinalizeDetectsRemovedInterface(t *testing.T) {
	lat := lattice.NewSquare("a", 1)
	b := NewBuilder()
	mustApply(t, b, SitesOp{Pattern: Column(lat, 0, 0, 2), Value: Const(0)})
	if _, err := b.AttachLead(stripLead(t, lat, 0, 0, 2, lattice.Vec{1, 0}), 0); err != nil {
		t.Fatal(err)
	}
	mustApply(t, b, DeleteOp{Pattern: Sites(lat.Site(0, 1))})
	_, err := b.Finalize()
	if !errors.Is(err, ErrLeadMismatch) || !errors.Is(err, ErrIncompleteModel) {
		t.Errorf("Finalize() error = %v", err)
	}
}
