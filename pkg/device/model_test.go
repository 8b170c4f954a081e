package device

import (
	"errors"
	"math"
	"testing"

	errs "github.com/matzehuels/tipscan/pkg/errors"
	"github.com/matzehuels/tipscan/pkg/lattice"
)

func chainModel(t *testing.T) (*Model, *lattice.Square) {
	t.Helper()
	lat := lattice.NewSquare("a", 1)
	b := NewBuilder()
	pot := OnsiteFunc("Pot", func(_ lattice.Site, p Params) float64 { return p["Vg"] }, Required("Vg"))
	hop := HoppingFunc("Hop", func(_, _ lattice.Site, p Params) float64 { return -p["tc"] }, Optional("tc", 1))
	mustApply(t, b,
		SitesOp{Pattern: Rect(lat, -1, 2, 0, 1), Value: Const(0)},
		SitesOp{Pattern: Sites(lat.Site(0, 0)), Value: pot},
		HoppingsOp{Pattern: Neighbors(lat), Value: Const(-1)},
		HoppingsOp{Pattern: Pair(lat.Site(0, 0), lat.Site(1, 0)), Value: hop},
	)
	l, err := NewLead(lattice.Vec{-1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if err := l.SetSites(Sites(lat.Site(-2, 0)), Const(0)); err != nil {
		t.Fatal(err)
	}
	if err := l.SetHoppings(Neighbors(lat), Const(-1)); err != nil {
		t.Fatal(err)
	}
	if _, err := b.AttachLead(l, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := b.AttachLead(l.Reversed(), 0); err != nil {
		t.Fatal(err)
	}
	m, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	return m, lat
}

func TestModelHamiltonian(t *testing.T) {
	m, lat := chainModel(t)
	h, err := m.Hamiltonian(Params{"Vg": 0.5, "tc": 2})
	if err != nil {
		t.Fatal(err)
	}
	i, _ := m.Index(lat.Site(0, 0))
	j, _ := m.Index(lat.Site(1, 0))
	k, _ := m.Index(lat.Site(-1, 0))
	tests := []struct {
		name string
		r, c int
		want float64
	}{
		{"onsite function", i, i, 0.5},
		{"explicit hopping", i, j, -2},
		{"symmetric", j, i, -2},
		{"neighbour hopping", k, i, -1},
		{"no bond", k, j, 0},
	}
	for _, tt := range tests {
		if got := h.At(tt.r, tt.c); got != tt.want {
			t.Errorf("%s: H[%d][%d] = %g, want %g", tt.name, tt.r, tt.c, got, tt.want)
		}
	}
}

func TestModelParameters(t *testing.T) {
	m, _ := chainModel(t)
	params := m.Parameters()
	if len(params) != 2 || params[0].Name != "Vg" || params[1].Name != "tc" {
		t.Fatalf("Parameters() = %v", params)
	}
	if got := m.Defaults(); len(got) != 1 || got["tc"] != 1 {
		t.Errorf("Defaults() = %v", got)
	}

	_, err := m.Hamiltonian(Params{"tc": 1})
	if !errors.Is(err, ErrMissingParameter) || !errs.Is(err, errs.ErrCodeMissingParameter) {
		t.Fatalf("Hamiltonian() error = %v, want missing parameter", err)
	}
	rp, err := m.Resolve(Params{"Vg": 1, "extra": 3})
	if err != nil {
		t.Fatal(err)
	}
	if rp["tc"] != 1 || rp["extra"] != 3 {
		t.Errorf("Resolve() = %v", rp)
	}
}

func TestModelNonFiniteValue(t *testing.T) {
	m, _ := chainModel(t)
	_, err := m.Hamiltonian(Params{"Vg": math.Inf(1)})
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Hamiltonian() error = %v, want INVALID_INPUT", err)
	}
}

func TestModelLeadBlocks(t *testing.T) {
	m, lat := chainModel(t)
	if m.NumLeads() != 2 {
		t.Fatalf("NumLeads() = %d", m.NumLeads())
	}
	blk, err := m.LeadBlocks(1, Params{"Vg": 0})
	if err != nil {
		t.Fatal(err)
	}
	if blk.H0.Rows != 1 || blk.H0.At(0, 0) != 0 || blk.H1.At(0, 0) != -1 {
		t.Errorf("blocks H0=%v H1=%v", blk.H0.Data, blk.H1.Data)
	}
	want, _ := m.Index(lat.Site(1, 0))
	if blk.Interface[0] != want {
		t.Errorf("Interface = %v, want [%d]", blk.Interface, want)
	}
	if _, err := m.LeadBlocks(2, nil); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("LeadBlocks(2) error = %v", err)
	}
}

func TestModelFingerprint(t *testing.T) {
	a, _ := chainModel(t)
	b, _ := chainModel(t)
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical builds must share a fingerprint")
	}
	if len(a.Fingerprint()) != 64 {
		t.Errorf("fingerprint %q is not hex SHA-256", a.Fingerprint())
	}

	lat := lattice.NewSquare("a", 1)
	bb := NewBuilder()
	mustApply(t, bb, SitesOp{Pattern: Sites(lat.Site(0, 0)), Value: Const(1)})
	m1, _ := bb.Finalize()
	mustApply(t, bb, SitesOp{Pattern: Sites(lat.Site(0, 0)), Value: Const(2)})
	m2, _ := bb.Finalize()
	if m1.Fingerprint() == m2.Fingerprint() {
		t.Error("changing a value must change the fingerprint")
	}
}

func TestModelIsolatedFromBuilder(t *testing.T) {
	lat := lattice.NewSquare("a", 1)
	b := NewBuilder()
	mustApply(t, b, SitesOp{Pattern: Sites(lat.Site(0, 0)), Value: Const(1)})
	m, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	mustApply(t, b, SitesOp{Pattern: Sites(lat.Site(1, 0)), Value: Const(1)})
	if m.NumSites() != 1 {
		t.Errorf("model changed after builder mutation: %d sites", m.NumSites())
	}
}
