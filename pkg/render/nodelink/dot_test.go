package nodelink

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/matzehuels/tipscan/pkg/qpc"
)

func TestToDOT(t *testing.T) {
	m, err := qpc.Build(qpc.Config{Kind: qpc.KindTipSystem, HalfWidth: 1, Length: 2})
	if err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(m, Options{Detailed: true})

	if !strings.HasPrefix(dot, "graph device {") || !strings.Contains(dot, "layout=neato") {
		t.Fatalf("unexpected header:\n%s", dot)
	}
	if got := strings.Count(dot, " -- s"); got < len(m.Hoppings()) {
		t.Errorf("found %d edges into region sites, want at least %d", got, len(m.Hoppings()))
	}
	for i := range m.NumSites() {
		if !strings.Contains(dot, "  s"+strconv.Itoa(i)+" [pos=") {
			t.Errorf("site %d missing", i)
		}
	}
	if !strings.Contains(dot, "l0_0") || !strings.Contains(dot, "l1_0") {
		t.Error("lead cells missing")
	}
	if !strings.Contains(dot, `xlabel="central_potential(`) || !strings.Contains(dot, `) 0,0"`) {
		t.Error("gate site not labeled")
	}
	if !strings.Contains(dot, `pos="0.3,0!"`) {
		t.Error("site (1,0) not pinned at default scale")
	}
}

func TestToDOTScale(t *testing.T) {
	m, err := qpc.Build(qpc.Config{Kind: qpc.KindTipSystem, HalfWidth: 1})
	if err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(m, Options{Scale: 1})
	if !strings.Contains(dot, `pos="-1,1!"`) {
		t.Errorf("site (-1,1) not pinned at scale 1:\n%s", dot)
	}
	if strings.Contains(dot, "xlabel") {
		t.Error("labels drawn without Detailed")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("starts the graphviz runtime")
	}
	m, err := qpc.Build(qpc.Config{Kind: qpc.KindTipSystem, HalfWidth: 1})
	if err != nil {
		t.Fatal(err)
	}
	svg, err := RenderSVG(ToDOT(m, Options{}))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Errorf("svg header not normalized: %.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 44.00" width="62" height="44"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("no viewBox: %s", got)
	}
}
