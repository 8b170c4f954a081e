package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tipscan/pkg/device"
	"github.com/matzehuels/tipscan/pkg/lattice"
)

// Options configures diagram generation.
type Options struct {
	// Detailed labels every site with its coordinates and function-valued
	// sites with the function name. Otherwise nodes are unlabeled dots.
	Detailed bool

	// Scale is the distance between neighboring sites in inches.
	// Zero means 0.3.
	Scale float64
}

var leadColors = []string{"#4c78a8", "#e45756", "#54a24b", "#b279a2"}

// ToDOT converts m into Graphviz DOT with pinned node positions.
func ToDOT(m *device.Model, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = 0.3
	}
	var buf bytes.Buffer
	buf.WriteString("graph device {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fixedsize=true, width=0.12, label=\"\", fontsize=8];\n")
	buf.WriteString("  edge [color=grey60];\n")
	buf.WriteString("\n")

	for i := range m.NumSites() {
		s := m.Site(i)
		attrs := []string{pos(s, scale)}
		if v := m.Onsite(i); !v.IsConst() {
			attrs = append(attrs, "fillcolor=gold")
		}
		if opts.Detailed {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", siteLabel(s, m.Onsite(i))))
		}
		fmt.Fprintf(&buf, "  s%d [%s];\n", i, strings.Join(attrs, ", "))
	}
	for _, h := range m.Hoppings() {
		attr := ""
		if !h.Value.IsConst() {
			attr = " [color=gold, penwidth=2]"
		}
		fmt.Fprintf(&buf, "  s%d -- s%d%s;\n", h.I, h.J, attr)
	}

	for li := range m.NumLeads() {
		l, err := m.Lead(li)
		if err != nil {
			continue
		}
		color := leadColors[li%len(leadColors)]
		buf.WriteString("\n")
		for i, s := range l.Cell {
			fmt.Fprintf(&buf, "  l%d_%d [%s, style=\"filled,dashed\", fillcolor=%q];\n", li, i, pos(s, scale), color)
		}
		for _, h := range l.Intra {
			fmt.Fprintf(&buf, "  l%d_%d -- l%d_%d [style=dashed];\n", li, h.I, li, h.J)
		}
		for i, j := range l.Interface {
			if j >= 0 {
				fmt.Fprintf(&buf, "  l%d_%d -- s%d [style=dashed, color=%q];\n", li, i, j, color)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func pos(s lattice.Site, scale float64) string {
	p := s.Pos()
	return fmt.Sprintf("pos=\"%s,%s!\"", fmtInches(p[0]*scale), fmtInches(p[1]*scale))
}

func fmtInches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func siteLabel(s lattice.Site, v device.Value) string {
	coords := fmt.Sprintf("%d,%d", s.X(), s.Y())
	if v.IsConst() {
		return coords
	}
	return v.String() + " " + coords
}

// RenderSVG renders DOT source to SVG with the neato engine.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg header with one whose viewBox
// starts at the origin and whose size is in pixels.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	head := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(head))
}
