// Package render draws finalized device models.
//
// The [nodelink] subpackage turns a model into a Graphviz graph with every
// site pinned at its lattice position. This package converts the resulting
// SVG into PDF or PNG with the external rsvg-convert tool (librsvg):
//
//	svg, err := nodelink.RenderSVG(nodelink.ToDOT(m, nodelink.Options{}))
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)
package render
