// Package nodelink renders device models as node-link diagrams.
//
// Every scattering-region site becomes a node pinned at its lattice
// position and every hopping an undirected edge, so the neato engine
// reproduces the geometry instead of computing a layout. The first unit
// cell of each lead is drawn dashed next to the interface it attaches to.
//
//	dot := nodelink.ToDOT(m, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// Sites whose onsite value is a function (a gate or a tip) are filled, and
// with Detailed set their labels show the function name and coordinates.
//
// # Dependencies
//
// SVG rendering runs in process with [github.com/goccy/go-graphviz]. PDF and
// PNG go through the parent [render] package and need librsvg.
package nodelink
