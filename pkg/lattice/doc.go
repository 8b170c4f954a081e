// Package lattice defines the coordinate system of a two-dimensional square
// lattice with nearest-neighbour connectivity.
//
// # Overview
//
// A [Square] lattice is an infinite set of points with integer coordinates
// (a [Tag]) and a spacing A. A [Site] pairs a lattice with a tag; its real
// space position is A times the tag. Sites are plain comparable values and
// can be used directly as map keys.
//
//	lat := lattice.NewSquare("a", 1)
//	s := lat.Site(3, -2)
//	fmt.Println(s.Pos()) // [3 -2]
//
// # Neighbours
//
// [Square.Neighbors] returns the two offsets (1,0) and (0,1). Adding each
// offset to every site of a set enumerates every nearest-neighbour bond of
// that set exactly once. [Square.NeighborOffsets] returns all four
// directions for callers that need them.
//
// # Translations
//
// [Vec] is an integer displacement in tag space. Leads use it to describe
// their period; the device package restricts periods to the lattice axes.
package lattice
