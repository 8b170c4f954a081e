package lattice

import (
	"fmt"
)

// Tag holds the integer coordinates of a site.
type Tag [2]int

// Vec is an integer displacement between tags.
type Vec [2]int

// Neg returns -v.
func (v Vec) Neg() Vec { return Vec{-v[0], -v[1]} }

// Scale returns k*v.
func (v Vec) Scale(k int) Vec { return Vec{k * v[0], k * v[1]} }

// Dot returns the scalar product of v and w.
func (v Vec) Dot(w Vec) int { return v[0]*w[0] + v[1]*w[1] }

// IsZero reports whether v is the null vector.
func (v Vec) IsZero() bool { return v[0] == 0 && v[1] == 0 }

// IsAxis reports whether v is non-zero and parallel to one lattice axis.
func (v Vec) IsAxis() bool { return !v.IsZero() && (v[0] == 0 || v[1] == 0) }

func (v Vec) String() string { return fmt.Sprintf("(%d,%d)", v[0], v[1]) }

// Square is an infinite square lattice with spacing A.
//
// Lattices are compared by pointer: two sites belong to the same lattice only
// if they were created from the same *Square.
type Square struct {
	Name string  // Short name used in site labels
	A    float64 // Lattice constant
}

// NewSquare creates a square lattice. A non-positive spacing defaults to 1.
func NewSquare(name string, a float64) *Square {
	if a <= 0 {
		a = 1
	}
	return &Square{Name: name, A: a}
}

// Site returns the site of l at integer coordinates (x, y).
func (l *Square) Site(x, y int) Site {
	return Site{Lattice: l, Tag: Tag{x, y}}
}

// Neighbors returns the offsets that enumerate each nearest-neighbour bond
// once: (1,0) and (0,1).
func (l *Square) Neighbors() []Vec {
	return []Vec{{1, 0}, {0, 1}}
}

// NeighborOffsets returns all four nearest-neighbour directions
// in the order E, N, W, S.
func (l *Square) NeighborOffsets() []Vec {
	return []Vec{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
}

func (l *Square) String() string {
	if l == nil {
		return "<nil>"
	}
	return l.Name
}

// Site is a point of a lattice. The zero value has no lattice and is invalid.
type Site struct {
	Lattice *Square
	Tag     Tag
}

// X returns the first tag coordinate.
func (s Site) X() int { return s.Tag[0] }

// Y returns the second tag coordinate.
func (s Site) Y() int { return s.Tag[1] }

// Valid reports whether the site belongs to a lattice.
func (s Site) Valid() bool { return s.Lattice != nil }

// Pos returns the real-space position of the site.
func (s Site) Pos() [2]float64 {
	a := 1.0
	if s.Lattice != nil {
		a = s.Lattice.A
	}
	return [2]float64{a * float64(s.Tag[0]), a * float64(s.Tag[1])}
}

// Add returns the site displaced by v on the same lattice.
func (s Site) Add(v Vec) Site {
	return Site{Lattice: s.Lattice, Tag: Tag{s.Tag[0] + v[0], s.Tag[1] + v[1]}}
}

// Sub returns the displacement from o to s.
func (s Site) Sub(o Site) Vec {
	return Vec{s.Tag[0] - o.Tag[0], s.Tag[1] - o.Tag[1]}
}

// IsNeighbor reports whether o is a nearest neighbour of s on the same lattice.
func (s Site) IsNeighbor(o Site) bool {
	if s.Lattice != o.Lattice {
		return false
	}
	d := s.Sub(o)
	return abs(d[0])+abs(d[1]) == 1
}

// Less orders sites by lattice name, then x, then y.
func (s Site) Less(o Site) bool {
	if s.Lattice != o.Lattice {
		return s.Lattice.String() < o.Lattice.String()
	}
	if s.Tag[0] != o.Tag[0] {
		return s.Tag[0] < o.Tag[0]
	}
	return s.Tag[1] < o.Tag[1]
}

// String formats the site as "name(x,y)".
func (s Site) String() string {
	return fmt.Sprintf("%s(%d,%d)", s.Lattice.String(), s.Tag[0], s.Tag[1])
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
