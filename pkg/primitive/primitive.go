// Package primitive provides small indexed triangle soups used as level-0
// surfaces: closed polyhedra with outward counter-clockwise winding and
// open patches with a single boundary loop.
package primitive

import (
	"math"

	"github.com/chazu/loopview/pkg/halfedge"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func soup(pos []v3.Vec, tris [][3]int) *halfedge.Soup {
	return &halfedge.Soup{Positions: pos, Triangles: tris}
}

// Tetrahedron returns a regular tetrahedron inscribed in the cube [-1,1]^3.
func Tetrahedron() *halfedge.Soup {
	return soup(
		[]v3.Vec{{X: 1, Y: 1, Z: 1}, {X: 1, Y: -1, Z: -1}, {X: -1, Y: 1, Z: -1}, {X: -1, Y: -1, Z: 1}},
		[][3]int{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}},
	)
}

// Octahedron returns the unit octahedron with vertices on the axes.
func Octahedron() *halfedge.Soup {
	return soup(
		[]v3.Vec{
			{X: 1}, {X: -1},
			{Y: 1}, {Y: -1},
			{Z: 1}, {Z: -1},
		},
		[][3]int{
			{4, 0, 2}, {4, 2, 1}, {4, 1, 3}, {4, 3, 0},
			{5, 2, 0}, {5, 1, 2}, {5, 3, 1}, {5, 0, 3},
		},
	)
}

// Icosahedron returns the icosahedron with vertices (0, ±1, ±φ) and their
// cyclic permutations.
func Icosahedron() *halfedge.Soup {
	phi := (1 + math.Sqrt(5)) / 2
	return soup(
		[]v3.Vec{
			{X: -1, Y: phi}, {X: 1, Y: phi}, {X: -1, Y: -phi}, {X: 1, Y: -phi},
			{Y: -1, Z: phi}, {Y: 1, Z: phi}, {Y: -1, Z: -phi}, {Y: 1, Z: -phi},
			{X: phi, Z: -1}, {X: phi, Z: 1}, {X: -phi, Z: -1}, {X: -phi, Z: 1},
		},
		[][3]int{
			{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
			{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
			{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
			{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
		},
	)
}

// Triangle returns a single open triangle in the XY plane.
func Triangle() *halfedge.Soup {
	return soup(
		[]v3.Vec{{}, {X: 1}, {Y: 1}},
		[][3]int{{0, 1, 2}},
	)
}

// Grid returns an open n×n square patch of side 1 in the XY plane, two
// triangles per cell. n must be at least 1.
func Grid(n int) *halfedge.Soup {
	if n < 1 {
		n = 1
	}
	s := &halfedge.Soup{}
	step := 1 / float64(n)
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			s.AddVertex(v3.Vec{X: float64(i) * step, Y: float64(j) * step})
		}
	}
	at := func(i, j int) int { return j*(n+1) + i }
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			s.AddTriangle(at(i, j), at(i+1, j), at(i+1, j+1))
			s.AddTriangle(at(i, j), at(i+1, j+1), at(i, j+1))
		}
	}
	return s
}

// Named returns the closed primitive with the given name.
func Named(name string) (*halfedge.Soup, bool) {
	switch name {
	case "tetrahedron":
		return Tetrahedron(), true
	case "octahedron":
		return Octahedron(), true
	case "icosahedron":
		return Icosahedron(), true
	case "triangle":
		return Triangle(), true
	}
	return nil, false
}
