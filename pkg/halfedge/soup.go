package halfedge

import v3 "github.com/deadsy/sdfx/vec/v3"

// Soup is an indexed triangle list as produced by an importer. Triangles
// must share one winding direction.
type Soup struct {
	Positions []v3.Vec
	Triangles [][3]int
}

// NumVertices returns the number of positions.
func (s *Soup) NumVertices() int { return len(s.Positions) }

// NumTriangles returns the number of triangles.
func (s *Soup) NumTriangles() int { return len(s.Triangles) }

// AddVertex appends a position and returns its index.
func (s *Soup) AddVertex(p v3.Vec) int {
	s.Positions = append(s.Positions, p)
	return len(s.Positions) - 1
}

// AddTriangle appends a triangle.
func (s *Soup) AddTriangle(a, b, c int) {
	s.Triangles = append(s.Triangles, [3]int{a, b, c})
}

// Append adds all of o to s, offsetting its indices.
func (s *Soup) Append(o *Soup) {
	base := len(s.Positions)
	s.Positions = append(s.Positions, o.Positions...)
	for _, t := range o.Triangles {
		s.Triangles = append(s.Triangles, [3]int{t[0] + base, t[1] + base, t[2] + base})
	}
}
