package primitive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosedPrimitivesWindOutward(t *testing.T) {
	for _, name := range []string{"tetrahedron", "octahedron", "icosahedron"} {
		s, ok := Named(name)
		require.True(t, ok, name)
		// Each solid is convex and centered, so an outward face has a
		// positive triple product of its corners.
		for f, tri := range s.Triangles {
			a, b, c := s.Positions[tri[0]], s.Positions[tri[1]], s.Positions[tri[2]]
			assert.Greater(t, a.Dot(b.Cross(c)), 0.0, "%s face %d", name, f)
		}
	}
}

func TestNamed(t *testing.T) {
	tests := []struct {
		name      string
		vertices  int
		triangles int
	}{
		{"tetrahedron", 4, 4},
		{"octahedron", 6, 8},
		{"icosahedron", 12, 20},
		{"triangle", 3, 1},
	}
	for _, tt := range tests {
		s, ok := Named(tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.vertices, s.NumVertices(), tt.name)
		assert.Equal(t, tt.triangles, s.NumTriangles(), tt.name)
	}

	_, ok := Named("dodecahedron")
	assert.False(t, ok)
}

func TestNamedReturnsFreshSoups(t *testing.T) {
	a, _ := Named("tetrahedron")
	a.Positions[0].X = 42
	b, _ := Named("tetrahedron")
	assert.Equal(t, 1.0, b.Positions[0].X)
}

func TestGrid(t *testing.T) {
	s := Grid(3)
	assert.Equal(t, 16, s.NumVertices())
	assert.Equal(t, 18, s.NumTriangles())
	for f, tri := range s.Triangles {
		a, b, c := s.Positions[tri[0]], s.Positions[tri[1]], s.Positions[tri[2]]
		assert.Greater(t, b.Sub(a).Cross(c.Sub(a)).Z, 0.0, "face %d faces +Z", f)
	}

	// Fewer than one cell clamps to one.
	assert.Equal(t, 2, Grid(0).NumTriangles())
}
