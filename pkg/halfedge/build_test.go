package halfedge_test

import (
	"errors"
	"testing"

	"github.com/chazu/loopview/pkg/halfedge"
	"github.com/chazu/loopview/pkg/primitive"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boundaryCount(m *halfedge.Mesh) int {
	n := 0
	for e := range m.HalfEdges {
		if m.IsBoundary(halfedge.EdgeID(e)) {
			n++
		}
	}
	return n
}

func TestBuildClosedPrimitives(t *testing.T) {
	tests := []struct {
		name    string
		soup    *halfedge.Soup
		valence int
	}{
		{"tetrahedron", primitive.Tetrahedron(), 3},
		{"octahedron", primitive.Octahedron(), 4},
		{"icosahedron", primitive.Icosahedron(), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := halfedge.Build(tt.soup)
			require.NoError(t, err)

			assert.Equal(t, tt.soup.NumVertices(), m.NumVertices())
			assert.Equal(t, tt.soup.NumTriangles(), m.NumFaces())
			assert.Equal(t, 3*tt.soup.NumTriangles(), m.NumHalfEdges())
			assert.Equal(t, 0, boundaryCount(m))
			assert.Equal(t, tt.valence, m.MaxValence())

			// Euler characteristic of a sphere.
			assert.Equal(t, 2, m.NumVertices()-m.NumEdges()+m.NumFaces())

			for i, v := range m.Vertices {
				assert.Equal(t, tt.valence, v.Valence, "vertex %d", i)
				ring, err := m.Outgoing(halfedge.VertexID(i))
				require.NoError(t, err)
				assert.Len(t, ring, v.Valence)

				e := v.Out
				for k := 0; k < v.Valence; k++ {
					e = m.Twin(m.Prev(e))
				}
				assert.Equal(t, v.Out, e, "ring of vertex %d does not close", i)
			}
		})
	}
}

func TestBuildSingleTriangle(t *testing.T) {
	m, err := halfedge.Build(primitive.Triangle())
	require.NoError(t, err)

	assert.Equal(t, 3, m.NumVertices())
	assert.Equal(t, 6, m.NumHalfEdges())
	assert.Equal(t, 1, m.NumFaces())
	assert.Equal(t, 3, boundaryCount(m))

	// Boundary half-edges come after the face half-edges and form one loop.
	start := halfedge.EdgeID(3)
	require.True(t, m.IsBoundary(start))
	e := start
	for i := 0; i < 3; i++ {
		require.True(t, m.IsBoundary(e))
		e = m.Next(e)
	}
	assert.Equal(t, start, e)

	for _, v := range m.Vertices {
		assert.Equal(t, 2, v.Valence)
	}
	assert.Equal(t, [3]halfedge.VertexID{0, 1, 2}, m.FaceVertices(0))
}

func TestBuildGridBoundary(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		m, err := halfedge.Build(primitive.Grid(n))
		require.NoError(t, err, "grid %d", n)
		assert.Equal(t, 4*n, boundaryCount(m), "grid %d", n)
		assert.Equal(t, 2*n*n, m.NumFaces())
	}
}

func TestBuildRejectsInvalidSoups(t *testing.T) {
	p := func(x, y float64) v3.Vec { return v3.Vec{X: x, Y: y} }
	tests := []struct {
		name string
		soup *halfedge.Soup
	}{
		{"nil", nil},
		{"empty", &halfedge.Soup{}},
		{"index out of range", &halfedge.Soup{
			Positions: []v3.Vec{p(0, 0), p(1, 0), p(0, 1)},
			Triangles: [][3]int{{0, 1, 3}},
		}},
		{"repeated corner", &halfedge.Soup{
			Positions: []v3.Vec{p(0, 0), p(1, 0), p(0, 1)},
			Triangles: [][3]int{{0, 1, 1}},
		}},
		{"unused vertex", &halfedge.Soup{
			Positions: []v3.Vec{p(0, 0), p(1, 0), p(0, 1), p(5, 5)},
			Triangles: [][3]int{{0, 1, 2}},
		}},
		{"inconsistent winding", &halfedge.Soup{
			Positions: []v3.Vec{p(0, 0), p(1, 0), p(0, 1), p(1, 1)},
			Triangles: [][3]int{{0, 1, 2}, {0, 1, 3}},
		}},
		{"bowtie", &halfedge.Soup{
			Positions: []v3.Vec{p(0, 0), p(1, 0), p(1, 1), p(-1, 0), p(-1, -1)},
			Triangles: [][3]int{{0, 1, 2}, {0, 3, 4}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := halfedge.Build(tt.soup)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, errors.Is(err, halfedge.ErrInvalidTopology), "got %v", err)

			var topo *halfedge.InvalidTopologyError
			assert.True(t, errors.As(err, &topo))
		})
	}
}

func TestBuildRejectsPinchedClosedSurfaces(t *testing.T) {
	// Two tetrahedra glued at vertex 0: every edge is manifold, but the
	// star of vertex 0 is two separate fans.
	tet := primitive.Tetrahedron()
	s := &halfedge.Soup{Positions: append([]v3.Vec{}, tet.Positions...), Triangles: append([][3]int{}, tet.Triangles...)}
	for i := 1; i < 4; i++ {
		s.AddVertex(tet.Positions[i].MulScalar(-1))
	}
	remap := [4]int{0, 4, 5, 6}
	for _, tri := range tet.Triangles {
		s.AddTriangle(remap[tri[0]], remap[tri[2]], remap[tri[1]])
	}

	_, err := halfedge.Build(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, halfedge.ErrInvalidTopology)
}

func TestSoupAppend(t *testing.T) {
	s := primitive.Triangle()
	s.Append(primitive.Triangle())
	assert.Equal(t, 6, s.NumVertices())
	assert.Equal(t, [3]int{3, 4, 5}, s.Triangles[1])

	m, err := halfedge.Build(s)
	require.NoError(t, err)
	assert.Equal(t, 6, boundaryCount(m))
}
