package tessellate_test

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/loopview/pkg/halfedge"
	"github.com/chazu/loopview/pkg/kernel"
	"github.com/chazu/loopview/pkg/kernel/sdfx"
	"github.com/chazu/loopview/pkg/loop"
	"github.com/chazu/loopview/pkg/primitive"
	"github.com/chazu/loopview/pkg/tessellate"
)

func build(t *testing.T, s *halfedge.Soup) *halfedge.Mesh {
	t.Helper()
	m, err := halfedge.Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestExtractRoundTrip(t *testing.T) {
	for _, name := range []string{"tetrahedron", "octahedron", "icosahedron", "triangle"} {
		t.Run(name, func(t *testing.T) {
			s, ok := primitive.Named(name)
			if !ok {
				t.Fatalf("unknown primitive %q", name)
			}
			km, err := tessellate.Extract(build(t, s))
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if km.VertexCount() != s.NumVertices() {
				t.Errorf("VertexCount() = %d, want %d", km.VertexCount(), s.NumVertices())
			}
			if km.TriangleCount() != s.NumTriangles() {
				t.Fatalf("TriangleCount() = %d, want %d", km.TriangleCount(), s.NumTriangles())
			}
			for i, p := range s.Positions {
				got := [3]float32{km.Vertices[3*i], km.Vertices[3*i+1], km.Vertices[3*i+2]}
				want := [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
				if got != want {
					t.Errorf("position %d = %v, want %v", i, got, want)
				}
			}
			for f, tri := range s.Triangles {
				for j := 0; j < 3; j++ {
					if int(km.Indices[3*f+j]) != tri[j] {
						t.Errorf("face %d corner %d = %d, want %d", f, j, km.Indices[3*f+j], tri[j])
					}
				}
			}
		})
	}
}

func TestExtractNormals(t *testing.T) {
	m := build(t, primitive.Icosahedron())
	km, err := tessellate.Extract(m)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(km.Normals) != len(km.Vertices) {
		t.Fatalf("len(Normals) = %d, want %d", len(km.Normals), len(km.Vertices))
	}
	for i := 0; i < km.VertexCount(); i++ {
		n := km.Normals[3*i : 3*i+3]
		p := km.Vertices[3*i : 3*i+3]
		l := math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))
		if math.Abs(l-1) > 1e-5 {
			t.Errorf("normal %d has length %f", i, l)
		}
		// The icosahedron is centered, so vertex normals point along the
		// position vectors.
		if n[0]*p[0]+n[1]*p[1]+n[2]*p[2] <= 0 {
			t.Errorf("normal %d points inward", i)
		}
	}
}

func TestExtractFlatNormals(t *testing.T) {
	km, err := tessellate.Extract(build(t, primitive.Grid(3)))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for i := 0; i < km.VertexCount(); i++ {
		n := km.Normals[3*i : 3*i+3]
		if n[0] != 0 || n[1] != 0 || math.Abs(float64(n[2])-1) > 1e-6 {
			t.Errorf("normal %d = %v, want [0 0 1]", i, n)
		}
	}
}

func TestExtractLeavesMeshUnchanged(t *testing.T) {
	m := build(t, primitive.Octahedron())
	before := append([]halfedge.HalfEdge(nil), m.HalfEdges...)
	if _, err := tessellate.Extract(m); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for i := range before {
		if m.HalfEdges[i] != before[i] {
			t.Fatalf("half-edge %d changed", i)
		}
	}
}

func TestExtractSubdividedMesh(t *testing.T) {
	m := build(t, primitive.Tetrahedron())
	for level := 0; level < 2; level++ {
		next, err := loop.Subdivide(m)
		if err != nil {
			t.Fatalf("Subdivide: %v", err)
		}
		m = next
	}
	km, err := tessellate.Extract(m)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if km.TriangleCount() != 4*16 {
		t.Errorf("TriangleCount() = %d, want %d", km.TriangleCount(), 4*16)
	}
	for _, idx := range km.Indices {
		if int(idx) >= km.VertexCount() {
			t.Fatalf("index %d out of range", idx)
		}
	}
}

func TestExtractRejectsInvalid(t *testing.T) {
	if _, err := tessellate.Extract(nil); err == nil {
		t.Error("Extract(nil) succeeded, want error")
	}
	if _, err := tessellate.Extract(&halfedge.Mesh{}); err == nil {
		t.Error("Extract(empty) succeeded, want error")
	}

	m := build(t, primitive.Tetrahedron())
	m.HalfEdges[0].Twin = 0
	_, err := tessellate.Extract(m)
	if !errors.Is(err, halfedge.ErrInvalidTopology) {
		t.Errorf("Extract(corrupt) error = %v, want ErrInvalidTopology", err)
	}
}

// unwelded returns a mesh in the layout kernels produce: three private
// vertices per triangle.
func unwelded(s *halfedge.Soup) *kernel.Mesh {
	km := &kernel.Mesh{}
	for _, tri := range s.Triangles {
		for _, v := range tri {
			p := s.Positions[v]
			km.Vertices = append(km.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
			km.Normals = append(km.Normals, 0, 0, 0)
			km.Indices = append(km.Indices, uint32(len(km.Indices)))
		}
	}
	return km
}

func TestWeldMergesSharedCorners(t *testing.T) {
	src := primitive.Octahedron()
	s, err := tessellate.Weld(unwelded(src))
	if err != nil {
		t.Fatalf("Weld: %v", err)
	}
	if s.NumVertices() != src.NumVertices() {
		t.Errorf("NumVertices() = %d, want %d", s.NumVertices(), src.NumVertices())
	}
	if s.NumTriangles() != src.NumTriangles() {
		t.Errorf("NumTriangles() = %d, want %d", s.NumTriangles(), src.NumTriangles())
	}

	m, err := halfedge.Build(s)
	if err != nil {
		t.Fatalf("Build(welded): %v", err)
	}
	if m.NumEdges() != 12 {
		t.Errorf("NumEdges() = %d, want 12", m.NumEdges())
	}
}

func TestWeldDropsDegenerateTriangles(t *testing.T) {
	km := unwelded(primitive.Triangle())
	// A sliver whose corners collapse onto two positions.
	km.Vertices = append(km.Vertices, 0, 0, 0, 1, 0, 0, 1, 0, 0)
	km.Indices = append(km.Indices, 3, 4, 5)

	s, err := tessellate.Weld(km)
	if err != nil {
		t.Fatalf("Weld: %v", err)
	}
	if s.NumTriangles() != 1 {
		t.Errorf("NumTriangles() = %d, want 1", s.NumTriangles())
	}
	if s.NumVertices() != 3 {
		t.Errorf("NumVertices() = %d, want 3", s.NumVertices())
	}
}

func TestWeldCompactsUnusedVertices(t *testing.T) {
	km := unwelded(primitive.Triangle())
	km.Vertices = append(km.Vertices, 9, 9, 9)
	s, err := tessellate.Weld(km)
	if err != nil {
		t.Fatalf("Weld: %v", err)
	}
	if s.NumVertices() != 3 {
		t.Errorf("NumVertices() = %d, want 3", s.NumVertices())
	}
}

func TestWeldErrors(t *testing.T) {
	tests := []struct {
		name string
		mesh *kernel.Mesh
	}{
		{"nil", nil},
		{"empty", &kernel.Mesh{}},
		{"ragged vertices", &kernel.Mesh{Vertices: []float32{0, 0, 0, 1}, Indices: []uint32{0, 0, 0}}},
		{"ragged indices", &kernel.Mesh{Vertices: []float32{0, 0, 0}, Indices: []uint32{0, 0}}},
		{"index out of range", &kernel.Mesh{Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, Indices: []uint32{0, 1, 3}}},
		{"all degenerate", &kernel.Mesh{Vertices: []float32{0, 0, 0, 0, 0, 0, 1, 0, 0}, Indices: []uint32{0, 1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tessellate.Weld(tt.mesh); err == nil {
				t.Error("Weld succeeded, want error")
			}
		})
	}
}

func TestSphereToSubdivision(t *testing.T) {
	k := sdfx.New()
	sphere, err := k.Sphere(1)
	if err != nil {
		t.Fatalf("Sphere: %v", err)
	}
	km, err := k.ToMesh(sphere)
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}
	s, err := tessellate.Weld(km)
	if err != nil {
		t.Fatalf("Weld: %v", err)
	}
	if s.NumVertices() >= km.VertexCount() {
		t.Errorf("welding kept %d of %d vertices", s.NumVertices(), km.VertexCount())
	}

	// Marching cubes output is not guaranteed to be manifold.
	m, err := halfedge.Build(s)
	if err != nil {
		t.Skipf("marching cubes sphere is not a manifold soup: %v", err)
	}
	next, err := loop.Subdivide(m)
	if err != nil {
		t.Fatalf("Subdivide: %v", err)
	}
	if next.NumFaces() != 4*m.NumFaces() {
		t.Errorf("NumFaces() = %d, want %d", next.NumFaces(), 4*m.NumFaces())
	}
	t.Logf("sphere: %d vertices, %d faces, level 1 has %d vertices", m.NumVertices(), m.NumFaces(), next.NumVertices())
}
