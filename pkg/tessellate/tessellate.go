// Package tessellate converts between half-edge meshes and the flat
// triangle arrays the renderer consumes. Extract flattens a mesh into
// positions, area-weighted vertex normals and index triples; Weld turns
// unwelded kernel output back into an indexed soup.
package tessellate

import (
	"fmt"

	"github.com/chazu/loopview/pkg/halfedge"
	"github.com/chazu/loopview/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Extract flattens m into a render mesh: one position and one normal per
// vertex in vertex-index order, and one index triple per face in
// face-index order. Extract only reads m.
func Extract(m *halfedge.Mesh) (*kernel.Mesh, error) {
	if m == nil || m.IsEmpty() {
		return nil, fmt.Errorf("tessellate: empty mesh")
	}
	if err := halfedge.Validate(m); err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}

	nv, nf := m.NumVertices(), m.NumFaces()
	vertices := make([]float32, 0, 3*nv)
	normals := make([]float32, 0, 3*nv)
	indices := make([]uint32, 0, 3*nf)

	for _, v := range m.Vertices {
		vertices = append(vertices, float32(v.Coords.X), float32(v.Coords.Y), float32(v.Coords.Z))
	}

	acc := faceNormalSums(m)
	for _, n := range acc {
		n = normalize(n)
		normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
	}

	for f := range m.Faces {
		for _, v := range m.FaceVertices(halfedge.FaceID(f)) {
			indices = append(indices, uint32(v))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// faceNormalSums adds every face's unnormalized normal, whose length is
// twice the face area, to each of its corners.
func faceNormalSums(m *halfedge.Mesh) []v3.Vec {
	acc := make([]v3.Vec, m.NumVertices())
	for f := range m.Faces {
		c := m.FaceVertices(halfedge.FaceID(f))
		a, b, d := m.Coords(c[0]), m.Coords(c[1]), m.Coords(c[2])
		n := b.Sub(a).Cross(d.Sub(a))
		for _, v := range c {
			acc[v] = acc[v].Add(n)
		}
	}
	return acc
}

// normalize returns n scaled to unit length, or the zero vector when all
// incident faces are degenerate.
func normalize(n v3.Vec) v3.Vec {
	l := n.Length()
	if l == 0 {
		return v3.Vec{}
	}
	return n.DivScalar(l)
}

// Weld merges the bitwise-equal positions of an unwelded render mesh and
// returns the indexed soup. Triangles that collapse to fewer than three
// distinct corners are dropped.
func Weld(km *kernel.Mesh) (*halfedge.Soup, error) {
	if km == nil || km.IsEmpty() {
		return nil, fmt.Errorf("tessellate: weld: empty mesh")
	}
	if len(km.Vertices)%3 != 0 || len(km.Indices)%3 != 0 {
		return nil, fmt.Errorf("tessellate: weld: %d coordinates and %d indices are not triples", len(km.Vertices), len(km.Indices))
	}

	s := &halfedge.Soup{}
	remap := make([]int, km.VertexCount())
	seen := make(map[[3]float32]int, km.VertexCount())
	for i := range remap {
		key := [3]float32{km.Vertices[3*i], km.Vertices[3*i+1], km.Vertices[3*i+2]}
		idx, ok := seen[key]
		if !ok {
			idx = s.AddVertex(v3.Vec{X: float64(key[0]), Y: float64(key[1]), Z: float64(key[2])})
			seen[key] = idx
		}
		remap[i] = idx
	}

	n := km.VertexCount()
	for t := 0; t < km.TriangleCount(); t++ {
		var tri [3]int
		for j := 0; j < 3; j++ {
			i := int(km.Indices[3*t+j])
			if i >= n {
				return nil, fmt.Errorf("tessellate: weld: triangle %d references vertex %d of %d", t, i, n)
			}
			tri[j] = remap[i]
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			continue
		}
		s.AddTriangle(tri[0], tri[1], tri[2])
	}
	if s.NumTriangles() == 0 {
		return nil, fmt.Errorf("tessellate: weld: every triangle is degenerate")
	}
	return compact(s), nil
}

// compact drops positions no triangle references.
func compact(s *halfedge.Soup) *halfedge.Soup {
	used := make([]int, len(s.Positions))
	for i := range used {
		used[i] = -1
	}
	out := &halfedge.Soup{}
	for _, tri := range s.Triangles {
		var nt [3]int
		for j, v := range tri {
			if used[v] < 0 {
				used[v] = out.AddVertex(s.Positions[v])
			}
			nt[j] = used[v]
		}
		out.Triangles = append(out.Triangles, nt)
	}
	return out
}
