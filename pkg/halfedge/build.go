package halfedge

import "fmt"

// directed is a directed vertex pair used to match twins during Build.
type directed struct {
	from, to VertexID
}

// Build constructs the level-0 half-edge mesh from an indexed triangle
// list. Triangle t owns half-edges 3t, 3t+1 and 3t+2; half-edges on open
// edges are appended after them and linked into boundary loops.
func Build(s *Soup) (*Mesh, error) {
	if s == nil || len(s.Triangles) == 0 {
		return nil, topologyErrorf(ElementMesh, 0, "soup has no triangles")
	}
	nv := len(s.Positions)
	nf := len(s.Triangles)

	m := NewMesh(nv, 6*nf, nf)
	for _, p := range s.Positions {
		m.AddVertex(p, 0)
	}

	// Pass 1: face half-edges with their face cycle, indexed by direction.
	byDir := make(map[directed]EdgeID, 3*nf)
	for t, tri := range s.Triangles {
		for i, v := range tri {
			if v < 0 || v >= nv {
				return nil, topologyErrorf(ElementTriangle, t, "corner %d references vertex %d of %d", i, v, nv)
			}
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			return nil, topologyErrorf(ElementTriangle, t, "repeated corner %v", tri)
		}
		f := m.AddFace(EdgeID(3 * t))
		for i := 0; i < 3; i++ {
			e := m.AddHalfEdge()
			from, to := VertexID(tri[i]), VertexID(tri[(i+1)%3])
			he := &m.HalfEdges[e]
			he.Target = to
			he.Polygon = f
			he.Next = EdgeID(3*t + (i+1)%3)
			he.Prev = EdgeID(3*t + (i+2)%3)

			key := directed{from, to}
			if other, dup := byDir[key]; dup {
				return nil, topologyErrorf(ElementTriangle, t,
					"edge %d->%d already used by half-edge %d (inconsistent winding or non-manifold edge)", from, to, other)
			}
			byDir[key] = e
			if !m.Vertices[from].Out.Valid() {
				m.Vertices[from].Out = e
			}
		}
	}

	// Pass 2: twins. Unmatched face half-edges get a boundary twin.
	boundaryOut := make(map[VertexID]EdgeID)
	for e := EdgeID(0); int(e) < 3*nf; e++ {
		if m.HalfEdges[e].Twin.Valid() {
			continue
		}
		from, to := m.faceOrigin(e), m.HalfEdges[e].Target
		if twin, ok := byDir[directed{to, from}]; ok {
			m.HalfEdges[e].Twin = twin
			m.HalfEdges[twin].Twin = e
			continue
		}
		b := m.AddHalfEdge()
		m.HalfEdges[b].Target = from
		m.HalfEdges[b].Twin = e
		m.HalfEdges[e].Twin = b
		if prev, dup := boundaryOut[to]; dup {
			return nil, topologyErrorf(ElementVertex, int(to),
				"more than one boundary fan (boundary half-edges %d and %d)", prev, b)
		}
		boundaryOut[to] = b
	}

	// Pass 3: close the boundary loops. A boundary half-edge ending at v is
	// followed by the boundary half-edge leaving v.
	for e := EdgeID(3 * nf); int(e) < len(m.HalfEdges); e++ {
		next, ok := boundaryOut[m.HalfEdges[e].Target]
		if !ok {
			return nil, topologyErrorf(ElementHalfEdge, int(e), "boundary loop is open at vertex %d", m.HalfEdges[e].Target)
		}
		m.HalfEdges[e].Next = next
		m.HalfEdges[next].Prev = e
	}

	// Pass 4: valences. Every undirected edge contributes one outgoing
	// half-edge to each of its endpoints.
	maxValence := 0
	for e := range m.HalfEdges {
		v := m.Origin(EdgeID(e))
		m.Vertices[v].Valence++
		if m.Vertices[v].Valence > maxValence {
			maxValence = m.Vertices[v].Valence
		}
	}
	for v := range m.Vertices {
		if m.Vertices[v].Valence == 0 {
			return nil, topologyErrorf(ElementVertex, v, "not referenced by any triangle")
		}
	}
	m.SetMaxValence(maxValence)

	if err := Validate(m); err != nil {
		return nil, fmt.Errorf("halfedge: build: %w", err)
	}
	return m, nil
}

// faceOrigin returns the origin of a face half-edge through its face
// cycle. Unlike Origin it does not need the twin.
func (m *Mesh) faceOrigin(e EdgeID) VertexID {
	return m.HalfEdges[m.HalfEdges[e].Prev].Target
}
