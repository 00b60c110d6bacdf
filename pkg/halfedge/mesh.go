package halfedge

import v3 "github.com/deadsy/sdfx/vec/v3"

// Mesh owns one subdivision level. It is never edited once construction
// has finished; the next level is always a new Mesh.
type Mesh struct {
	Vertices  []Vertex
	HalfEdges []HalfEdge
	Faces     []Face

	maxValence int
}

// NewMesh returns an empty mesh with room for the given element counts.
func NewMesh(numVertices, numHalfEdges, numFaces int) *Mesh {
	return &Mesh{
		Vertices:  make([]Vertex, 0, numVertices),
		HalfEdges: make([]HalfEdge, 0, numHalfEdges),
		Faces:     make([]Face, 0, numFaces),
	}
}

// NumVertices returns the number of vertices.
func (m *Mesh) NumVertices() int { return len(m.Vertices) }

// NumHalfEdges returns the number of half-edges.
func (m *Mesh) NumHalfEdges() int { return len(m.HalfEdges) }

// NumEdges returns the number of undirected edges.
func (m *Mesh) NumEdges() int { return len(m.HalfEdges) / 2 }

// NumFaces returns the number of faces.
func (m *Mesh) NumFaces() int { return len(m.Faces) }

// IsEmpty returns true if the mesh has no vertices.
func (m *Mesh) IsEmpty() bool { return len(m.Vertices) == 0 }

// MaxValence returns the largest vertex valence recorded during
// construction.
func (m *Mesh) MaxValence() int { return m.maxValence }

// SetMaxValence records the largest vertex valence. Builders call it once
// all vertices are in place.
func (m *Mesh) SetMaxValence(n int) { m.maxValence = n }

// AddVertex appends a vertex whose index is its slice position.
func (m *Mesh) AddVertex(coords v3.Vec, valence int) VertexID {
	id := VertexID(len(m.Vertices))
	m.Vertices = append(m.Vertices, Vertex{Coords: coords, Out: NoEdge, Valence: valence, Index: id})
	if valence > m.maxValence {
		m.maxValence = valence
	}
	return id
}

// AddHalfEdge appends an unlinked half-edge and returns its handle.
func (m *Mesh) AddHalfEdge() EdgeID {
	id := EdgeID(len(m.HalfEdges))
	m.HalfEdges = append(m.HalfEdges, NewHalfEdge(id))
	return id
}

// AddFace appends a triangle face with the given side.
func (m *Mesh) AddFace(side EdgeID) FaceID {
	id := FaceID(len(m.Faces))
	m.Faces = append(m.Faces, Face{Side: side, Valence: 3, Index: id})
	return id
}

func (m *Mesh) hasVertex(v VertexID) bool { return v >= 0 && int(v) < len(m.Vertices) }
func (m *Mesh) hasEdge(e EdgeID) bool     { return e >= 0 && int(e) < len(m.HalfEdges) }
func (m *Mesh) hasFace(f FaceID) bool     { return f >= 0 && int(f) < len(m.Faces) }

// Next returns the half-edge following e around its face or boundary loop.
func (m *Mesh) Next(e EdgeID) EdgeID { return m.HalfEdges[e].Next }

// Prev returns the half-edge preceding e.
func (m *Mesh) Prev(e EdgeID) EdgeID { return m.HalfEdges[e].Prev }

// Twin returns the oppositely directed half-edge of e.
func (m *Mesh) Twin(e EdgeID) EdgeID { return m.HalfEdges[e].Twin }

// Target returns the vertex e points to.
func (m *Mesh) Target(e EdgeID) VertexID { return m.HalfEdges[e].Target }

// Origin returns the vertex e starts from.
func (m *Mesh) Origin(e EdgeID) VertexID { return m.HalfEdges[m.HalfEdges[e].Twin].Target }

// Polygon returns the face bounded by e, or NoFace.
func (m *Mesh) Polygon(e EdgeID) FaceID { return m.HalfEdges[e].Polygon }

// IsBoundary reports whether e has no face.
func (m *Mesh) IsBoundary(e EdgeID) bool { return m.HalfEdges[e].Polygon == NoFace }

// IsBoundaryEdge reports whether the undirected edge of e lies on the
// mesh boundary.
func (m *Mesh) IsBoundaryEdge(e EdgeID) bool {
	return m.IsBoundary(e) || m.IsBoundary(m.Twin(e))
}

// Coords returns the position of v.
func (m *Mesh) Coords(v VertexID) v3.Vec { return m.Vertices[v].Coords }

// Outgoing returns the half-edges leaving v, starting at its Out
// half-edge and rotating through prev.twin. The walk is bounded by the
// vertex valence and must close exactly after that many steps.
func (m *Mesh) Outgoing(v VertexID) ([]EdgeID, error) {
	if !m.hasVertex(v) {
		return nil, topologyErrorf(ElementVertex, int(v), "out of range")
	}
	vx := m.Vertices[v]
	if vx.Valence <= 0 || !m.hasEdge(vx.Out) {
		return nil, topologyErrorf(ElementVertex, int(v), "no incident half-edges")
	}
	ring := make([]EdgeID, 0, vx.Valence)
	e := vx.Out
	for i := 0; i < vx.Valence; i++ {
		ring = append(ring, e)
		prev := m.HalfEdges[e].Prev
		if !m.hasEdge(prev) {
			return nil, topologyErrorf(ElementHalfEdge, int(e), "ring around vertex %d is open", v)
		}
		e = m.HalfEdges[prev].Twin
		if !m.hasEdge(e) {
			return nil, topologyErrorf(ElementHalfEdge, int(prev), "dangling twin")
		}
		if e == vx.Out && i+1 < vx.Valence {
			return nil, topologyErrorf(ElementVertex, int(v), "ring closes after %d steps, valence is %d", i+1, vx.Valence)
		}
	}
	if e != vx.Out {
		return nil, topologyErrorf(ElementVertex, int(v), "ring does not close after %d steps", vx.Valence)
	}
	return ring, nil
}

// FaceEdges returns the three half-edges of f starting at its side.
func (m *Mesh) FaceEdges(f FaceID) [3]EdgeID {
	e0 := m.Faces[f].Side
	e1 := m.HalfEdges[e0].Next
	e2 := m.HalfEdges[e1].Next
	return [3]EdgeID{e0, e1, e2}
}

// FaceVertices returns the corners of f in winding order, starting at the
// origin of its side.
func (m *Mesh) FaceVertices(f FaceID) [3]VertexID {
	es := m.FaceEdges(f)
	return [3]VertexID{m.Target(es[2]), m.Target(es[0]), m.Target(es[1])}
}
