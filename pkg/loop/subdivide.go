package loop

import (
	"fmt"
	"log/slog"

	"github.com/chazu/loopview/pkg/halfedge"
)

// Edge point valences: an interior edge point joins two split halves and
// four inner edges, a boundary one only two inner edges.
const (
	interiorEdgePointValence = 6
	boundaryEdgePointValence = 4
)

// Subdivider runs Loop refinement passes.
type Subdivider struct {
	log *slog.Logger
}

// New returns a Subdivider that logs stage progress at debug level to
// logger. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Subdivider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subdivider{log: logger}
}

// Subdivide runs one pass with the default logger.
func Subdivide(m *halfedge.Mesh) (*halfedge.Mesh, error) {
	return New(nil).Subdivide(m)
}

// Subdivide validates m and returns the next Loop level. m is not
// modified. Invalid input fails with an error wrapping
// halfedge.ErrInvalidTopology; no partial mesh is returned.
func (s *Subdivider) Subdivide(m *halfedge.Mesh) (*halfedge.Mesh, error) {
	if err := halfedge.Validate(m); err != nil {
		return nil, fmt.Errorf("loop: input: %w", err)
	}

	nv, nh, nf := m.NumVertices(), m.NumHalfEdges(), m.NumFaces()
	out := halfedge.NewMesh(nv+nh/2, 2*nh+6*nf, 4*nf)
	s.log.Debug("loop: creating mesh", "vertices", nv, "halfedges", nh, "faces", nf)

	if err := s.vertexPoints(m, out); err != nil {
		return nil, err
	}
	edgeVertex, err := s.edgePoints(m, out)
	if err != nil {
		return nil, err
	}
	s.splitHalfEdges(m, out, edgeVertex)
	if err := s.buildFaces(m, out); err != nil {
		return nil, err
	}

	// Old vertices leave through the head of their old out half-edge.
	for v := range m.Vertices {
		out.Vertices[v].Out = splitEdge(m.Vertices[v].Out, Head)
	}

	repaired, err := repairBoundary(out)
	if err != nil {
		return nil, fmt.Errorf("loop: boundary repair: %w", err)
	}
	s.log.Debug("loop: repaired boundary", "halfedges", repaired)
	return out, nil
}

// vertexPoints appends one smoothed vertex per old vertex, keeping index
// and valence.
func (s *Subdivider) vertexPoints(m, out *halfedge.Mesh) error {
	for k, v := range m.Vertices {
		p, err := VertexPoint(m, v.Out)
		if err != nil {
			return fmt.Errorf("loop: vertex point %d: %w", k, err)
		}
		out.AddVertex(p, v.Valence)
	}
	s.log.Debug("loop: created vertex points", "count", m.NumVertices())
	return nil
}

// edgePoints appends one vertex per undirected edge, visiting each edge
// through its lower-indexed half-edge. The returned slice maps every old
// half-edge to the new vertex on its edge.
func (s *Subdivider) edgePoints(m, out *halfedge.Mesh) ([]halfedge.VertexID, error) {
	edgeVertex := make([]halfedge.VertexID, m.NumHalfEdges())
	for k := range m.HalfEdges {
		e := halfedge.EdgeID(k)
		twin := m.Twin(e)
		if e > twin {
			continue
		}
		p, err := EdgePoint(m, e)
		if err != nil {
			return nil, fmt.Errorf("loop: edge point %d: %w", k, err)
		}
		valence := interiorEdgePointValence
		if m.IsBoundaryEdge(e) {
			valence = boundaryEdgePointValence
		}
		id := out.AddVertex(p, valence)
		edgeVertex[e] = id
		edgeVertex[twin] = id
	}
	s.log.Debug("loop: created edge points", "count", out.NumVertices()-m.NumVertices())
	return edgeVertex, nil
}

// splitHalfEdges replaces old half-edge k by its head 2k and tail 2k+1.
// Twins cross over: head(k) pairs with tail(twin k). Next, prev and
// polygon stay empty until the faces are built.
func (s *Subdivider) splitHalfEdges(m, out *halfedge.Mesh, edgeVertex []halfedge.VertexID) {
	for k := range m.HalfEdges {
		head, tail := out.AddHalfEdge(), out.AddHalfEdge()
		old := halfedge.EdgeID(k)
		out.HalfEdges[head].Target = edgeVertex[old]
		out.HalfEdges[tail].Target = m.Target(old)

		twin := m.Twin(old)
		if twin < old {
			out.HalfEdges[head].Twin = splitEdge(twin, Tail)
			out.HalfEdges[tail].Twin = splitEdge(twin, Head)
			out.HalfEdges[splitEdge(twin, Tail)].Twin = head
			out.HalfEdges[splitEdge(twin, Head)].Twin = tail
		}
	}
	s.log.Debug("loop: split halfedges", "count", out.NumHalfEdges())
}

// buildFaces cuts every old triangle into three corner triangles and one
// middle triangle. Corner c sits at the origin of the c-th half-edge t
// walked from the face side, bounded by tail(prev t), head(t) and an inner
// half-edge; the inner half-edge's twin is a side of the middle triangle.
func (s *Subdivider) buildFaces(m, out *halfedge.Mesh) error {
	nh := m.NumHalfEdges()
	for f := range m.Faces {
		face := halfedge.FaceID(f)
		t := m.Faces[f].Side
		for c := 0; c < 3; c++ {
			sPrev := m.Prev(t)
			tail := splitEdge(sPrev, Tail)
			head := splitEdge(t, Head)

			corner := out.AddFace(head)
			if corner != cornerFace(face, c) {
				return halfedge.NewTopologyError(halfedge.ElementFace, f, "new face %d out of step, want %d", corner, cornerFace(face, c))
			}
			inner, mid := out.AddHalfEdge(), out.AddHalfEdge()
			if inner != innerEdge(nh, face, c, false) || mid != innerEdge(nh, face, c, true) {
				return halfedge.NewTopologyError(halfedge.ElementFace, f, "inner half-edge %d out of step, want %d", inner, innerEdge(nh, face, c, false))
			}

			link(out, tail, head, corner)
			link(out, head, inner, corner)
			link(out, inner, tail, corner)
			out.HalfEdges[inner].Target = out.HalfEdges[splitEdge(sPrev, Head)].Target

			out.HalfEdges[mid].Target = out.HalfEdges[head].Target
			out.HalfEdges[inner].Twin = mid
			out.HalfEdges[mid].Twin = inner

			// The edge point at the end of head leaves through inner.
			out.Vertices[out.HalfEdges[head].Target].Out = inner

			t = m.Next(t)
		}

		center := out.AddFace(innerEdge(nh, face, 2, true))
		for c := 0; c < 3; c++ {
			out.HalfEdges[innerEdge(nh, face, c, true)].Polygon = center
			out.HalfEdges[innerEdge(nh, face, c, true)].Next = innerEdge(nh, face, (c+1)%3, true)
			out.HalfEdges[innerEdge(nh, face, c, true)].Prev = innerEdge(nh, face, (c+2)%3, true)
		}
	}
	s.log.Debug("loop: created faces", "count", out.NumFaces())
	return nil
}

// link sets a.next = b and b.prev = a inside face f.
func link(m *halfedge.Mesh, a, b halfedge.EdgeID, f halfedge.FaceID) {
	m.HalfEdges[a].Next = b
	m.HalfEdges[b].Prev = a
	m.HalfEdges[a].Polygon = f
}
