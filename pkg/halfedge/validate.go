package halfedge

// Validate checks the structural invariants of m and returns the first
// violation as an *InvalidTopologyError. It never mutates the mesh.
func Validate(m *Mesh) error {
	if m == nil || len(m.Faces) == 0 {
		return topologyErrorf(ElementMesh, 0, "mesh has no faces")
	}
	if len(m.HalfEdges)%2 != 0 {
		return topologyErrorf(ElementMesh, 0, "odd half-edge count %d", len(m.HalfEdges))
	}
	checks := []func(*Mesh) error{
		validateHalfEdges,
		validateFaces,
		validateVertices,
	}
	for _, check := range checks {
		if err := check(m); err != nil {
			return err
		}
	}
	return nil
}

// validateHalfEdges checks handles, twin symmetry and next/prev symmetry.
func validateHalfEdges(m *Mesh) error {
	for i := range m.HalfEdges {
		he := &m.HalfEdges[i]
		e := EdgeID(i)
		if he.Index != e {
			return topologyErrorf(ElementHalfEdge, i, "stored index %d", he.Index)
		}
		if !m.hasVertex(he.Target) {
			return topologyErrorf(ElementHalfEdge, i, "target %d out of range", he.Target)
		}
		if !m.hasEdge(he.Twin) || he.Twin == e {
			return topologyErrorf(ElementHalfEdge, i, "dangling twin %d", he.Twin)
		}
		if m.HalfEdges[he.Twin].Twin != e {
			return topologyErrorf(ElementHalfEdge, i, "twin %d does not point back", he.Twin)
		}
		if m.HalfEdges[he.Twin].Target == he.Target {
			return topologyErrorf(ElementHalfEdge, i, "degenerate edge at vertex %d", he.Target)
		}
		if !m.hasEdge(he.Next) || !m.hasEdge(he.Prev) {
			return topologyErrorf(ElementHalfEdge, i, "unlinked (next %d, prev %d)", he.Next, he.Prev)
		}
		if m.HalfEdges[he.Next].Prev != e || m.HalfEdges[he.Prev].Next != e {
			return topologyErrorf(ElementHalfEdge, i, "next/prev are not symmetric")
		}
		if he.Polygon == NoFace {
			if m.HalfEdges[he.Twin].Polygon == NoFace {
				return topologyErrorf(ElementHalfEdge, i, "edge has no face on either side")
			}
			if m.HalfEdges[he.Next].Polygon != NoFace {
				return topologyErrorf(ElementHalfEdge, i, "boundary loop continues into face %d", m.HalfEdges[he.Next].Polygon)
			}
			continue
		}
		if !m.hasFace(he.Polygon) {
			return topologyErrorf(ElementHalfEdge, i, "polygon %d out of range", he.Polygon)
		}
		n1 := he.Next
		n2 := m.HalfEdges[n1].Next
		if m.HalfEdges[n2].Next != e {
			return topologyErrorf(ElementHalfEdge, i, "face cycle is not a triangle")
		}
		if m.HalfEdges[n1].Polygon != he.Polygon || m.HalfEdges[n2].Polygon != he.Polygon {
			return topologyErrorf(ElementHalfEdge, i, "face cycle mixes polygons")
		}
	}
	return nil
}

// validateFaces checks that every face is reachable from its side.
func validateFaces(m *Mesh) error {
	for i, f := range m.Faces {
		if f.Index != FaceID(i) {
			return topologyErrorf(ElementFace, i, "stored index %d", f.Index)
		}
		if f.Valence != 3 {
			return topologyErrorf(ElementFace, i, "valence %d, want 3", f.Valence)
		}
		if !m.hasEdge(f.Side) || m.HalfEdges[f.Side].Polygon != FaceID(i) {
			return topologyErrorf(ElementFace, i, "side %d does not bound this face", f.Side)
		}
	}
	return nil
}

// validateVertices checks out-edges and that each vertex ring closes in
// exactly valence steps.
func validateVertices(m *Mesh) error {
	for i, v := range m.Vertices {
		if v.Index != VertexID(i) {
			return topologyErrorf(ElementVertex, i, "stored index %d", v.Index)
		}
		if v.Valence <= 0 {
			return topologyErrorf(ElementVertex, i, "zero valence")
		}
		if v.Valence > m.maxValence {
			return topologyErrorf(ElementVertex, i, "valence %d above recorded maximum %d", v.Valence, m.maxValence)
		}
		if !m.hasEdge(v.Out) || m.Origin(v.Out) != VertexID(i) {
			return topologyErrorf(ElementVertex, i, "out half-edge %d does not leave this vertex", v.Out)
		}
		ring, err := m.Outgoing(VertexID(i))
		if err != nil {
			return err
		}
		for _, e := range ring {
			if m.Origin(e) != VertexID(i) {
				return topologyErrorf(ElementVertex, i, "ring half-edge %d leaves vertex %d", e, m.Origin(e))
			}
		}
	}
	return nil
}
