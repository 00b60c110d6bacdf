package loop

import "github.com/chazu/loopview/pkg/halfedge"

// repairBoundary links the boundary half-edges left without next/prev by
// buildFaces. For a boundary half-edge e ending at X the walk starts at
// twin(e), which leaves X, and rotates through prev.twin until it meets
// the one outgoing half-edge of X that has no prev yet: the boundary
// half-edge that follows e. The walk is bounded by the largest valence in
// the mesh. It returns the number of half-edges linked.
func repairBoundary(m *halfedge.Mesh) (int, error) {
	limit := m.MaxValence() + 1
	repaired := 0
	for i := range m.HalfEdges {
		e := halfedge.EdgeID(i)
		if m.Next(e).Valid() || !m.IsBoundary(e) {
			continue
		}
		cur := m.Twin(e)
		steps := 0
		for m.Prev(cur).Valid() {
			if steps++; steps > limit {
				return repaired, halfedge.NewTopologyError(halfedge.ElementHalfEdge, i,
					"no boundary successor around vertex %d within %d steps", m.Target(e), limit)
			}
			cur = m.Twin(m.Prev(cur))
			if !cur.Valid() {
				return repaired, halfedge.NewTopologyError(halfedge.ElementHalfEdge, i, "dangling twin around vertex %d", m.Target(e))
			}
		}
		if !m.IsBoundary(cur) {
			return repaired, halfedge.NewTopologyError(halfedge.ElementHalfEdge, i,
				"successor %d around vertex %d is not on the boundary", cur, m.Target(e))
		}
		m.HalfEdges[e].Next = cur
		m.HalfEdges[cur].Prev = e
		repaired++
	}
	return repaired, nil
}
