package loop

import "github.com/chazu/loopview/pkg/halfedge"

// Segment selects one half of a split half-edge.
type Segment int

const (
	// Head runs from the old origin to the edge point.
	Head Segment = 0
	// Tail runs from the edge point to the old target.
	Tail Segment = 1
)

// splitEdge maps an old half-edge and one of its halves to the new
// half-edge index: 2k for the head, 2k+1 for the tail.
func splitEdge(old halfedge.EdgeID, s Segment) halfedge.EdgeID {
	return halfedge.EdgeID(2*int(old) + int(s))
}

// innerEdge maps (old face, corner) to the pair of new half-edges cutting
// that corner off. The corner side belongs to the corner triangle, the
// center side to the middle triangle. Inner pairs start right after the
// 2H split half-edges and take six slots per old face.
func innerEdge(numOldHalfEdges int, face halfedge.FaceID, corner int, center bool) halfedge.EdgeID {
	i := 2*numOldHalfEdges + 6*int(face) + 2*corner
	if center {
		i++
	}
	return halfedge.EdgeID(i)
}

// cornerFace returns the new face cut from corner c of an old face; the
// middle triangle is corner 3.
func cornerFace(face halfedge.FaceID, corner int) halfedge.FaceID {
	return halfedge.FaceID(4*int(face) + corner)
}

const centerCorner = 3
