package halfedge

import v3 "github.com/deadsy/sdfx/vec/v3"

// VertexID is a handle into Mesh.Vertices.
type VertexID int

// EdgeID is a handle into Mesh.HalfEdges.
type EdgeID int

// FaceID is a handle into Mesh.Faces.
type FaceID int

// Empty handles. A half-edge with Polygon == NoFace lies on the boundary.
const (
	NoVertex VertexID = -1
	NoEdge   EdgeID   = -1
	NoFace   FaceID   = -1
)

// Valid reports whether the handle refers to an element.
func (v VertexID) Valid() bool { return v >= 0 }

// Valid reports whether the handle refers to an element.
func (e EdgeID) Valid() bool { return e >= 0 }

// Valid reports whether the handle refers to an element.
func (f FaceID) Valid() bool { return f >= 0 }

// Vertex is a mesh vertex. Out is one outgoing half-edge and Valence is
// the number of incident edges.
type Vertex struct {
	Coords  v3.Vec
	Out     EdgeID
	Valence int
	Index   VertexID
}

// HalfEdge is one directed side of an undirected edge. Target is the
// vertex it points to; Polygon is NoFace on the boundary.
type HalfEdge struct {
	Target  VertexID
	Next    EdgeID
	Prev    EdgeID
	Twin    EdgeID
	Polygon FaceID
	Index   EdgeID
}

// Face is a triangle. Side is any one of its three half-edges.
type Face struct {
	Side    EdgeID
	Valence int
	Index   FaceID
}

// NewHalfEdge returns a half-edge with every link empty.
func NewHalfEdge(index EdgeID) HalfEdge {
	return HalfEdge{
		Target:  NoVertex,
		Next:    NoEdge,
		Prev:    NoEdge,
		Twin:    NoEdge,
		Polygon: NoFace,
		Index:   index,
	}
}
