package loop

import (
	"fmt"

	"github.com/chazu/loopview/pkg/halfedge"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// betaValence3 is the interior vertex weight for valence 3.
const betaValence3 = 3.0 / 16.0

// Beta returns the Loop weight applied to each one-ring neighbor of an
// interior vertex with the given valence.
func Beta(n int) float64 {
	if n == 3 {
		return betaValence3
	}
	return 3.0 / (8.0 * float64(n))
}

// VertexPoint returns the smoothed position of the vertex that first
// leaves. Boundary vertices use the 1-6-1 curve rule along their two
// boundary neighbors; interior vertices use Warren's weights over the
// whole one-ring.
func VertexPoint(m *halfedge.Mesh, first halfedge.EdgeID) (v3.Vec, error) {
	if err := checkEdge(m, "vertex point", first); err != nil {
		return v3.Vec{}, err
	}
	v := m.Origin(first)
	self := m.Vertices[v]
	if self.Valence <= 0 {
		return v3.Vec{}, &halfedge.PreconditionError{Op: "vertex point", Edge: first, Message: fmt.Sprintf("vertex %d has valence 0", v)}
	}

	ring, err := m.Outgoing(v)
	if err != nil {
		return v3.Vec{}, err
	}

	var (
		sum            v3.Vec
		prevNb, nextNb halfedge.VertexID = halfedge.NoVertex, halfedge.NoVertex
		outB, inB      int
	)
	for _, e := range ring {
		nb := m.Target(e)
		if !validVertex(m, nb) {
			return v3.Vec{}, halfedge.NewTopologyError(halfedge.ElementHalfEdge, int(e), "target %d out of range", nb)
		}
		if !validEdge(m, m.Twin(e)) {
			return v3.Vec{}, halfedge.NewTopologyError(halfedge.ElementHalfEdge, int(e), "dangling twin")
		}
		sum = sum.Add(m.Coords(nb))
		if m.IsBoundary(e) {
			outB++
			prevNb = nb
		}
		if m.IsBoundary(m.Twin(e)) {
			inB++
			nextNb = nb
		}
	}

	switch {
	case outB == 0 && inB == 0:
		n := self.Valence
		beta := Beta(n)
		return self.Coords.MulScalar(1 - float64(n)*beta).Add(sum.MulScalar(beta)), nil
	case outB == 1 && inB == 1:
		p := m.Coords(prevNb).Add(self.Coords.MulScalar(6)).Add(m.Coords(nextNb))
		return p.DivScalar(8), nil
	default:
		return v3.Vec{}, halfedge.NewTopologyError(halfedge.ElementVertex, int(v),
			"%d outgoing and %d incoming boundary half-edges", outB, inB)
	}
}

// EdgePoint returns the position of the vertex inserted on the undirected
// edge of first. Boundary edges take their midpoint; interior edges weight
// the endpoints 6 and the two opposite apexes 2, over 16.
func EdgePoint(m *halfedge.Mesh, first halfedge.EdgeID) (v3.Vec, error) {
	if err := checkEdge(m, "edge point", first); err != nil {
		return v3.Vec{}, err
	}
	twin := m.Twin(first)
	a := m.Coords(m.Target(first))
	b := m.Coords(m.Target(twin))
	if m.IsBoundaryEdge(first) {
		return a.Add(b).MulScalar(0.5), nil
	}
	na, nb := m.Next(first), m.Next(twin)
	if !validEdge(m, na) || !validEdge(m, nb) {
		return v3.Vec{}, &halfedge.PreconditionError{Op: "edge point", Edge: first, Message: "face cycle is unlinked"}
	}
	apexA, apexB := m.Target(na), m.Target(nb)
	if !validVertex(m, apexA) || !validVertex(m, apexB) {
		return v3.Vec{}, halfedge.NewTopologyError(halfedge.ElementHalfEdge, int(first), "apex out of range")
	}
	p := a.MulScalar(6).
		Add(m.Coords(apexA).MulScalar(2)).
		Add(b.MulScalar(6)).
		Add(m.Coords(apexB).MulScalar(2))
	return p.DivScalar(16), nil
}

// checkEdge rejects handles the stencils cannot start from: e and its
// twin must exist and both must point at existing vertices.
func checkEdge(m *halfedge.Mesh, op string, e halfedge.EdgeID) error {
	if m == nil || !validEdge(m, e) {
		return &halfedge.PreconditionError{Op: op, Edge: e, Message: "no such half-edge"}
	}
	twin := m.Twin(e)
	if !validEdge(m, twin) {
		return &halfedge.PreconditionError{Op: op, Edge: e, Message: "no twin"}
	}
	if !validVertex(m, m.Target(e)) || !validVertex(m, m.Target(twin)) {
		return &halfedge.PreconditionError{Op: op, Edge: e, Message: "endpoint out of range"}
	}
	return nil
}

func validEdge(m *halfedge.Mesh, e halfedge.EdgeID) bool {
	return e.Valid() && int(e) < m.NumHalfEdges()
}

func validVertex(m *halfedge.Mesh, v halfedge.VertexID) bool {
	return v.Valid() && int(v) < m.NumVertices()
}
