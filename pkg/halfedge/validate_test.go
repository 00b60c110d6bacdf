package halfedge_test

import (
	"testing"

	"github.com/chazu/loopview/pkg/halfedge"
	"github.com/chazu/loopview/pkg/primitive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(m *halfedge.Mesh)
	}{
		{"dangling twin", func(m *halfedge.Mesh) { m.HalfEdges[0].Twin = halfedge.NoEdge }},
		{"asymmetric twin", func(m *halfedge.Mesh) { m.HalfEdges[0].Twin = m.HalfEdges[1].Twin }},
		{"broken next", func(m *halfedge.Mesh) { m.HalfEdges[0].Next = 4 }},
		{"face valence", func(m *halfedge.Mesh) { m.Faces[1].Valence = 4 }},
		{"face side", func(m *halfedge.Mesh) { m.Faces[0].Side = 3 }},
		{"zero valence", func(m *halfedge.Mesh) { m.Vertices[2].Valence = 0 }},
		{"wrong valence", func(m *halfedge.Mesh) { m.Vertices[2].Valence = 2 }},
		{"out not leaving vertex", func(m *halfedge.Mesh) { m.Vertices[0].Out = m.Twin(m.Vertices[0].Out) }},
		{"odd half-edge count", func(m *halfedge.Mesh) { m.HalfEdges = m.HalfEdges[:len(m.HalfEdges)-1] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := halfedge.Build(primitive.Tetrahedron())
			require.NoError(t, err)
			require.NoError(t, halfedge.Validate(m))

			tt.corrupt(m)
			err = halfedge.Validate(m)
			require.Error(t, err)
			assert.ErrorIs(t, err, halfedge.ErrInvalidTopology)
		})
	}
}

func TestValidateEmpty(t *testing.T) {
	assert.ErrorIs(t, halfedge.Validate(nil), halfedge.ErrInvalidTopology)
	assert.ErrorIs(t, halfedge.Validate(halfedge.NewMesh(0, 0, 0)), halfedge.ErrInvalidTopology)
}

func TestErrorMessages(t *testing.T) {
	err := halfedge.NewTopologyError(halfedge.ElementFace, 7, "valence %d", 4)
	assert.Equal(t, "invalid topology: face 7: valence 4", err.Error())

	pe := &halfedge.PreconditionError{Op: "edge point", Edge: 3, Message: "no twin"}
	assert.Equal(t, "edge point: half-edge 3: no twin", pe.Error())
	assert.ErrorIs(t, pe, halfedge.ErrPrecondition)
}
