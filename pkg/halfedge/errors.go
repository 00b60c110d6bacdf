package halfedge

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	ErrInvalidTopology = errors.New("invalid topology")
	ErrPrecondition    = errors.New("precondition violation")
)

// Element names the kind of mesh record an error refers to.
type Element int

const (
	ElementMesh Element = iota
	ElementVertex
	ElementHalfEdge
	ElementFace
	ElementTriangle // input soup triangle
)

func (e Element) String() string {
	switch e {
	case ElementMesh:
		return "mesh"
	case ElementVertex:
		return "vertex"
	case ElementHalfEdge:
		return "half-edge"
	case ElementFace:
		return "face"
	case ElementTriangle:
		return "triangle"
	default:
		return fmt.Sprintf("Element(%d)", int(e))
	}
}

// InvalidTopologyError reports malformed connectivity: a dangling twin, a
// face cycle that is not a triangle, a zero-valence vertex and so on.
type InvalidTopologyError struct {
	Element Element
	Index   int
	Message string
}

func (e *InvalidTopologyError) Error() string {
	if e.Element == ElementMesh {
		return fmt.Sprintf("invalid topology: %s", e.Message)
	}
	return fmt.Sprintf("invalid topology: %s %d: %s", e.Element, e.Index, e.Message)
}

func (e *InvalidTopologyError) Unwrap() error { return ErrInvalidTopology }

// topologyErrorf builds an *InvalidTopologyError.
func topologyErrorf(el Element, index int, format string, args ...any) error {
	return &InvalidTopologyError{Element: el, Index: index, Message: fmt.Sprintf(format, args...)}
}

// PreconditionError reports a stencil request on an element whose
// neighborhood cannot support it.
type PreconditionError struct {
	Op      string
	Edge    EdgeID
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: half-edge %d: %s", e.Op, e.Edge, e.Message)
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

// NewTopologyError returns an *InvalidTopologyError for callers outside
// this package.
func NewTopologyError(el Element, index int, format string, args ...any) error {
	return topologyErrorf(el, index, format, args...)
}
