// Package halfedge defines the half-edge mesh used by the subdivision
// pipeline. A Mesh owns one generation of vertices, half-edges and faces
// in flat slices; all cross references are integer handles into those
// slices, never pointers.
package halfedge
