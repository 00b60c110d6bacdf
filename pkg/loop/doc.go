// Package loop implements one pass of Loop subdivision over a
// halfedge.Mesh: smoothed vertex points, inserted edge points, every
// triangle split into four, and boundary loops relinked afterwards.
//
// The input mesh is only read. Each pass allocates a new mesh with
// V+E vertices, 2H+6F half-edges and 4F faces.
package loop
