// Package hexmesh builds deduplicated hexahedral finite-element meshes
// from voxel collections. Each voxel becomes one 8-node brick element;
// corners shared between adjacent voxels are emitted once and referenced
// by index, which is what downstream FEM/CFD tools require for
// node-connected meshes.
package hexmesh

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a hexahedral mesh: a list of unique node coordinates and an
// element connectivity list. Every element holds 8 node indices in the
// canonical hexahedron order (bottom face 0-3 counter-clockwise, top face
// 4-7 directly above).
type Mesh struct {
	Nodes    []v3.Vec
	Elements [][8]int
}

// NodeCount returns the number of unique nodes.
func (m *Mesh) NodeCount() int {
	return len(m.Nodes)
}

// ElementCount returns the number of hexahedral elements.
func (m *Mesh) ElementCount() int {
	return len(m.Elements)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Nodes) == 0
}
