// Package gid writes hexahedral meshes in the GiD .msh text format.
// GiD is a pre/post-processor used by external FEM and CFD tools; the
// format is consumed verbatim, so the layout produced here is bit-exact:
// 1-based node and element ids, 6-decimal fixed-point coordinates, and
// the canonical hexahedron corner order.
package gid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pausalinas/biomesh/pkg/hexmesh"
)

// ErrEmptyMesh is returned when the mesh has no nodes or no elements.
var ErrEmptyMesh = errors.New("gid: cannot export empty mesh")

// Export writes the mesh to w in GiD .msh format.
func Export(m *hexmesh.Mesh, w io.Writer) error {
	if m.NodeCount() == 0 || m.ElementCount() == 0 {
		return ErrEmptyMesh
	}

	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "MESH dimension 3 ElemType Hexahedra Nnode 8\n\n")

	fmt.Fprintf(bw, "Coordinates\n")
	for i, n := range m.Nodes {
		fmt.Fprintf(bw, "%d %.6f %.6f %.6f\n", i+1, n.X, n.Y, n.Z)
	}
	fmt.Fprintf(bw, "End Coordinates\n\n")

	fmt.Fprintf(bw, "Elements\n")
	for i, e := range m.Elements {
		fmt.Fprintf(bw, "%d", i+1)
		for _, idx := range e {
			fmt.Fprintf(bw, " %d", idx+1)
		}
		fmt.Fprintf(bw, "\n")
	}
	fmt.Fprintf(bw, "End Elements\n")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("gid: write mesh: %w", err)
	}
	return nil
}

// ExportFile writes the mesh to the file at path, creating or truncating
// it. Conventionally the path ends in ".msh".
func ExportFile(m *hexmesh.Mesh, path string) error {
	// Validate before touching the filesystem so an empty mesh never
	// leaves a truncated file behind.
	if m.NodeCount() == 0 || m.ElementCount() == 0 {
		return ErrEmptyMesh
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gid: open %s: %w", path, err)
	}
	defer f.Close()

	if err := Export(m, f); err != nil {
		return err
	}
	return f.Close()
}
