// Package voxel tessellates a bounding box into a uniform grid of cubic
// cells and classifies every cell as occupied or empty against a set of
// atom spheres. A cell is occupied when its center lies inside at least
// one sphere.
package voxel

import (
	"errors"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/pausalinas/biomesh/pkg/atom"
	"github.com/pausalinas/biomesh/pkg/geometry"
)

// ErrInvalidVoxelSize is returned when the requested edge length is not
// strictly positive.
var ErrInvalidVoxelSize = errors.New("voxel: voxel size must be positive")

// Index addresses a cell by its integer grid coordinate.
type Index struct {
	I, J, K int
}

// Voxel is a single cubic cell of the grid. Center is always the midpoint
// of Min and Max. AtomIDs lists every atom whose sphere contains the
// center; it is non-empty exactly when Occupied is true.
type Voxel struct {
	Index    Index
	Center   v3.Vec
	Min      v3.Vec
	Max      v3.Vec
	Occupied bool
	AtomIDs  []uint64
}

// Dims holds the per-axis cell counts of a grid.
type Dims struct {
	X, Y, Z int
}

// absent marks an empty cell in the dense lookup table.
const absent = int32(-1)

// Grid is a uniform spatial partition of a bounding box. It owns the
// occupied and empty voxel collections plus a dense table mapping linear
// grid index to a position in the occupied collection. The grid is built
// once and read-only afterward.
type Grid struct {
	bounds    *geometry.Box
	voxelSize float64
	dims      Dims
	total     int

	occupied []Voxel
	empty    []Voxel

	// lookup[linearIndex] is an index into occupied, or absent. Indices
	// are assigned only after a voxel is appended, so they stay valid
	// regardless of slice growth.
	lookup []int32
}

// NewGrid computes a bounding box for the atoms (plus padding) and
// voxelizes it at the given edge length.
func NewGrid(atoms []atom.Atom, voxelSize, padding float64) (*Grid, error) {
	if voxelSize <= 0 {
		return nil, ErrInvalidVoxelSize
	}
	bounds, err := geometry.New(atoms, padding)
	if err != nil {
		return nil, err
	}
	return NewGridInBounds(bounds, atoms, voxelSize)
}

// NewGridInBounds voxelizes a pre-computed bounding box at the given edge
// length. Occupancy is still tested against the full atom set.
func NewGridInBounds(bounds *geometry.Box, atoms []atom.Atom, voxelSize float64) (*Grid, error) {
	if voxelSize <= 0 {
		return nil, ErrInvalidVoxelSize
	}

	d := bounds.Dimensions()
	dims := Dims{
		X: atLeastOne(math.Ceil(d.X / voxelSize)),
		Y: atLeastOne(math.Ceil(d.Y / voxelSize)),
		Z: atLeastOne(math.Ceil(d.Z / voxelSize)),
	}

	g := &Grid{
		bounds:    bounds,
		voxelSize: voxelSize,
		dims:      dims,
		total:     dims.X * dims.Y * dims.Z,
	}
	g.populate(atoms)
	return g, nil
}

// atLeastOne floors a per-axis cell count at 1 so a degenerate box still
// produces a grid.
func atLeastOne(n float64) int {
	if n < 1 {
		return 1
	}
	return int(n)
}

// populate enumerates every cell (x fastest, then y, then z), classifies
// it, and routes it into the occupied or empty collection. The dense
// lookup table is filled with occupied-collection indices as they are
// assigned.
//
// This is a deliberate O(cells * atoms) bulk scan. Spatial hashing over
// the atoms would slot in here without changing the external contract.
func (g *Grid) populate(atoms []atom.Atom) {
	g.lookup = make([]int32, g.total)
	for i := range g.lookup {
		g.lookup[i] = absent
	}
	// Molecular volume is typically a small fraction of the box.
	g.occupied = make([]Voxel, 0, g.total/3+1)
	g.empty = make([]Voxel, 0, g.total)

	min := g.bounds.Min()
	half := g.voxelSize / 2

	for k := 0; k < g.dims.Z; k++ {
		for j := 0; j < g.dims.Y; j++ {
			for i := 0; i < g.dims.X; i++ {
				v := Voxel{
					Index: Index{I: i, J: j, K: k},
					Min: v3.Vec{
						X: min.X + float64(i)*g.voxelSize,
						Y: min.Y + float64(j)*g.voxelSize,
						Z: min.Z + float64(k)*g.voxelSize,
					},
				}
				v.Max = v3.Vec{X: v.Min.X + g.voxelSize, Y: v.Min.Y + g.voxelSize, Z: v.Min.Z + g.voxelSize}
				v.Center = v3.Vec{X: v.Min.X + half, Y: v.Min.Y + half, Z: v.Min.Z + half}

				v.AtomIDs = intersectingAtoms(v.Center, atoms)
				v.Occupied = len(v.AtomIDs) > 0

				if v.Occupied {
					g.occupied = append(g.occupied, v)
					g.lookup[g.linearIndex(i, j, k)] = int32(len(g.occupied) - 1)
				} else {
					g.empty = append(g.empty, v)
				}
			}
		}
	}
}

// intersectingAtoms returns the ids of every atom whose sphere contains
// the point, in atom order.
func intersectingAtoms(p v3.Vec, atoms []atom.Atom) []uint64 {
	var ids []uint64
	for _, a := range atoms {
		d := p.Sub(a.Position)
		if d.Dot(d) <= a.Radius*a.Radius {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func (g *Grid) linearIndex(i, j, k int) int {
	return i + g.dims.X*(j+g.dims.Y*k)
}

// VoxelSize returns the cell edge length.
func (g *Grid) VoxelSize() float64 { return g.voxelSize }

// Dims returns the per-axis cell counts.
func (g *Grid) Dims() Dims { return g.dims }

// TotalCount returns the number of cells in the grid.
func (g *Grid) TotalCount() int { return g.total }

// OccupiedCount returns the number of occupied cells.
func (g *Grid) OccupiedCount() int { return len(g.occupied) }

// EmptyCount returns the number of empty cells.
func (g *Grid) EmptyCount() int { return len(g.empty) }

// Occupied returns the occupied voxels in enumeration order. The slice is
// owned by the grid and must not be modified.
func (g *Grid) Occupied() []Voxel { return g.occupied }

// Empty returns the empty voxels in enumeration order. The slice is owned
// by the grid and must not be modified.
func (g *Grid) Empty() []Voxel { return g.empty }

// At returns the occupied voxel at grid coordinate (i,j,k), or nil when
// the coordinate is out of range or the cell is empty. Boundary-probing
// callers are expected, so an out-of-range coordinate is not an error.
func (g *Grid) At(i, j, k int) *Voxel {
	if i < 0 || i >= g.dims.X || j < 0 || j >= g.dims.Y || k < 0 || k >= g.dims.Z {
		return nil
	}
	idx := g.lookup[g.linearIndex(i, j, k)]
	if idx == absent {
		return nil
	}
	return &g.occupied[idx]
}

// Bounds returns the bounding box the grid tessellates.
func (g *Grid) Bounds() *geometry.Box { return g.bounds }
