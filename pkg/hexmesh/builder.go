package hexmesh

import (
	"math"
	"runtime"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pausalinas/biomesh/pkg/voxel"
)

// Source selects which partition of a voxel grid is meshed.
type Source int

const (
	// Occupied meshes the cells inside atom spheres (molecular volume).
	Occupied Source = iota
	// Empty meshes the cells outside all spheres (surrounding void).
	// Empty-source meshes are usually an order of magnitude larger than
	// occupied-source meshes on the same grid.
	Empty
)

// nodeTolerance is the per-axis distance under which two corner
// coordinates are considered the same node. Corner coordinates of
// adjacent voxels differ only by floating-point rounding, so the
// tolerance sits many orders of magnitude below any meaningful voxel
// edge length. Tolerance equality is not transitive near bucket
// boundaries; this is a bounded approximation, not an exact equivalence
// relation. Quantizing to the tolerance lattice caps coordinate
// magnitudes at about 9.2e6 (math.MaxInt64 * nodeTolerance), far beyond
// any molecular structure.
const nodeTolerance = 1e-12

// Build meshes the chosen partition of the grid.
func Build(grid *voxel.Grid, source Source) *Mesh {
	if source == Empty {
		return FromVoxels(grid.Empty())
	}
	return FromVoxels(grid.Occupied())
}

// FromVoxels builds a hexahedral mesh with one element per voxel, in
// voxel order. Shared corners are deduplicated, so node numbering is a
// deterministic function of the voxel enumeration order: first
// occurrence wins. An empty voxel slice yields an empty mesh.
func FromVoxels(voxels []voxel.Voxel) *Mesh {
	mesh := &Mesh{}
	if len(voxels) == 0 {
		return mesh
	}

	// Phase 1: corner computation. Pure per-voxel work writing into
	// pre-sized disjoint slots, so the chunks need no synchronization.
	corners := make([][8]v3.Vec, len(voxels))
	parallelChunks(len(voxels), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			corners[i] = cornerNodes(&voxels[i])
		}
	})

	// Phase 2+3: sequential index assignment and connectivity. Order
	// dependence of the node numbering forbids concurrency here.
	dedup := newNodeIndex(len(voxels))
	mesh.Elements = make([][8]int, 0, len(voxels))
	for i := range corners {
		var conn [8]int
		for c, p := range corners[i] {
			conn[c] = dedup.indexOf(p, &mesh.Nodes)
		}
		mesh.Elements = append(mesh.Elements, conn)
	}
	return mesh
}

// parallelChunks splits [0,n) into one contiguous range per worker and
// runs fn on each concurrently.
func parallelChunks(n int, fn func(lo, hi int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	// Workers never return errors; Wait is only a join point.
	_ = g.Wait()
}

// cornerNodes returns the voxel's 8 corners in canonical hexahedron
// order:
//
//	0:(minX,minY,minZ) 1:(maxX,minY,minZ) 2:(maxX,maxY,minZ) 3:(minX,maxY,minZ)
//	4:(minX,minY,maxZ) 5:(maxX,minY,maxZ) 6:(maxX,maxY,maxZ) 7:(minX,maxY,maxZ)
//
// Bottom face first, top face directly above, right-hand-rule winding.
// External FEM/CFD tools depend on exactly this convention.
func cornerNodes(v *voxel.Voxel) [8]v3.Vec {
	return [8]v3.Vec{
		{X: v.Min.X, Y: v.Min.Y, Z: v.Min.Z},
		{X: v.Max.X, Y: v.Min.Y, Z: v.Min.Z},
		{X: v.Max.X, Y: v.Max.Y, Z: v.Min.Z},
		{X: v.Min.X, Y: v.Max.Y, Z: v.Min.Z},
		{X: v.Min.X, Y: v.Min.Y, Z: v.Max.Z},
		{X: v.Max.X, Y: v.Min.Y, Z: v.Max.Z},
		{X: v.Max.X, Y: v.Max.Y, Z: v.Max.Z},
		{X: v.Min.X, Y: v.Max.Y, Z: v.Max.Z},
	}
}

// bucket is a coordinate quantized to the tolerance lattice.
type bucket struct {
	x, y, z int64
}

// nodeIndex assigns sequential indices to coordinates under approximate
// equality. Coordinates are hashed by their tolerance-lattice bucket;
// because two coordinates within tolerance of each other may straddle a
// lattice boundary, lookups probe the neighboring buckets and confirm
// with an exact per-axis tolerance comparison.
type nodeIndex struct {
	buckets map[bucket]int
}

func newNodeIndex(voxelCount int) *nodeIndex {
	// Connected regions typically share 60-80% of their corners.
	return &nodeIndex{buckets: make(map[bucket]int, voxelCount*3)}
}

func quantize(p v3.Vec) bucket {
	return bucket{
		x: int64(math.Round(p.X / nodeTolerance)),
		y: int64(math.Round(p.Y / nodeTolerance)),
		z: int64(math.Round(p.Z / nodeTolerance)),
	}
}

func near(a, b v3.Vec) bool {
	return math.Abs(a.X-b.X) < nodeTolerance &&
		math.Abs(a.Y-b.Y) < nodeTolerance &&
		math.Abs(a.Z-b.Z) < nodeTolerance
}

// indexOf returns the node index for p, appending p to nodes when it has
// not been seen before. Must be called in element order; indices are
// assigned first-occurrence-wins.
func (ni *nodeIndex) indexOf(p v3.Vec, nodes *[]v3.Vec) int {
	base := quantize(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				idx, ok := ni.buckets[bucket{base.x + dx, base.y + dy, base.z + dz}]
				if ok && near((*nodes)[idx], p) {
					return idx
				}
			}
		}
	}

	idx := len(*nodes)
	*nodes = append(*nodes, p)
	ni.buckets[base] = idx
	return idx
}
