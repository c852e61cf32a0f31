package voxel

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/pausalinas/biomesh/pkg/atom"
)

// genAtoms produces small non-empty atom sets with bounded coordinates and
// radii so grids stay a few thousand cells at most.
func genAtoms() gopter.Gen {
	genAtom := gopter.CombineGens(
		gen.Float64Range(-10, 10),
		gen.Float64Range(-10, 10),
		gen.Float64Range(-10, 10),
		gen.Float64Range(0, 3),
	).Map(func(vals []interface{}) atom.Atom {
		return atom.Atom{
			Position: v3.Vec{
				X: vals[0].(float64),
				Y: vals[1].(float64),
				Z: vals[2].(float64),
			},
			Radius: vals[3].(float64),
		}
	})
	return gen.SliceOfN(4, genAtom).SuchThat(func(atoms []atom.Atom) bool {
		return len(atoms) > 0
	})
}

// TestGridProperties verifies the grid invariants that must hold for every
// valid (atoms, voxelSize, padding) input.
func TestGridProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("total equals dims product and occupied+empty", prop.ForAll(
		func(atoms []atom.Atom, voxelSize, padding float64) bool {
			g, err := NewGrid(atoms, voxelSize, padding)
			if err != nil {
				return false
			}
			d := g.Dims()
			return g.TotalCount() == d.X*d.Y*d.Z &&
				g.TotalCount() == g.OccupiedCount()+g.EmptyCount()
		},
		genAtoms(),
		gen.Float64Range(0.5, 5),
		gen.Float64Range(0, 2),
	))

	properties.Property("bounding box encloses every atom sphere", prop.ForAll(
		func(atoms []atom.Atom, padding float64) bool {
			g, err := NewGrid(atoms, 1.0, padding)
			if err != nil {
				return false
			}
			b := g.Bounds()
			min, max := b.Min(), b.Max()
			if min.X > max.X || min.Y > max.Y || min.Z > max.Z {
				return false
			}
			for _, a := range atoms {
				r := v3.Vec{X: a.Radius, Y: a.Radius, Z: a.Radius}
				if !b.Contains(a.Position.Sub(r)) || !b.Contains(a.Position.Add(r)) {
					return false
				}
			}
			return true
		},
		genAtoms(),
		gen.Float64Range(0, 2),
	))

	properties.Property("every occupied center is inside some atom sphere", prop.ForAll(
		func(atoms []atom.Atom, voxelSize float64) bool {
			g, err := NewGrid(atoms, voxelSize, 0)
			if err != nil {
				return false
			}
			for _, v := range g.Occupied() {
				inside := false
				for _, a := range atoms {
					d := v.Center.Sub(a.Position)
					if d.Dot(d) <= a.Radius*a.Radius {
						inside = true
						break
					}
				}
				if !inside {
					return false
				}
			}
			return true
		},
		genAtoms(),
		gen.Float64Range(0.5, 5),
	))

	properties.TestingRun(t)
}
