// Package geometry provides the axis-aligned bounding box for sets of
// atom spheres. The box is the spatial root of the meshing pipeline:
// atoms -> bounding box -> voxel grid -> hexahedral mesh.
package geometry

import (
	"errors"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/pausalinas/biomesh/pkg/atom"
)

// ErrNoAtoms is returned when a bounding box is requested for zero atoms.
var ErrNoAtoms = errors.New("geometry: bounding box requires at least one atom")

// Box is the minimal axis-aligned box enclosing a set of atom spheres,
// optionally expanded by a scalar padding. After construction min <= max
// holds componentwise. A degenerate zero-volume box (single zero-radius
// atom, zero padding) is valid.
type Box struct {
	min v3.Vec
	max v3.Vec
}

// New computes the bounding box of all atom spheres plus padding.
// Each sphere contributes position +/- radius on every axis.
//
// Negative padding is not validated and can produce an inverted box;
// callers that shrink a box are expected to know their geometry.
func New(atoms []atom.Atom, padding float64) (*Box, error) {
	if len(atoms) == 0 {
		return nil, ErrNoAtoms
	}

	min := v3.Vec{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}
	max := v3.Vec{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64}

	for _, a := range atoms {
		r := v3.Vec{X: a.Radius, Y: a.Radius, Z: a.Radius}
		min = min.Min(a.Position.Sub(r))
		max = max.Max(a.Position.Add(r))
	}

	b := &Box{min: min, max: max}
	b.ExpandBy(padding)
	return b, nil
}

// Min returns the minimum corner.
func (b *Box) Min() v3.Vec { return b.min }

// Max returns the maximum corner.
func (b *Box) Max() v3.Vec { return b.max }

// Center returns the midpoint of the box.
func (b *Box) Center() v3.Vec {
	return b.min.Add(b.max).MulScalar(0.5)
}

// Dimensions returns the edge lengths along x, y, z.
func (b *Box) Dimensions() v3.Vec {
	return b.max.Sub(b.min)
}

// Volume returns the box volume.
func (b *Box) Volume() float64 {
	d := b.Dimensions()
	return d.X * d.Y * d.Z
}

// SurfaceArea returns the total area of the six faces.
func (b *Box) SurfaceArea() float64 {
	d := b.Dimensions()
	return 2 * (d.X*d.Y + d.Y*d.Z + d.Z*d.X)
}

// Corners returns the 8 corner points. Index 0 is the minimum corner,
// indices 1-3 add +x, +y, +x+y, indices 4-7 repeat the pattern at max z.
func (b *Box) Corners() [8]v3.Vec {
	return [8]v3.Vec{
		{X: b.min.X, Y: b.min.Y, Z: b.min.Z},
		{X: b.max.X, Y: b.min.Y, Z: b.min.Z},
		{X: b.min.X, Y: b.max.Y, Z: b.min.Z},
		{X: b.max.X, Y: b.max.Y, Z: b.min.Z},
		{X: b.min.X, Y: b.min.Y, Z: b.max.Z},
		{X: b.max.X, Y: b.min.Y, Z: b.max.Z},
		{X: b.min.X, Y: b.max.Y, Z: b.max.Z},
		{X: b.max.X, Y: b.max.Y, Z: b.max.Z},
	}
}

// Contains reports whether the point lies inside the box. Boundary points
// are inside.
func (b *Box) Contains(p v3.Vec) bool {
	return p.X >= b.min.X && p.X <= b.max.X &&
		p.Y >= b.min.Y && p.Y <= b.max.Y &&
		p.Z >= b.min.Z && p.Z <= b.max.Z
}

// ExpandBy grows the box symmetrically by pad on every axis.
func (b *Box) ExpandBy(pad float64) {
	p := v3.Vec{X: pad, Y: pad, Z: pad}
	b.min = b.min.Sub(p)
	b.max = b.max.Add(p)
}
