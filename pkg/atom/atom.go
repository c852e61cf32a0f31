// Package atom defines the atom data model for biomesh: atoms with
// coordinates and physical properties, the element specification registry,
// and the builder that enriches parsed atoms with van der Waals radii and
// atomic masses.
package atom

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Atom is a single atom with position and physical properties.
// Atoms are constructed by the parser and enriched by a Builder; after
// that they are treated as read-only by the rest of the system.
type Atom struct {
	ID       uint64
	Element  string  // chemical element symbol, e.g. "C", "N", "O"
	Position v3.Vec  // orthogonal coordinates in Angstroms
	Radius   float64 // van der Waals radius in Angstroms
	Mass     float64 // atomic mass in Daltons

	// PDB record context, used by residue filtering.
	AtomName      string
	ResidueName   string
	ResidueNumber int
	ChainID       byte
}
