// Package residue classifies PDB residue names into molecule categories
// (protein, nucleic acid, water, ion) and filters atom sets by category.
package residue

import "strings"

// Standard 20 amino acids plus the common non-standard ones (MSE
// selenomethionine, SEC selenocysteine, PYL pyrrolysine).
var aminoAcids = newSet(
	"ALA", "ARG", "ASN", "ASP", "CYS", "GLN", "GLU", "GLY",
	"HIS", "ILE", "LEU", "LYS", "MET", "PHE", "PRO", "SER",
	"THR", "TRP", "TYR", "VAL",
	"MSE", "SEC", "PYL",
)

var dnaResidues = newSet("DA", "DT", "DG", "DC", "DU")

var rnaResidues = newSet("A", "U", "G", "C", "ADE", "URA", "GUA", "CYT")

var waterResidues = newSet("HOH", "WAT", "H2O", "SOL", "TIP", "TIP3", "TIP4")

var ionResidues = newSet("NA", "CL", "K", "CA", "MG", "ZN", "FE", "CU", "MN")

func newSet(names ...string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// IsProtein reports whether the residue name is an amino acid.
// Comparison is case-insensitive, as everywhere in this package.
func IsProtein(name string) bool {
	return aminoAcids[strings.ToUpper(name)]
}

// IsDNA reports whether the residue name is a deoxyribonucleotide.
func IsDNA(name string) bool {
	return dnaResidues[strings.ToUpper(name)]
}

// IsRNA reports whether the residue name is a ribonucleotide.
func IsRNA(name string) bool {
	return rnaResidues[strings.ToUpper(name)]
}

// IsNucleicAcid reports whether the residue name is DNA or RNA.
func IsNucleicAcid(name string) bool {
	return IsDNA(name) || IsRNA(name)
}

// IsWater reports whether the residue name is a water model.
func IsWater(name string) bool {
	return waterResidues[strings.ToUpper(name)]
}

// IsIon reports whether the residue name is a common ion.
func IsIon(name string) bool {
	return ionResidues[strings.ToUpper(name)]
}
