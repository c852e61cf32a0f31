package residue

import "github.com/pausalinas/biomesh/pkg/atom"

// Filter selects atoms by residue category. The zero value keeps nothing;
// use All or a preset as a starting point and adjust with the chainable
// setters.
type Filter struct {
	keepProteins     bool
	keepNucleicAcids bool
	keepWater        bool
	keepIons         bool
	keepOthers       bool
}

// All keeps every atom.
func All() Filter {
	return Filter{
		keepProteins:     true,
		keepNucleicAcids: true,
		keepWater:        true,
		keepIons:         true,
		keepOthers:       true,
	}
}

// ProteinOnly keeps only amino acid residues.
func ProteinOnly() Filter {
	return Filter{keepProteins: true}
}

// NucleicAcidOnly keeps only DNA/RNA residues.
func NucleicAcidOnly() Filter {
	return Filter{keepNucleicAcids: true}
}

// NoWater keeps everything except water molecules.
func NoWater() Filter {
	f := All()
	f.keepWater = false
	return f
}

// KeepProteins sets whether amino acid residues pass the filter.
func (f Filter) KeepProteins(keep bool) Filter {
	f.keepProteins = keep
	return f
}

// KeepNucleicAcids sets whether DNA/RNA residues pass the filter.
func (f Filter) KeepNucleicAcids(keep bool) Filter {
	f.keepNucleicAcids = keep
	return f
}

// KeepWater sets whether water molecules pass the filter.
func (f Filter) KeepWater(keep bool) Filter {
	f.keepWater = keep
	return f
}

// KeepIons sets whether ion residues pass the filter.
func (f Filter) KeepIons(keep bool) Filter {
	f.keepIons = keep
	return f
}

// KeepOthers sets whether unclassified residues pass the filter.
func (f Filter) KeepOthers(keep bool) Filter {
	f.keepOthers = keep
	return f
}

// Keeps reports whether a single atom passes the filter.
func (f Filter) Keeps(a atom.Atom) bool {
	switch {
	case IsProtein(a.ResidueName):
		return f.keepProteins
	case IsNucleicAcid(a.ResidueName):
		return f.keepNucleicAcids
	case IsWater(a.ResidueName):
		return f.keepWater
	case IsIon(a.ResidueName):
		return f.keepIons
	default:
		return f.keepOthers
	}
}

// Apply returns the atoms that pass the filter, preserving order. The
// input is not modified.
func (f Filter) Apply(atoms []atom.Atom) []atom.Atom {
	kept := make([]atom.Atom, 0, len(atoms))
	for _, a := range atoms {
		if f.Keeps(a) {
			kept = append(kept, a)
		}
	}
	return kept
}
